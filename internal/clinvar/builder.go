package clinvar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/clinanno/internal/catalog"
)

// DefaultDelay is the pause between chromosome batches.
const DefaultDelay = 30 * time.Second

// SourceName is recorded in the catalog metadata.
const SourceName = "clinvar"

// BuildResult describes a finished catalog build.
type BuildResult struct {
	Catalog *catalog.Catalog
	Meta    catalog.Meta
	Stats   FetchStats
	Fetched []string // chromosomes fetched in this run
	Resumed []string // chromosomes loaded from existing checkpoints
}

// Builder fetches the catalog chromosome by chromosome. Requests are
// strictly sequential and every fetched batch after the first waits for
// the configured delay.
type Builder struct {
	source          Source
	checkpoints     *catalog.Checkpoints
	chromosomes     []string
	delay           time.Duration
	keepCheckpoints bool
	logger          *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewBuilder creates a builder that checkpoints into cp.
func NewBuilder(src Source, cp *catalog.Checkpoints) *Builder {
	return &Builder{
		source:      src,
		checkpoints: cp,
		chromosomes: Chromosomes,
		delay:       DefaultDelay,
		logger:      zap.NewNop(),
		sleep:       sleepContext,
		now:         time.Now,
	}
}

// SetLogger sets the logger for progress messages.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// SetDelay sets the pause between chromosome batches.
func (b *Builder) SetDelay(d time.Duration) {
	b.delay = d
}

// SetChromosomes restricts the build to the given chromosomes.
func (b *Builder) SetChromosomes(chroms []string) {
	b.chromosomes = chroms
}

// SetKeepCheckpoints keeps per-chromosome checkpoints after a successful build.
func (b *Builder) SetKeepCheckpoints(keep bool) {
	b.keepCheckpoints = keep
}

// Build fetches every chromosome that has no checkpoint yet, merges all
// checkpoints, and saves the merged catalog to outPath. If a chromosome
// fails, the checkpoints written so far are kept so the next run resumes.
func (b *Builder) Build(ctx context.Context, outPath string) (*BuildResult, error) {
	res := &BuildResult{
		Meta: catalog.Meta{
			BuildID:     uuid.NewString(),
			CreatedAt:   b.now().UTC(),
			Source:      SourceName,
			Chromosomes: b.chromosomes,
		},
	}

	batches := 0
	for _, chrom := range b.chromosomes {
		if b.checkpoints.Has(chrom) {
			b.logger.Info("resuming from checkpoint", zap.String("chrom", chrom))
			res.Resumed = append(res.Resumed, chrom)
			continue
		}

		if batches > 0 {
			b.logger.Debug("waiting between batches", zap.Duration("delay", b.delay))
			if err := b.sleep(ctx, b.delay); err != nil {
				return nil, err
			}
		}
		batches++

		part, stats, err := b.fetchChromosome(ctx, chrom)
		if err != nil {
			return nil, err
		}
		if err := b.checkpoints.Save(chrom, part, res.Meta); err != nil {
			return nil, err
		}

		res.Stats.Add(stats)
		res.Fetched = append(res.Fetched, chrom)
		b.logger.Info("finished chromosome",
			zap.String("chrom", chrom),
			zap.Int("reports", stats.Reports),
			zap.Int("entries", stats.Entries),
			zap.Int("skipped_reports", stats.SkippedReports),
			zap.Int("skipped_hgvs", stats.SkippedHGVS),
			zap.Int("skipped_consequences", stats.SkippedConsequences))
	}

	merged := catalog.New()
	for _, chrom := range b.chromosomes {
		part, err := b.checkpoints.Load(chrom)
		if err != nil {
			return nil, err
		}
		merged.Merge(part)
	}

	if err := catalog.Save(outPath, merged, res.Meta); err != nil {
		return nil, err
	}
	res.Meta.Transcripts = merged.TranscriptCount()
	res.Meta.Entries = merged.EntryCount()
	res.Catalog = merged

	if !b.keepCheckpoints {
		if err := b.checkpoints.Clear(b.chromosomes); err != nil {
			b.logger.Warn("could not remove checkpoints", zap.Error(err))
		}
	}

	return res, nil
}

// fetchChromosome runs the search → fetch pair for one chromosome.
func (b *Builder) fetchChromosome(ctx context.Context, chrom string) (*catalog.Catalog, FetchStats, error) {
	var stats FetchStats

	ids, err := b.source.Search(ctx, chrom)
	if err != nil {
		return nil, stats, withChrom(err, chrom)
	}
	b.logger.Debug("searched chromosome", zap.String("chrom", chrom), zap.Int("ids", len(ids)))

	part := catalog.New()
	err = b.source.Fetch(ctx, ids, func(r *Report) error {
		placements, s := Extract(r)
		stats.Add(s)
		for _, p := range placements {
			part.Add(p.Transcript, p.Entry)
		}
		return nil
	})
	if err != nil {
		return nil, stats, withChrom(err, chrom)
	}

	return part, stats, nil
}

// withChrom attaches the chromosome to remote errors that lack it.
func withChrom(err error, chrom string) error {
	var re *RemoteError
	if errors.As(err, &re) {
		if re.Chrom == "" {
			re.Chrom = chrom
		}
		return err
	}
	return fmt.Errorf("chr%s: %w", chrom, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
