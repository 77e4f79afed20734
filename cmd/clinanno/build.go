package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/clinanno/internal/catalog"
	"github.com/inodb/clinanno/internal/clinvar"
)

type buildOptions struct {
	fresh       bool
	keep        bool
	chromosomes []string
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the ClinVar pathogenic variant catalog",
		Long: `Download pathogenic and conflicting-pathogenic ClinVar variants from NCBI
E-utilities and store their RefSeq protein changes as the local catalog.

Chromosomes are fetched one at a time with a pause between them. Each
finished chromosome is checkpointed in the work directory, so an interrupted
build resumes where it stopped.`,
		Example: `  clinanno build
  clinanno build --api-key $NCBI_API_KEY --delay 10s
  clinanno build --chromosomes 12,17 --catalog /data/test_catalog.gob
  clinanno build --fresh`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd.Flags(), map[string]string{
				"catalog.path":  "catalog",
				"build.workdir": "workdir",
				"build.delay":   "delay",
				"ncbi.api_key":  "api-key",
				"ncbi.email":    "email",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().String("catalog", "", "Output catalog file (default: ~/.clinanno/clinvar_catalog.gob)")
	cmd.Flags().String("workdir", "", "Checkpoint directory (default: ~/.clinanno/checkpoints)")
	cmd.Flags().Duration("delay", clinvar.DefaultDelay, "Pause between chromosome batches")
	cmd.Flags().String("api-key", "", "NCBI API key (or NCBI_API_KEY)")
	cmd.Flags().String("email", "", "Contact email sent to NCBI")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "Discard existing checkpoints and fetch everything again")
	cmd.Flags().BoolVar(&opts.keep, "keep-checkpoints", false, "Keep checkpoints after the catalog is written")
	cmd.Flags().StringSliceVar(&opts.chromosomes, "chromosomes", nil, "Only fetch these chromosomes (default: all)")

	return cmd
}

func runBuild(cmd *cobra.Command, opts buildOptions) error {
	chroms, err := selectChromosomes(opts.chromosomes)
	if err != nil {
		return err
	}

	outPath := viper.GetString("catalog.path")
	workdir := viper.GetString("build.workdir")
	delay := viper.GetDuration("build.delay")
	if delay < 0 {
		return &usageError{fmt.Errorf("--delay must not be negative")}
	}

	cp := catalog.NewCheckpoints(workdir)
	if opts.fresh {
		if err := cp.Clear(chroms); err != nil {
			return fmt.Errorf("clear checkpoints: %w", err)
		}
	}

	src := clinvar.NewEUtils(clinvar.EUtilsConfig{
		BaseURL: viper.GetString("ncbi.base_url"),
		APIKey:  viper.GetString("ncbi.api_key"),
		Tool:    viper.GetString("ncbi.tool"),
		Email:   viper.GetString("ncbi.email"),
		RetMax:  viper.GetInt("ncbi.retmax"),
		Timeout: viper.GetDuration("ncbi.timeout"),
	})
	src.SetLogger(logger)

	b := clinvar.NewBuilder(src, cp)
	b.SetLogger(logger)
	b.SetDelay(delay)
	b.SetChromosomes(chroms)
	b.SetKeepCheckpoints(opts.keep)

	logger.Info("building catalog",
		zap.String("output", outPath),
		zap.String("workdir", workdir),
		zap.Int("chromosomes", len(chroms)),
		zap.Duration("delay", delay))

	res, err := b.Build(cmd.Context(), outPath)
	if err != nil {
		return fmt.Errorf("build catalog: %w (checkpoints in %s are kept; rerun to resume)", err, workdir)
	}

	logger.Info("catalog written",
		zap.String("path", outPath),
		zap.String("build_id", res.Meta.BuildID),
		zap.Int("transcripts", res.Meta.Transcripts),
		zap.Int("entries", res.Meta.Entries),
		zap.Int("fetched", len(res.Fetched)),
		zap.Int("resumed", len(res.Resumed)),
		zap.Int("skipped_reports", res.Stats.SkippedReports),
		zap.Int("skipped_hgvs", res.Stats.SkippedHGVS),
		zap.Int("skipped_consequences", res.Stats.SkippedConsequences))
	return nil
}

// selectChromosomes validates a --chromosomes list and returns it in build order.
func selectChromosomes(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return clinvar.Chromosomes, nil
	}
	for _, c := range requested {
		if !slices.Contains(clinvar.Chromosomes, c) {
			return nil, &usageError{fmt.Errorf("unknown chromosome %q", c)}
		}
	}
	var out []string
	for _, c := range clinvar.Chromosomes {
		if slices.Contains(requested, c) {
			out = append(out, c)
		}
	}
	return out, nil
}
