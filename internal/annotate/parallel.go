package annotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/clinanno/internal/vcf"
)

// WorkItem holds a raw line ready for annotation.
type WorkItem struct {
	Seq        int
	Line       string
	LineNumber int
}

// WorkResult holds the output line for a single input line.
type WorkResult struct {
	Seq        int
	Line       string
	LineNumber int
	Outcome    Outcome
}

// ParallelAnnotate annotates work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (a *Annotator) ParallelAnnotate(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				line, outcome := a.AnnotateLine(item.Line, item.LineNumber)
				results <- WorkResult{
					Seq:        item.Seq,
					Line:       line,
					LineNumber: item.LineNumber,
					Outcome:    outcome,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// AnnotateAll reads every line from src, annotates lines in parallel and
// writes them to w in input order.
func (a *Annotator) AnnotateAll(ctx context.Context, src vcf.LineSource, w io.Writer) (Stats, error) {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	items := make(chan WorkItem, 2*workers)
	g.Go(func() error {
		defer close(items)
		for seq := 0; ; seq++ {
			line, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read vcf: %w", err)
			}
			select {
			case items <- WorkItem{Seq: seq, Line: line, LineNumber: src.LineNumber()}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	results := a.ParallelAnnotate(items, workers)

	var (
		stats    Stats
		writeErr error
	)
	g.Go(func() error {
		return OrderedCollect(results, func(r WorkResult) error {
			if _, err := io.WriteString(w, r.Line); err != nil {
				writeErr = fmt.Errorf("write line %d: %w", r.LineNumber, err)
				cancel()
				return writeErr
			}
			stats.add(r.Outcome)
			return nil
		})
	})

	// The reader may observe the cancellation first; the write error wins.
	if err := g.Wait(); err != nil {
		if writeErr != nil {
			return stats, writeErr
		}
		return stats, err
	}

	if stats.Records() == 0 {
		a.logger.Info("0 variants processed")
	}
	if n := a.classifier.Skipped(); n > 0 {
		a.logger.Warn("skipped unparseable catalog entries", zap.Int64("count", n))
	}

	return stats, nil
}
