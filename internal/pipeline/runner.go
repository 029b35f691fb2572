// Package pipeline orchestrates a resolution run: load reference tables,
// fan chunks of input rows out to the worker pool, collect and render the
// classified results.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/histparl/rollcall/internal/cache"
	"github.com/histparl/rollcall/internal/engine"
	"github.com/histparl/rollcall/internal/index"
	"github.com/histparl/rollcall/internal/llm"
	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/normalize"
	"github.com/histparl/rollcall/internal/refdata"
	"github.com/histparl/rollcall/internal/worker"
)

// Runner wires configuration into a runnable resolution pipeline.
type Runner struct {
	cfg    *model.Config
	logger *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(cfg *model.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Run resolves every row of the debates CSV and writes the result
// datasets into the output directory.
func (r *Runner) Run(ctx context.Context, debatesPath string) (*Summary, error) {
	started := time.Now()

	tables, err := refdata.Load(r.cfg.Data.Dir, r.logger)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	pool := worker.NewPool(r.cfg.Concurrency.Workers, r.engineFactory(tables, r.buildLastResort()))
	if err := pool.Start(); err != nil {
		return nil, err
	}

	reader, err := OpenDebates(debatesPath)
	if err != nil {
		pool.Shutdown()
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	// Feeder: stream chunks into the pool, then close the queue. The
	// closed queue is what terminates the workers.
	readErr := make(chan error, 1)
	go func() {
		defer pool.Drain()
		seq := 0
		for {
			select {
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			default:
			}
			records, err := reader.Next(r.cfg.Concurrency.ChunkSize)
			if err == io.EOF {
				readErr <- nil
				return
			}
			if err != nil {
				readErr <- err
				return
			}
			pool.Submit(worker.Chunk{Seq: seq, Records: records})
			seq++
		}
	}()

	// Collector: drain results as they arrive, logging throttled progress.
	progress := rate.NewLimiter(rate.Every(2*time.Second), 1)
	summary := &Summary{}
	var chunks []worker.ChunkResult
	for result := range pool.Results() {
		chunks = append(chunks, result)
		summary.Rows += len(result.Rows)
		summary.Matched += result.Matched
		summary.Missed += result.Missed
		summary.Ambiguous += result.Ambiguous
		summary.Ignored += result.Ignored
		for _, row := range result.Rows {
			if row.Resolution.Fuzzy {
				summary.Fuzzy++
			}
		}
		if progress.Allow() {
			r.logger.Info("progress",
				"rows", summary.Rows,
				"matched", summary.Matched,
				"missed", summary.Missed,
				"ambiguous", summary.Ambiguous,
				"ignored", summary.Ignored)
		}
	}
	if err := <-readErr; err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	summary.SkippedInput = reader.Skipped()

	// Workers finish out of order; restore input order before writing.
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Seq < chunks[j].Seq })
	rows := make([]worker.RowResult, 0, summary.Rows)
	for _, c := range chunks {
		rows = append(rows, c.Rows...)
	}

	if err := NewResultWriter(r.cfg.Output.Dir).WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write results: %w", err)
	}

	r.saveSnapshots(pool.Engines())

	summary.Elapsed = time.Since(started)
	if r.cfg.Output.JSONSummary != "" {
		if err := summary.WriteJSON(r.cfg.Output.JSONSummary); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// engineFactory builds each worker's private engine. Index and normalizer
// are rebuilt per worker over the shared immutable tables, so the hot path
// never shares mutable state.
func (r *Runner) engineFactory(tables *refdata.Tables, lastResort engine.LastResort) worker.EngineFactory {
	return func(id int) (*engine.Engine, error) {
		idx := index.Build(tables)
		norm := normalize.New(tables.Corrections, idx.HasAlias)

		c := cache.New()
		if dir := r.cfg.Cache.SnapshotDir; dir != "" {
			if err := c.Load(snapshotPath(dir, id)); err != nil {
				return nil, fmt.Errorf("load cache snapshot: %w", err)
			}
		}

		return engine.New(idx, norm, c, r.cfg.Engine, lastResort, r.logger.With("worker", id)), nil
	}
}

// buildLastResort returns the optional LLM resolver, or nil when disabled
// or misconfigured. A broken resolver downgrades to a warning; the run
// proceeds deterministically without it.
func (r *Runner) buildLastResort() engine.LastResort {
	if r.cfg.LLM.Provider == "" {
		return nil
	}
	resolver, err := llm.NewResolver(r.cfg.LLM, r.logger)
	if err != nil {
		r.logger.Warn("last-resort resolver disabled", "error", err)
		return nil
	}
	if resolver == nil {
		return nil
	}
	return resolver
}

// saveSnapshots persists each worker's cache for the next run's warm
// start. Snapshot failures are logged, not fatal: the results are already
// on disk.
func (r *Runner) saveSnapshots(engines []*engine.Engine) {
	dir := r.cfg.Cache.SnapshotDir
	if dir == "" {
		return
	}
	for id, eng := range engines {
		if err := eng.Cache().Save(snapshotPath(dir, id)); err != nil {
			r.logger.Warn("save cache snapshot", "worker", id, "error", err)
		}
	}
}

func snapshotPath(dir string, workerID int) string {
	return filepath.Join(dir, fmt.Sprintf("worker-%d.json", workerID))
}
