package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/histparl/rollcall/internal/model"
)

// BatchProcessor resolves a bounded, in-memory set of rows with a
// transient pool. The streaming path in the pipeline drives a Pool
// directly; this is the convenience wrapper for small inputs and tests.
type BatchProcessor struct {
	factory   EngineFactory
	workers   int
	chunkSize int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(factory EngineFactory, workers, chunkSize int) *BatchProcessor {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &BatchProcessor{
		factory:   factory,
		workers:   workers,
		chunkSize: chunkSize,
	}
}

// Process resolves the records concurrently and returns row results in
// input order.
func (b *BatchProcessor) Process(ctx context.Context, records []model.DebateRecord) ([]RowResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	pool := NewPool(b.workers, b.factory)
	if err := pool.Start(); err != nil {
		return nil, fmt.Errorf("start pool: %w", err)
	}

	go func() {
		seq := 0
		for start := 0; start < len(records); start += b.chunkSize {
			end := start + b.chunkSize
			if end > len(records) {
				end = len(records)
			}
			pool.Submit(Chunk{Seq: seq, Records: records[start:end]})
			seq++
		}
		pool.Drain()
	}()

	var chunks []ChunkResult
	for result := range pool.Results() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
			return nil, ctx.Err()
		default:
		}
		chunks = append(chunks, result)
	}

	// Workers finish out of order; restore input order by sequence.
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Seq < chunks[j].Seq })

	rows := make([]RowResult, 0, len(records))
	for _, c := range chunks {
		rows = append(rows, c.Rows...)
	}
	return rows, nil
}
