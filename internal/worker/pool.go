// Package worker distributes chunks of input rows over a fixed pool of
// workers. Every worker owns its own engine, index view, and caches;
// nothing mutable crosses a worker boundary, so the hot path needs no
// locks.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/histparl/rollcall/internal/engine"
	"github.com/histparl/rollcall/internal/model"
)

// Chunk is a contiguous run of input rows handed to one worker as a unit.
type Chunk struct {
	Seq     int
	Records []model.DebateRecord
}

// RowResult pairs an input row with its normalized label and
// classification.
type RowResult struct {
	Record     model.DebateRecord
	Label      string
	Resolution model.Resolution
}

// ChunkResult carries one processed chunk back to the collector.
type ChunkResult struct {
	Seq      int
	WorkerID int
	Rows     []RowResult

	Matched   int
	Missed    int
	Ambiguous int
	Ignored   int
}

// EngineFactory builds the private engine for one worker.
type EngineFactory func(workerID int) (*engine.Engine, error)

// Pool manages a fixed set of workers that resolve chunks concurrently.
type Pool struct {
	workers    int
	factory    EngineFactory
	engines    []*engine.Engine
	chunks     chan Chunk
	results    chan ChunkResult
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool with the specified number of workers.
func NewPool(workers int, factory EngineFactory) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:    workers,
		factory:    factory,
		chunks:     make(chan Chunk, workers*2), // buffered to keep workers fed
		results:    make(chan ChunkResult, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start builds every worker's engine, then launches the workers. Engine
// construction happens up front so a bad configuration fails before any
// input is consumed.
func (p *Pool) Start() error {
	p.engines = make([]*engine.Engine, p.workers)
	for i := 0; i < p.workers; i++ {
		eng, err := p.factory(i)
		if err != nil {
			p.cancelFunc()
			return fmt.Errorf("build engine for worker %d: %w", i, err)
		}
		p.engines[i] = eng
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i, p.engines[i])
	}
	return nil
}

// worker drains the chunk queue until it closes or the pool is cancelled.
// A closed queue is the termination signal; every worker sees it.
func (p *Pool) worker(id int, eng *engine.Engine) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case chunk, ok := <-p.chunks:
			if !ok {
				return
			}
			result := p.process(id, eng, chunk)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// process resolves every row of a chunk on the worker's private engine.
func (p *Pool) process(id int, eng *engine.Engine, chunk Chunk) ChunkResult {
	result := ChunkResult{
		Seq:      chunk.Seq,
		WorkerID: id,
		Rows:     make([]RowResult, 0, len(chunk.Records)),
	}

	for _, rec := range chunk.Records {
		label := eng.Normalize(rec.RawLabel)
		res := eng.ResolveLabel(p.ctx, label, rec)

		switch res.Outcome {
		case model.OutcomeMatched:
			result.Matched++
		case model.OutcomeAmbiguous:
			result.Ambiguous++
		case model.OutcomeIgnored:
			result.Ignored++
		default:
			result.Missed++
		}

		result.Rows = append(result.Rows, RowResult{
			Record:     rec,
			Label:      label,
			Resolution: res,
		})
	}

	return result
}

// Submit queues a chunk for processing.
func (p *Pool) Submit(chunk Chunk) {
	select {
	case <-p.ctx.Done():
	case p.chunks <- chunk:
	}
}

// Results returns the channel chunk results arrive on. It closes after
// Drain once every worker has exited.
func (p *Pool) Results() <-chan ChunkResult {
	return p.results
}

// Drain closes the chunk queue and, once the workers finish, the results
// channel. Call after the last Submit; the collector keeps ranging over
// Results until it closes.
func (p *Pool) Drain() {
	close(p.chunks)
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

// Shutdown stops the pool immediately, abandoning queued chunks.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

// Engines returns the per-worker engines, for cache snapshotting after a
// run. Only valid once the pool has drained.
func (p *Pool) Engines() []*engine.Engine {
	return p.engines
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
