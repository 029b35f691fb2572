package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/histparl/rollcall/internal/cache"
	"github.com/histparl/rollcall/internal/engine"
	"github.com/histparl/rollcall/internal/index"
	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/normalize"
	"github.com/histparl/rollcall/internal/refdata"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testFactory() EngineFactory {
	tables := refdata.NewTables()
	gladstone := model.NewSpeakerRecord(1, "William Ewart Gladstone", "William", "Gladstone",
		date(1809, 12, 29), date(1898, 5, 19),
		model.NewInterval(date(1832, 12, 1), date(1895, 1, 1)))
	tables.Speakers[1] = gladstone
	tables.SpeakerList = []*model.SpeakerRecord{gladstone}
	tables.Terms[1] = []model.Interval{gladstone.Service}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return func(workerID int) (*engine.Engine, error) {
		idx := index.Build(tables)
		norm := normalize.New(tables.Corrections, idx.HasAlias)
		return engine.New(idx, norm, cache.New(), model.DefaultConfig().Engine, nil, logger), nil
	}
}

func testRecords(n int) []model.DebateRecord {
	labels := []string{"Gladstone", "Mrs Jones", "Mr Nobody"}
	records := make([]model.DebateRecord, n)
	for i := range records {
		records[i] = model.DebateRecord{
			RowID:    int64(i),
			Date:     date(1860, 5, 1),
			RawLabel: labels[i%len(labels)],
		}
	}
	return records
}

func TestBatchProcessor_PreservesInputOrder(t *testing.T) {
	records := testRecords(100)
	// Chunk size deliberately misaligned with the worker count.
	b := NewBatchProcessor(testFactory(), 4, 7)

	rows, err := b.Process(context.Background(), records)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(rows) != len(records) {
		t.Fatalf("got %d rows, want %d", len(rows), len(records))
	}

	for i, row := range rows {
		if row.Record.RowID != int64(i) {
			t.Fatalf("row %d has RowID %d; input order not preserved", i, row.Record.RowID)
		}
		var want model.Outcome
		switch row.Record.RawLabel {
		case "Gladstone":
			want = model.OutcomeMatched
		case "Mrs Jones":
			want = model.OutcomeIgnored
		default:
			want = model.OutcomeMiss
		}
		if row.Resolution.Outcome != want {
			t.Errorf("row %d (%q): outcome %v, want %v",
				i, row.Record.RawLabel, row.Resolution.Outcome, want)
		}
	}
}

func TestPool_CountsPerChunk(t *testing.T) {
	pool := NewPool(2, testFactory())
	if err := pool.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pool.Submit(Chunk{Seq: 0, Records: testRecords(6)})
	pool.Drain()

	var matched, missed, ignored int
	for result := range pool.Results() {
		matched += result.Matched
		missed += result.Missed
		ignored += result.Ignored
	}
	if matched != 2 || missed != 2 || ignored != 2 {
		t.Errorf("counts matched=%d missed=%d ignored=%d, want 2 each", matched, missed, ignored)
	}
}

func TestPool_DrainWithoutWorkClosesResults(t *testing.T) {
	pool := NewPool(3, testFactory())
	if err := pool.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	pool.Drain()

	done := make(chan struct{})
	go func() {
		for range pool.Results() {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Results did not close after Drain")
	}
}

func TestPool_FactoryFailureFailsStart(t *testing.T) {
	boom := errors.New("no reference data")
	pool := NewPool(2, func(int) (*engine.Engine, error) { return nil, boom })
	if err := pool.Start(); !errors.Is(err, boom) {
		t.Fatalf("Start error = %v, want wrapped factory error", err)
	}
}

func TestPool_WorkersGetPrivateEngines(t *testing.T) {
	pool := NewPool(3, testFactory())
	if err := pool.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Shutdown()

	engines := pool.Engines()
	if len(engines) != 3 {
		t.Fatalf("got %d engines, want 3", len(engines))
	}
	seen := make(map[*engine.Engine]bool)
	for _, e := range engines {
		if e == nil || seen[e] {
			t.Fatal("workers must not share an engine instance")
		}
		seen[e] = true
	}
}
