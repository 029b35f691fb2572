package pipeline

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/histparl/rollcall/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// writeRefData lays out a minimal reference directory: Gladstone and
// Disraeli, the exchequer office, and their holdings.
func writeRefData(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "mps.csv"),
		"member_id,name,first_name,surname,dob,dod\n"+
			"1,William Ewart Gladstone,William,Gladstone,1809-12-29,1898-05-19\n"+
			"2,Benjamin Disraeli,Benjamin,Disraeli,1804-12-21,1881-04-19\n")
	writeFile(t, filepath.Join(dir, "terms.csv"),
		"member_id,start_term,end_term\n"+
			"1,1832-12-01,1895-01-01\n"+
			"2,1837-07-01,1876-08-01\n")
	writeFile(t, filepath.Join(dir, "offices.csv"),
		"office_id,name\n"+
			"10,Chancellor of the Exchequer\n")
	writeFile(t, filepath.Join(dir, "officeholdings.csv"),
		"holding_id,member_id,office_id,start_date,end_date\n"+
			"100,1,10,1852-12-28,1855-02-28\n"+
			"101,2,10,1852-02-27,1852-12-17\n")
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	dataDir := t.TempDir()
	writeRefData(t, dataDir)

	cfg := model.DefaultConfig()
	cfg.Data.Dir = dataDir
	cfg.Output.Dir = t.TempDir()
	cfg.Concurrency.Workers = 2
	cfg.Concurrency.ChunkSize = 2
	return cfg
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestRunner_EndToEnd(t *testing.T) {
	cfg := testConfig(t)

	debates := filepath.Join(t.TempDir(), "debates.csv")
	writeFile(t, debates,
		"row_id,date,speaker,house,debate_id\n"+
			"1,1853-06-01,Chan. of the Exchequer,commons,d1\n"+
			"2,1853-06-01,Mrs Jones,commons,d1\n"+
			"3,1853-06-01,Mr Nobody,commons,d1\n"+
			"4,1852-06-01,chancellor of the exchequer,commons,d2\n"+
			"5,not-a-date,Gladstone,commons,d2\n"+
			"6,1853-06-01,Gladstone,commons,d2\n")

	summary, err := NewRunner(cfg, discard()).Run(context.Background(), debates)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Rows != 5 || summary.SkippedInput != 1 {
		t.Errorf("rows=%d skipped=%d, want 5 rows and 1 skipped", summary.Rows, summary.SkippedInput)
	}
	if summary.Matched != 3 || summary.Missed != 1 || summary.Ignored != 1 {
		t.Errorf("matched=%d missed=%d ignored=%d, want 3/1/1",
			summary.Matched, summary.Missed, summary.Ignored)
	}

	resolved := readCSVFile(t, filepath.Join(cfg.Output.Dir, "resolved.csv"))
	if len(resolved) != 4 { // header + three matches
		t.Fatalf("resolved.csv has %d rows, want 4", len(resolved))
	}
	// Row 1: the 1853 exchequer is Gladstone.
	if resolved[1][0] != "1" || resolved[1][3] != "1" {
		t.Errorf("resolved row = %v, want row 1 matched to speaker 1", resolved[1])
	}
	// Row 4: the mid-1852 exchequer is Disraeli.
	if resolved[2][0] != "4" || resolved[2][3] != "2" {
		t.Errorf("resolved row = %v, want row 4 matched to speaker 2", resolved[2])
	}

	missed := readCSVFile(t, filepath.Join(cfg.Output.Dir, "missed.csv"))
	if len(missed) != 2 || missed[1][2] != "mr nobody" {
		t.Errorf("missed.csv = %v, want one normalized miss row", missed)
	}
}

func TestRunner_SnapshotWarmStart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.SnapshotDir = t.TempDir()
	cfg.Concurrency.Workers = 1

	debates := filepath.Join(t.TempDir(), "debates.csv")
	writeFile(t, debates,
		"row_id,date,speaker\n"+
			"1,1853-06-01,Gladstone\n")

	if _, err := NewRunner(cfg, discard()).Run(context.Background(), debates); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Cache.SnapshotDir, "worker-0.json")); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	// Second run loads the snapshot and must classify identically.
	cfg.Output.Dir = t.TempDir()
	summary, err := NewRunner(cfg, discard()).Run(context.Background(), debates)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Matched != 1 {
		t.Errorf("warm run matched=%d, want 1", summary.Matched)
	}
}

func TestRunner_Check(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, discard())

	res, err := r.Check(context.Background(), "Chan. of the Exchequer", time.Date(1853, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Label != "chancellor of the exchequer" {
		t.Errorf("normalized label = %q", res.Label)
	}
	if res.Resolution.Outcome != model.OutcomeMatched || res.Speaker == nil || res.Speaker.ID != 1 {
		t.Errorf("check result = %+v, want match to Gladstone", res)
	}

	// A near-miss surfaces the closest alias as a diagnostic.
	res, err = r.Check(context.Background(), "Gladstoneish", time.Date(1853, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Resolution.Outcome != model.OutcomeMiss {
		t.Fatalf("outcome = %v, want miss", res.Resolution.Outcome)
	}
	if !strings.Contains(res.BestGuess, "gladstone") || res.BestScore <= 0.8 {
		t.Errorf("best guess = %q (%.2f), want a gladstone alias", res.BestGuess, res.BestScore)
	}
}

func TestOpenDebates_RejectsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debates.csv")
	writeFile(t, path, "row_id,when,who\n1,1853-06-01,Gladstone\n")
	if _, err := OpenDebates(path); err == nil {
		t.Fatal("header without date/speaker columns should be rejected")
	}
}
