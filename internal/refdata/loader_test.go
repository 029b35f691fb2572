package refdata

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/histparl/rollcall/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "mps.csv",
		"member_id,name,first_name,surname,dob,dod\n"+
			"1,William Ewart Gladstone,William,Gladstone,1809-12-29,1898-05-19\n"+
			"2,Benjamin Disraeli,Benjamin,Disraeli,1804-12-21,1881-04-19\n"+
			"3,No Birthdate,No,Birthdate,,1900-01-01\n"+ // excluded: missing dob
			"4,Still Alive,Still,Alive,1850-01-01,\n"+ // dod defaults to now
			"5,Missing Surname,Missing,,1840-01-01,1910-01-01\n") // excluded
	writeFile(t, dir, "terms.csv",
		"member_id,start_term,end_term\n"+
			"1,1832-12-01,1845-01-01\n"+
			"1,1847-07-01,1895-01-01\n"+
			"2,1837-07-01,1876-08-01\n")
	writeFile(t, dir, "offices.csv",
		"office_id,name\n"+
			"10,Chancellor of the Exchequer\n"+
			"11,The Prime Minister\n")
	writeFile(t, dir, "officeholdings.csv",
		"holding_id,member_id,office_id,start_date,end_date\n"+
			"100,1,10,1852-12-28,1855-02-28\n"+
			"101,2,10,1852-02-27,1852-12-17\n"+
			"102,99,10,1850-01-01,1851-01-01\n"+ // unknown member, excluded
			"103,1,99,1850-01-01,1851-01-01\n"+ // unknown office, excluded
			"104,1,10,bogus,1851-01-01\n") // invalid date, excluded
	writeFile(t, dir, "lord_titles.csv",
		"alias,corresponding_id,start,end\n"+
			"viscount palmerston,2,1855-02-06,1865-10-18\n"+
			"earl of nowhere,N/A,1840-01-01,1860-01-01\n")
	writeFile(t, dir, "misspellings_dictionary.csv",
		"incorrect,correct\n"+
			"gladstonb,gladstone\n")
	writeFile(t, dir, "inference_hints.csv",
		"debate_id,speaker_id\n"+
			"deb-42,1\n")
	writeFile(t, dir, "ignore_labels.csv",
		"label\n"+
			"an hon member\n")
}

func TestLoad_Speakers(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	tables, err := Load(dir, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Rows 3 and 5 excluded at load time.
	if len(tables.Speakers) != 3 {
		t.Fatalf("expected 3 speakers, got %d", len(tables.Speakers))
	}
	if _, ok := tables.Speakers[3]; ok {
		t.Error("speaker without dob should be excluded")
	}
	if _, ok := tables.Speakers[5]; ok {
		t.Error("speaker without surname should be excluded")
	}

	// Missing date of death defaults to the run's now sentinel.
	alive := tables.Speakers[4]
	if !alive.Died.Equal(model.OpenEnd()) {
		t.Errorf("expected open-ended dod, got %v", alive.Died)
	}
}

func TestLoad_TermsSpanService(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	tables, err := Load(dir, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	g := tables.Speakers[1]
	if got := g.Service.Start.Format("2006-01-02"); got != "1832-12-01" {
		t.Errorf("service start = %s, want 1832-12-01", got)
	}
	if got := g.Service.End.Format("2006-01-02"); got != "1895-01-01" {
		t.Errorf("service end = %s, want 1895-01-01", got)
	}
	if len(tables.Terms[1]) != 2 {
		t.Errorf("expected 2 terms for speaker 1, got %d", len(tables.Terms[1]))
	}
}

func TestLoad_HoldingsExcludeBadRows(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	tables, err := Load(dir, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(tables.Holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(tables.Holdings))
	}
	for _, h := range tables.Holdings {
		if h.Office == nil {
			t.Error("holding not linked to its office")
		}
	}
}

func TestLoad_AliasSentinel(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	tables, err := Load(dir, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(tables.LordTitles) != 2 {
		t.Fatalf("expected 2 lord titles, got %d", len(tables.LordTitles))
	}
	for _, e := range tables.LordTitles {
		switch e.Alias {
		case "viscount palmerston":
			if !e.Corresponding.IsResolved() || e.Corresponding.ID != 2 {
				t.Errorf("palmerston row should resolve to speaker 2, got %+v", e.Corresponding)
			}
		case "earl of nowhere":
			if e.Corresponding.IsResolved() {
				t.Error("N/A corresponding id must load as the unresolved sentinel")
			}
		default:
			t.Errorf("unexpected alias %q", e.Alias)
		}
	}
}

func TestLoad_HeldOfficeOrSeatAt(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	tables, err := Load(dir, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	mid := time.Date(1853, 6, 1, 0, 0, 0, 0, time.UTC)
	if !tables.HeldOfficeOrSeatAt(1, mid) {
		t.Error("speaker 1 held the exchequer (and a seat) in 1853")
	}
	gap := time.Date(1846, 1, 1, 0, 0, 0, 0, time.UTC)
	if tables.HeldOfficeOrSeatAt(1, gap) {
		t.Error("speaker 1 held no seat or office during the 1845-1847 gap")
	}
}

func TestLoad_CorrectionsAndHints(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	tables, err := Load(dir, testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if tables.Corrections["gladstonb"] != "gladstone" {
		t.Errorf("corrections not loaded: %v", tables.Corrections)
	}
	if tables.Hints["deb-42"] != 1 {
		t.Errorf("hints not loaded: %v", tables.Hints)
	}
	if _, ok := tables.IgnoreLabels["an hon member"]; !ok {
		t.Errorf("ignore labels not loaded: %v", tables.IgnoreLabels)
	}
}

func TestParseDate_Layouts(t *testing.T) {
	iso, err := ParseDate("1852-12-28")
	if err != nil {
		t.Fatalf("ISO layout: %v", err)
	}
	slash, err := ParseDate("28/12/1852")
	if err != nil {
		t.Fatalf("slash layout: %v", err)
	}
	if !iso.Equal(slash) {
		t.Errorf("layouts disagree: %v vs %v", iso, slash)
	}
	if _, err := ParseDate("N/A"); err == nil {
		t.Error("N/A must not parse as a date")
	}
}
