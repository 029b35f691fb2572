package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/histparl/rollcall/internal/model"
)

var testDate = time.Date(1884, 5, 1, 0, 0, 0, 0, time.UTC)

func TestResolutionCache_MatchRoundTrip(t *testing.T) {
	c := New()

	if _, ok := c.Match("mr gladstone", testDate); ok {
		t.Fatal("empty cache reported a match")
	}

	c.PutMatch("mr gladstone", testDate, model.Matched(1, false))
	res, ok := c.Match("mr gladstone", testDate)
	if !ok || res.SpeakerID != 1 {
		t.Fatalf("Match = %+v, %v; want speaker 1", res, ok)
	}

	// A different date is a different pair.
	if _, ok := c.Match("mr gladstone", testDate.AddDate(1, 0, 0)); ok {
		t.Error("match leaked across dates")
	}
}

func TestResolutionCache_IgnoreIsDateIndependent(t *testing.T) {
	c := New()
	c.PutIgnore("mrs jones")
	if !c.IsIgnored("mrs jones") {
		t.Error("ignored label not found")
	}
	// No date in the key: ignored at every date by construction.
	if c.IsIgnored("mr jones") {
		t.Error("unrelated label reported ignored")
	}
}

func TestResolutionCache_TablesStayDisjoint(t *testing.T) {
	c := New()

	c.PutMatch("mr gladstone", testDate, model.Matched(1, false))
	c.PutMiss("mr smith", testDate)
	c.PutAmbiguity("mr davis", testDate, []int64{4, 5})
	c.PutIgnore("mrs jones")

	type probe struct {
		label string
		want  string
	}
	for _, p := range []probe{
		{"mr gladstone", "match"},
		{"mr smith", "miss"},
		{"mr davis", "ambiguity"},
		{"mrs jones", "ignore"},
	} {
		hits := 0
		if _, ok := c.Match(p.label, testDate); ok {
			hits++
		}
		if c.IsMiss(p.label, testDate) {
			hits++
		}
		if _, ok := c.Ambiguity(p.label, testDate); ok {
			hits++
		}
		if c.IsIgnored(p.label) {
			hits++
		}
		if hits != 1 {
			t.Errorf("label %q present in %d tables, want exactly 1 (%s)", p.label, hits, p.want)
		}
	}
}

func TestResolutionCache_FuzzyFlag(t *testing.T) {
	c := New()
	if c.FuzzyFlag("mr gladstone", testDate) {
		t.Error("fuzzy flag set on empty cache")
	}
	c.PutFuzzyFlag("mr gladstone", testDate)
	if !c.FuzzyFlag("mr gladstone", testDate) {
		t.Error("fuzzy flag not preserved")
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "resolutions.json")

	c := New()
	c.PutMatch("mr gladstone", testDate, model.Matched(1, true))
	c.PutMiss("mr smith", testDate)
	c.PutAmbiguity("mr davis", testDate, []int64{4, 5})
	c.PutIgnore("mrs jones")
	c.PutFuzzyFlag("mr gladstone", testDate)

	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	warm := New()
	if err := warm.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	res, ok := warm.Match("mr gladstone", testDate)
	if !ok || res.SpeakerID != 1 || !res.Fuzzy {
		t.Errorf("restored match = %+v, %v", res, ok)
	}
	if !warm.IsMiss("mr smith", testDate) {
		t.Error("miss not restored")
	}
	candidates, ok := warm.Ambiguity("mr davis", testDate)
	if !ok || len(candidates) != 2 {
		t.Errorf("ambiguity not restored: %v, %v", candidates, ok)
	}
	if !warm.IsIgnored("mrs jones") {
		t.Error("ignore not restored")
	}
	if !warm.FuzzyFlag("mr gladstone", testDate) {
		t.Error("fuzzy flag not restored")
	}
}

func TestSnapshot_MissingFileStartsCold(t *testing.T) {
	c := New()
	if err := c.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("Load of missing snapshot should not error: %v", err)
	}
	match, miss, ambiguity, ignore := c.Counts()
	if match+miss+ambiguity+ignore != 0 {
		t.Error("cache not cold after loading missing snapshot")
	}
}
