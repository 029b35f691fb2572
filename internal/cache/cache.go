// Package cache memoizes prior (label, date) resolutions. Corpora repeat
// the same misattribution across a debate, so caching turns an
// O(rows x cascade-cost) workload into O(distinct pairs x cascade-cost).
//
// Each engine instance owns its own ResolutionCache; nothing is shared
// across workers.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/histparl/rollcall/internal/model"
)

const keyDateLayout = "2006-01-02"

// Key builds the memoization key for a (label, date) pair.
func Key(label string, date time.Time) string {
	return label + "|" + date.Format(keyDateLayout)
}

// ResolutionCache holds the four mutually exclusive memoization tables plus
// the fuzzy-flag table. For any (label, date) pair at most one of
// {match, miss, ambiguity, ignore} is ever populated.
type ResolutionCache struct {
	match     *gocache.Cache // (label, date) -> model.Resolution
	miss      *gocache.Cache // (label, date) -> struct{}
	ambiguity *gocache.Cache // (label, date) -> []int64
	ignore    *gocache.Cache // label -> struct{} (date-independent)
	fuzzyFlag *gocache.Cache // (label, date) -> struct{}
}

// New creates an empty resolution cache. Entries never expire; the cache
// lives exactly as long as its engine.
func New() *ResolutionCache {
	return &ResolutionCache{
		match:     gocache.New(gocache.NoExpiration, 0),
		miss:      gocache.New(gocache.NoExpiration, 0),
		ambiguity: gocache.New(gocache.NoExpiration, 0),
		ignore:    gocache.New(gocache.NoExpiration, 0),
		fuzzyFlag: gocache.New(gocache.NoExpiration, 0),
	}
}

// Match returns a cached matched resolution.
func (c *ResolutionCache) Match(label string, date time.Time) (model.Resolution, bool) {
	if v, ok := c.match.Get(Key(label, date)); ok {
		return v.(model.Resolution), true
	}
	return model.Resolution{}, false
}

// PutMatch records a matched resolution.
func (c *ResolutionCache) PutMatch(label string, date time.Time, res model.Resolution) {
	c.match.Set(Key(label, date), res, gocache.NoExpiration)
}

// IsMiss reports whether the pair is a known miss.
func (c *ResolutionCache) IsMiss(label string, date time.Time) bool {
	_, ok := c.miss.Get(Key(label, date))
	return ok
}

// PutMiss records a known miss.
func (c *ResolutionCache) PutMiss(label string, date time.Time) {
	c.miss.Set(Key(label, date), struct{}{}, gocache.NoExpiration)
}

// Ambiguity returns a cached candidate set.
func (c *ResolutionCache) Ambiguity(label string, date time.Time) ([]int64, bool) {
	if v, ok := c.ambiguity.Get(Key(label, date)); ok {
		return v.([]int64), true
	}
	return nil, false
}

// PutAmbiguity records an ambiguous candidate set.
func (c *ResolutionCache) PutAmbiguity(label string, date time.Time, candidates []int64) {
	c.ambiguity.Set(Key(label, date), candidates, gocache.NoExpiration)
}

// IsIgnored reports whether the label is known to denote a non-person.
// Ignore entries are date-independent.
func (c *ResolutionCache) IsIgnored(label string) bool {
	_, ok := c.ignore.Get(label)
	return ok
}

// PutIgnore records an ignored label.
func (c *ResolutionCache) PutIgnore(label string) {
	c.ignore.Set(label, struct{}{}, gocache.NoExpiration)
}

// FuzzyFlag reports whether a prior resolution of the pair relied on
// edit-distance matching.
func (c *ResolutionCache) FuzzyFlag(label string, date time.Time) bool {
	_, ok := c.fuzzyFlag.Get(Key(label, date))
	return ok
}

// PutFuzzyFlag records that the pair's resolution used fuzzy matching.
func (c *ResolutionCache) PutFuzzyFlag(label string, date time.Time) {
	c.fuzzyFlag.Set(Key(label, date), struct{}{}, gocache.NoExpiration)
}

// Counts returns the number of entries per table, for run summaries.
func (c *ResolutionCache) Counts() (match, miss, ambiguity, ignore int) {
	return c.match.ItemCount(), c.miss.ItemCount(), c.ambiguity.ItemCount(), c.ignore.ItemCount()
}
