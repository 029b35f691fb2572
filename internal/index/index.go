// Package index exposes interval-bounded lookups over the reference tables
// plus the precomputed alias permutation index. Every query is restricted
// to rows whose validity interval contains the query date; omitting that
// filter is a correctness bug, not an optimization.
package index

import (
	"strings"
	"time"

	"github.com/histparl/rollcall/internal/distance"
	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/refdata"
)

// Index is a per-worker view over the shared reference tables. It is built
// once per engine instance and never mutated afterwards.
type Index struct {
	tables *refdata.Tables

	// permutations maps every generated alias variant of every speaker
	// (plus defined aliases from the name-alias table) to the speakers
	// producing it.
	permutations map[string][]*model.SpeakerRecord
}

// Build constructs an index over the tables, including the alias
// permutation index.
func Build(tables *refdata.Tables) *Index {
	idx := &Index{
		tables:       tables,
		permutations: make(map[string][]*model.SpeakerRecord),
	}

	for _, s := range tables.SpeakerList {
		for _, alias := range s.Aliases {
			idx.permutations[alias] = appendSpeaker(idx.permutations[alias], s)
		}
	}
	for alias, ids := range tables.DefinedAliases {
		for _, id := range ids {
			if s, ok := tables.Speakers[id]; ok {
				idx.permutations[alias] = appendSpeaker(idx.permutations[alias], s)
			}
		}
	}

	return idx
}

// Tables returns the underlying reference tables.
func (idx *Index) Tables() *refdata.Tables { return idx.tables }

// HasAlias reports whether label is an exact key of the permutation index
// or of any alias table, ignoring validity. Used by the normalizer's
// parenthetical rescue.
func (idx *Index) HasAlias(label string) bool {
	if _, ok := idx.permutations[label]; ok {
		return true
	}
	for _, table := range [][]model.AliasEntry{
		idx.tables.LordTitles,
		idx.tables.HonoraryTitles,
		idx.tables.NameAliases,
		idx.tables.GenericTitles,
	} {
		for _, e := range table {
			if e.Alias == label {
				return true
			}
		}
	}
	return false
}

// SpeakersForAlias returns the speakers whose generated or defined aliases
// include the label verbatim.
func (idx *Index) SpeakersForAlias(label string) []*model.SpeakerRecord {
	return idx.permutations[label]
}

// Permutations iterates the full alias permutation index.
func (idx *Index) Permutations(fn func(alias string, speakers []*model.SpeakerRecord)) {
	for alias, speakers := range idx.permutations {
		fn(alias, speakers)
	}
}

// QueryInterval returns the entries of a table valid at the query date.
func QueryInterval(entries []model.AliasEntry, date time.Time) []model.AliasEntry {
	var out []model.AliasEntry
	for _, e := range entries {
		if e.Validity.Contains(date) {
			out = append(out, e)
		}
	}
	return out
}

// ContainsAlias returns the interval-filtered entries whose alias contains
// the label as a substring.
func ContainsAlias(entries []model.AliasEntry, label string, date time.Time) []model.AliasEntry {
	var out []model.AliasEntry
	for _, e := range entries {
		if e.Validity.Contains(date) && strings.Contains(e.Alias, label) {
			out = append(out, e)
		}
	}
	return out
}

// EditDistanceCandidates returns the distinct resolved references of
// interval-filtered entries whose alias is within maxDist edits of the
// label. Unresolved sentinels never count as candidates.
func EditDistanceCandidates(entries []model.AliasEntry, label string, date time.Time, maxDist int) []model.MatchRef {
	var refs []model.MatchRef
	for _, e := range entries {
		if !e.Validity.Contains(date) || !e.Corresponding.IsResolved() {
			continue
		}
		if distance.Within(e.Alias, label, maxDist) {
			refs = appendRef(refs, e.Corresponding)
		}
	}
	return refs
}

// DistinctRefs deduplicates the resolved references of a result set,
// dropping unresolved sentinels.
func DistinctRefs(entries []model.AliasEntry) []model.MatchRef {
	var refs []model.MatchRef
	for _, e := range entries {
		if e.Corresponding.IsResolved() {
			refs = appendRef(refs, e.Corresponding)
		}
	}
	return refs
}

// HoldingsForLabel returns the office holdings valid at the query date
// whose office alias appears in the label.
func (idx *Index) HoldingsForLabel(label string, date time.Time) []*model.OfficeHolding {
	var out []*model.OfficeHolding
	for _, h := range idx.tables.Holdings {
		if !h.Validity.Contains(date) {
			continue
		}
		for _, alias := range h.Office.Aliases {
			if strings.Contains(label, alias) {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// FuzzyHoldingsForLabel returns the distinct holder references of holdings
// valid at the query date whose office alias is within maxDist edits of
// the label.
func (idx *Index) FuzzyHoldingsForLabel(label string, date time.Time, maxDist int) []model.MatchRef {
	var refs []model.MatchRef
	for _, h := range idx.tables.Holdings {
		if !h.Validity.Contains(date) {
			continue
		}
		for _, alias := range h.Office.Aliases {
			if distance.Within(label, alias, maxDist) {
				refs = appendRef(refs, model.OfficeHolderRef(h.HolderID))
				break
			}
		}
	}
	return refs
}

// appendRef appends a reference if an equal one is not already present.
// Two references to the same id count as one candidate even when one came
// from a title table and the other from an office holding.
func appendRef(refs []model.MatchRef, ref model.MatchRef) []model.MatchRef {
	for _, r := range refs {
		if r.ID == ref.ID {
			return refs
		}
	}
	return append(refs, ref)
}

func appendSpeaker(speakers []*model.SpeakerRecord, s *model.SpeakerRecord) []*model.SpeakerRecord {
	for _, have := range speakers {
		if have.ID == s.ID {
			return speakers
		}
	}
	return append(speakers, s)
}
