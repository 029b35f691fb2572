// Package refdata loads the temporally bounded reference datasets into
// immutable in-memory tables. Malformed rows are excluded here, at load
// time, with counts logged; the engine never sees them.
package refdata

import (
	"time"

	"github.com/histparl/rollcall/internal/model"
)

// Tables holds every loaded reference dataset. Built once per run and
// never mutated afterwards; workers share it read-only.
type Tables struct {
	Speakers    map[int64]*model.SpeakerRecord
	SpeakerList []*model.SpeakerRecord

	Offices  map[int64]*model.Office
	Holdings []*model.OfficeHolding

	// Per-speaker parliamentary seat terms, for the ambiguity narrowing
	// filter. A speaker's Service interval spans their terms.
	Terms map[int64][]model.Interval

	// The four alias table flavors.
	LordTitles     []model.AliasEntry
	HonoraryTitles []model.AliasEntry
	NameAliases    []model.AliasEntry
	GenericTitles  []model.AliasEntry

	// Corrections maps literal misspellings (including OCR title errors)
	// to replacements; consumed only by the normalizer.
	Corrections map[string]string

	// Hints maps a deliberation id to its expected speaker id.
	Hints map[string]int64

	// IgnoreLabels are literal labels known to denote non-persons.
	IgnoreLabels map[string]struct{}

	// DefinedAliases are alias strings declared in the name-alias table,
	// merged with generated speaker permutations by the index.
	DefinedAliases map[string][]int64
}

// NewTables returns an empty, fully initialized table set.
func NewTables() *Tables {
	return &Tables{
		Speakers:       make(map[int64]*model.SpeakerRecord),
		Offices:        make(map[int64]*model.Office),
		Terms:          make(map[int64][]model.Interval),
		Corrections:    make(map[string]string),
		Hints:          make(map[string]int64),
		IgnoreLabels:   make(map[string]struct{}),
		DefinedAliases: make(map[string][]int64),
	}
}

// HeldOfficeOrSeatAt reports whether the speaker held any recognized office
// or parliamentary seat at the query date.
func (t *Tables) HeldOfficeOrSeatAt(speakerID int64, date time.Time) bool {
	for _, term := range t.Terms[speakerID] {
		if term.Contains(date) {
			return true
		}
	}
	for _, h := range t.Holdings {
		if h.HolderID == speakerID && h.Validity.Contains(date) {
			return true
		}
	}
	return false
}
