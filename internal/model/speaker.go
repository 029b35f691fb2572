package model

import (
	"strings"
	"time"
)

// SpeakerRecord is the immutable identity of a single legislator. Records
// are created once during reference loading, owned by the reference index,
// and never mutated afterwards.
type SpeakerRecord struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Born      time.Time `json:"born"`
	Died      time.Time `json:"died"` // defaults to the run's "now" sentinel when unknown
	Service   Interval  `json:"service"`

	// Aliases holds every generated name permutation for this speaker,
	// computed once at load and shared read-only for the rest of the run.
	Aliases []string `json:"aliases"`
}

// NewSpeakerRecord builds a speaker and generates its alias permutations.
// A zero died date means the speaker is assumed still alive.
func NewSpeakerRecord(id int64, fullName, firstName, lastName string, born, died time.Time, service Interval) *SpeakerRecord {
	if died.IsZero() {
		died = OpenEnd()
	}
	s := &SpeakerRecord{
		ID:        id,
		FullName:  fullName,
		FirstName: firstName,
		LastName:  lastName,
		Born:      born,
		Died:      died,
		Service:   service,
	}
	s.Aliases = generateAliases(fullName, firstName, lastName)
	return s
}

// AliveAt reports whether the query date falls within the speaker's
// lifetime, using the half-open rule at the date of death.
func (s *SpeakerRecord) AliveAt(date time.Time) bool {
	return !date.Before(s.Born) && date.Before(s.Died)
}

// ServedAt reports whether the speaker held a seat at the query date.
func (s *SpeakerRecord) ServedAt(date time.Time) bool {
	return s.Service.Contains(date)
}

// AgeAt returns the speaker's age in whole years at the query date.
func (s *SpeakerRecord) AgeAt(date time.Time) int {
	years := date.Year() - s.Born.Year()
	anniversary := time.Date(date.Year(), s.Born.Month(), s.Born.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(anniversary) {
		years--
	}
	return years
}

// Matches reports whether the label could plausibly denote this speaker on
// the given date: the label must be one of the generated aliases and the
// date must fall inside the speaker's lifetime.
func (s *SpeakerRecord) Matches(label string, date time.Time) bool {
	if !s.AliveAt(date) {
		return false
	}
	for _, alias := range s.Aliases {
		if alias == label {
			return true
		}
	}
	return false
}

// generateAliases produces the name permutations under which a speaker may
// appear in the record: every combination of given names spelled out, as a
// bare initial, or omitted, always ending with the surname.
func generateAliases(fullName, firstName, lastName string) []string {
	last := strings.ToLower(strings.TrimSpace(lastName))
	if last == "" {
		return nil
	}

	given := strings.Fields(strings.ToLower(strings.TrimSpace(firstName)))
	// Middle names from the full name that are not already given names.
	for _, tok := range strings.Fields(strings.ToLower(strings.TrimSpace(fullName))) {
		if tok == last || containsString(given, tok) {
			continue
		}
		given = append(given, tok)
	}

	seen := map[string]struct{}{last: {}}
	out := []string{last}

	var build func(i int, parts []string)
	build = func(i int, parts []string) {
		if i == len(given) {
			if len(parts) == 0 {
				return
			}
			alias := strings.Join(append(parts, last), " ")
			if _, ok := seen[alias]; !ok {
				seen[alias] = struct{}{}
				out = append(out, alias)
			}
			return
		}
		name := given[i]
		withName := append(append([]string(nil), parts...), name)
		withInitial := append(append([]string(nil), parts...), name[:1])
		build(i+1, withName)    // spelled out
		build(i+1, withInitial) // initial
		build(i+1, parts)       // omitted
	}
	build(0, nil)

	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
