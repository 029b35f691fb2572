package model

import "time"

// DebateRecord is one input row: a speaker attribution as captured from the
// digitized record, plus the context needed to resolve it.
type DebateRecord struct {
	RowID          int64     `json:"row_id"`
	Date           time.Time `json:"date"`
	RawLabel       string    `json:"raw_label"`
	House          string    `json:"house,omitempty"`
	DeliberationID string    `json:"deliberation_id,omitempty"`
}

// Outcome is the terminal classification of a (label, date) resolution.
type Outcome int

const (
	// OutcomeMiss means no identity could be resolved and no candidate set
	// survived. The worst case for any row is a miss, never an error.
	OutcomeMiss Outcome = iota
	// OutcomeMatched means the label resolved to exactly one speaker.
	OutcomeMatched
	// OutcomeAmbiguous means multiple candidates survived every filter.
	OutcomeAmbiguous
	// OutcomeIgnored means the label denotes a non-person.
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "miss"
	}
}

// Resolution is the classified outcome for one (label, date) pair.
type Resolution struct {
	Outcome    Outcome `json:"outcome"`
	SpeakerID  int64   `json:"speaker_id,omitempty"` // valid when Outcome == OutcomeMatched
	Candidates []int64 `json:"candidates,omitempty"` // valid when Outcome == OutcomeAmbiguous
	Fuzzy      bool    `json:"fuzzy"`                // resolution relied on edit-distance matching
}

// Matched builds a matched resolution.
func Matched(speakerID int64, fuzzy bool) Resolution {
	return Resolution{Outcome: OutcomeMatched, SpeakerID: speakerID, Fuzzy: fuzzy}
}

// Ambiguous builds an ambiguous resolution over the surviving candidates.
func Ambiguous(candidates []int64, fuzzy bool) Resolution {
	return Resolution{Outcome: OutcomeAmbiguous, Candidates: candidates, Fuzzy: fuzzy}
}

// Ignored builds an ignored resolution.
func Ignored() Resolution {
	return Resolution{Outcome: OutcomeIgnored}
}

// Miss builds a miss resolution.
func Miss(fuzzy bool) Resolution {
	return Resolution{Outcome: OutcomeMiss, Fuzzy: fuzzy}
}
