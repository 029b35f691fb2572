package model

// Office is a parliamentary office (e.g., Chancellor of the Exchequer) with
// the alias strings it may appear under in speaker labels.
type Office struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// OfficeHolding records who held an office during a validity interval.
type OfficeHolding struct {
	HoldingID int64    `json:"holding_id"`
	OfficeID  int64    `json:"office_id"`
	HolderID  int64    `json:"holder_id"` // speaker id of the holder
	Validity  Interval `json:"validity"`
	Office    *Office  `json:"-"`
}

// InferenceHint maps a deliberation id to the single speaker expected in it.
// Hints break ambiguity ties only; they are never a first-pass match.
type InferenceHint struct {
	DeliberationID string `json:"deliberation_id"`
	SpeakerID      int64  `json:"speaker_id"`
}
