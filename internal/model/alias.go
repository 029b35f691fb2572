package model

// MatchKind tags what a reference row's corresponding id points at.
type MatchKind int

const (
	// MatchUnresolved marks a row whose corresponding id was missing or
	// malformed in the source data. It must never be treated as a match.
	MatchUnresolved MatchKind = iota
	// MatchSpeaker points directly at a speaker id.
	MatchSpeaker
	// MatchOfficeHolder points at a speaker id via the office they held.
	MatchOfficeHolder
)

// MatchRef is the tagged link from a reference row to an identity.
type MatchRef struct {
	Kind MatchKind `json:"kind"`
	ID   int64     `json:"id"`
}

// SpeakerRef builds a resolved reference to a speaker id.
func SpeakerRef(id int64) MatchRef {
	return MatchRef{Kind: MatchSpeaker, ID: id}
}

// OfficeHolderRef builds a resolved reference to an office holder's speaker id.
func OfficeHolderRef(id int64) MatchRef {
	return MatchRef{Kind: MatchOfficeHolder, ID: id}
}

// UnresolvedRef builds the sentinel for rows without a usable id.
func UnresolvedRef() MatchRef {
	return MatchRef{Kind: MatchUnresolved}
}

// IsResolved reports whether the reference carries a real identity.
func (r MatchRef) IsResolved() bool {
	return r.Kind != MatchUnresolved
}

// AliasEntry is one row of a temporally bounded alias table. The same shape
// backs all four flavors: lord titles, honorary titles, generic name
// aliases, and the generic title table.
type AliasEntry struct {
	Alias         string   `json:"alias"`
	Validity      Interval `json:"validity"`
	Corresponding MatchRef `json:"corresponding"`
}
