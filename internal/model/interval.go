package model

import "time"

// Interval is a half-open validity range [Start, End). A reference entry is
// authoritative for a date d exactly when Start <= d < End.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval creates a validity interval. An end date of zero means the
// entry is still current; it is replaced with the "now" sentinel so that the
// half-open containment rule applies uniformly.
func NewInterval(start, end time.Time) Interval {
	if end.IsZero() {
		end = OpenEnd()
	}
	return Interval{Start: start, End: end}
}

// Contains reports whether date falls inside the half-open interval.
// The start date is included, the end date is excluded.
func (iv Interval) Contains(date time.Time) bool {
	return !date.Before(iv.Start) && date.Before(iv.End)
}

// IsZero reports whether the interval is unset.
func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// openEndSentinel is stamped once per run. Reference rows without an end
// date are treated as valid up to the moment the process started.
var openEndSentinel = time.Now().UTC()

// OpenEnd returns the "still current" end-date sentinel for this run.
func OpenEnd() time.Time {
	return openEndSentinel
}
