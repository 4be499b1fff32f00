package generic

// =============================================================================
// PERIOD - Inclusive calendar-day interval
// =============================================================================

// Period is the closed interval [Start, End]. Both endpoints count as days
// of the period, so a single-day leave has Start == End.
//
// Examples:
//   - One day off:        [2024-03-10, 2024-03-10] -> 1 day
//   - Ten days vacation:  [2024-01-01, 2024-01-10] -> 10 days
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Complete reports whether both endpoints are present.
func (p Period) Complete() bool {
	return !p.Start.IsZero() && !p.End.IsZero()
}

// Valid reports whether the period is complete and End does not precede Start.
func (p Period) Valid() bool {
	return p.Complete() && !p.End.Before(p.Start)
}

// Days returns the inclusive day count, or 0 when either endpoint is absent.
// An inverted period yields a non-positive count; callers that need a
// guarantee check Valid first.
func (p Period) Days() int {
	if !p.Complete() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Overlaps reports whether two inclusive periods share at least one day:
// NOT (e1 < s2 OR s1 > e2). Adjacent periods do not overlap.
func (p Period) Overlaps(other Period) bool {
	return !(p.End.Before(other.Start) || p.Start.After(other.End))
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
