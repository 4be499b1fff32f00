package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day abstraction (all leave is whole days)
// =============================================================================

// TimePoint is a calendar day. The zero value means "no date".
type TimePoint struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day in t's own location.
func FromTime(t time.Time) TimePoint {
	if t.IsZero() {
		return TimePoint{}
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero TimePoint.
// 0001-01-01 is rejected because it is indistinguishable from "no date".
func ParseDate(s string) (TimePoint, error) {
	if s == "" {
		return TimePoint{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	if t.IsZero() {
		return TimePoint{}, fmt.Errorf("date %s is out of range", s)
	}
	return FromTime(t), nil
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format(DateLayout)
}

// MarshalText renders the day as YYYY-MM-DD, or "" when absent.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the number of whole days from `from` to `to`.
// Negative when to precedes from.
func DaysBetween(from, to TimePoint) int {
	return int(dayNumber(to) - dayNumber(from))
}

// dayNumber counts days since the Unix epoch. Spans beyond the range of
// time.Duration stay exact.
func dayNumber(tp TimePoint) int64 {
	return tp.normalize().Unix() / 86400
}

// MonthsBetween counts calendar-month boundaries between two days,
// ignoring the day of month.
func MonthsBetween(from, to TimePoint) int {
	return (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
}
