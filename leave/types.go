// Package leave implements the leave eligibility and entitlement engine:
// the leave record model, vacation accrual, and validation of new requests
// against balance and overlapping history.
package leave

import (
	"fmt"
	"time"

	"github.com/warp/hr-control/generic"
)

// =============================================================================
// LEAVE KIND - Closed enumeration
// =============================================================================

// Kind is the category of an absence record.
type Kind uint8

const (
	KindMedicalCertificate Kind = iota + 1
	KindVacation
	KindMaternity
	KindUnexcusedAbsence
	KindPaternity
	KindBereavement
	KindOther
)

var kindSlugs = map[Kind]string{
	KindMedicalCertificate: "medical_certificate",
	KindVacation:           "vacation",
	KindMaternity:          "maternity",
	KindUnexcusedAbsence:   "unexcused_absence",
	KindPaternity:          "paternity",
	KindBereavement:        "bereavement",
	KindOther:              "other",
}

var kindLabels = map[Kind]string{
	KindMedicalCertificate: "medical certificate",
	KindVacation:           "vacation",
	KindMaternity:          "maternity leave",
	KindUnexcusedAbsence:   "unexcused absence",
	KindPaternity:          "paternity leave",
	KindBereavement:        "bereavement leave",
	KindOther:              "other",
}

// Kinds lists every leave kind in display order.
func Kinds() []Kind {
	return []Kind{
		KindMedicalCertificate, KindVacation, KindMaternity, KindUnexcusedAbsence,
		KindPaternity, KindBereavement, KindOther,
	}
}

// ParseKind maps a slug to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, slug := range kindSlugs {
		if slug == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", generic.ErrUnknownKind, s)
}

func (k Kind) Valid() bool { _, ok := kindSlugs[k]; return ok }

// String returns the slug used in storage and JSON.
func (k Kind) String() string {
	if s, ok := kindSlugs[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Label is the human-readable name used in messages and reports.
func (k Kind) Label() string {
	if s, ok := kindLabels[k]; ok {
		return s
	}
	return k.String()
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// =============================================================================
// LEAVE RECORD
// =============================================================================

// Record is one absence of one employee. Start and End are inclusive; a zero
// TimePoint means the date was never recorded.
type Record struct {
	ID         generic.LeaveID
	EmployeeID generic.EmployeeID
	Kind       Kind
	Start      generic.TimePoint
	End        generic.TimePoint
	Reason     string
	Notes      string
	Attachment string // optional document reference
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Period returns the record as an inclusive interval.
func (r Record) Period() generic.Period {
	return generic.Period{Start: r.Start, End: r.End}
}

// DaysOf is the inclusive day count of a record: (End - Start) + 1, or 0 when
// either date is absent. Stored records with End before Start are tolerated
// and yield a non-positive count.
func DaysOf(r Record) int {
	return r.Period().Days()
}
