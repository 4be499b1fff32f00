/*
Package generic provides the domain-agnostic building blocks of HR Control.

PURPOSE:
  This package contains the types shared by every HR package: calendar days,
  inclusive periods, money amounts, record identifiers, the audit log contract
  and the error taxonomy. It has no knowledge of employees, leave kinds or
  roles; those live in their domain packages.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal amount (salaries, payroll totals)
  - ID types: Store-assigned integer identifiers
  - AuditEntry: Who did what when

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Type Safety: Strong typing for IDs prevents mixing employee/user IDs
  3. Auditability: Every mutation can be recorded with actor and payload

SEE ALSO:
  - time.go: TimePoint (calendar day)
  - period.go: Inclusive intervals and overlap
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// Money is a monetary amount. Currency is implicit (single-currency system).
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money { return Money{Value: decimal.NewFromFloat(value)} }

// ParseMoney parses a decimal string such as "2500.00".
func ParseMoney(s string) (Money, error) {
	if s == "" {
		return Money{Value: decimal.Zero}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return m
}

func (m Money) Add(b Money) Money { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) IsNegative() bool { return m.Value.IsNegative() }
func (m Money) IsZero() bool { return m.Value.IsZero() }
func (m Money) Equal(b Money) bool { return m.Value.Equal(b.Value) }
func (m Money) String() string { return m.Value.StringFixed(2) }

func (m Money) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Money) UnmarshalText(b []byte) error {
	parsed, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Identifiers are assigned by the record store on creation.
type EmployeeID int64
type LeaveID int64
type UserID int64
