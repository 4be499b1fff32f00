/*
entitlement.go - Vacation accrual, consumption and balance

PURPOSE:
  Derives how many vacation days an employee has earned, used and has left
  as of a given day. Nothing is stored: the balance is recomputed from the
  hire date and the leave history every time.

ACCRUAL RULE:
  elapsed = (asOf.year - hire.year)*12 + (asOf.month - hire.month)
  Day-of-month is ignored, so an employee hired on the 31st counts the month
  as complete on the 1st of the next month.

  elapsed <  ThresholdMonths -> 0 days
  elapsed >= ThresholdMonths -> floor(elapsed / ThresholdMonths) * DaysPerPeriod

  With the defaults (12 months, 30 days):
    hired 2023-01-15, asOf 2023-12-15 -> 11 months -> 0 days
    hired 2023-01-15, asOf 2024-01-15 -> 12 months -> 30 days
    hired 2023-01-15, asOf 2025-01-20 -> 24 months -> 60 days

CONSUMPTION:
  Only vacation records consume entitlement. Medical, maternity and the
  other kinds never reduce the balance.

NEXT ELIGIBILITY:
  Already eligible -> asOf itself.
  Not yet eligible -> hire + ThresholdMonths*30 days. This is a flat 30-day
  month approximation, not calendar-month addition.

SEE ALSO:
  - request.go: Uses RemainingDays to gate new requests
  - report/report.go: Per-employee vacation report
*/
package leave

import (
	"fmt"

	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/staff"
)

// approxDaysPerMonth is the month length used by NextEligibilityDate.
const approxDaysPerMonth = 30

// Policy holds the accrual constants.
type Policy struct {
	ThresholdMonths int // months of service per accrual period
	DaysPerPeriod   int // vacation days granted per completed period
}

// DefaultPolicy is 30 days per completed 12 months of service.
func DefaultPolicy() Policy {
	return Policy{ThresholdMonths: 12, DaysPerPeriod: 30}
}

// Validate rejects non-positive constants.
func (p Policy) Validate() error {
	if p.ThresholdMonths <= 0 || p.DaysPerPeriod <= 0 {
		return fmt.Errorf("%w: threshold=%d days_per_period=%d",
			generic.ErrInvalidPolicy, p.ThresholdMonths, p.DaysPerPeriod)
	}
	return nil
}

// ElapsedMonths counts whole calendar months of service, ignoring the day.
func ElapsedMonths(hire, asOf generic.TimePoint) int {
	return generic.MonthsBetween(hire, asOf)
}

// AccruedDays returns total vacation days earned by asOf. Always a
// non-negative multiple of DaysPerPeriod.
func (p Policy) AccruedDays(hire, asOf generic.TimePoint) int {
	if hire.IsZero() {
		return 0
	}
	elapsed := ElapsedMonths(hire, asOf)
	if elapsed < p.ThresholdMonths {
		return 0
	}
	return (elapsed / p.ThresholdMonths) * p.DaysPerPeriod
}

// ConsumedDays sums DaysOf over vacation records only.
func ConsumedDays(records []Record) int {
	total := 0
	for _, r := range records {
		if r.Kind == KindVacation {
			total += DaysOf(r)
		}
	}
	return total
}

// RemainingDays is accrued minus consumed, floored at zero.
func (p Policy) RemainingDays(hire, asOf generic.TimePoint, records []Record) int {
	return max(0, p.AccruedDays(hire, asOf)-ConsumedDays(records))
}

// NextEligibilityDate reports when the employee is (or was) first entitled
// to vacation. ok is false when the hire date is unknown.
func (p Policy) NextEligibilityDate(hire, asOf generic.TimePoint) (date generic.TimePoint, ok bool) {
	if hire.IsZero() {
		return generic.TimePoint{}, false
	}
	if ElapsedMonths(hire, asOf) >= p.ThresholdMonths {
		return asOf, true
	}
	return hire.AddDays(p.ThresholdMonths * approxDaysPerMonth), true
}

// =============================================================================
// BALANCE - Vacation report for one employee
// =============================================================================

// Balance is the vacation summary rendered for an employee.
type Balance struct {
	EmployeeID      generic.EmployeeID
	EmployeeName    string
	HireDate        generic.TimePoint
	AsOf            generic.TimePoint
	ElapsedMonths   int
	Accrued         int
	Consumed        int
	Remaining       int
	NextEligibility generic.TimePoint // zero when the hire date is unknown
}

// Summary computes the vacation balance of emp as of asOf.
func (p Policy) Summary(emp staff.Employee, asOf generic.TimePoint, records []Record) Balance {
	b := Balance{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		HireDate:     emp.HireDate,
		AsOf:         asOf,
		Accrued:      p.AccruedDays(emp.HireDate, asOf),
		Consumed:     ConsumedDays(records),
		Remaining:    p.RemainingDays(emp.HireDate, asOf, records),
	}
	if !emp.HireDate.IsZero() {
		b.ElapsedMonths = ElapsedMonths(emp.HireDate, asOf)
	}
	if next, ok := p.NextEligibilityDate(emp.HireDate, asOf); ok {
		b.NextEligibility = next
	}
	return b
}
