package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/staff"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(year int, month time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(year, month, d)
}

func record(kind leave.Kind, from, to generic.TimePoint) leave.Record {
	return leave.Record{EmployeeID: 1, Kind: kind, Start: from, End: to}
}

func vacation(from, to generic.TimePoint) leave.Record {
	return record(leave.KindVacation, from, to)
}

func employeeHired(hire generic.TimePoint) staff.Employee {
	return staff.Employee{ID: 1, Name: "Ana Costa", HireDate: hire, Active: true}
}

// =============================================================================
// ACCRUAL TESTS
// =============================================================================

func TestAccruedDays_Thresholds(t *testing.T) {
	p := leave.DefaultPolicy()
	hire := day(2023, 1, 15)

	assert.Equal(t, 0, p.AccruedDays(hire, day(2023, 12, 15)), "11 months")
	assert.Equal(t, 30, p.AccruedDays(hire, day(2024, 1, 15)), "12 months")
	assert.Equal(t, 30, p.AccruedDays(hire, day(2024, 12, 31)), "23 months")
	assert.Equal(t, 60, p.AccruedDays(hire, day(2025, 1, 20)), "24 months")
}

func TestAccruedDays_DayOfMonthIgnored(t *testing.T) {
	// GIVEN: Hired on the last day of a month
	// WHEN: Evaluated on the first day of the month a year later
	// THEN: The year counts as complete
	p := leave.DefaultPolicy()
	assert.Equal(t, 30, p.AccruedDays(day(2023, 1, 31), day(2024, 1, 1)))
}

func TestAccruedDays_BeforeHireAndUnknownHire(t *testing.T) {
	p := leave.DefaultPolicy()
	assert.Equal(t, 0, p.AccruedDays(day(2024, 6, 1), day(2024, 1, 1)), "asOf precedes hire")
	assert.Equal(t, 0, p.AccruedDays(generic.TimePoint{}, day(2024, 1, 1)), "no hire date")
}

func TestAccruedDays_CustomPolicy(t *testing.T) {
	p := leave.Policy{ThresholdMonths: 6, DaysPerPeriod: 10}
	assert.Equal(t, 0, p.AccruedDays(day(2024, 1, 1), day(2024, 6, 30)))
	assert.Equal(t, 10, p.AccruedDays(day(2024, 1, 1), day(2024, 7, 1)))
	assert.Equal(t, 30, p.AccruedDays(day(2024, 1, 1), day(2025, 7, 1)))
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, leave.DefaultPolicy().Validate())
	assert.ErrorIs(t, leave.Policy{ThresholdMonths: 0, DaysPerPeriod: 30}.Validate(), generic.ErrInvalidPolicy)
	assert.ErrorIs(t, leave.Policy{ThresholdMonths: 12, DaysPerPeriod: -1}.Validate(), generic.ErrInvalidPolicy)
}

// =============================================================================
// CONSUMPTION TESTS
// =============================================================================

func TestConsumedDays_OnlyVacationCounts(t *testing.T) {
	records := []leave.Record{
		vacation(day(2024, 1, 1), day(2024, 1, 10)),
		record(leave.KindMedicalCertificate, day(2024, 2, 1), day(2024, 2, 5)),
		record(leave.KindMaternity, day(2024, 3, 1), day(2024, 6, 28)),
		vacation(day(2024, 7, 1), day(2024, 7, 1)),
	}
	assert.Equal(t, 11, leave.ConsumedDays(records))
}

func TestDaysOf(t *testing.T) {
	assert.Equal(t, 1, leave.DaysOf(vacation(day(2024, 1, 1), day(2024, 1, 1))))
	assert.Equal(t, 10, leave.DaysOf(vacation(day(2024, 1, 1), day(2024, 1, 10))))
	assert.Equal(t, 0, leave.DaysOf(vacation(generic.TimePoint{}, day(2024, 1, 10))))
}

func TestRemainingDays_FlooredAtZero(t *testing.T) {
	// GIVEN: 30 days accrued, 40 days of imported vacation history
	p := leave.DefaultPolicy()
	records := []leave.Record{vacation(day(2024, 1, 1), day(2024, 2, 9))}

	// THEN: Remaining never goes negative
	assert.Equal(t, 0, p.RemainingDays(day(2023, 1, 1), day(2024, 6, 1), records))
}

func TestRemainingDays_AccruedMinusConsumed(t *testing.T) {
	p := leave.DefaultPolicy()
	records := []leave.Record{vacation(day(2024, 1, 1), day(2024, 1, 10))}
	assert.Equal(t, 20, p.RemainingDays(day(2023, 1, 1), day(2024, 6, 1), records))
}

// =============================================================================
// ELIGIBILITY & SUMMARY TESTS
// =============================================================================

func TestNextEligibilityDate(t *testing.T) {
	p := leave.DefaultPolicy()

	// Not yet eligible: hire + 12*30 days.
	next, ok := p.NextEligibilityDate(day(2024, 1, 1), day(2024, 6, 1))
	assert.True(t, ok)
	assert.True(t, next.Equal(day(2024, 12, 26)), "got %s", next)

	// Already eligible: asOf itself.
	next, ok = p.NextEligibilityDate(day(2023, 1, 1), day(2024, 6, 1))
	assert.True(t, ok)
	assert.True(t, next.Equal(day(2024, 6, 1)))

	_, ok = p.NextEligibilityDate(generic.TimePoint{}, day(2024, 6, 1))
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	p := leave.DefaultPolicy()
	emp := employeeHired(day(2023, 1, 1))
	records := []leave.Record{
		vacation(day(2024, 1, 1), day(2024, 1, 10)),
		record(leave.KindMedicalCertificate, day(2024, 2, 1), day(2024, 2, 3)),
	}

	b := p.Summary(emp, day(2024, 6, 1), records)

	assert.Equal(t, emp.ID, b.EmployeeID)
	assert.Equal(t, "Ana Costa", b.EmployeeName)
	assert.Equal(t, 17, b.ElapsedMonths)
	assert.Equal(t, 30, b.Accrued)
	assert.Equal(t, 10, b.Consumed)
	assert.Equal(t, 20, b.Remaining)
	assert.True(t, b.NextEligibility.Equal(day(2024, 6, 1)))
}

func TestSummary_UnknownHireDate(t *testing.T) {
	b := leave.DefaultPolicy().Summary(employeeHired(generic.TimePoint{}), day(2024, 6, 1), nil)
	assert.Equal(t, 0, b.Accrued)
	assert.Equal(t, 0, b.ElapsedMonths)
	assert.True(t, b.NextEligibility.IsZero())
}

// =============================================================================
// KIND TESTS
// =============================================================================

func TestKind_ParseAndText(t *testing.T) {
	for _, k := range leave.Kinds() {
		parsed, err := leave.ParseKind(k.String())
		assert.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := leave.ParseKind("sabbatical")
	assert.ErrorIs(t, err, generic.ErrUnknownKind)

	_, err = leave.Kind(0).MarshalText()
	assert.ErrorIs(t, err, generic.ErrUnknownKind)
	assert.False(t, leave.Kind(99).Valid())
}

func TestKind_Label(t *testing.T) {
	assert.Equal(t, "medical certificate", leave.KindMedicalCertificate.Label())
	assert.Equal(t, "maternity leave", leave.KindMaternity.Label())
}
