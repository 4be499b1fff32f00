/*
report.go - Workforce and leave statistics

PURPOSE:
  Read-only aggregations over employees and leave records for the reports
  screen. Pure functions over slices; Service only loads the inputs.

AGGREGATES:
  - Employee counts (total, active, inactive)
  - Leave counts and leave days per kind
  - Employees on leave today
  - Monthly payroll per unit (active employees, exact decimal sums)
  - Headcount per job title (active employees)
  - Leave count per start month (YYYY-MM)

SEE ALSO:
  - leave/entitlement.go: Balance rows in the vacation report
  - export/export.go: Spreadsheet export of the same data
*/
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/staff"
)

type Statistics struct {
	TotalEmployees      int                      `json:"total_employees"`
	ActiveEmployees     int                      `json:"active_employees"`
	InactiveEmployees   int                      `json:"inactive_employees"`
	TotalLeave          int                      `json:"total_leave"`
	LeaveByKind         map[leave.Kind]int       `json:"leave_by_kind"`
	LeaveDaysByKind     map[leave.Kind]int       `json:"leave_days_by_kind"`
	OnLeaveToday        int                      `json:"on_leave_today"`
	PayrollByUnit       map[string]generic.Money `json:"payroll_by_unit"`
	TotalPayroll        generic.Money            `json:"total_payroll"`
	HeadcountByJobTitle map[string]int           `json:"headcount_by_job_title"`
	LeaveByMonth        map[string]int           `json:"leave_by_month"`
}

// BuildStatistics aggregates employees and records as of today.
func BuildStatistics(employees []staff.Employee, records []leave.Record, today generic.TimePoint) Statistics {
	st := Statistics{
		LeaveByKind:         make(map[leave.Kind]int),
		LeaveDaysByKind:     make(map[leave.Kind]int),
		PayrollByUnit:       make(map[string]generic.Money),
		HeadcountByJobTitle: make(map[string]int),
		LeaveByMonth:        make(map[string]int),
		TotalPayroll:        generic.NewMoney(0),
	}

	onLeave := make(map[generic.EmployeeID]bool)
	for _, r := range records {
		st.TotalLeave++
		st.LeaveByKind[r.Kind]++
		if r.Period().Valid() {
			st.LeaveDaysByKind[r.Kind] += leave.DaysOf(r)
			if r.Period().Contains(today) {
				onLeave[r.EmployeeID] = true
			}
		}
		if !r.Start.IsZero() {
			st.LeaveByMonth[fmt.Sprintf("%04d-%02d", r.Start.Year(), int(r.Start.Month()))]++
		}
	}

	for _, e := range employees {
		st.TotalEmployees++
		if !e.Active {
			st.InactiveEmployees++
			continue
		}
		st.ActiveEmployees++
		if onLeave[e.ID] {
			st.OnLeaveToday++
		}

		unit := e.Unit
		if unit == "" {
			unit = "unassigned"
		}
		sum, ok := st.PayrollByUnit[unit]
		if !ok {
			sum = generic.NewMoney(0)
		}
		st.PayrollByUnit[unit] = sum.Add(e.Salary)
		st.TotalPayroll = st.TotalPayroll.Add(e.Salary)

		title := e.JobTitle
		if title == "" {
			title = "unassigned"
		}
		st.HeadcountByJobTitle[title]++
	}
	return st
}

// VacationReport returns one balance row per active employee, sorted by name.
func VacationReport(employees []staff.Employee, records []leave.Record, policy leave.Policy, asOf generic.TimePoint) []leave.Balance {
	byEmployee := make(map[generic.EmployeeID][]leave.Record)
	for _, r := range records {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	rows := make([]leave.Balance, 0, len(employees))
	for _, e := range employees {
		if !e.Active {
			continue
		}
		rows = append(rows, policy.Summary(e, asOf, byEmployee[e.ID]))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].EmployeeName < rows[j].EmployeeName })
	return rows
}

// =============================================================================
// SERVICE - Loads inputs from the stores
// =============================================================================

type Service struct {
	Employees interface {
		ListEmployees(ctx context.Context, filter staff.Filter) ([]staff.Employee, error)
	}
	Leave interface {
		ListLeaveRecordsBetween(ctx context.Context, period generic.Period) ([]leave.Record, error)
	}
	Policy leave.Policy
}

func (s *Service) load(ctx context.Context) ([]staff.Employee, []leave.Record, error) {
	employees, err := s.Employees.ListEmployees(ctx, staff.Filter{IncludeInactive: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load employees: %w", err)
	}
	records, err := s.Leave.ListLeaveRecordsBetween(ctx, generic.Period{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load leave records: %w", err)
	}
	return employees, records, nil
}

func (s *Service) Statistics(ctx context.Context, today generic.TimePoint) (Statistics, error) {
	employees, records, err := s.load(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return BuildStatistics(employees, records, today), nil
}

func (s *Service) Vacation(ctx context.Context, asOf generic.TimePoint) ([]leave.Balance, error) {
	employees, records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return VacationReport(employees, records, s.Policy, asOf), nil
}

// AllEmployees and LeaveRecords return the raw data used by exports.
func (s *Service) AllEmployees(ctx context.Context) ([]staff.Employee, error) {
	employees, _, err := s.load(ctx)
	return employees, err
}

func (s *Service) LeaveRecords(ctx context.Context) ([]leave.Record, map[generic.EmployeeID]string, error) {
	employees, records, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[generic.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	return records, names, nil
}
