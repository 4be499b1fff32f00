// Package export writes employees and leave records as .xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/staff"
	"github.com/xuri/excelize/v2"
)

const (
	EmployeesSheet = "Employees"
	LeaveSheet     = "Leave"

	columnWidth = 15
)

var employeeHeaders = []string{
	"ID", "Name", "National ID", "Job Title", "Unit", "Status",
	"Hire Date", "Salary", "Phone", "Email",
}

var leaveHeaders = []string{
	"ID", "Employee ID", "Employee", "Kind", "Start", "End", "Days", "Reason", "Notes",
}

// Employees writes one row per employee.
func Employees(w io.Writer, employees []staff.Employee) error {
	rows := make([][]any, 0, len(employees))
	for _, e := range employees {
		status := "active"
		if !e.Active {
			status = "inactive"
		}
		rows = append(rows, []any{
			int64(e.ID), e.Name, e.NationalID, e.JobTitle, e.Unit, status,
			e.HireDate.String(), e.Salary.Value.InexactFloat64(), e.Phone, e.Email,
		})
	}
	return writeSheet(w, EmployeesSheet, employeeHeaders, rows)
}

// LeaveRecords writes one row per record. names resolves employee names;
// missing entries leave the column empty.
func LeaveRecords(w io.Writer, records []leave.Record, names map[generic.EmployeeID]string) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			int64(r.ID), int64(r.EmployeeID), names[r.EmployeeID], r.Kind.Label(),
			r.Start.String(), r.End.String(), leave.DaysOf(r), r.Reason, r.Notes,
		})
	}
	return writeSheet(w, LeaveSheet, leaveHeaders, rows)
}

func writeSheet(w io.Writer, sheet string, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", lastCol, columnWidth); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
