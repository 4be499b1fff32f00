package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-control/export"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/staff"
	"github.com/xuri/excelize/v2"
)

func readSheet(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestEmployees(t *testing.T) {
	var buf bytes.Buffer
	err := export.Employees(&buf, []staff.Employee{
		{ID: 1, Name: "João Silva", NationalID: "52998224725", JobTitle: "Gerente", Unit: "Loja Centro",
			Salary: generic.MustParseMoney("5000"), HireDate: generic.NewTimePoint(2023, time.March, 1), Active: true},
		{ID: 2, Name: "Bruno Alves", NationalID: "98765432100", Active: false},
	})
	require.NoError(t, err)

	rows := readSheet(t, &buf, export.EmployeesSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, "National ID", rows[0][2])
	assert.Equal(t, "João Silva", rows[1][1])
	assert.Equal(t, "active", rows[1][5])
	assert.Equal(t, "2023-03-01", rows[1][6])
	assert.Equal(t, "5000", rows[1][7])
	assert.Equal(t, "inactive", rows[2][5])
}

func TestLeaveRecords(t *testing.T) {
	var buf bytes.Buffer
	err := export.LeaveRecords(&buf, []leave.Record{
		{ID: 7, EmployeeID: 1, Kind: leave.KindVacation,
			Start: generic.NewTimePoint(2024, time.January, 1), End: generic.NewTimePoint(2024, time.January, 10), Reason: "Férias"},
		{ID: 8, EmployeeID: 99, Kind: leave.KindMedicalCertificate,
			Start: generic.NewTimePoint(2024, time.February, 1), End: generic.NewTimePoint(2024, time.February, 1)},
	}, map[generic.EmployeeID]string{1: "João Silva"})
	require.NoError(t, err)

	rows := readSheet(t, &buf, export.LeaveSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Employee ID", "Employee", "Kind", "Start", "End", "Days", "Reason", "Notes"}, rows[0])
	assert.Equal(t, "João Silva", rows[1][2])
	assert.Equal(t, "vacation", rows[1][3])
	assert.Equal(t, "10", rows[1][6])
	assert.Equal(t, "", rows[2][2], "unknown employee leaves the name empty")
	assert.Equal(t, "medical certificate", rows[2][3])
	assert.Equal(t, "1", rows[2][6])
}

func TestEmptyExportHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Employees(&buf, nil))

	rows := readSheet(t, &buf, export.EmployeesSheet)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 10)
}
