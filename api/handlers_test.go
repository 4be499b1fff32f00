/*
handlers_test.go - HTTP tests for the API

PURPOSE:
	Drives the router end to end against an in-memory SQLite store:
	- Authentication and role checks
	- Employee creation and leave submission through the validator
	- Spreadsheet export and scenario loading
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testToday = generic.NewTimePoint(2024, time.June, 1)

type testServer struct {
	t       *testing.T
	handler *Handler
	router  http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, Options{
		Policy:       leave.DefaultPolicy(),
		Tokens:       access.NewTokenManager("test-secret", time.Hour),
		BackupDir:    t.TempDir(),
		BackupMaxAge: 24 * time.Hour,
	})
	h.Today = func() generic.TimePoint { return testToday }
	h.Leave.Validator.Now = h.Today
	require.NoError(t, h.SeedDefaultUsers(context.Background()))

	return &testServer{t: t, handler: h, router: NewRouter(h, []string{"*"})}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec := s.do("POST", "/api/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) createEmployee(token string, req EmployeeRequest) EmployeeDTO {
	s.t.Helper()
	rec := s.do("POST", "/api/employees", token, req)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto EmployeeDTO
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var joao = EmployeeRequest{
	Name:       "João Silva",
	NationalID: "529.982.247-25",
	Email:      "joao@empresa.com",
	Phone:      "(11) 98765-4321",
	Unit:       "Loja Centro",
	Salary:     "5000",
	HireDate:   "2023-01-15",
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestAuth_RequiresToken(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do("GET", "/api/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do("GET", "/api/employees", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_LoginFailure(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do("POST", "/api/auth/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Me(t *testing.T) {
	s := setupTestServer(t)
	token := s.login("gerente", "gerente123")

	rec := s.do("GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[LoginResponse](t, rec)

	assert.Equal(t, access.RoleManager, me.User.Role)
	assert.Contains(t, me.Permissions, access.ActionGenerateReport)
	assert.NotContains(t, me.Permissions, access.ActionDeleteEmployee)
}

func TestAuth_RoleChecks(t *testing.T) {
	// GIVEN: A manager and an HR user
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	manager := s.login("gerente", "gerente123")
	emp := s.createEmployee(admin, joao)

	// WHEN/THEN: The manager cannot deactivate employees or manage users
	rec := s.do("DELETE", fmt.Sprintf("/api/employees/%d", emp.ID), manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do("GET", "/api/users", manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// WHEN/THEN: HR can deactivate
	hr := s.login("rh", "rh123")
	rec = s.do("DELETE", fmt.Sprintf("/api/employees/%d", emp.ID), hr, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_EmployeeSeesOwnRecordOnly(t *testing.T) {
	// GIVEN: Two employees, one linked to an employee-role user
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	own := s.createEmployee(admin, joao)
	other := s.createEmployee(admin, EmployeeRequest{
		Name: "Maria Santos", NationalID: "111.444.777-35", Salary: "2500", HireDate: "2023-12-01",
	})

	_, err := s.handler.Auth.CreateUser(context.Background(), 0, access.NewUser{
		Username: "joao", Password: "joao123", Email: "joao@empresa.com",
		Role: access.RoleEmployee, EmployeeID: generic.EmployeeID(own.ID),
	})
	require.NoError(t, err)
	token := s.login("joao", "joao123")

	// THEN: Own balance is visible, the colleague's is not
	rec := s.do("GET", fmt.Sprintf("/api/employees/%d/balance", own.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do("GET", fmt.Sprintf("/api/employees/%d/balance", other.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// THEN: Reports and the employee list are closed
	rec = s.do("GET", "/api/reports/statistics", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do("GET", "/api/employees", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// THEN: Leave can be requested for self only
	body := LeaveRequest{Kind: "vacation", StartDate: "2024-07-01", EndDate: "2024-07-05"}
	rec = s.do("POST", fmt.Sprintf("/api/employees/%d/leave", other.ID), token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do("POST", fmt.Sprintf("/api/employees/%d/leave", own.ID), token, body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAuth_DeactivatedUserTokenRejected(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	manager := s.login("gerente", "gerente123")

	users := decode[[]UserDTO](t, s.do("GET", "/api/users", admin, nil))
	var managerID int64
	for _, u := range users {
		if u.Username == "gerente" {
			managerID = u.ID
		}
	}
	require.NotZero(t, managerID)

	rec := s.do("DELETE", fmt.Sprintf("/api/users/%d", managerID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do("GET", "/api/auth/me", manager, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestEmployee_CreateNormalizes(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")

	emp := s.createEmployee(admin, joao)

	assert.Equal(t, "52998224725", emp.NationalID)
	assert.Equal(t, "11987654321", emp.Phone)
	assert.Equal(t, "5000.00", emp.Salary)
	assert.Equal(t, "2023-01-15", emp.HireDate)
	assert.True(t, emp.Active)
}

func TestEmployee_CreateErrors(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	s.createEmployee(admin, joao)

	// Duplicate national ID
	rec := s.do("POST", "/api/employees", admin, joao)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Bad check digits
	bad := joao
	bad.NationalID = "529.982.247-26"
	rec = s.do("POST", "/api/employees", admin, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unparseable hire date
	bad = joao
	bad.NationalID = "111.444.777-35"
	bad.HireDate = "15/01/2023"
	rec = s.do("POST", "/api/employees", admin, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("GET", "/api/employees/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployee_HireDateImmutable(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	emp := s.createEmployee(admin, joao)

	changed := joao
	changed.HireDate = "2022-01-15"
	rec := s.do("PUT", fmt.Sprintf("/api/employees/%d", emp.ID), admin, changed)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	changed.HireDate = ""
	changed.JobTitle = "Gerente"
	rec = s.do("PUT", fmt.Sprintf("/api/employees/%d", emp.ID), admin, changed)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[EmployeeDTO](t, rec)
	assert.Equal(t, "2023-01-15", updated.HireDate)
	assert.Equal(t, "Gerente", updated.JobTitle)
}

// =============================================================================
// LEAVE TESTS
// =============================================================================

func TestLeave_SubmitWithinAndBeyondBalance(t *testing.T) {
	// GIVEN: An employee with 17 months of service (30 days accrued)
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	emp := s.createEmployee(admin, joao)
	path := fmt.Sprintf("/api/employees/%d/leave", emp.ID)

	// WHEN: Requesting 20 days
	rec := s.do("POST", path, admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-01", EndDate: "2024-07-20"})

	// THEN: Accepted
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[LeaveDTO](t, rec)
	assert.Equal(t, 20, created.Days)
	assert.Equal(t, leave.KindVacation, created.Kind)

	// WHEN: Requesting 11 more days
	rec = s.do("POST", path, admin, LeaveRequest{Kind: "vacation", StartDate: "2024-08-01", EndDate: "2024-08-11"})

	// THEN: Rejected with the remaining balance
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rejected := decode[ValidationDTO](t, rec)
	assert.False(t, rejected.Valid)
	assert.Equal(t, 10, rejected.Remaining)
	assert.Equal(t, 11, rejected.Requested)

	// THEN: The balance reflects only the accepted request
	balance := decode[BalanceDTO](t, s.do("GET", fmt.Sprintf("/api/employees/%d/balance", emp.ID), admin, nil))
	assert.Equal(t, 30, balance.Accrued)
	assert.Equal(t, 20, balance.Consumed)
	assert.Equal(t, 10, balance.Remaining)
	assert.Equal(t, "2024-06-01", balance.AsOf)
}

func TestLeave_SubmitOverlap(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	emp := s.createEmployee(admin, joao)
	path := fmt.Sprintf("/api/employees/%d/leave", emp.ID)

	rec := s.do("POST", path, admin, LeaveRequest{Kind: "medical_certificate", StartDate: "2024-07-01", EndDate: "2024-07-03"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[LeaveDTO](t, rec)

	rec = s.do("POST", path, admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-03", EndDate: "2024-07-04"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rejected := decode[ValidationDTO](t, rec)
	require.NotNil(t, rejected.ConflictID)
	assert.Equal(t, first.ID, *rejected.ConflictID)
}

func TestLeave_SubmitMalformed(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	emp := s.createEmployee(admin, joao)
	path := fmt.Sprintf("/api/employees/%d/leave", emp.ID)

	rec := s.do("POST", path, admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-05", EndDate: "2024-07-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("POST", path, admin, LeaveRequest{Kind: "sabbatical", StartDate: "2024-07-01", EndDate: "2024-07-05"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("POST", path, admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("POST", "/api/employees/999/leave", admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-01", EndDate: "2024-07-01"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeave_ValidateIsDryRun(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	emp := s.createEmployee(admin, joao)

	rec := s.do("POST", "/api/leave/validate", admin, LeaveRequest{
		EmployeeID: emp.ID, Kind: "vacation", StartDate: "2024-07-01", EndDate: "2024-07-30",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[ValidationDTO](t, rec)
	assert.True(t, result.Valid)
	assert.Equal(t, 30, result.Requested)

	history := decode[[]LeaveDTO](t, s.do("GET", fmt.Sprintf("/api/employees/%d/leave", emp.ID), admin, nil))
	assert.Empty(t, history)
}

func TestLeave_UpdateAndDelete(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	emp := s.createEmployee(admin, joao)
	path := fmt.Sprintf("/api/employees/%d/leave", emp.ID)

	first := decode[LeaveDTO](t, s.do("POST", path, admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-01", EndDate: "2024-07-05"}))
	second := decode[LeaveDTO](t, s.do("POST", path, admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-10", EndDate: "2024-07-12"}))

	// Moving the second onto the first conflicts
	rec := s.do("PUT", fmt.Sprintf("/api/leave/%d", second.ID), admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-04", EndDate: "2024-07-06"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do("PUT", fmt.Sprintf("/api/leave/%d", second.ID), admin, LeaveRequest{Kind: "vacation", StartDate: "2024-07-11", EndDate: "2024-07-14", Notes: "estendido"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 4, decode[LeaveDTO](t, rec).Days)

	manager := s.login("gerente", "gerente123")
	rec = s.do("DELETE", fmt.Sprintf("/api/leave/%d", first.ID), manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("DELETE", fmt.Sprintf("/api/leave/%d", first.ID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do("DELETE", fmt.Sprintf("/api/leave/%d", first.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// REPORT, EXPORT & ADMIN TESTS
// =============================================================================

func TestReports_Statistics(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	s.createEmployee(admin, joao)

	rec := s.do("GET", "/api/reports/statistics", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do("GET", "/api/reports/vacation", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestExport_ContentType(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	s.createEmployee(admin, joao)

	for _, path := range []string{"/api/export/employees.xlsx", "/api/export/leave.xlsx"} {
		rec := s.do("GET", path, admin, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		assert.NotZero(t, rec.Body.Len())
	}
}

func TestAdmin_BackupAndAudit(t *testing.T) {
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	s.createEmployee(admin, joao)

	rec := s.do("POST", "/api/admin/backup", admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	backups := decode[[]sqlite.BackupInfo](t, s.do("GET", "/api/admin/backups", admin, nil))
	assert.Len(t, backups, 1)

	rec = s.do("POST", "/api/admin/backups/prune", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[map[string]int](t, rec)["removed"])

	entries := decode[[]AuditEntryDTO](t, s.do("GET", "/api/admin/audit?table=employees", admin, nil))
	require.Len(t, entries, 1)
	assert.Equal(t, string(generic.AuditEmployeeCreated), entries[0].Action)

	manager := s.login("gerente", "gerente123")
	rec = s.do("POST", "/api/admin/backup", manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// SCENARIO TESTS
// =============================================================================

func TestScenario_AllLoad(t *testing.T) {
	s := setupTestServer(t)
	s.handler.DemoScenarios = true
	admin := s.login("admin", "admin123")

	for _, sc := range scenarios {
		rec := s.do("POST", "/api/scenarios/load", admin, map[string]string{"scenario_id": sc.ID})
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", sc.ID, rec.Body.String())

		// Loading recreates the users.
		admin = s.login("admin", "admin123")
		current := decode[ScenarioDTO](t, s.do("GET", "/api/scenarios/current", admin, nil))
		assert.Equal(t, sc.ID, current.ID)
	}
}

func TestScenario_DisabledByDefault(t *testing.T) {
	// GIVEN: A server without demo scenarios enabled, holding one employee
	s := setupTestServer(t)
	admin := s.login("admin", "admin123")
	emp := s.createEmployee(admin, joao)

	// WHEN: An administrator tries to load a scenario
	rec := s.do("POST", "/api/scenarios/load", admin, map[string]string{"scenario_id": "demo-store"})

	// THEN: It is refused and nothing was wiped
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do("GET", fmt.Sprintf("/api/employees/%d", emp.ID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	backups, err := sqlite.ListBackups(s.handler.BackupDir)
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestScenario_LoadBacksUpFirst(t *testing.T) {
	// GIVEN: Live data on a server with demo scenarios enabled
	s := setupTestServer(t)
	s.handler.DemoScenarios = true
	admin := s.login("admin", "admin123")
	s.createEmployee(admin, joao)

	// WHEN: A scenario replaces it
	rec := s.do("POST", "/api/scenarios/load", admin, map[string]string{"scenario_id": "balance-edges"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: A snapshot taken before the reset still holds the employee
	backups, err := sqlite.ListBackups(s.handler.BackupDir)
	require.NoError(t, err)
	require.Len(t, backups, 1)

	snapshot, err := sqlite.New(backups[0].Path)
	require.NoError(t, err)
	defer snapshot.Close()
	saved, err := snapshot.FindActiveByNationalID(context.Background(), "52998224725")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, joao.Name, saved.Name)

	// AND: The load itself is in the new audit trail, naming the snapshot
	admin = s.login("admin", "admin123")
	entries := decode[[]AuditEntryDTO](t, s.do("GET", "/api/admin/audit?table=database", admin, nil))
	require.Len(t, entries, 1)
	assert.Equal(t, string(generic.AuditScenarioLoaded), entries[0].Action)
	assert.Equal(t, backups[0].Name, entries[0].Payload["backup"])
}

func TestScenario_Unknown(t *testing.T) {
	s := setupTestServer(t)
	s.handler.DemoScenarios = true
	admin := s.login("admin", "admin123")
	rec := s.do("POST", "/api/scenarios/load", admin, map[string]string{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_UpcomingLeaveNotifiesManagers(t *testing.T) {
	// GIVEN: The upcoming-leave scenario is loaded
	s := setupTestServer(t)
	s.handler.DemoScenarios = true
	admin := s.login("admin", "admin123")
	rec := s.do("POST", "/api/scenarios/load", admin, map[string]string{"scenario_id": "upcoming-leave"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The manager has unread warnings that only the manager can mark read
	manager := s.login("gerente", "gerente123")
	items := decode[[]NotificationDTO](t, s.do("GET", "/api/notifications?unread=1", manager, nil))
	require.NotEmpty(t, items)

	rec = s.do("POST", fmt.Sprintf("/api/notifications/%d/read", items[0].ID), manager, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	hr := s.login("rh", "rh123")
	rec = s.do("POST", fmt.Sprintf("/api/notifications/%d/read", items[0].ID), hr, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
