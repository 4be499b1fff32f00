/*
handlers.go - HTTP API handlers for HR Control

PURPOSE:
  Exposes employees, leave, users, reports and notifications via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  domain services.

ENDPOINTS:
  Auth:
    POST   /api/auth/login                   Exchange credentials for a token
    GET    /api/auth/me                      Current user and permissions
    POST   /api/auth/password                Change own password

  Employees:
    GET    /api/employees                    List (?inactive=1&unit=&q=)
    POST   /api/employees                    Create employee
    GET    /api/employees/{id}               Get employee
    PUT    /api/employees/{id}               Update employee
    DELETE /api/employees/{id}               Deactivate employee
    GET    /api/employees/{id}/balance       Vacation balance (?as_of=)
    GET    /api/employees/{id}/leave         Leave history
    POST   /api/employees/{id}/leave         Submit leave

  Leave:
    POST   /api/leave/validate               Dry-run a leave request
    PUT    /api/leave/{id}                   Edit leave record
    DELETE /api/leave/{id}                   Delete leave record

  Users:
    GET    /api/users                        List users
    POST   /api/users                        Create user
    PUT    /api/users/{id}                   Update user
    DELETE /api/users/{id}                   Deactivate user
    POST   /api/users/{id}/password          Reset password

  Reports & export:
    GET    /api/reports/statistics           Aggregates
    GET    /api/reports/vacation             Balance per employee
    GET    /api/export/employees.xlsx        Spreadsheet
    GET    /api/export/leave.xlsx            Spreadsheet

  Notifications:
    GET    /api/notifications                Own inbox (?unread=1)
    POST   /api/notifications/{id}/read      Mark read

  Admin:
    POST   /api/admin/backup                 Snapshot the database
    GET    /api/admin/backups                List snapshots
    POST   /api/admin/backups/prune          Delete expired snapshots
    GET    /api/admin/audit                  Audit trail

  Scenarios (scenarios.go):
    GET    /api/scenarios                    List demo scenarios
    GET    /api/scenarios/current            Loaded scenario
    POST   /api/scenarios/load               Back up, reset and load (HR_DEMO_SCENARIOS)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/invalid token, bad credentials
  - 403: Role does not grant the action
  - 404: Resource not found
  - 409: Conflict (duplicate national ID, username, email)
  - 422: Leave request rejected by a business rule
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token middleware and permission checks
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/export"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/notify"
	"github.com/warp/hr-control/report"
	"github.com/warp/hr-control/staff"
	"github.com/warp/hr-control/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	Employees     *staff.Service
	Leave         *leave.Service
	Auth          *access.Authenticator
	Tokens        *access.TokenManager
	Reports       *report.Service
	Notifications *notify.Service
	BackupDir     string
	BackupMaxAge  time.Duration
	DemoScenarios bool
	Today         func() generic.TimePoint

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// Options configures NewHandler.
type Options struct {
	Policy              leave.Policy
	VacationOnlyBalance bool
	Tokens              *access.TokenManager
	BackupDir           string
	BackupMaxAge        time.Duration
	DemoScenarios       bool
}

// NewHandler wires the services on top of store.
func NewHandler(store *sqlite.Store, opts Options) *Handler {
	validator := leave.NewValidator(opts.Policy)
	validator.VacationOnlyBalance = opts.VacationOnlyBalance

	return &Handler{
		Store:     store,
		Employees: staff.NewService(store, store),
		Leave:     leave.NewService(store, validator, store),
		Auth:      access.NewAuthenticator(store, store),
		Tokens:    opts.Tokens,
		Reports:   &report.Service{Employees: store, Leave: store, Policy: opts.Policy},
		Notifications: notify.NewService(store, notify.Sources{
			Employees: store,
			Leave:     store,
			Users:     store,
		}),
		BackupDir:     opts.BackupDir,
		BackupMaxAge:  opts.BackupMaxAge,
		DemoScenarios: opts.DemoScenarios,
		Today:         generic.Today,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns employees matching the query filters.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := staff.Filter{
		IncludeInactive: q.Get("inactive") == "1" || q.Get("inactive") == "true",
		Unit:            q.Get("unit"),
		Query:           q.Get("q"),
	}

	employees, err := h.Employees.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readableEmployeeID(w, r)
	if !ok {
		return
	}
	emp, err := h.Employees.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.toEmployee()
	if err != nil {
		writeDomainError(w, "Invalid employee", err)
		return
	}

	created, err := h.Employees.Create(r.Context(), actorID(r), emp)
	if err != nil {
		writeDomainError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*created))
}

// UpdateEmployee replaces the editable attributes of an employee.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.toEmployee()
	if err != nil {
		writeDomainError(w, "Invalid employee", err)
		return
	}
	emp.ID = generic.EmployeeID(id)

	updated, err := h.Employees.Update(r.Context(), actorID(r), emp)
	if err != nil {
		writeDomainError(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*updated))
}

// DeactivateEmployee soft-deletes an employee.
func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}
	if err := h.Employees.Deactivate(r.Context(), actorID(r), generic.EmployeeID(id)); err != nil {
		writeDomainError(w, "Failed to deactivate employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// GetBalance returns the vacation balance of an employee.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readableEmployeeID(w, r)
	if !ok {
		return
	}

	asOf := h.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		parsed, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
			return
		}
		asOf = parsed
	}

	balance, err := h.Leave.Balance(r.Context(), id, asOf)
	if err != nil {
		writeDomainError(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeave returns the leave history of an employee.
func (h *Handler) ListLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := h.readableEmployeeID(w, r)
	if !ok {
		return
	}
	records, err := h.Leave.List(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to list leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(records))
}

// SubmitLeave validates and records a leave request.
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}
	employeeID := generic.EmployeeID(id)
	if !canRequestLeave(currentUser(r.Context()), employeeID) {
		writeError(w, http.StatusForbidden, "Action not permitted", nil)
		return
	}

	var body LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req, err := body.toRequest(employeeID)
	if err != nil {
		writeDomainError(w, "Invalid leave request", err)
		return
	}

	rec, err := h.Leave.Submit(r.Context(), actorID(r), req)
	if err != nil {
		var rejected *leave.RejectedError
		if errors.As(err, &rejected) {
			writeJSON(w, http.StatusUnprocessableEntity, toValidationDTO(rejected.Decision))
			return
		}
		writeDomainError(w, "Failed to submit leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(*rec))
}

// ValidateLeave runs the validator without recording anything.
func (h *Handler) ValidateLeave(w http.ResponseWriter, r *http.Request) {
	var body LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	employeeID := generic.EmployeeID(body.EmployeeID)
	if !canRequestLeave(currentUser(r.Context()), employeeID) {
		writeError(w, http.StatusForbidden, "Action not permitted", nil)
		return
	}
	req, err := body.toRequest(employeeID)
	if err != nil {
		writeDomainError(w, "Invalid leave request", err)
		return
	}

	decision, err := h.Leave.Check(r.Context(), req)
	if err != nil {
		writeDomainError(w, "Failed to validate leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toValidationDTO(decision))
}

// UpdateLeave edits a leave record.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave id", err)
		return
	}
	var body LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req, err := body.toRequest(0)
	if err != nil {
		writeDomainError(w, "Invalid leave request", err)
		return
	}

	updated, err := h.Leave.Update(r.Context(), actorID(r), leave.Record{
		ID:         generic.LeaveID(id),
		Kind:       req.Kind,
		Start:      req.Start,
		End:        req.End,
		Reason:     req.Reason,
		Notes:      req.Notes,
		Attachment: req.Attachment,
	})
	if err != nil {
		var rejected *leave.RejectedError
		if errors.As(err, &rejected) {
			writeJSON(w, http.StatusUnprocessableEntity, toValidationDTO(rejected.Decision))
			return
		}
		writeDomainError(w, "Failed to update leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*updated))
}

// DeleteLeave removes a leave record.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave id", err)
		return
	}
	if err := h.Leave.Delete(r.Context(), actorID(r), generic.LeaveID(id)); err != nil {
		writeDomainError(w, "Failed to delete leave", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("inactive") == "1"
	users, err := h.Auth.List(r.Context(), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, "Invalid role", err)
		return
	}

	user, err := h.Auth.CreateUser(r.Context(), actorID(r), access.NewUser{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Email:      req.Email,
		Role:       role,
		EmployeeID: generic.EmployeeID(req.EmployeeID),
	})
	if err != nil {
		writeDomainError(w, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(*user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, "Invalid role", err)
		return
	}

	user, err := h.Auth.UpdateUser(r.Context(), actorID(r), access.User{
		ID:         generic.UserID(id),
		Name:       req.Name,
		Email:      req.Email,
		Role:       role,
		EmployeeID: generic.EmployeeID(req.EmployeeID),
	})
	if err != nil {
		writeDomainError(w, "Failed to update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	if generic.UserID(id) == actorID(r) {
		writeError(w, http.StatusBadRequest, "Cannot deactivate yourself", nil)
		return
	}
	if err := h.Auth.Deactivate(r.Context(), actorID(r), generic.UserID(id)); err != nil {
		writeDomainError(w, "Failed to deactivate user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	var req PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), actorID(r), generic.UserID(id), req.New); err != nil {
		writeDomainError(w, "Failed to reset password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// REPORT & EXPORT HANDLERS
// =============================================================================

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.Statistics(r.Context(), h.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetVacationReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Reports.Vacation(r.Context(), h.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build vacation report", err)
		return
	}
	dtos := make([]BalanceDTO, len(rows))
	for i, b := range rows {
		dtos[i] = toBalanceDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Reports.AllEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employees", err)
		return
	}
	setAttachment(w, "employees")
	if err := export.Employees(w, employees); err != nil {
		log.Printf("[API] Employee export failed: %v", err)
	}
}

func (h *Handler) ExportLeave(w http.ResponseWriter, r *http.Request) {
	records, names, err := h.Reports.LeaveRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave records", err)
		return
	}
	setAttachment(w, "leave")
	if err := export.LeaveRecords(w, records, names); err != nil {
		log.Printf("[API] Leave export failed: %v", err)
	}
}

func setAttachment(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s_%s.xlsx"`, name, time.Now().Format("20060102_150405")))
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	unread := r.URL.Query().Get("unread") == "1"
	items, err := h.Notifications.ListForUser(r.Context(), user.ID, unread)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}
	dtos := make([]NotificationDTO, len(items))
	for i, n := range items {
		dtos[i] = toNotificationDTO(n)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification id", err)
		return
	}
	user := currentUser(r.Context())
	if err := h.Notifications.MarkRead(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to mark notification", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateBackup snapshots the database into the backup directory.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	info, err := h.Store.Backup(r.Context(), h.BackupDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create backup", err)
		return
	}
	h.Store.AppendAudit(r.Context(), generic.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: info.CreatedAt,
		ActorID:   actorID(r),
		Action:    generic.AuditBackup,
		Table:     "database",
		Payload:   map[string]any{"name": info.Name, "size": info.Size},
	})
	log.Printf("[Admin] Backup written to %s (%d bytes)", info.Path, info.Size)
	writeJSON(w, http.StatusCreated, info)
}

func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := sqlite.ListBackups(h.BackupDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list backups", err)
		return
	}
	if backups == nil {
		backups = []sqlite.BackupInfo{}
	}
	writeJSON(w, http.StatusOK, backups)
}

// PruneBackups deletes snapshots older than BackupMaxAge.
func (h *Handler) PruneBackups(w http.ResponseWriter, r *http.Request) {
	if h.BackupMaxAge <= 0 {
		writeJSON(w, http.StatusOK, map[string]int{"removed": 0})
		return
	}
	removed, err := sqlite.PruneBackups(h.BackupDir, time.Now().Add(-h.BackupMaxAge))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to prune backups", err)
		return
	}
	log.Printf("[Admin] Pruned %d backups", removed)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// ListAudit returns the audit trail (?table=&limit=).
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	filter := generic.AuditFilter{Table: r.URL.Query().Get("table"), Limit: 200}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = n
	}
	entries, err := h.Store.QueryAudit(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query audit log", err)
		return
	}
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, generic.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, message, err)
	case errors.Is(err, generic.ErrForbidden):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, generic.ErrRequestRejected):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// readableEmployeeID parses {id} and checks the caller may read it.
func (h *Handler) readableEmployeeID(w http.ResponseWriter, r *http.Request) (generic.EmployeeID, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return 0, false
	}
	if !canReadEmployee(currentUser(r.Context()), generic.EmployeeID(id)) {
		writeError(w, http.StatusForbidden, "Action not permitted", nil)
		return 0, false
	}
	return generic.EmployeeID(id), true
}
