/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DATES:
  Calendar days are "YYYY-MM-DD"; timestamps are RFC3339. Absent dates are
  empty strings.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/notify"
	"github.com/warp/hr-control/staff"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Unit       string `json:"unit,omitempty"`
	JobTitle   string `json:"job_title,omitempty"`
	Salary     string `json:"salary"`
	HireDate   string `json:"hire_date,omitempty"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// EmployeeRequest is the body of create and update.
type EmployeeRequest struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Unit       string `json:"unit"`
	JobTitle   string `json:"job_title"`
	Salary     string `json:"salary"`
	HireDate   string `json:"hire_date"`
}

func (req EmployeeRequest) toEmployee() (staff.Employee, error) {
	salary, err := generic.ParseMoney(req.Salary)
	if err != nil {
		return staff.Employee{}, &generic.FieldError{Field: "salary", Value: req.Salary}
	}
	hire, err := generic.ParseDate(req.HireDate)
	if err != nil {
		return staff.Employee{}, &generic.FieldError{Field: "hire_date", Value: req.HireDate}
	}
	return staff.Employee{
		Name:       req.Name,
		NationalID: req.NationalID,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Unit:       req.Unit,
		JobTitle:   req.JobTitle,
		Salary:     salary,
		HireDate:   hire,
	}, nil
}

func toEmployeeDTO(e staff.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         int64(e.ID),
		Name:       e.Name,
		NationalID: e.NationalID,
		Email:      e.Email,
		Phone:      e.Phone,
		Address:    e.Address,
		Unit:       e.Unit,
		JobTitle:   e.JobTitle,
		Salary:     e.Salary.String(),
		HireDate:   e.HireDate.String(),
		Active:     e.Active,
		CreatedAt:  formatTimestamp(e.CreatedAt),
		UpdatedAt:  formatTimestamp(e.UpdatedAt),
	}
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveDTO struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	Kind       leave.Kind `json:"kind"`
	KindLabel  string     `json:"kind_label"`
	StartDate  string     `json:"start_date,omitempty"`
	EndDate    string     `json:"end_date,omitempty"`
	Days       int        `json:"days"`
	Reason     string     `json:"reason,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Attachment string     `json:"attachment,omitempty"`
	CreatedAt  string     `json:"created_at,omitempty"`
	UpdatedAt  string     `json:"updated_at,omitempty"`
}

// LeaveRequest is the body of submit, edit and dry-run validation.
// EmployeeID is only read by the dry-run endpoint.
type LeaveRequest struct {
	EmployeeID int64  `json:"employee_id,omitempty"`
	Kind       string `json:"kind"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes"`
	Attachment string `json:"attachment"`
}

func (req LeaveRequest) toRequest(employeeID generic.EmployeeID) (leave.Request, error) {
	kind, err := leave.ParseKind(req.Kind)
	if err != nil {
		return leave.Request{}, err
	}
	start, err := generic.ParseDate(req.StartDate)
	if err != nil {
		return leave.Request{}, &generic.FieldError{Field: "start_date", Value: req.StartDate}
	}
	end, err := generic.ParseDate(req.EndDate)
	if err != nil {
		return leave.Request{}, &generic.FieldError{Field: "end_date", Value: req.EndDate}
	}
	return leave.Request{
		EmployeeID: employeeID,
		Kind:       kind,
		Start:      start,
		End:        end,
		Reason:     req.Reason,
		Notes:      req.Notes,
		Attachment: req.Attachment,
	}, nil
}

func toLeaveDTO(r leave.Record) LeaveDTO {
	return LeaveDTO{
		ID:         int64(r.ID),
		EmployeeID: int64(r.EmployeeID),
		Kind:       r.Kind,
		KindLabel:  r.Kind.Label(),
		StartDate:  r.Start.String(),
		EndDate:    r.End.String(),
		Days:       leave.DaysOf(r),
		Reason:     r.Reason,
		Notes:      r.Notes,
		Attachment: r.Attachment,
		CreatedAt:  formatTimestamp(r.CreatedAt),
		UpdatedAt:  formatTimestamp(r.UpdatedAt),
	}
}

func toLeaveDTOs(records []leave.Record) []LeaveDTO {
	dtos := make([]LeaveDTO, len(records))
	for i, r := range records {
		dtos[i] = toLeaveDTO(r)
	}
	return dtos
}

// ValidationDTO is the outcome of a leave check.
type ValidationDTO struct {
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason"`
	Requested  int    `json:"requested_days"`
	Remaining  int    `json:"remaining_days"`
	ConflictID *int64 `json:"conflict_id,omitempty"`
}

func toValidationDTO(d leave.Decision) ValidationDTO {
	dto := ValidationDTO{
		Valid:     d.OK,
		Reason:    d.Reason,
		Requested: d.Requested,
		Remaining: d.Remaining,
	}
	if d.Conflict != nil {
		id := int64(d.Conflict.ID)
		dto.ConflictID = &id
	}
	return dto
}

type BalanceDTO struct {
	EmployeeID      int64  `json:"employee_id"`
	EmployeeName    string `json:"employee_name"`
	HireDate        string `json:"hire_date,omitempty"`
	AsOf            string `json:"as_of"`
	ElapsedMonths   int    `json:"elapsed_months"`
	Accrued         int    `json:"accrued_days"`
	Consumed        int    `json:"consumed_days"`
	Remaining       int    `json:"remaining_days"`
	NextEligibility string `json:"next_eligibility,omitempty"`
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:      int64(b.EmployeeID),
		EmployeeName:    b.EmployeeName,
		HireDate:        b.HireDate.String(),
		AsOf:            b.AsOf.String(),
		ElapsedMonths:   b.ElapsedMonths,
		Accrued:         b.Accrued,
		Consumed:        b.Consumed,
		Remaining:       b.Remaining,
		NextEligibility: b.NextEligibility.String(),
	}
}

// =============================================================================
// USERS & AUTH
// =============================================================================

type UserDTO struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Name       string      `json:"name,omitempty"`
	Email      string      `json:"email"`
	Role       access.Role `json:"role"`
	EmployeeID int64       `json:"employee_id,omitempty"`
	Active     bool        `json:"active"`
	CreatedAt  string      `json:"created_at,omitempty"`
	LastLogin  string      `json:"last_login,omitempty"`
}

func toUserDTO(u access.User) UserDTO {
	return UserDTO{
		ID:         int64(u.ID),
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		EmployeeID: int64(u.EmployeeID),
		Active:     u.Active,
		CreatedAt:  formatTimestamp(u.CreatedAt),
		LastLogin:  formatTimestamp(u.LastLogin),
	}
}

type CreateUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	EmployeeID int64  `json:"employee_id"`
}

type UpdateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	EmployeeID int64  `json:"employee_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token       string          `json:"token"`
	ExpiresAt   string          `json:"expires_at"`
	User        UserDTO         `json:"user"`
	Permissions []access.Action `json:"permissions"`
}

type PasswordRequest struct {
	Current string `json:"current_password,omitempty"`
	New     string `json:"new_password"`
}

// =============================================================================
// NOTIFICATIONS, ADMIN, SCENARIOS
// =============================================================================

type NotificationDTO struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Level     notify.Level `json:"level"`
	Read      bool         `json:"read"`
	CreatedAt string       `json:"created_at"`
	ReadAt    string       `json:"read_at,omitempty"`
}

func toNotificationDTO(n notify.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Level:     n.Level,
		Read:      n.Read,
		CreatedAt: formatTimestamp(n.CreatedAt),
		ReadAt:    formatTimestamp(n.ReadAt),
	}
}

type AuditEntryDTO struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	ActorID   int64          `json:"actor_id"`
	Action    string         `json:"action"`
	Table     string         `json:"table"`
	RecordID  int64          `json:"record_id"`
	Payload   map[string]any `json:"payload,omitempty"`
}

func toAuditEntryDTO(e generic.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:        e.ID,
		Timestamp: formatTimestamp(e.Timestamp),
		ActorID:   int64(e.ActorID),
		Action:    string(e.Action),
		Table:     e.Table,
		RecordID:  e.RecordID,
		Payload:   e.Payload,
	}
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
