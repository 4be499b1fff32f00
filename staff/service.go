package staff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/validate"
)

// Service applies the employee rules on top of a Store:
//   - national ID, email and phone must pass validation
//   - national ID is unique among active employees
//   - hire date, once set, never changes
//   - removal is a soft delete
type Service struct {
	Store    Store
	AuditLog generic.AuditLog // optional
	Now      func() time.Time
}

func NewService(store Store, audit generic.AuditLog) *Service {
	return &Service{Store: store, AuditLog: audit, Now: time.Now}
}

// Create validates and persists a new active employee.
func (s *Service) Create(ctx context.Context, actor generic.UserID, emp Employee) (*Employee, error) {
	if err := normalize(&emp); err != nil {
		return nil, err
	}
	if err := s.checkUniqueNationalID(ctx, emp.NationalID, 0); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	emp.ID = 0
	emp.Active = true
	emp.CreatedAt = now
	emp.UpdatedAt = now

	if err := s.Store.CreateEmployee(ctx, &emp); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.audit(ctx, actor, generic.AuditEmployeeCreated, emp.ID, map[string]any{"name": emp.Name})
	return &emp, nil
}

// Update replaces the editable attributes of an existing employee.
func (s *Service) Update(ctx context.Context, actor generic.UserID, emp Employee) (*Employee, error) {
	current, err := s.Store.GetEmployee(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	if err := normalize(&emp); err != nil {
		return nil, err
	}

	switch {
	case current.HireDate.IsZero():
		// first time the hire date is set
	case emp.HireDate.IsZero():
		emp.HireDate = current.HireDate
	case !emp.HireDate.Equal(current.HireDate):
		return nil, generic.ErrHireDateImmutable
	}

	if current.Active {
		if err := s.checkUniqueNationalID(ctx, emp.NationalID, emp.ID); err != nil {
			return nil, err
		}
	}

	emp.Active = current.Active
	emp.CreatedAt = current.CreatedAt
	emp.UpdatedAt = s.Now().UTC()

	if err := s.Store.UpdateEmployee(ctx, emp); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}

	s.audit(ctx, actor, generic.AuditEmployeeUpdated, emp.ID, map[string]any{"name": emp.Name})
	return &emp, nil
}

// Deactivate clears the active flag. Leave history stays attached.
func (s *Service) Deactivate(ctx context.Context, actor generic.UserID, id generic.EmployeeID) error {
	emp, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if !emp.Active {
		return nil
	}
	emp.Active = false
	emp.UpdatedAt = s.Now().UTC()
	if err := s.Store.UpdateEmployee(ctx, *emp); err != nil {
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}

	s.audit(ctx, actor, generic.AuditEmployeeDeactivated, emp.ID, nil)
	return nil
}

func (s *Service) Get(ctx context.Context, id generic.EmployeeID) (*Employee, error) {
	return s.Store.GetEmployee(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Employee, error) {
	return s.Store.ListEmployees(ctx, filter)
}

func (s *Service) checkUniqueNationalID(ctx context.Context, nationalID string, self generic.EmployeeID) error {
	existing, err := s.Store.FindActiveByNationalID(ctx, nationalID)
	if err != nil {
		return fmt.Errorf("national id lookup failed: %w", err)
	}
	if existing != nil && existing.ID != self {
		return generic.ErrDuplicateNationalID
	}
	return nil
}

func (s *Service) audit(ctx context.Context, actor generic.UserID, action generic.AuditAction, id generic.EmployeeID, payload map[string]any) {
	if s.AuditLog == nil {
		return
	}
	s.AuditLog.AppendAudit(ctx, generic.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: s.Now().UTC(),
		ActorID:   actor,
		Action:    action,
		Table:     "employees",
		RecordID:  int64(id),
		Payload:   payload,
	})
}

// normalize trims fields, checks identifiers and reduces national ID and
// phone to digits.
func normalize(emp *Employee) error {
	emp.Name = strings.TrimSpace(emp.Name)
	emp.Email = strings.TrimSpace(emp.Email)

	if emp.Name == "" {
		return &generic.FieldError{Field: "name", Value: emp.Name}
	}
	if !validate.NationalID(emp.NationalID) {
		return &generic.FieldError{Field: "national_id", Value: emp.NationalID}
	}
	if emp.Email != "" && !validate.Email(emp.Email) {
		return &generic.FieldError{Field: "email", Value: emp.Email}
	}
	if emp.Phone != "" && !validate.Phone(emp.Phone) {
		return &generic.FieldError{Field: "phone", Value: emp.Phone}
	}
	if emp.Salary.IsNegative() {
		return &generic.FieldError{Field: "salary", Value: emp.Salary.String()}
	}

	emp.NationalID = validate.Digits(emp.NationalID)
	emp.Phone = validate.Digits(emp.Phone)
	return nil
}
