package leave

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/staff"
)

// =============================================================================
// VALIDATOR - Pure decision over a candidate interval
// =============================================================================

// Validator decides whether a candidate leave interval is legal for an
// employee given their existing records. It holds no mutable state and is
// safe for concurrent use.
//
// The decision is made against a history snapshot. Two concurrent
// submissions for the same employee can both pass against a snapshot that
// contains neither, so callers that persist the result must serialize writes
// per employee (Service does).
type Validator struct {
	Policy Policy
	Now    func() generic.TimePoint

	// VacationOnlyBalance restricts the balance check to vacation requests.
	// Off by default: every kind is checked against the vacation balance.
	VacationOnlyBalance bool
}

func NewValidator(policy Policy) *Validator {
	return &Validator{Policy: policy, Now: generic.Today}
}

// Decision is the full outcome of a validation.
type Decision struct {
	OK        bool
	Reason    string
	Requested int
	Remaining int
	Conflict  *Record // first overlapping record, if any
}

const reasonValid = "leave request is valid"

// Validate applies the balance check and the overlap check, in that order.
// The balance check applies regardless of the candidate's kind.
func (v *Validator) Validate(emp staff.Employee, start, end generic.TimePoint, existing []Record) (bool, string) {
	d := v.decide(emp, start, end, existing, true)
	return d.OK, d.Reason
}

// ValidateRequest is Validate for a request of a known kind. With
// VacationOnlyBalance set, non-vacation kinds skip the balance check.
func (v *Validator) ValidateRequest(emp staff.Employee, kind Kind, start, end generic.TimePoint, existing []Record) Decision {
	checkBalance := !v.VacationOnlyBalance || kind == KindVacation
	return v.decide(emp, start, end, existing, checkBalance)
}

func (v *Validator) decide(emp staff.Employee, start, end generic.TimePoint, existing []Record, checkBalance bool) Decision {
	candidate := generic.Period{Start: start, End: end}
	d := Decision{
		Requested: generic.DaysBetween(start, end) + 1,
		Remaining: v.Policy.RemainingDays(emp.HireDate, v.now(), existing),
	}

	if checkBalance && d.Requested > d.Remaining {
		d.Reason = fmt.Sprintf("insufficient vacation balance: %d days available, %d requested",
			d.Remaining, d.Requested)
		return d
	}

	for i := range existing {
		r := existing[i]
		if !r.Period().Complete() {
			continue
		}
		if candidate.Overlaps(r.Period()) {
			d.Conflict = &r
			d.Reason = fmt.Sprintf("conflicts with existing %s leave from %s to %s",
				r.Kind.Label(), r.Start, r.End)
			return d
		}
	}

	d.OK = true
	d.Reason = reasonValid
	return d
}

func (v *Validator) now() generic.TimePoint {
	if v.Now == nil {
		return generic.Today()
	}
	return v.Now()
}

// RejectedError carries a negative Decision out of Service.Submit.
type RejectedError struct {
	Decision Decision
}

func (e *RejectedError) Error() string {
	return "leave request rejected: " + e.Decision.Reason
}

func (e *RejectedError) Unwrap() error {
	return generic.ErrRequestRejected
}

// =============================================================================
// REQUEST SERVICE - Check-then-insert with per-employee serialization
// =============================================================================

// Request is a leave submission before it becomes a Record.
type Request struct {
	EmployeeID generic.EmployeeID
	Kind       Kind
	Start      generic.TimePoint
	End        generic.TimePoint
	Reason     string
	Notes      string
	Attachment string
}

func (r Request) period() generic.Period {
	return generic.Period{Start: r.Start, End: r.End}
}

// Service runs the leave lifecycle against a transactional store.
//
// Submit is the critical path:
//   - Rejects malformed periods
//   - Locks the employee (in process) and opens a store transaction
//   - Reloads the history inside the transaction
//   - Validates, then inserts
//
// If ANY step fails, nothing is written.
type Service struct {
	Store     TxStore
	Validator *Validator
	AuditLog  generic.AuditLog // optional

	locks employeeLocks
}

func NewService(store TxStore, validator *Validator, audit generic.AuditLog) *Service {
	return &Service{Store: store, Validator: validator, AuditLog: audit}
}

// Check is a dry run of Submit: no locks, no writes.
func (s *Service) Check(ctx context.Context, req Request) (Decision, error) {
	if err := checkPeriod(req.period()); err != nil {
		return Decision{}, err
	}
	emp, err := s.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return Decision{}, err
	}
	if !emp.Active {
		return Decision{}, fmt.Errorf("%w: employee %d is inactive", generic.ErrEmployeeNotFound, emp.ID)
	}
	history, err := s.Store.ListLeaveRecords(ctx, req.EmployeeID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load leave history: %w", err)
	}
	return s.Validator.ValidateRequest(*emp, req.Kind, req.Start, req.End, history), nil
}

// Submit validates req and persists it as a new Record.
// Business-rule failures return *RejectedError.
func (s *Service) Submit(ctx context.Context, actor generic.UserID, req Request) (*Record, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrUnknownKind, uint8(req.Kind))
	}
	if err := checkPeriod(req.period()); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(req.EmployeeID)
	defer unlock()

	var created Record
	err := s.Store.WithTx(ctx, func(tx Store) error {
		emp, err := tx.GetEmployee(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if !emp.Active {
			return fmt.Errorf("%w: employee %d is inactive", generic.ErrEmployeeNotFound, emp.ID)
		}

		history, err := tx.ListLeaveRecords(ctx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to load leave history: %w", err)
		}

		decision := s.Validator.ValidateRequest(*emp, req.Kind, req.Start, req.End, history)
		if !decision.OK {
			return &RejectedError{Decision: decision}
		}

		now := time.Now().UTC()
		created = Record{
			EmployeeID: req.EmployeeID,
			Kind:       req.Kind,
			Start:      req.Start,
			End:        req.End,
			Reason:     req.Reason,
			Notes:      req.Notes,
			Attachment: req.Attachment,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.CreateLeaveRecord(ctx, &created); err != nil {
			return fmt.Errorf("failed to create leave record: %w", err)
		}
		return nil
	})
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			log.Printf("[Leave] Rejected request for employee %d %s: %s",
				req.EmployeeID, req.period(), rejected.Decision.Reason)
		}
		return nil, err
	}

	s.audit(ctx, actor, generic.AuditLeaveCreated, created, map[string]any{
		"employee_id": int64(created.EmployeeID),
		"kind":        created.Kind.String(),
		"days":        DaysOf(created),
	})
	return &created, nil
}

// Update edits kind, dates, reason, notes and attachment of a record. The
// new period must be well-formed and must not overlap the employee's other
// records. The balance is not re-checked on edit.
func (s *Service) Update(ctx context.Context, actor generic.UserID, rec Record) (*Record, error) {
	if !rec.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrUnknownKind, uint8(rec.Kind))
	}
	if err := checkPeriod(rec.Period()); err != nil {
		return nil, err
	}

	current, err := s.Store.GetLeaveRecord(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(current.EmployeeID)
	defer unlock()

	updated := *current
	updated.Kind = rec.Kind
	updated.Start = rec.Start
	updated.End = rec.End
	updated.Reason = rec.Reason
	updated.Notes = rec.Notes
	updated.Attachment = rec.Attachment
	updated.UpdatedAt = time.Now().UTC()

	err = s.Store.WithTx(ctx, func(tx Store) error {
		history, err := tx.ListLeaveRecords(ctx, current.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to load leave history: %w", err)
		}
		for i := range history {
			other := history[i]
			if other.ID == updated.ID || !other.Period().Complete() {
				continue
			}
			if updated.Period().Overlaps(other.Period()) {
				return &RejectedError{Decision: Decision{
					Reason:   fmt.Sprintf("conflicts with existing %s leave from %s to %s", other.Kind.Label(), other.Start, other.End),
					Conflict: &other,
				}}
			}
		}
		return tx.UpdateLeaveRecord(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actor, generic.AuditLeaveUpdated, updated, map[string]any{
		"kind": updated.Kind.String(),
		"days": DaysOf(updated),
	})
	return &updated, nil
}

// Delete removes a leave record.
func (s *Service) Delete(ctx context.Context, actor generic.UserID, id generic.LeaveID) error {
	rec, err := s.Store.GetLeaveRecord(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(rec.EmployeeID)
	defer unlock()

	if err := s.Store.DeleteLeaveRecord(ctx, id); err != nil {
		return fmt.Errorf("failed to delete leave record: %w", err)
	}
	s.audit(ctx, actor, generic.AuditLeaveDeleted, *rec, nil)
	return nil
}

// List returns an employee's leave history.
func (s *Service) List(ctx context.Context, employeeID generic.EmployeeID) ([]Record, error) {
	if _, err := s.Store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.Store.ListLeaveRecords(ctx, employeeID)
}

// Balance renders the vacation summary of an employee as of asOf.
func (s *Service) Balance(ctx context.Context, employeeID generic.EmployeeID, asOf generic.TimePoint) (Balance, error) {
	emp, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Balance{}, err
	}
	history, err := s.Store.ListLeaveRecords(ctx, employeeID)
	if err != nil {
		return Balance{}, fmt.Errorf("failed to load leave history: %w", err)
	}
	return s.Validator.Policy.Summary(*emp, asOf, history), nil
}

func (s *Service) audit(ctx context.Context, actor generic.UserID, action generic.AuditAction, rec Record, payload map[string]any) {
	if s.AuditLog == nil {
		return
	}
	s.AuditLog.AppendAudit(ctx, generic.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ActorID:   actor,
		Action:    action,
		Table:     "leave_records",
		RecordID:  int64(rec.ID),
		Payload:   payload,
	})
}

func checkPeriod(p generic.Period) error {
	if !p.Complete() {
		return generic.ErrMissingDates
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %s", generic.ErrInvalidPeriod, p)
	}
	return nil
}

// =============================================================================
// EMPLOYEE LOCKS
// =============================================================================

// employeeLocks hands out one mutex per employee ID, dropping entries when
// no goroutine holds or waits on them.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[generic.EmployeeID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (l *employeeLocks) lock(id generic.EmployeeID) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[generic.EmployeeID]*lockEntry)
	}
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
