// Package memory provides an in-memory record store (for testing/dev).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/notify"
	"github.com/warp/hr-control/staff"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements staff.Store, leave.TxStore, access.Store, notify.Store
// and generic.AuditLog.
type Memory struct {
	mu sync.RWMutex
	st *state
}

// state holds the data. Its methods assume the caller holds the lock.
type state struct {
	employees     map[generic.EmployeeID]staff.Employee
	records       map[generic.LeaveID]leave.Record
	users         map[generic.UserID]access.User
	notifications map[int64]notify.Notification
	audit         []generic.AuditEntry

	nextEmployee     generic.EmployeeID
	nextLeave        generic.LeaveID
	nextUser         generic.UserID
	nextNotification int64
}

func New() *Memory {
	return &Memory{st: &state{
		employees:     make(map[generic.EmployeeID]staff.Employee),
		records:       make(map[generic.LeaveID]leave.Record),
		users:         make(map[generic.UserID]access.User),
		notifications: make(map[int64]notify.Notification),
	}}
}

func (s *state) clone() *state {
	c := *s
	c.employees = make(map[generic.EmployeeID]staff.Employee, len(s.employees))
	for k, v := range s.employees {
		c.employees[k] = v
	}
	c.records = make(map[generic.LeaveID]leave.Record, len(s.records))
	for k, v := range s.records {
		c.records[k] = v
	}
	c.users = make(map[generic.UserID]access.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.notifications = make(map[int64]notify.Notification, len(s.notifications))
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	c.audit = append([]generic.AuditEntry(nil), s.audit...)
	return &c
}

// WithTx executes fn within a transaction.
// Simulated with a snapshot + rollback on error.
func (m *Memory) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(m.st); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) CreateEmployee(_ context.Context, e *staff.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Active {
		if _, ok := m.st.activeByNationalID(e.NationalID); ok {
			return generic.ErrDuplicateNationalID
		}
	}
	m.st.nextEmployee++
	e.ID = m.st.nextEmployee
	m.st.employees[e.ID] = *e
	return nil
}

func (m *Memory) UpdateEmployee(_ context.Context, e staff.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.employees[e.ID]; !ok {
		return generic.ErrEmployeeNotFound
	}
	if e.Active {
		if other, ok := m.st.activeByNationalID(e.NationalID); ok && other.ID != e.ID {
			return generic.ErrDuplicateNationalID
		}
	}
	m.st.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(ctx context.Context, id generic.EmployeeID) (*staff.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetEmployee(ctx, id)
}

func (s *state) GetEmployee(_ context.Context, id generic.EmployeeID) (*staff.Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return nil, generic.ErrEmployeeNotFound
	}
	return &e, nil
}

func (m *Memory) ListEmployees(_ context.Context, filter staff.Filter) ([]staff.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []staff.Employee
	for _, e := range m.st.employees {
		if !e.Active && !filter.IncludeInactive {
			continue
		}
		if filter.Unit != "" && e.Unit != filter.Unit {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Name), query) &&
			!strings.Contains(e.NationalID, query) &&
			!strings.Contains(strings.ToLower(e.Email), query) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) FindActiveByNationalID(_ context.Context, nationalID string) (*staff.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.st.activeByNationalID(nationalID); ok {
		return &e, nil
	}
	return nil, nil
}

func (s *state) activeByNationalID(nationalID string) (staff.Employee, bool) {
	for _, e := range s.employees {
		if e.Active && e.NationalID == nationalID {
			return e, true
		}
	}
	return staff.Employee{}, false
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

func (m *Memory) ListLeaveRecords(ctx context.Context, employeeID generic.EmployeeID) ([]leave.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListLeaveRecords(ctx, employeeID)
}

func (s *state) ListLeaveRecords(_ context.Context, employeeID generic.EmployeeID) ([]leave.Record, error) {
	var out []leave.Record
	for _, r := range s.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) ListLeaveRecordsBetween(ctx context.Context, period generic.Period) ([]leave.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListLeaveRecordsBetween(ctx, period)
}

func (s *state) ListLeaveRecordsBetween(_ context.Context, period generic.Period) ([]leave.Record, error) {
	var out []leave.Record
	for _, r := range s.records {
		if period.Complete() && !(r.Period().Complete() && r.Period().Overlaps(period)) {
			continue
		}
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) GetLeaveRecord(ctx context.Context, id generic.LeaveID) (*leave.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetLeaveRecord(ctx, id)
}

func (s *state) GetLeaveRecord(_ context.Context, id generic.LeaveID) (*leave.Record, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, generic.ErrLeaveNotFound
	}
	return &r, nil
}

func (m *Memory) CreateLeaveRecord(ctx context.Context, r *leave.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.CreateLeaveRecord(ctx, r)
}

func (s *state) CreateLeaveRecord(_ context.Context, r *leave.Record) error {
	if _, ok := s.employees[r.EmployeeID]; !ok {
		return generic.ErrEmployeeNotFound
	}
	s.nextLeave++
	r.ID = s.nextLeave
	s.records[r.ID] = *r
	return nil
}

func (m *Memory) UpdateLeaveRecord(ctx context.Context, r leave.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UpdateLeaveRecord(ctx, r)
}

func (s *state) UpdateLeaveRecord(_ context.Context, r leave.Record) error {
	if _, ok := s.records[r.ID]; !ok {
		return generic.ErrLeaveNotFound
	}
	s.records[r.ID] = r
	return nil
}

func (m *Memory) DeleteLeaveRecord(ctx context.Context, id generic.LeaveID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.DeleteLeaveRecord(ctx, id)
}

func (s *state) DeleteLeaveRecord(_ context.Context, id generic.LeaveID) error {
	if _, ok := s.records[id]; !ok {
		return generic.ErrLeaveNotFound
	}
	delete(s.records, id)
	return nil
}

func sortRecords(rs []leave.Record) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Start.Equal(rs[j].Start) {
			return rs[i].Start.Before(rs[j].Start)
		}
		return rs[i].ID < rs[j].ID
	})
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) CreateUser(_ context.Context, u *access.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.st.users {
		if !other.Active {
			continue
		}
		if other.Username == u.Username {
			return generic.ErrDuplicateUsername
		}
		if strings.EqualFold(other.Email, u.Email) {
			return generic.ErrDuplicateEmail
		}
	}
	m.st.nextUser++
	u.ID = m.st.nextUser
	m.st.users[u.ID] = *u
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, u access.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.users[u.ID]; !ok {
		return generic.ErrUserNotFound
	}
	m.st.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id generic.UserID) (*access.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.st.users[id]
	if !ok {
		return nil, generic.ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) FindUserByUsername(_ context.Context, username string) (*access.User, error) {
	return m.findUser(func(u access.User) bool { return u.Username == username })
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*access.User, error) {
	return m.findUser(func(u access.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *Memory) findUser(match func(access.User) bool) (*access.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.st.users {
		if u.Active && match(u) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListUsers(_ context.Context, includeInactive bool) ([]access.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []access.User
	for _, u := range m.st.users {
		if u.Active || includeInactive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (m *Memory) CreateNotification(_ context.Context, n *notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.nextNotification++
	n.ID = m.st.nextNotification
	m.st.notifications[n.ID] = *n
	return nil
}

func (m *Memory) HasNotification(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.st.notifications {
		if key != "" && n.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID generic.UserID, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.st.notifications[id]
	if !ok || n.UserID != userID {
		return notify.ErrNotFound
	}
	n.Read = true
	n.ReadAt = at
	m.st.notifications[id] = n
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID generic.UserID, unreadOnly bool) ([]notify.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []notify.Notification
	for _, n := range m.st.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) PurgeNotifications(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	purged := 0
	for id, n := range m.st.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(m.st.notifications, id)
			purged++
		}
	}
	return purged, nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Memory) AppendAudit(_ context.Context, entry generic.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.audit = append(m.st.audit, entry)
	return nil
}

func (m *Memory) QueryAudit(_ context.Context, filter generic.AuditFilter) ([]generic.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []generic.AuditEntry
	for _, e := range m.st.audit {
		if filter.ActorID != nil && e.ActorID != *filter.ActorID {
			continue
		}
		if filter.Table != "" && e.Table != filter.Table {
			continue
		}
		if len(filter.Actions) > 0 && !containsAction(filter.Actions, e.Action) {
			continue
		}
		if filter.From != nil && e.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Timestamp.After(*filter.To) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func containsAction(actions []generic.AuditAction, a generic.AuditAction) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
