/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface of HR Control using SQLite.

INTERFACES IMPLEMENTED:
  staff.Store:      Employees
  leave.TxStore:    Leave records, with transactional check-then-insert
  access.Store:     Users
  notify.Store:     Notifications
  generic.AuditLog: Append-only audit trail

KEY TABLES:
  employees:      Employee records (soft-deleted via active flag)
  leave_records:  Absences, dates stored as YYYY-MM-DD
  users:          Operators and their roles
  notifications:  Per-user inbox
  audit_log:      Who did what when

INDEXES:
  - idx_employees_active_national_id: National ID unique among active employees
  - idx_leave_employee_start: History load (hot path)
  - idx_users_active_username / idx_users_active_email: Login uniqueness
  - idx_notifications_dedup_key: One warning per leave record and recipient

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WithTx holds the write lock for the
  whole transaction, so a history read and the following insert cannot
  interleave with another writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/hr.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Versioned goose migrations are embedded from migrations/*.sql and applied
  on New().

SEE ALSO:
  - store/memory/memory.go: In-memory implementation for testing
  - leave/store.go: Transactional leave store contract
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/staff"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(s.db, "migrations")
}

// Reset deletes all rows in one transaction, so a failure leaves the data
// untouched. Schema and migration history are kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	defer tx.Rollback()

	tables := []string{"notifications", "leave_records", "audit_log", "users", "employees", "sqlite_sequence"}
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("failed to reset %s: %w", t, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// TRANSACTIONAL STORE (leave.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(queries{db: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// queries runs statements against a connection or transaction. It takes no
// locks; Store methods lock and delegate.
type queries struct {
	db dbtx
}

func (s *Store) q() queries { return queries{db: s.db} }

// =============================================================================
// EMPLOYEE STORE (staff.Store interface)
// =============================================================================

const employeeColumns = `id, name, national_id, email, phone, address, unit, job_title,
	salary, hire_date, active, created_at, updated_at`

func (s *Store) CreateEmployee(ctx context.Context, e *staff.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO employees
		(name, national_id, email, phone, address, unit, job_title, salary, hire_date, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.NationalID, e.Email, e.Phone, e.Address, e.Unit, e.JobTitle,
		e.Salary.Value.String(), nullDate(e.HireDate), e.Active,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateNationalID
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = generic.EmployeeID(id)
	return nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e staff.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET
			name = ?, national_id = ?, email = ?, phone = ?, address = ?, unit = ?,
			job_title = ?, salary = ?, hire_date = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, e.NationalID, e.Email, e.Phone, e.Address, e.Unit, e.JobTitle,
		e.Salary.Value.String(), nullDate(e.HireDate), e.Active, formatTime(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateNationalID
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return requireRow(res, generic.ErrEmployeeNotFound)
}

func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (*staff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q().GetEmployee(ctx, id)
}

func (q queries) GetEmployee(ctx context.Context, id generic.EmployeeID) (*staff.Employee, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter staff.Filter) ([]staff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if !filter.IncludeInactive {
		where = append(where, "active = 1")
	}
	if filter.Unit != "" {
		where = append(where, "unit = ?")
		args = append(args, filter.Unit)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "(name LIKE ? OR national_id LIKE ? OR email LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []staff.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) FindActiveByNationalID(ctx context.Context, nationalID string) (*staff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE national_id = ? AND active = 1`, nationalID)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEmployee(row scanner) (staff.Employee, error) {
	var (
		e         staff.Employee
		salary    string
		hireDate  sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&e.ID, &e.Name, &e.NationalID, &e.Email, &e.Phone, &e.Address, &e.Unit, &e.JobTitle,
		&salary, &hireDate, &e.Active, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan employee: %w", err)
	}
	e.Salary = generic.MustParseMoney(salary)
	if e.HireDate, err = parseDate(hireDate); err != nil {
		return e, fmt.Errorf("employee %d hire date: %w", e.ID, err)
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

// =============================================================================
// LEAVE STORE (leave.Store interface)
// =============================================================================

const leaveColumns = `id, employee_id, kind, start_date, end_date, reason, notes, attachment,
	created_at, updated_at`

func (s *Store) ListLeaveRecords(ctx context.Context, employeeID generic.EmployeeID) ([]leave.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q().ListLeaveRecords(ctx, employeeID)
}

func (q queries) ListLeaveRecords(ctx context.Context, employeeID generic.EmployeeID) ([]leave.Record, error) {
	return q.queryLeave(ctx, `SELECT `+leaveColumns+` FROM leave_records
		WHERE employee_id = ?
		ORDER BY start_date ASC, id ASC`, employeeID)
}

func (s *Store) ListLeaveRecordsBetween(ctx context.Context, period generic.Period) ([]leave.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q().ListLeaveRecordsBetween(ctx, period)
}

func (q queries) ListLeaveRecordsBetween(ctx context.Context, period generic.Period) ([]leave.Record, error) {
	if !period.Complete() {
		return q.queryLeave(ctx, `SELECT `+leaveColumns+` FROM leave_records ORDER BY start_date ASC, id ASC`)
	}
	// Inclusive overlap: start <= period.End AND end >= period.Start
	return q.queryLeave(ctx, `SELECT `+leaveColumns+` FROM leave_records
		WHERE start_date IS NOT NULL AND end_date IS NOT NULL
		  AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC, id ASC`,
		period.End.String(), period.Start.String())
}

func (s *Store) GetLeaveRecord(ctx context.Context, id generic.LeaveID) (*leave.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q().GetLeaveRecord(ctx, id)
}

func (q queries) GetLeaveRecord(ctx context.Context, id generic.LeaveID) (*leave.Record, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+leaveColumns+` FROM leave_records WHERE id = ?`, id)
	r, err := scanLeave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrLeaveNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateLeaveRecord(ctx context.Context, r *leave.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q().CreateLeaveRecord(ctx, r)
}

func (q queries) CreateLeaveRecord(ctx context.Context, r *leave.Record) error {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO leave_records
		(employee_id, kind, start_date, end_date, reason, notes, attachment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.EmployeeID, r.Kind.String(), nullDate(r.Start), nullDate(r.End),
		r.Reason, r.Notes, r.Attachment, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return generic.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to insert leave record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = generic.LeaveID(id)
	return nil
}

func (s *Store) UpdateLeaveRecord(ctx context.Context, r leave.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q().UpdateLeaveRecord(ctx, r)
}

func (q queries) UpdateLeaveRecord(ctx context.Context, r leave.Record) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE leave_records SET
			kind = ?, start_date = ?, end_date = ?, reason = ?, notes = ?, attachment = ?, updated_at = ?
		WHERE id = ?`,
		r.Kind.String(), nullDate(r.Start), nullDate(r.End), r.Reason, r.Notes, r.Attachment,
		formatTime(r.UpdatedAt), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave record: %w", err)
	}
	return requireRow(res, generic.ErrLeaveNotFound)
}

func (s *Store) DeleteLeaveRecord(ctx context.Context, id generic.LeaveID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q().DeleteLeaveRecord(ctx, id)
}

func (q queries) DeleteLeaveRecord(ctx context.Context, id generic.LeaveID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM leave_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave record: %w", err)
	}
	return requireRow(res, generic.ErrLeaveNotFound)
}

func (q queries) queryLeave(ctx context.Context, query string, args ...any) ([]leave.Record, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []leave.Record
	for rows.Next() {
		r, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanLeave(row scanner) (leave.Record, error) {
	var (
		r          leave.Record
		kind       string
		start, end sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&r.ID, &r.EmployeeID, &kind, &start, &end, &r.Reason, &r.Notes, &r.Attachment,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to scan leave record: %w", err)
	}
	if r.Kind, err = leave.ParseKind(kind); err != nil {
		return r, fmt.Errorf("leave record %d: %w", r.ID, err)
	}
	if r.Start, err = parseDate(start); err != nil {
		return r, fmt.Errorf("leave record %d start: %w", r.ID, err)
	}
	if r.End, err = parseDate(end); err != nil {
		return r, fmt.Errorf("leave record %d end: %w", r.ID, err)
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func parseNullTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	return parseTime(s.String)
}

func nullDate(tp generic.TimePoint) sql.NullString {
	if tp.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

// parseDate reads a nullable YYYY-MM-DD column. NULL is the absent day;
// anything unparseable is an error so corrupt rows are never read as absent.
func parseDate(s sql.NullString) (generic.TimePoint, error) {
	if !s.Valid {
		return generic.TimePoint{}, nil
	}
	tp, err := generic.ParseDate(s.String)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("invalid stored date %q: %w", s.String, err)
	}
	return tp, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isForeignKeyError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
