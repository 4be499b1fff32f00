package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/notify"
)

// =============================================================================
// USER STORE (access.Store interface)
// =============================================================================

const userColumns = `id, username, password_hash, name, email, role, employee_id, active,
	created_at, updated_at, last_login`

func (s *Store) CreateUser(ctx context.Context, u *access.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users
		(username, password_hash, name, email, role, employee_id, active, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Name, u.Email, u.Role.String(), nullID(int64(u.EmployeeID)), u.Active,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt), nullTime(u.LastLogin),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return userConflict(err)
		}
		if isForeignKeyError(err) {
			return generic.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = generic.UserID(id)
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u access.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			username = ?, password_hash = ?, name = ?, email = ?, role = ?, employee_id = ?,
			active = ?, updated_at = ?, last_login = ?
		WHERE id = ?`,
		u.Username, u.PasswordHash, u.Name, u.Email, u.Role.String(), nullID(int64(u.EmployeeID)),
		u.Active, formatTime(u.UpdatedAt), nullTime(u.LastLogin),
		u.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return userConflict(err)
		}
		if isForeignKeyError(err) {
			return generic.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res, generic.ErrUserNotFound)
}

func (s *Store) GetUser(ctx context.Context, id generic.UserID) (*access.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*access.User, error) {
	return s.findActiveUser(ctx, "username = ?", username)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*access.User, error) {
	return s.findActiveUser(ctx, "email = ?", email)
}

func (s *Store) findActiveUser(ctx context.Context, cond string, arg any) (*access.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE active = 1 AND `+cond, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, includeInactive bool) ([]access.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + userColumns + ` FROM users`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []access.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (access.User, error) {
	var (
		u          access.User
		role       string
		employeeID sql.NullInt64
		createdAt  string
		updatedAt  string
		lastLogin  sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Email, &role, &employeeID,
		&u.Active, &createdAt, &updatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, err
		}
		return u, fmt.Errorf("failed to scan user: %w", err)
	}
	if u.Role, err = access.ParseRole(role); err != nil {
		return u, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.EmployeeID = generic.EmployeeID(employeeID.Int64)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	u.LastLogin = parseNullTime(lastLogin)
	return u, nil
}

func userConflict(err error) error {
	if strings.Contains(err.Error(), "email") {
		return generic.ErrDuplicateEmail
	}
	return generic.ErrDuplicateUsername
}

// =============================================================================
// NOTIFICATION STORE (notify.Store interface)
// =============================================================================

func (s *Store) CreateNotification(ctx context.Context, n *notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, dedup_key, title, message, level, read, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, nullString(n.Key), n.Title, n.Message, string(n.Level), n.Read,
		formatTime(n.CreatedAt), nullTime(n.ReadAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (s *Store) HasNotification(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE dedup_key = ?", key,
	).Scan(&count)
	return count > 0, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID generic.UserID, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1, read_at = ? WHERE id = ? AND user_id = ?`,
		formatTime(at), id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireRow(res, notify.ErrNotFound)
}

func (s *Store) ListNotifications(ctx context.Context, userID generic.UserID, unreadOnly bool) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, user_id, dedup_key, title, message, level, read, created_at, read_at
		FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []notify.Notification
	for rows.Next() {
		var (
			n         notify.Notification
			key       sql.NullString
			level     string
			createdAt string
			readAt    sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &key, &n.Title, &n.Message, &level, &n.Read,
			&createdAt, &readAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Key = key.String
		n.Level = notify.Level(level)
		n.CreatedAt = parseTime(createdAt)
		n.ReadAt = parseNullTime(readAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) PurgeNotifications(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE read = 1 AND created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// =============================================================================
// AUDIT LOG (generic.AuditLog interface)
// =============================================================================

func (s *Store) AppendAudit(ctx context.Context, entry generic.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payloadJSON, _ := json.Marshal(entry.Payload)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, timestamp, actor_id, action, table_name, record_id, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, formatTime(entry.Timestamp), entry.ActorID, string(entry.Action), entry.Table,
		entry.RecordID, string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *Store) QueryAudit(ctx context.Context, filter generic.AuditFilter) ([]generic.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if filter.ActorID != nil {
		where = append(where, "actor_id = ?")
		args = append(args, *filter.ActorID)
	}
	if filter.Table != "" {
		where = append(where, "table_name = ?")
		args = append(args, filter.Table)
	}
	if len(filter.Actions) > 0 {
		placeholders := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			placeholders[i] = "?"
			args = append(args, string(a))
		}
		where = append(where, "action IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.From != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, formatTime(*filter.To))
	}

	query := `SELECT id, timestamp, actor_id, action, table_name, record_id, payload_json FROM audit_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp ASC, rowid ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []generic.AuditEntry
	for rows.Next() {
		var (
			e           generic.AuditEntry
			timestamp   string
			action      string
			payloadJSON sql.NullString
		)
		if err := rows.Scan(&e.ID, &timestamp, &e.ActorID, &action, &e.Table, &e.RecordID, &payloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Timestamp = parseTime(timestamp)
		e.Action = generic.AuditAction(action)
		if payloadJSON.Valid && payloadJSON.String != "" && payloadJSON.String != "null" {
			json.Unmarshal([]byte(payloadJSON.String), &e.Payload)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
