package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/validate"
	"golang.org/x/crypto/bcrypt"
)

// User is an operator of the system.
type User struct {
	ID           generic.UserID
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Role         Role
	EmployeeID   generic.EmployeeID // optional link to the user's own employee record
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    time.Time // zero until the first successful login
}

// Store persists users. GetUser of a missing ID returns
// generic.ErrUserNotFound; the Find lookups return nil, nil when no active
// user matches.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id generic.UserID) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, includeInactive bool) ([]User, error)
}

// =============================================================================
// PASSWORDS
// =============================================================================

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// =============================================================================
// AUTHENTICATOR
// =============================================================================

// NewUser is the input to CreateUser.
type NewUser struct {
	Username   string
	Password   string
	Name       string
	Email      string
	Role       Role
	EmployeeID generic.EmployeeID
}

// Authenticator manages user accounts and credentials.
type Authenticator struct {
	Store    Store
	AuditLog generic.AuditLog // optional
	Now      func() time.Time
}

func NewAuthenticator(store Store, audit generic.AuditLog) *Authenticator {
	return &Authenticator{Store: store, AuditLog: audit, Now: time.Now}
}

// CreateUser registers an active user. Username and email are unique among
// active users.
func (a *Authenticator) CreateUser(ctx context.Context, actor generic.UserID, in NewUser) (*User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return nil, &generic.FieldError{Field: "username", Value: in.Username}
	}
	if in.Password == "" {
		return nil, &generic.FieldError{Field: "password", Value: ""}
	}
	if !validate.Email(in.Email) {
		return nil, &generic.FieldError{Field: "email", Value: in.Email}
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrUnknownRole, uint8(in.Role))
	}

	if existing, err := a.Store.FindUserByUsername(ctx, in.Username); err != nil {
		return nil, fmt.Errorf("username lookup failed: %w", err)
	} else if existing != nil {
		return nil, generic.ErrDuplicateUsername
	}
	if existing, err := a.Store.FindUserByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("email lookup failed: %w", err)
	} else if existing != nil {
		return nil, generic.ErrDuplicateEmail
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := a.Now().UTC()
	u := &User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Role:         in.Role,
		EmployeeID:   in.EmployeeID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	a.audit(ctx, actor, generic.AuditUserCreated, u.ID, map[string]any{
		"username": u.Username,
		"role":     u.Role.String(),
	})
	return u, nil
}

// Authenticate checks credentials and stamps the last login. Unknown users,
// inactive users and wrong passwords all return ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := a.Store.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("username lookup failed: %w", err)
	}
	if u == nil || !u.Active || !CheckPassword(u.PasswordHash, password) {
		return nil, generic.ErrInvalidCredentials
	}

	u.LastLogin = a.Now().UTC()
	if err := a.Store.UpdateUser(ctx, *u); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return u, nil
}

// UpdateUser changes name, email, role and the employee link.
func (a *Authenticator) UpdateUser(ctx context.Context, actor generic.UserID, in User) (*User, error) {
	u, err := a.Store.GetUser(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	if !validate.Email(email) {
		return nil, &generic.FieldError{Field: "email", Value: email}
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrUnknownRole, uint8(in.Role))
	}
	if existing, err := a.Store.FindUserByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("email lookup failed: %w", err)
	} else if existing != nil && existing.ID != u.ID {
		return nil, generic.ErrDuplicateEmail
	}

	u.Name = strings.TrimSpace(in.Name)
	u.Email = email
	u.Role = in.Role
	u.EmployeeID = in.EmployeeID
	u.UpdatedAt = a.Now().UTC()
	if err := a.Store.UpdateUser(ctx, *u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	a.audit(ctx, actor, generic.AuditUserUpdated, u.ID, map[string]any{"role": u.Role.String()})
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (a *Authenticator) ChangePassword(ctx context.Context, id generic.UserID, current, next string) error {
	u, err := a.Store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !CheckPassword(u.PasswordHash, current) {
		return generic.ErrInvalidCredentials
	}
	return a.setPassword(ctx, id, u, next)
}

// ResetPassword replaces the password without the current one.
func (a *Authenticator) ResetPassword(ctx context.Context, actor generic.UserID, id generic.UserID, next string) error {
	u, err := a.Store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return a.setPassword(ctx, actor, u, next)
}

func (a *Authenticator) setPassword(ctx context.Context, actor generic.UserID, u *User, next string) error {
	if next == "" {
		return &generic.FieldError{Field: "password", Value: ""}
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = a.Now().UTC()
	if err := a.Store.UpdateUser(ctx, *u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	a.audit(ctx, actor, generic.AuditUserUpdated, u.ID, map[string]any{"password": "changed"})
	return nil
}

// Deactivate disables a user. Idempotent.
func (a *Authenticator) Deactivate(ctx context.Context, actor generic.UserID, id generic.UserID) error {
	u, err := a.Store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !u.Active {
		return nil
	}
	u.Active = false
	u.UpdatedAt = a.Now().UTC()
	if err := a.Store.UpdateUser(ctx, *u); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	a.audit(ctx, actor, generic.AuditUserDeactivated, u.ID, nil)
	return nil
}

func (a *Authenticator) Get(ctx context.Context, id generic.UserID) (*User, error) {
	return a.Store.GetUser(ctx, id)
}

func (a *Authenticator) List(ctx context.Context, includeInactive bool) ([]User, error) {
	return a.Store.ListUsers(ctx, includeInactive)
}

// Authorize loads the user and checks the permission table.
func (a *Authenticator) Authorize(ctx context.Context, id generic.UserID, action Action) (*User, error) {
	u, err := a.Store.GetUser(ctx, id)
	if errors.Is(err, generic.ErrUserNotFound) {
		return nil, generic.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if !Allowed(u, action) {
		return u, fmt.Errorf("%w: %s may not %s", generic.ErrForbidden, u.Role, action)
	}
	return u, nil
}

func (a *Authenticator) audit(ctx context.Context, actor generic.UserID, action generic.AuditAction, id generic.UserID, payload map[string]any) {
	if a.AuditLog == nil {
		return
	}
	a.AuditLog.AppendAudit(ctx, generic.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: a.Now().UTC(),
		ActorID:   actor,
		Action:    action,
		Table:     "users",
		RecordID:  int64(id),
		Payload:   payload,
	})
}
