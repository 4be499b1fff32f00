package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
)

// =============================================================================
// AUTHENTICATION MIDDLEWARE
// =============================================================================

type contextKey string

const userContextKey contextKey = "user"

// currentUser returns the authenticated user stored by Authenticate.
func currentUser(ctx context.Context) *access.User {
	u, _ := ctx.Value(userContextKey).(*access.User)
	return u
}

// actorID is the audit actor of the request, zero when anonymous.
func actorID(r *http.Request) generic.UserID {
	if u := currentUser(r.Context()); u != nil {
		return u.ID
	}
	return 0
}

// Authenticate validates the Bearer token and loads the user. Deactivated
// users are rejected even with an unexpired token.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims, err := h.Tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		user, err := h.Auth.Get(r.Context(), claims.UserID)
		if err != nil || !user.Active {
			writeError(w, http.StatusUnauthorized, "User not found or inactive", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require allows the request when the user's role grants any of actions.
func Require(actions ...access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r.Context())
			for _, a := range actions {
				if access.Allowed(user, a) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Action not permitted", nil)
		})
	}
}

// staffReaders may read any employee's data.
var staffReaders = []access.Action{
	access.ActionCreateEmployee, access.ActionEditEmployee, access.ActionGenerateReport,
}

// canReadEmployee: staff readers see everyone, others only their own record.
func canReadEmployee(u *access.User, id generic.EmployeeID) bool {
	for _, a := range staffReaders {
		if access.Allowed(u, a) {
			return true
		}
	}
	return access.Allowed(u, access.ActionViewOwnData) && u.EmployeeID != 0 && u.EmployeeID == id
}

// canRequestLeave: leave managers file for anyone, others only for themselves.
func canRequestLeave(u *access.User, id generic.EmployeeID) bool {
	if access.Allowed(u, access.ActionCreateLeave) {
		return true
	}
	return access.Allowed(u, access.ActionRequestLeave) && u.EmployeeID != 0 && u.EmployeeID == id
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges credentials for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, "Login failed", err)
		return
	}

	token, expires, err := h.Tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:       token,
		ExpiresAt:   formatTimestamp(expires),
		User:        toUserDTO(*user),
		Permissions: access.Permissions(user.Role),
	})
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	writeJSON(w, http.StatusOK, LoginResponse{
		User:        toUserDTO(*user),
		Permissions: access.Permissions(user.Role),
	})
}

// ChangeOwnPassword requires the current password.
func (h *Handler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	user := currentUser(r.Context())
	if err := h.Auth.ChangePassword(r.Context(), user.ID, req.Current, req.New); err != nil {
		writeDomainError(w, "Failed to change password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
