/*
errors.go - Centralized error types for the HR record-keeping core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Missing employees, users, leave records
  2. Validation errors - Malformed input, business rule violations
  3. Store errors - Uniqueness and persistence failures

NOTE:
  The validators and the entitlement calculator never return errors. They
  classify. Only the services and stores surface the errors below.

USAGE:
    if errors.Is(err, generic.ErrDuplicateNationalID) {
        writeError(w, http.StatusConflict, ...)
    }

SEE ALSO:
  - leave/request.go: RejectedError wraps ErrRequestRejected
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLeaveNotFound is returned when a referenced leave record doesn't exist.
	ErrLeaveNotFound = errors.New("leave record not found")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPeriod is returned when a leave period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrMissingDates is returned when a leave submission lacks a start or end date.
	ErrMissingDates = errors.New("leave period requires start and end dates")

	// ErrRequestRejected is returned when a leave request fails a business rule.
	ErrRequestRejected = errors.New("leave request rejected")

	// ErrDuplicateNationalID is returned when an active employee already holds the national ID.
	ErrDuplicateNationalID = errors.New("national id already registered")

	// ErrDuplicateUsername is returned when an active user already holds the username.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrDuplicateEmail is returned when an active user already holds the email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrHireDateImmutable is returned when an update tries to change a set hire date.
	ErrHireDateImmutable = errors.New("hire date cannot be changed once set")

	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when a user lacks the permission for an action.
	ErrForbidden = errors.New("action not permitted")

	// ErrUnknownKind is returned when a leave-kind tag is not recognized.
	ErrUnknownKind = errors.New("unknown leave kind")

	// ErrUnknownRole is returned when a role tag is not recognized.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownAction is returned when an action tag is not recognized.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidPolicy is returned when entitlement constants are not positive.
	ErrInvalidPolicy = errors.New("invalid entitlement policy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError reports a single malformed input field.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// ErrInvalidField is the sentinel behind every FieldError.
var ErrInvalidField = errors.New("invalid field")

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrMissingDates) ||
		errors.Is(err, ErrRequestRejected) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrHireDateImmutable) ||
		errors.Is(err, ErrUnknownKind) ||
		errors.Is(err, ErrUnknownRole) ||
		errors.Is(err, ErrInvalidPolicy)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateNationalID) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrDuplicateEmail)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrLeaveNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
