// Package access holds application users, the role/permission table and the
// credential and session-token plumbing built on top of them.
package access

import (
	"fmt"

	"github.com/warp/hr-control/generic"
)

// =============================================================================
// ROLE - Closed enumeration
// =============================================================================

type Role uint8

const (
	RoleAdministrator Role = iota + 1
	RoleManager
	RoleHR
	RoleEmployee
)

var roleSlugs = map[Role]string{
	RoleAdministrator: "administrator",
	RoleManager:       "manager",
	RoleHR:            "hr",
	RoleEmployee:      "employee",
}

func ParseRole(s string) (Role, error) {
	for r, slug := range roleSlugs {
		if slug == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", generic.ErrUnknownRole, s)
}

func (r Role) Valid() bool { _, ok := roleSlugs[r]; return ok }

func (r Role) String() string {
	if s, ok := roleSlugs[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrUnknownRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// =============================================================================
// ACTION - Closed enumeration
// =============================================================================

// Action is an operation gated by the permission table.
type Action uint8

const (
	ActionCreateUser Action = iota + 1
	ActionEditUser
	ActionDeleteUser
	ActionCreateEmployee
	ActionEditEmployee
	ActionDeleteEmployee
	ActionCreateLeave
	ActionEditLeave
	ActionDeleteLeave
	ActionGenerateReport
	ActionExportData
	ActionBackup
	ActionSettings
	ActionViewOwnData
	ActionRequestLeave
)

var actionSlugs = map[Action]string{
	ActionCreateUser:     "create_user",
	ActionEditUser:       "edit_user",
	ActionDeleteUser:     "delete_user",
	ActionCreateEmployee: "create_employee",
	ActionEditEmployee:   "edit_employee",
	ActionDeleteEmployee: "delete_employee",
	ActionCreateLeave:    "create_leave",
	ActionEditLeave:      "edit_leave",
	ActionDeleteLeave:    "delete_leave",
	ActionGenerateReport: "generate_report",
	ActionExportData:     "export_data",
	ActionBackup:         "backup",
	ActionSettings:       "settings",
	ActionViewOwnData:    "view_own_data",
	ActionRequestLeave:   "request_leave",
}

func ParseAction(s string) (Action, error) {
	for a, slug := range actionSlugs {
		if slug == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", generic.ErrUnknownAction, s)
}

func (a Action) Valid() bool { _, ok := actionSlugs[a]; return ok }

func (a Action) String() string {
	if s, ok := actionSlugs[a]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", generic.ErrUnknownAction, uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
