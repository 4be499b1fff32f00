package access

import "sort"

// =============================================================================
// PERMISSION TABLE
// =============================================================================

// permissions is built once at init and never mutated.
var permissions = map[Role]map[Action]struct{}{
	RoleAdministrator: set(
		ActionCreateUser, ActionEditUser, ActionDeleteUser,
		ActionCreateEmployee, ActionEditEmployee, ActionDeleteEmployee,
		ActionCreateLeave, ActionEditLeave, ActionDeleteLeave,
		ActionGenerateReport, ActionExportData, ActionBackup, ActionSettings,
	),
	RoleManager: set(
		ActionCreateEmployee, ActionEditEmployee,
		ActionCreateLeave, ActionEditLeave,
		ActionGenerateReport, ActionExportData,
	),
	RoleHR: set(
		ActionCreateEmployee, ActionEditEmployee, ActionDeleteEmployee,
		ActionCreateLeave, ActionEditLeave, ActionDeleteLeave,
		ActionGenerateReport, ActionExportData,
	),
	RoleEmployee: set(
		ActionViewOwnData, ActionRequestLeave,
	),
}

func set(actions ...Action) map[Action]struct{} {
	m := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		m[a] = struct{}{}
	}
	return m
}

// RoleAllows reports whether role grants action.
func RoleAllows(role Role, action Action) bool {
	_, ok := permissions[role][action]
	return ok
}

// Allowed reports whether user may perform action. Nil and inactive users
// are never allowed anything.
func Allowed(user *User, action Action) bool {
	if user == nil || !user.Active {
		return false
	}
	return RoleAllows(user.Role, action)
}

// Permissions lists the actions granted to role, sorted.
func Permissions(role Role) []Action {
	out := make([]Action, 0, len(permissions[role]))
	for a := range permissions[role] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
