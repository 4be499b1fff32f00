/*
store.go - Shared persistence contracts

PURPOSE:
  Defines the pieces of the record-store boundary that every domain shares:
  the append-only audit log. Entity-specific
  store interfaces (employees, leave records, users, notifications) are
  declared next to the packages that consume them.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - store/memory/memory.go: In-memory for testing

SEE ALSO:
  - leave/store.go: Leave store with transactional check-then-insert
  - staff/employee.go: Employee store contract
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// AUDIT LOG - Tracks who did what when
// =============================================================================

// AuditEntry records who did what when. Also append-only.
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	ActorID   UserID // zero when the system acted
	Action    AuditAction
	Table     string
	RecordID  int64
	Payload   map[string]any
}

type AuditAction string

const (
	AuditEmployeeCreated     AuditAction = "employee_created"
	AuditEmployeeUpdated     AuditAction = "employee_updated"
	AuditEmployeeDeactivated AuditAction = "employee_deactivated"
	AuditLeaveCreated        AuditAction = "leave_created"
	AuditLeaveUpdated        AuditAction = "leave_updated"
	AuditLeaveDeleted        AuditAction = "leave_deleted"
	AuditUserCreated         AuditAction = "user_created"
	AuditUserUpdated         AuditAction = "user_updated"
	AuditUserDeactivated     AuditAction = "user_deactivated"
	AuditBackup              AuditAction = "backup"
	AuditScenarioLoaded      AuditAction = "scenario_loaded"
)

// AuditLog stores audit entries.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	QueryAudit(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

type AuditFilter struct {
	ActorID *UserID
	Table   string
	Actions []AuditAction
	From    *time.Time
	To      *time.Time
	Limit   int
}
