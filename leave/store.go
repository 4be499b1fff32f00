package leave

import (
	"context"

	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/staff"
)

// =============================================================================
// STORE - Record store boundary consumed by the leave engine
// =============================================================================

// Store persists leave records. Missing IDs return generic.ErrLeaveNotFound
// (records) or generic.ErrEmployeeNotFound (employees).
type Store interface {
	GetEmployee(ctx context.Context, id generic.EmployeeID) (*staff.Employee, error)

	// ListLeaveRecords returns an employee's history in no guaranteed order.
	ListLeaveRecords(ctx context.Context, employeeID generic.EmployeeID) ([]Record, error)

	// ListLeaveRecordsBetween returns records of every employee overlapping
	// period. A zero period returns everything.
	ListLeaveRecordsBetween(ctx context.Context, period generic.Period) ([]Record, error)

	GetLeaveRecord(ctx context.Context, id generic.LeaveID) (*Record, error)

	// CreateLeaveRecord assigns rec.ID.
	CreateLeaveRecord(ctx context.Context, rec *Record) error
	UpdateLeaveRecord(ctx context.Context, rec Record) error
	DeleteLeaveRecord(ctx context.Context, id generic.LeaveID) error
}

// TxStore wraps Store with transaction support.
// Use this when the history read and the insert must be atomic.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
