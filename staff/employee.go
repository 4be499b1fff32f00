// Package staff manages employee records: identity, employment attributes
// and the soft-delete lifecycle that keeps leave history attributable.
package staff

import (
	"context"
	"time"

	"github.com/warp/hr-control/generic"
)

// Employee is a person on the payroll.
type Employee struct {
	ID         generic.EmployeeID
	Name       string
	NationalID string // digits only
	Email      string
	Phone      string // digits only
	Address    string
	Unit       string // store or branch
	JobTitle   string
	Salary     generic.Money // monthly
	HireDate   generic.TimePoint
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter narrows employee listings. Zero value lists active employees.
type Filter struct {
	IncludeInactive bool
	Unit            string
	Query           string // case-insensitive match on name, national ID or email
}

// Store persists employees. Lookups of a missing ID return
// generic.ErrEmployeeNotFound.
type Store interface {
	CreateEmployee(ctx context.Context, emp *Employee) error
	UpdateEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id generic.EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context, filter Filter) ([]Employee, error)
	// FindActiveByNationalID returns nil, nil when no active employee holds id.
	FindActiveByNationalID(ctx context.Context, nationalID string) (*Employee, error)
}
