package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/notify"
	"github.com/warp/hr-control/staff"
	"github.com/warp/hr-control/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(2024, m, d)
}

func createEmployee(t *testing.T, store *sqlite.Store, name, nationalID string) staff.Employee {
	t.Helper()
	now := time.Now().UTC()
	e := staff.Employee{
		Name:       name,
		NationalID: nationalID,
		Unit:       "Loja Centro",
		Salary:     generic.MustParseMoney("2500.50"),
		HireDate:   generic.NewTimePoint(2023, time.January, 15),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.CreateEmployee(context.Background(), &e))
	return e
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestEmployee_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	created := createEmployee(t, store, "João Silva", "52998224725")

	got, err := store.GetEmployee(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "João Silva", got.Name)
	assert.Equal(t, "2500.50", got.Salary.String())
	assert.True(t, got.HireDate.Equal(generic.NewTimePoint(2023, time.January, 15)))
	assert.True(t, got.Active)
}

func TestEmployee_Missing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetEmployee(context.Background(), 42)
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)

	err = store.UpdateEmployee(context.Background(), staff.Employee{ID: 42, Name: "x", Salary: generic.NewMoney(0)})
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}

func TestEmployee_ActiveNationalIDUnique(t *testing.T) {
	// GIVEN: An active employee
	store := newTestStore(t)
	ctx := context.Background()
	first := createEmployee(t, store, "João Silva", "52998224725")

	// WHEN: Inserting another active employee with the same national ID
	dup := staff.Employee{Name: "Outro", NationalID: "52998224725", Salary: generic.NewMoney(0), Active: true}
	err := store.CreateEmployee(ctx, &dup)

	// THEN: The partial unique index rejects it
	assert.ErrorIs(t, err, generic.ErrDuplicateNationalID)

	// WHEN: The first is deactivated, the number is free again
	first.Active = false
	require.NoError(t, store.UpdateEmployee(ctx, first))
	require.NoError(t, store.CreateEmployee(ctx, &dup))

	found, err := store.FindActiveByNationalID(ctx, "52998224725")
	require.NoError(t, err)
	assert.Equal(t, dup.ID, found.ID)
}

func TestListEmployees_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createEmployee(t, store, "Maria Santos", "11144477735")
	joao := createEmployee(t, store, "João Silva", "52998224725")
	joao.Active = false
	require.NoError(t, store.UpdateEmployee(ctx, joao))

	active, err := store.ListEmployees(ctx, staff.Filter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Maria Santos", active[0].Name)

	all, err := store.ListEmployees(ctx, staff.Filter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "João Silva", all[0].Name, "ordered by name")

	byQuery, err := store.ListEmployees(ctx, staff.Filter{IncludeInactive: true, Query: "111444"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)

	none, err := store.ListEmployees(ctx, staff.Filter{Unit: "Loja Norte"})
	require.NoError(t, err)
	assert.Empty(t, none)

	gone, err := store.FindActiveByNationalID(ctx, "52998224725")
	require.NoError(t, err)
	assert.Nil(t, gone, "deactivated employees are not found")
}

// =============================================================================
// LEAVE TESTS
// =============================================================================

func TestLeave_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "João Silva", "52998224725")

	rec := leave.Record{
		EmployeeID: emp.ID, Kind: leave.KindMedicalCertificate,
		Start: day(3, 10), End: day(3, 12), Reason: "gripe", Attachment: "atestado.pdf",
	}
	require.NoError(t, store.CreateLeaveRecord(ctx, &rec))
	assert.NotZero(t, rec.ID)

	got, err := store.GetLeaveRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.KindMedicalCertificate, got.Kind)
	assert.Equal(t, "atestado.pdf", got.Attachment)
	assert.Equal(t, 3, leave.DaysOf(*got))

	got.Notes = "entregue"
	require.NoError(t, store.UpdateLeaveRecord(ctx, *got))

	records, err := store.ListLeaveRecords(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "entregue", records[0].Notes)

	require.NoError(t, store.DeleteLeaveRecord(ctx, rec.ID))
	_, err = store.GetLeaveRecord(ctx, rec.ID)
	assert.ErrorIs(t, err, generic.ErrLeaveNotFound)
	assert.ErrorIs(t, store.DeleteLeaveRecord(ctx, rec.ID), generic.ErrLeaveNotFound)
}

func TestLeave_UnknownEmployee(t *testing.T) {
	store := newTestStore(t)
	rec := leave.Record{EmployeeID: 99, Kind: leave.KindVacation, Start: day(1, 1), End: day(1, 2)}
	assert.ErrorIs(t, store.CreateLeaveRecord(context.Background(), &rec), generic.ErrEmployeeNotFound)
}

func TestLeave_Between(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "João Silva", "52998224725")
	for _, p := range []generic.Period{
		{Start: day(3, 1), End: day(3, 5)},
		{Start: day(3, 10), End: day(3, 20)},
		{Start: day(4, 1), End: day(4, 1)},
	} {
		rec := leave.Record{EmployeeID: emp.ID, Kind: leave.KindVacation, Start: p.Start, End: p.End}
		require.NoError(t, store.CreateLeaveRecord(ctx, &rec))
	}

	got, err := store.ListLeaveRecordsBetween(ctx, generic.Period{Start: day(3, 5), End: day(3, 10)})
	require.NoError(t, err)
	assert.Len(t, got, 2, "inclusive on both ends")

	all, err := store.ListLeaveRecordsBetween(ctx, generic.Period{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "João Silva", "52998224725")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx leave.Store) error {
		rec := leave.Record{EmployeeID: emp.ID, Kind: leave.KindVacation, Start: day(5, 1), End: day(5, 2)}
		if err := tx.CreateLeaveRecord(ctx, &rec); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := store.ListLeaveRecords(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLeaveService_OnSQLite(t *testing.T) {
	// GIVEN: The leave service running on the SQLite store
	store := newTestStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "João Silva", "52998224725")

	v := leave.NewValidator(leave.DefaultPolicy())
	v.Now = func() generic.TimePoint { return day(6, 1) }
	svc := leave.NewService(store, v, store)

	// WHEN: Submitting within and then beyond the balance
	_, err := svc.Submit(ctx, 0, leave.Request{EmployeeID: emp.ID, Kind: leave.KindVacation, Start: day(7, 1), End: day(7, 20)})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 0, leave.Request{EmployeeID: emp.ID, Kind: leave.KindVacation, Start: day(8, 1), End: day(8, 11)})

	// THEN: The second is rejected with the remaining 10 days
	var rejected *leave.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 10, rejected.Decision.Remaining)
}

// =============================================================================
// USER, NOTIFICATION AND AUDIT TESTS
// =============================================================================

func TestUsers_UniqueAmongActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := access.User{Username: "rh", Email: "rh@empresa.com", Role: access.RoleHR, Active: true}
	require.NoError(t, store.CreateUser(ctx, &u))

	dup := access.User{Username: "rh", Email: "x@empresa.com", Role: access.RoleHR, Active: true}
	assert.ErrorIs(t, store.CreateUser(ctx, &dup), generic.ErrDuplicateUsername)

	dup = access.User{Username: "rh2", Email: "RH@empresa.com", Role: access.RoleHR, Active: true}
	assert.ErrorIs(t, store.CreateUser(ctx, &dup), generic.ErrDuplicateEmail)

	found, err := store.FindUserByEmail(ctx, "Rh@Empresa.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	u.Active = false
	require.NoError(t, store.UpdateUser(ctx, u))
	missing, err := store.FindUserByUsername(ctx, "rh")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUsers_EmployeeLink(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "Maria Santos", "11144477735")

	u := access.User{Username: "maria", Email: "maria@empresa.com", Role: access.RoleEmployee, EmployeeID: emp.ID, Active: true}
	require.NoError(t, store.CreateUser(ctx, &u))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.EmployeeID)
	assert.Equal(t, access.RoleEmployee, got.Role)

	bad := access.User{Username: "ghost", Email: "ghost@empresa.com", Role: access.RoleEmployee, EmployeeID: 999, Active: true}
	assert.ErrorIs(t, store.CreateUser(ctx, &bad), generic.ErrEmployeeNotFound)
}

func TestNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	u := access.User{Username: "gerente", Email: "g@empresa.com", Role: access.RoleManager, Active: true}
	require.NoError(t, store.CreateUser(ctx, &u))

	old := time.Now().Add(-48 * time.Hour).UTC()
	n := notify.Notification{UserID: u.ID, Key: "leave:1:user:1", Title: "t", Message: "m", Level: notify.LevelWarning, CreatedAt: old}
	require.NoError(t, store.CreateNotification(ctx, &n))

	has, err := store.HasNotification(ctx, "leave:1:user:1")
	require.NoError(t, err)
	assert.True(t, has)

	assert.ErrorIs(t, store.MarkNotificationRead(ctx, u.ID+1, n.ID, time.Now()), notify.ErrNotFound)
	require.NoError(t, store.MarkNotificationRead(ctx, u.ID, n.ID, time.Now()))

	unread, err := store.ListNotifications(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	purged, err := store.PurgeNotifications(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
}

func TestAudit_QueryFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []struct {
		action generic.AuditAction
		table  string
	}{
		{generic.AuditEmployeeCreated, "employees"},
		{generic.AuditLeaveCreated, "leave_records"},
		{generic.AuditLeaveDeleted, "leave_records"},
	}
	for i, e := range entries {
		require.NoError(t, store.AppendAudit(ctx, generic.AuditEntry{
			ID:        string(e.action),
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second),
			ActorID:   1,
			Action:    e.action,
			Table:     e.table,
			RecordID:  int64(i + 1),
			Payload:   map[string]any{"n": i},
		}))
	}

	leaveOnly, err := store.QueryAudit(ctx, generic.AuditFilter{Table: "leave_records"})
	require.NoError(t, err)
	assert.Len(t, leaveOnly, 2)

	deleted, err := store.QueryAudit(ctx, generic.AuditFilter{Actions: []generic.AuditAction{generic.AuditLeaveDeleted}})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, int64(3), deleted[0].RecordID)
	assert.EqualValues(t, 2, deleted[0].Payload["n"])
}

// =============================================================================
// RESET & BACKUP TESTS
// =============================================================================

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createEmployee(t, store, "João Silva", "52998224725")

	require.NoError(t, store.Reset(ctx))

	all, err := store.ListEmployees(ctx, staff.Filter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, all)

	again := createEmployee(t, store, "João Silva", "52998224725")
	assert.Equal(t, generic.EmployeeID(1), again.ID, "sequences restart")
}

func TestBackup_ListAndPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createEmployee(t, store, "João Silva", "52998224725")
	dir := filepath.Join(t.TempDir(), "backups")

	info, err := store.Backup(ctx, dir)
	require.NoError(t, err)
	assert.Positive(t, info.Size)

	// A stale backup from long ago and an unrelated file
	stale := filepath.Join(dir, "hr_backup_20200101_000000.db")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	backups, err := sqlite.ListBackups(dir)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, info.Name, backups[0].Name, "newest first")

	removed, err := sqlite.PruneBackups(dir, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, stale)

	copyStore, err := sqlite.New(info.Path)
	require.NoError(t, err)
	defer copyStore.Close()
	restored, err := copyStore.ListEmployees(ctx, staff.Filter{})
	require.NoError(t, err)
	assert.Len(t, restored, 1)
}

func TestListBackups_MissingDir(t *testing.T) {
	backups, err := sqlite.ListBackups(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}
