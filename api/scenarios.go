/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for demos and manual testing. Dates are relative to today so the
  balances stay meaningful whenever a scenario is loaded.

AVAILABLE SCENARIOS:
  demo-store:      Two store employees, default users, some history
  balance-edges:   Employees around the accrual threshold
  upcoming-leave:  Leave starting this week, notifications generated

HOW SCENARIOS WORK:
  1. Snapshot the database into the backup directory
  2. Reset database (clear all data, one transaction)
  3. Create the default users
  4. Create employees through the staff service
  5. Import leave history directly into the store (no balance gate)
  6. Record the load and the snapshot name in the audit trail

DEFAULT USERS:
  admin / admin123     administrator
  gerente / gerente123 manager
  rh / rh123           hr

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "demo-store"}

NOTE:
  Scenarios reset the database, users included. Loading is refused
  unless HR_DEMO_SCENARIOS is set; only enable it in development/demo
  environments.

SEE ALSO:
  - handlers.go: Services used to seed
  - cmd/server/main.go: SeedDefaultUsers on an empty database
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/staff"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "demo-store",
		Name:        "Demo Store",
		Description: "Store manager with a year of service and a recent hire",
	},
	{
		ID:          "balance-edges",
		Name:        "Balance Edge Cases",
		Description: "Threshold boundaries, exhausted balance, non-vacation leave, inactive employee",
	},
	{
		ID:          "upcoming-leave",
		Name:        "Upcoming Leave",
		Description: "Leave starting within the week with warnings for managers",
	},
}

var defaultUsers = []access.NewUser{
	{Username: "admin", Password: "admin123", Name: "Administrador", Email: "admin@empresa.com", Role: access.RoleAdministrator},
	{Username: "gerente", Password: "gerente123", Name: "Gerente Geral", Email: "gerente@empresa.com", Role: access.RoleManager},
	{Username: "rh", Password: "rh123", Name: "Recursos Humanos", Email: "rh@empresa.com", Role: access.RoleHR},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario backs up and resets the database, then loads a predefined
// scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if !h.DemoScenarios {
		writeError(w, http.StatusForbidden, "Demo scenarios are disabled", nil)
		return
	}

	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var loader func(context.Context) error
	switch req.ScenarioID {
	case "demo-store":
		loader = h.loadDemoStoreScenario
	case "balance-edges":
		loader = h.loadBalanceEdgesScenario
	case "upcoming-leave":
		loader = h.loadUpcomingLeaveScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	backup, err := h.Store.Backup(ctx, h.BackupDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to back up database before reset", err)
		return
	}
	log.Printf("[Scenarios] Backup written to %s before reset", backup.Path)

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := h.SeedDefaultUsers(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed users", err)
		return
	}
	if err := loader(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.Store.AppendAudit(ctx, generic.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    generic.AuditScenarioLoaded,
		Table:     "database",
		Payload:   map[string]any{"scenario": req.ScenarioID, "backup": backup.Name},
	})

	h.currentScenario = req.ScenarioID
	log.Printf("[Scenarios] Loaded %s", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// SeedDefaultUsers creates the default accounts when no user exists yet.
func (h *Handler) SeedDefaultUsers(ctx context.Context) error {
	existing, err := h.Auth.List(ctx, true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, u := range defaultUsers {
		if _, err := h.Auth.CreateUser(ctx, 0, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	log.Printf("[Scenarios] Seeded %d default users", len(defaultUsers))
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadDemoStoreScenario(ctx context.Context) error {
	today := h.Today()

	joao, err := h.seedEmployee(ctx, staff.Employee{
		Name:       "João Silva",
		NationalID: "529.982.247-25",
		Email:      "joao.silva@empresa.com",
		Phone:      "(11) 98765-4321",
		Unit:       "Loja Centro",
		JobTitle:   "Gerente",
		Salary:     generic.MustParseMoney("5000.00"),
		HireDate:   today.AddDays(-365),
	})
	if err != nil {
		return err
	}
	maria, err := h.seedEmployee(ctx, staff.Employee{
		Name:       "Maria Santos",
		NationalID: "111.444.777-35",
		Email:      "maria.santos@empresa.com",
		Phone:      "(11) 91234-5678",
		Unit:       "Loja Centro",
		JobTitle:   "Vendedor",
		Salary:     generic.MustParseMoney("2500.00"),
		HireDate:   today.AddDays(-180),
	})
	if err != nil {
		return err
	}

	return h.importLeave(ctx,
		leave.Record{EmployeeID: joao.ID, Kind: leave.KindVacation, Start: today.AddDays(-60), End: today.AddDays(-51), Reason: "Férias"},
		leave.Record{EmployeeID: maria.ID, Kind: leave.KindMedicalCertificate, Start: today.AddDays(-20), End: today.AddDays(-19), Reason: "Consulta médica"},
	)
}

func (h *Handler) loadBalanceEdgesScenario(ctx context.Context) error {
	today := h.Today()

	// One month short of the threshold: nothing accrued yet.
	if _, err := h.seedEmployee(ctx, staff.Employee{
		Name:       "Ana Costa",
		NationalID: "390.533.447-05",
		Unit:       "Loja Norte",
		JobTitle:   "Caixa",
		Salary:     generic.MustParseMoney("2100.00"),
		HireDate:   today.AddMonths(-11),
	}); err != nil {
		return err
	}

	// Exactly at the threshold with most of the period used.
	pedro, err := h.seedEmployee(ctx, staff.Employee{
		Name:       "Pedro Lima",
		NationalID: "153.509.460-56",
		Unit:       "Loja Norte",
		JobTitle:   "Estoquista",
		Salary:     generic.MustParseMoney("1900.00"),
		HireDate:   today.AddMonths(-12),
	})
	if err != nil {
		return err
	}

	// Long tenure, only non-vacation leave recorded.
	clara, err := h.seedEmployee(ctx, staff.Employee{
		Name:       "Clara Souza",
		NationalID: "714.602.380-01",
		Unit:       "Escritório",
		JobTitle:   "Analista",
		Salary:     generic.MustParseMoney("4200.00"),
		HireDate:   today.AddMonths(-30),
	})
	if err != nil {
		return err
	}

	inactive, err := h.seedEmployee(ctx, staff.Employee{
		Name:       "Bruno Alves",
		NationalID: "987.654.321-00",
		Unit:       "Loja Norte",
		JobTitle:   "Vendedor",
		Salary:     generic.MustParseMoney("2300.00"),
		HireDate:   today.AddMonths(-40),
	})
	if err != nil {
		return err
	}
	if err := h.Employees.Deactivate(ctx, 0, inactive.ID); err != nil {
		return err
	}

	return h.importLeave(ctx,
		leave.Record{EmployeeID: pedro.ID, Kind: leave.KindVacation, Start: today.AddDays(-40), End: today.AddDays(-16), Reason: "Férias"},
		leave.Record{EmployeeID: clara.ID, Kind: leave.KindMaternity, Start: today.AddMonths(-10), End: today.AddMonths(-10).AddDays(119), Reason: "Licença maternidade"},
		leave.Record{EmployeeID: clara.ID, Kind: leave.KindMedicalCertificate, Start: today.AddDays(-5), End: today.AddDays(-3)},
	)
}

func (h *Handler) loadUpcomingLeaveScenario(ctx context.Context) error {
	if err := h.loadDemoStoreScenario(ctx); err != nil {
		return err
	}
	today := h.Today()

	employees, err := h.Employees.List(ctx, staff.Filter{})
	if err != nil {
		return err
	}
	for i, emp := range employees {
		start := today.AddDays(2 + 3*i)
		if err := h.importLeave(ctx, leave.Record{
			EmployeeID: emp.ID,
			Kind:       leave.KindOther,
			Start:      start,
			End:        start.AddDays(1),
			Reason:     "Compromisso pessoal",
		}); err != nil {
			return err
		}
	}

	created, err := h.Notifications.UpcomingLeave(ctx, today, 7)
	if err != nil {
		return err
	}
	log.Printf("[Scenarios] Generated %d notifications", created)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) seedEmployee(ctx context.Context, emp staff.Employee) (*staff.Employee, error) {
	created, err := h.Employees.Create(ctx, 0, emp)
	if err != nil {
		return nil, fmt.Errorf("seed employee %s: %w", emp.Name, err)
	}
	return created, nil
}

// importLeave writes historical records without the balance gate.
func (h *Handler) importLeave(ctx context.Context, records ...leave.Record) error {
	now := time.Now().UTC()
	for i := range records {
		rec := records[i]
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := h.Store.CreateLeaveRecord(ctx, &rec); err != nil {
			return fmt.Errorf("import leave for employee %d: %w", rec.EmployeeID, err)
		}
	}
	return nil
}
