/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers and permissions.

MIDDLEWARE STACK:
  1. Logger:       Request logging
  2. Recoverer:    Panic recovery (500 instead of crash)
  3. RequestID:    Unique ID per request for tracing
  4. CORS:         Cross-origin requests for frontend
  5. Authenticate: Bearer token on everything except /api/auth/login
  6. Require:      Per-route permission check

ROUTE GROUPS:
  /api/auth/*           Login, current user, own password
  /api/employees/*      Employee records, balances and leave
  /api/leave/*          Leave validation and edits
  /api/users/*          User administration
  /api/reports/*        Statistics and vacation report
  /api/export/*         Spreadsheet downloads
  /api/notifications/*  Own inbox
  /api/scenarios/*      Demo data
  /api/admin/*          Backups and audit trail

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Authenticate and Require middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/hr-control/access"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/auth/me", h.Me)
			r.Post("/auth/password", h.ChangeOwnPassword)

			// Employee routes. Reads are open to staff roles and to employees
			// on their own record (checked in the handler).
			r.Route("/employees", func(r chi.Router) {
				r.With(Require(staffReaders...)).Get("/", h.ListEmployees)
				r.With(Require(access.ActionCreateEmployee)).Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.With(Require(access.ActionEditEmployee)).Put("/{id}", h.UpdateEmployee)
				r.With(Require(access.ActionDeleteEmployee)).Delete("/{id}", h.DeactivateEmployee)
				r.Get("/{id}/balance", h.GetBalance)
				r.Get("/{id}/leave", h.ListLeave)
				r.With(Require(access.ActionCreateLeave, access.ActionRequestLeave)).Post("/{id}/leave", h.SubmitLeave)
			})

			r.Route("/leave", func(r chi.Router) {
				r.With(Require(access.ActionCreateLeave, access.ActionRequestLeave)).Post("/validate", h.ValidateLeave)
				r.With(Require(access.ActionEditLeave)).Put("/{id}", h.UpdateLeave)
				r.With(Require(access.ActionDeleteLeave)).Delete("/{id}", h.DeleteLeave)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(Require(access.ActionCreateUser, access.ActionEditUser)).Get("/", h.ListUsers)
				r.With(Require(access.ActionCreateUser)).Post("/", h.CreateUser)
				r.With(Require(access.ActionEditUser)).Put("/{id}", h.UpdateUser)
				r.With(Require(access.ActionDeleteUser)).Delete("/{id}", h.DeactivateUser)
				r.With(Require(access.ActionEditUser)).Post("/{id}/password", h.ResetPassword)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(Require(access.ActionGenerateReport))
				r.Get("/statistics", h.GetStatistics)
				r.Get("/vacation", h.GetVacationReport)
			})

			r.Route("/export", func(r chi.Router) {
				r.Use(Require(access.ActionExportData))
				r.Get("/employees.xlsx", h.ExportEmployees)
				r.Get("/leave.xlsx", h.ExportLeave)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Post("/{id}/read", h.MarkNotificationRead)
			})

			r.Route("/scenarios", func(r chi.Router) {
				r.Use(Require(access.ActionSettings))
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(Require(access.ActionBackup)).Post("/backup", h.CreateBackup)
				r.With(Require(access.ActionBackup)).Get("/backups", h.ListBackups)
				r.With(Require(access.ActionBackup)).Post("/backups/prune", h.PruneBackups)
				r.With(Require(access.ActionSettings)).Get("/audit", h.ListAudit)
			})
		})
	})

	return r
}
