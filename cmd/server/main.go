/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the HR Control server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment), apply flag overrides
  2. Initialize SQLite store (migrations run on open)
  3. Create API handler with dependencies
  4. Seed default users on an empty database
  5. Start the notification scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides HR_PORT)
  -db      SQLite database path (overrides HR_DB_PATH)
           Use ":memory:" for in-memory database
  -env     .env file to load (default: .env)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

ENVIRONMENT:
  See config/config.go for the full list.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/api"
	"github.com/warp/hr-control/config"
	"github.com/warp/hr-control/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	envFile := flag.String("env", ".env", "Environment file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if cfg.EphemeralSecret {
		log.Println("[Config] HR_JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, api.Options{
		Policy:              cfg.Policy,
		VacationOnlyBalance: cfg.VacationOnlyBalance,
		Tokens:              access.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		BackupDir:           cfg.BackupDir,
		BackupMaxAge:        cfg.BackupRetention,
		DemoScenarios:       cfg.DemoScenarios,
	})

	if err := handler.SeedDefaultUsers(context.Background()); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	scheduler := api.NewNotificationScheduler(handler.Notifications)
	scheduler.CheckInterval = cfg.NotifyInterval
	scheduler.DaysBefore = cfg.NotifyDaysBefore
	scheduler.Retention = cfg.NotifyRetention
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost%s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
