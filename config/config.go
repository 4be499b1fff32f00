// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/warp/hr-control/leave"
)

type Config struct {
	Port            int
	DBPath          string
	BackupDir       string
	BackupRetention time.Duration

	JWTSecret       string
	EphemeralSecret bool // true when no secret was configured and one was generated
	TokenTTL        time.Duration
	CORSOrigins     []string

	Policy              leave.Policy
	VacationOnlyBalance bool

	NotifyDaysBefore int
	NotifyInterval   time.Duration
	NotifyRetention  time.Duration

	DemoScenarios bool // allows POST /api/scenarios/load to wipe the database
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Values already present in the environment win over .env.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("[Config] No .env file found, using system environment variables")
	}

	var errs []error
	cfg := &Config{
		Port:            getInt("HR_PORT", 8080, &errs),
		DBPath:          getEnv("HR_DB_PATH", "hr.db"),
		BackupDir:       getEnv("BACKUP_DIR", "backups"),
		BackupRetention: getDuration("BACKUP_RETENTION", 30*24*time.Hour, &errs),

		JWTSecret:   os.Getenv("HR_JWT_SECRET"),
		TokenTTL:    getDuration("HR_TOKEN_TTL", time.Hour, &errs),
		CORSOrigins: getList("HR_CORS_ORIGINS", []string{"*"}),

		Policy: leave.Policy{
			ThresholdMonths: getInt("LEAVE_THRESHOLD_MONTHS", 12, &errs),
			DaysPerPeriod:   getInt("LEAVE_DAYS_PER_PERIOD", 30, &errs),
		},
		VacationOnlyBalance: getBool("LEAVE_VACATION_ONLY_BALANCE", false, &errs),

		NotifyDaysBefore: getInt("NOTIFY_DAYS_BEFORE", 7, &errs),
		NotifyInterval:   getDuration("NOTIFY_INTERVAL", time.Hour, &errs),
		NotifyRetention:  getDuration("NOTIFY_RETENTION", 30*24*time.Hour, &errs),

		DemoScenarios: getBool("HR_DEMO_SCENARIOS", false, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		cfg.EphemeralSecret = true
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("HR_PORT out of range: %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("HR_DB_PATH must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("HR_TOKEN_TTL must be positive: %s", c.TokenTTL)
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if c.NotifyDaysBefore <= 0 {
		return fmt.Errorf("NOTIFY_DAYS_BEFORE must be positive: %d", c.NotifyDaysBefore)
	}
	if c.NotifyInterval <= 0 {
		return fmt.Errorf("NOTIFY_INTERVAL must be positive: %s", c.NotifyInterval)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
