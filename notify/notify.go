/*
notify.go - In-app notifications for upcoming absences

PURPOSE:
  Warns managers, HR and administrators ahead of an employee's leave. A
  periodic job (api.NotificationScheduler) calls UpcomingLeave; users read
  their inbox through the API.

WINDOW:
  A record is "upcoming" when its start day is 1..daysBefore calendar days
  after today. Leave starting today or already running is not announced.

DEDUPLICATION:
  Each notification carries a Key (leave record + recipient). The job runs
  repeatedly over the same window, so a key already present is skipped.

SEE ALSO:
  - api/scheduler.go: Ticker that drives UpcomingLeave and Purge
*/
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/warp/hr-control/access"
	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/leave"
	"github.com/warp/hr-control/staff"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

type Notification struct {
	ID        int64
	UserID    generic.UserID
	Key       string // dedup key, empty for ad-hoc notifications
	Title     string
	Message   string
	Level     Level
	Read      bool
	CreatedAt time.Time
	ReadAt    time.Time
}

// Store persists notifications. Missing IDs return ErrNotFound.
type Store interface {
	CreateNotification(ctx context.Context, n *Notification) error
	HasNotification(ctx context.Context, key string) (bool, error)
	// MarkNotificationRead returns ErrNotFound unless id belongs to userID.
	MarkNotificationRead(ctx context.Context, userID generic.UserID, id int64, at time.Time) error
	ListNotifications(ctx context.Context, userID generic.UserID, unreadOnly bool) ([]Notification, error)

	// PurgeNotifications deletes read notifications created before cutoff.
	PurgeNotifications(ctx context.Context, cutoff time.Time) (int, error)
}

var ErrNotFound = errors.New("notification not found")

// Sources are the read-only views the generator needs.
type Sources struct {
	Employees interface {
		ListEmployees(ctx context.Context, filter staff.Filter) ([]staff.Employee, error)
	}
	Leave interface {
		ListLeaveRecordsBetween(ctx context.Context, period generic.Period) ([]leave.Record, error)
	}
	Users interface {
		ListUsers(ctx context.Context, includeInactive bool) ([]access.User, error)
	}
}

type Service struct {
	Store   Store
	Sources Sources
}

func NewService(store Store, sources Sources) *Service {
	return &Service{Store: store, Sources: sources}
}

// recipientRoles receive upcoming-leave warnings.
var recipientRoles = map[access.Role]bool{
	access.RoleManager:       true,
	access.RoleHR:            true,
	access.RoleAdministrator: true,
}

// Notify creates an ad-hoc notification.
func (s *Service) Notify(ctx context.Context, userID generic.UserID, title, message string, level Level) (*Notification, error) {
	n := &Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Level:     level,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// UpcomingLeave warns every active manager, HR and administrator user about
// each active employee's leave starting within daysBefore days of today.
// Returns the number of notifications created.
func (s *Service) UpcomingLeave(ctx context.Context, today generic.TimePoint, daysBefore int) (int, error) {
	if daysBefore <= 0 {
		return 0, nil
	}

	window := generic.Period{Start: today.AddDays(1), End: today.AddDays(daysBefore)}
	records, err := s.Sources.Leave.ListLeaveRecordsBetween(ctx, window)
	if err != nil {
		return 0, fmt.Errorf("failed to load leave records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	employees, err := s.Sources.Employees.ListEmployees(ctx, staff.Filter{})
	if err != nil {
		return 0, fmt.Errorf("failed to load employees: %w", err)
	}
	active := make(map[generic.EmployeeID]staff.Employee, len(employees))
	for _, e := range employees {
		if e.Active {
			active[e.ID] = e
		}
	}

	users, err := s.Sources.Users.ListUsers(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("failed to load users: %w", err)
	}
	var recipients []access.User
	for _, u := range users {
		if u.Active && recipientRoles[u.Role] {
			recipients = append(recipients, u)
		}
	}

	created := 0
	for _, r := range records {
		if !window.Contains(r.Start) {
			continue
		}
		emp, ok := active[r.EmployeeID]
		if !ok {
			continue
		}
		days := generic.DaysBetween(today, r.Start)
		title := "Upcoming leave: " + r.Kind.Label()
		message := fmt.Sprintf("%s has %s starting in %d day(s) (%s)", emp.Name, r.Kind.Label(), days, r.Start)

		for _, u := range recipients {
			key := fmt.Sprintf("leave:%d:user:%d", r.ID, u.ID)
			exists, err := s.Store.HasNotification(ctx, key)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
			n := &Notification{
				UserID:    u.ID,
				Key:       key,
				Title:     title,
				Message:   message,
				Level:     LevelWarning,
				CreatedAt: time.Now().UTC(),
			}
			if err := s.Store.CreateNotification(ctx, n); err != nil {
				return created, fmt.Errorf("failed to create notification: %w", err)
			}
			created++
		}
	}

	if created > 0 {
		log.Printf("[Notify] Created %d upcoming-leave notifications", created)
	}
	return created, nil
}

func (s *Service) ListForUser(ctx context.Context, userID generic.UserID, unreadOnly bool) ([]Notification, error) {
	return s.Store.ListNotifications(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, userID generic.UserID, id int64) error {
	return s.Store.MarkNotificationRead(ctx, userID, id, time.Now().UTC())
}

// Purge removes read notifications older than maxAge. Unread ones are kept
// regardless of age.
func (s *Service) Purge(ctx context.Context, now time.Time, maxAge time.Duration) (int, error) {
	return s.Store.PurgeNotifications(ctx, now.Add(-maxAge))
}
