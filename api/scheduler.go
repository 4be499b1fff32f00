/*
scheduler.go - Upcoming-leave notification scheduler

PURPOSE:
  Periodically warns managers, HR and administrators about leave starting
  within the next few days, and purges old read notifications.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each record produces at most one warning per recipient (dedup key), so
    re-running a check is harmless
  - Purging only touches notifications already read

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - DaysBefore:    Warning window in days (default: 7)
  - Retention:     Age after which read notifications are purged
  - Enabled:       Whether scheduler is active (default: true)

USAGE:
  scheduler := NewNotificationScheduler(handler.Notifications)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - notify/notify.go: UpcomingLeave and Purge
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/hr-control/generic"
	"github.com/warp/hr-control/notify"
)

// NotificationScheduler runs the notification checks on a ticker.
type NotificationScheduler struct {
	Notifications *notify.Service
	CheckInterval time.Duration
	DaysBefore    int
	Retention     time.Duration
	Enabled       bool
	Today         func() generic.TimePoint

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewNotificationScheduler creates a scheduler with default settings.
func NewNotificationScheduler(svc *notify.Service) *NotificationScheduler {
	return &NotificationScheduler{
		Notifications: svc,
		CheckInterval: 1 * time.Hour,
		DaysBefore:    7,
		Retention:     30 * 24 * time.Hour,
		Enabled:       true,
		Today:         generic.Today,
	}
}

// Start begins the scheduler. A stopped scheduler can be started again.
func (ns *NotificationScheduler) Start() {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if !ns.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if ns.ticker != nil {
		return
	}

	ns.ticker = time.NewTicker(ns.CheckInterval)
	ns.stop = make(chan struct{})
	ns.wg.Add(1)
	go ns.run()

	log.Printf("[Scheduler] Started with check interval: %v", ns.CheckInterval)
}

// Stop stops the scheduler and waits for a running check to finish.
func (ns *NotificationScheduler) Stop() {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.ticker != nil {
		ns.ticker.Stop()
		close(ns.stop)
		ns.wg.Wait()
		ns.ticker = nil
		log.Println("[Scheduler] Stopped")
	}
}

func (ns *NotificationScheduler) run() {
	defer ns.wg.Done()

	// Run immediately on start
	ns.RunNow(context.Background())

	for {
		select {
		case <-ns.ticker.C:
			ns.RunNow(context.Background())
		case <-ns.stop:
			return
		}
	}
}

// RunNow performs one check and returns the number of notifications created.
func (ns *NotificationScheduler) RunNow(ctx context.Context) int {
	created, err := ns.Notifications.UpcomingLeave(ctx, ns.Today(), ns.DaysBefore)
	if err != nil {
		log.Printf("[Scheduler] Upcoming leave check failed: %v", err)
	}

	if ns.Retention > 0 {
		purged, err := ns.Notifications.Purge(ctx, time.Now(), ns.Retention)
		if err != nil {
			log.Printf("[Scheduler] Purge failed: %v", err)
		} else if purged > 0 {
			log.Printf("[Scheduler] Purged %d read notifications", purged)
		}
	}
	return created
}
