/*
scheduler.go - Automated period activation scheduler

PURPOSE:
  Periodically checks for fiscal periods whose start date has arrived but
  which have not been activated yet, and runs the activation job for them
  (carry-forward seeding + balance snapshots).

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A period is due when its start date is on or before today and its
    active flag is still false
  - The activation job itself is idempotent, so a crash between check and
    completion is safe: the next tick simply re-runs it

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewActivationScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerActivation endpoint (manual activation)
  - leave/activation.go: The job this scheduler drives
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// ActivationScheduler handles automated period activation.
type ActivationScheduler struct {
	Store         leave.Stores
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewActivationScheduler creates a new scheduler.
func NewActivationScheduler(store leave.Stores, handler *Handler) *ActivationScheduler {
	return &ActivationScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (as *ActivationScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	log.Printf("[Scheduler] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scheduler.
func (as *ActivationScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (as *ActivationScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.checkAndActivate()

	for {
		select {
		case <-as.ticker.C:
			as.checkAndActivate()
		case <-as.stop:
			return
		}
	}
}

func (as *ActivationScheduler) checkAndActivate() {
	ctx := context.Background()
	today := leave.Today()

	log.Printf("[Scheduler] Checking for due periods at %s", today)

	periods, err := as.Store.ListPeriods(ctx)
	if err != nil {
		log.Printf("[Scheduler] Failed to list periods: %v", err)
		return
	}

	for _, p := range periods {
		if p.Active || p.Start.After(today) {
			continue
		}

		log.Printf("[Scheduler] Activating period %s (%s)", p.ID, p.Name)
		report, err := as.Handler.Activator.ActivatePeriod(ctx, p.ID)
		if err != nil {
			log.Printf("[Scheduler] Activation of %s failed: %v", p.ID, err)
			continue
		}
		log.Printf("[Scheduler] Period %s activated: %d processed, %d failed",
			p.ID, report.Processed, report.Failed)
	}
}
