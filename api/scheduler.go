/*
scheduler.go - Automated team-production rebuild scheduler

PURPOSE:
  Periodically recomputes every agent's team production from the archived
  (distributed) orders over a trailing window. Incremental updates during
  distribution accumulate rate-scaled amounts, while the rebuild counts raw
  base premiums; the rebuild is the authoritative daily correction.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Each pass calls ProductionLedger.RebuildAll over the trailing window
  - Safe to run concurrently with request traffic: the rebuild writes
    through the same store the handlers use

CONFIGURATION:
  - CheckInterval: How often to rebuild (default: 24 hours)
  - WindowMonths:  Trailing window counted (default: 12)
  - Enabled:       Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRebuildScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerRebuild endpoint (manual rebuild)
  - commission/production.go: RebuildAll
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"
)

// RebuildScheduler handles the periodic team-production rebuild.
type RebuildScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	WindowMonths  int
	Enabled       bool

	ticker  *time.Ticker
	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRebuildScheduler creates a new scheduler.
func NewRebuildScheduler(handler *Handler) *RebuildScheduler {
	return &RebuildScheduler{
		Handler:       handler,
		CheckInterval: 24 * time.Hour,
		WindowMonths:  12,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (rs *RebuildScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if rs.started {
		return
	}
	rs.started = true

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with rebuild interval: %v (window %d months)", rs.CheckInterval, rs.WindowMonths)
}

// Stop stops the scheduler.
func (rs *RebuildScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RebuildScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.rebuild()

	for {
		select {
		case <-rs.ticker.C:
			rs.rebuild()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RebuildScheduler) rebuild() {
	ctx := context.Background()
	start := time.Now()

	log.Printf("[Scheduler] Rebuilding team production at %v", start)

	_, _, ledger := rs.Handler.engine()
	if err := ledger.RebuildAll(ctx, start.UTC(), rs.WindowMonths); err != nil {
		log.Printf("[Scheduler] Rebuild failed: %v", err)
		return
	}

	log.Printf("[Scheduler] Rebuild completed in %v", time.Since(start))
}

// RunNow triggers an immediate rebuild (for testing/admin).
func (rs *RebuildScheduler) RunNow() {
	rs.rebuild()
}

// GetNextRunTime returns when the next scheduled rebuild will occur.
func (rs *RebuildScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(rs.CheckInterval)
}
