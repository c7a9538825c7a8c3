/*
scheduler.go - Automated balance snapshot scheduler

PURPOSE:
  Periodically recomputes every member's expected/paid/outstanding
  balance and streak as of the current day and persists the result as a
  daily snapshot row. Snapshots give the UI a history of how each
  member's standing evolved without replaying the full schedule.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Snapshots are keyed by (member, as_of) and upserted, so running the
    check more than once per day is harmless
  - Uses the handler's clock so tests can pin the snapshot date

CONFIGURATION:
  - CheckInterval: How often to snapshot (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSnapshotScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: MemberSnapshots endpoint (reads what this writes)
  - fund/balance.go: Calculator
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lagoon/fund-engine/factory"
	"github.com/lagoon/fund-engine/fund"
)

// SnapshotScheduler writes daily balance snapshots for all members.
type SnapshotScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSnapshotScheduler creates a new scheduler.
func NewSnapshotScheduler(handler *Handler) *SnapshotScheduler {
	return &SnapshotScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *SnapshotScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if ss.Handler.Snapshots == nil {
		log.Println("[Scheduler] No snapshot store configured, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)

	go ss.run()

	log.Printf("[Scheduler] Started with check interval: %v", ss.CheckInterval)
}

// Stop stops the scheduler.
func (ss *SnapshotScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ss *SnapshotScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.snapshotAll()

	for {
		select {
		case <-ss.ticker.C:
			ss.snapshotAll()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SnapshotScheduler) snapshotAll() {
	ctx := context.Background()
	today := ss.Handler.Now()

	settings, err := ss.Handler.Store.LoadSettings(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error loading settings: %v", err)
		return
	}
	calc := factory.FromSettings(settings).Calculator()

	members, err := ss.Handler.Store.ListMembers(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing members: %v", err)
		return
	}
	contributions, err := ss.Handler.Store.ListContributions(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing contributions: %v", err)
		return
	}

	snapshots := make([]fund.BalanceSnapshot, 0, len(members))
	for _, m := range members {
		balance := calc.MemberBalance(m, contributions, today)
		streak := calc.Streak(m, contributions, today)
		snapshots = append(snapshots, fund.BalanceSnapshot{
			MemberID:    m.ID,
			AsOf:        today,
			Expected:    balance.Expected,
			Paid:        balance.Paid,
			Outstanding: balance.Outstanding,
			Streak:      streak,
		})
	}

	if len(snapshots) == 0 {
		return
	}
	if err := ss.Handler.Snapshots.SaveSnapshots(ctx, snapshots); err != nil {
		log.Printf("[Scheduler] Error saving snapshots: %v", err)
		return
	}
	log.Printf("[Scheduler] Saved %d snapshots for %s", len(snapshots), today)
}

// RunNow triggers an immediate snapshot pass (for testing/admin).
func (ss *SnapshotScheduler) RunNow() {
	ss.snapshotAll()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ss *SnapshotScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ss.CheckInterval)
}
