package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-redis/redis/v8"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
)

const (
	cycleLockKey = "scholarship:cycle:lock"
	cycleLockTTL = 30 * time.Minute
)

// ScholarshipCycleJob runs the daily scholarship cycle maintenance: expiring
// awards left pending past their cycle's end and, on the yearly reset date,
// clearing leftover point counters. A redis lock guarantees only one instance
// runs system-wide even with multiple API replicas.
type ScholarshipCycleJob struct {
	ledgerSvc *ledger.LedgerService
	redis     *redis.Client
}

// NewScholarshipCycleJob creates a new scholarship cycle job
func NewScholarshipCycleJob(ledgerSvc *ledger.LedgerService, redisClient *redis.Client) *ScholarshipCycleJob {
	return &ScholarshipCycleJob{
		ledgerSvc: ledgerSvc,
		redis:     redisClient,
	}
}

// Schedule registers the daily run with the scheduler. The yearly reset is
// forced when the run date is the cycle boundary (July 1 by default), so a
// single daily schedule covers both cadences.
func (j *ScholarshipCycleJob) Schedule(scheduler *gocron.Scheduler, cycleMonth time.Month, cycleDay int) error {
	_, err := scheduler.Every(1).Day().At("02:00").SingletonMode().Do(func() {
		now := time.Now().UTC()
		force := now.Month() == cycleMonth && now.Day() == cycleDay
		j.Run(context.Background(), now, force)
	})
	return err
}

// Run executes one cycle-management pass. Safe to invoke multiple times per
// day: a second run on the same date finds nothing left to change.
func (j *ScholarshipCycleJob) Run(ctx context.Context, now time.Time, forceYearly bool) {
	if j.redis != nil {
		ok, err := j.redis.SetNX(ctx, cycleLockKey, now.Format(time.RFC3339), cycleLockTTL).Result()
		if err != nil {
			log.Printf("cycle job: failed to acquire lock, skipping run: %v", err)
			return
		}
		if !ok {
			log.Printf("cycle job: another instance holds the lock, skipping run")
			return
		}
		defer j.redis.Del(ctx, cycleLockKey)
	}

	report, err := j.ledgerSvc.ManageCycles(now, forceYearly)
	if err != nil {
		log.Printf("cycle job: run failed: %v", err)
		return
	}

	log.Printf("cycle job: expired %d awards (%d failures), cleared %d stale counters (force=%v)",
		report.ExpiredAwards, report.FailedAwards, report.ClearedPoints, forceYearly)
}
