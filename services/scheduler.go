// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// claimRecordRetention is how long audit rows are kept before pruning.
const claimRecordRetention = 30 * 24 * time.Hour

// StartRetentionScheduler prunes old claim audit rows every hour.
func (s *ClaimService) StartRetentionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-claimRecordRetention)
			pruned, err := s.Store.PruneClaims(cutoff)
			if err != nil {
				log.Printf("[Retention] prune failed: %v", err)
				return
			}
			if pruned > 0 {
				log.Printf("[Retention] pruned %d claim record(s) older than %s", pruned, cutoff.Format(time.RFC3339))
			}
		}),
	)
}
