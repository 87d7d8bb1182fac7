package workers

import (
	"context"
	"log"
	"time"

	"reward-calibration-engine/services"
)

// Sweeper evicts stale rate-limit windows and idle device-fingerprint
// associations so the shared tables never grow unboundedly. Correctness
// does not depend on it — stale entries are ignored on next access.
type Sweeper struct {
	Limiter  *services.RateLimiter
	Registry services.DeviceRegistry
}

func NewSweeper(limiter *services.RateLimiter, registry services.DeviceRegistry) *Sweeper {
	return &Sweeper{Limiter: limiter, Registry: registry}
}

// PollSweep runs the eviction pass on a ticker until the context ends.
func PollSweep(ctx context.Context, s *Sweeper, interval time.Duration) {
	log.Println("Starting limiter/registry sweeper...")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper stopped.")
			return
		case <-ticker.C:
			now := time.Now()
			limiterEvicted := s.Limiter.Sweep(now)
			registryEvicted := s.Registry.Sweep(now)
			if limiterEvicted > 0 || registryEvicted > 0 {
				log.Printf("🧹 Swept %d rate-limit window(s), %d device association(s)", limiterEvicted, registryEvicted)
			}
		}
	}
}
