// Package retention implements the Retention Sweeper (spec §4.6): bounds
// coordinator memory by evicting terminal job records past the retention
// horizon.
package retention

import (
	"context"
	"time"

	"github.com/distcluster/coordinator/internal/cluster/job"
	"github.com/distcluster/coordinator/internal/logger"
)

// Sweeper periodically evicts old terminal (completed or failed) job
// records from the Job Store.
type Sweeper struct {
	store *job.Store
	log   *logger.Logger

	horizon       time.Duration
	sweepInterval time.Duration
}

func New(store *job.Store, log *logger.Logger, horizon, sweepInterval time.Duration) *Sweeper {
	return &Sweeper{
		store:         store,
		log:           log.With("component", "RetentionSweeper"),
		horizon:       horizon,
		sweepInterval: sweepInterval,
	}
}

// Run blocks, sweeping on sweepInterval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("retention sweep panicked", "panic", r)
		}
	}()

	cutoff := time.Now().Add(-s.horizon)
	evicted := s.store.EvictTerminalBefore(cutoff)
	if evicted > 0 {
		s.log.Info("evicted terminal jobs", "count", evicted)
	}
}
