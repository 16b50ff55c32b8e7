package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/threadly-dev/threadly/shared/logger"
	"github.com/threadly-dev/threadly/shared/middleware/metrics"
)

// ChildrenRepair keeps the denormalized children lists in line with
// parent_id, which is the source of truth for the reply tree.
type ChildrenRepair struct {
	storage ChildrenRepairStorage

	mu           sync.Mutex
	lastRunStats ChildrenRepairStats
}

// ChildrenRepairStats tracks metrics from the last repair run.
type ChildrenRepairStats struct {
	RunAt           time.Time
	ThreadsRepaired int
	DurationMs      int64
	Errors          []string
}

type ChildrenRepairStorage interface {
	RepairChildren(ctx context.Context) (int, error)
}

func NewChildrenRepair(storage ChildrenRepairStorage) *ChildrenRepair {
	return &ChildrenRepair{storage: storage}
}

// StartBackgroundRepair runs RunRepair every interval until ctx is cancelled.
// A non-positive interval disables the worker.
func (r *ChildrenRepair) StartBackgroundRepair(ctx context.Context, interval time.Duration) {
	log := logger.Component("children_repair")
	if interval <= 0 {
		log.Warn("children repair interval not configured, background repair disabled")
		return
	}

	ticker := time.NewTicker(interval)
	log.Info("started children repair", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := r.RunRepair(ctx); err != nil {
					log.Error("children repair failed", "error", err)
				} else {
					stats := r.GetLastRunStats()
					log.Info("children repair completed",
						"threads_repaired", stats.ThreadsRepaired,
						"duration_ms", stats.DurationMs)
				}
			case <-ctx.Done():
				log.Info("children repair shutting down gracefully")
				return
			}
		}
	}()
}

// RunRepair executes a single repair pass. Stats are recorded even when it fails.
// Cached views are not invalidated; a repaired preview shows up once the
// cached entry expires.
func (r *ChildrenRepair) RunRepair(ctx context.Context) error {
	start := time.Now()
	stats := ChildrenRepairStats{RunAt: start, Errors: []string{}}

	repaired, err := r.storage.RepairChildren(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, err.Error())
	}
	stats.ThreadsRepaired = repaired
	stats.DurationMs = time.Since(start).Milliseconds()

	r.mu.Lock()
	r.lastRunStats = stats
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to repair children: %w", err)
	}
	metrics.ChildrenRepaired.Add(float64(repaired))
	return nil
}

func (r *ChildrenRepair) GetLastRunStats() ChildrenRepairStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRunStats
}
