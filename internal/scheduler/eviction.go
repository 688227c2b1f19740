package scheduler

import (
	"context"
	"time"

	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/pkg/events"
)

// EvictionScheduler sweeps idle sessions out of the store on a fixed period.
// It runs until its context is cancelled; a failing cycle is logged and never
// terminates the loop, and one unsweepable session never blocks the others.
type EvictionScheduler struct {
	sessionRepo *memory.SessionRepository
	publisher   *events.Publisher
	threshold   time.Duration
	interval    time.Duration
	log         logger.ILogger
}

func NewEvictionScheduler(
	sessionRepo *memory.SessionRepository,
	publisher *events.Publisher,
	threshold time.Duration,
	interval time.Duration,
	log logger.ILogger,
) *EvictionScheduler {
	return &EvictionScheduler{
		sessionRepo: sessionRepo,
		publisher:   publisher,
		threshold:   threshold,
		interval:    interval,
		log:         log,
	}
}

// Run blocks until ctx is cancelled.
func (s *EvictionScheduler) Run(ctx context.Context) {
	s.log.Info("scheduler", "Eviction scheduler started", map[string]interface{}{
		"threshold": s.threshold.String(),
		"interval":  s.interval.String(),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler", "Eviction scheduler stopped", nil)
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep runs one eviction cycle. Candidates come from a read-only snapshot;
// each removal is re-checked under the session's own lock so a session touched
// after the snapshot survives.
func (s *EvictionScheduler) sweep(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler", "Sweep cycle panicked", map[string]interface{}{"panic": r})
		}
	}()

	candidates := s.sessionRepo.SnapshotIdleCandidates(s.threshold, now)
	if len(candidates) == 0 {
		return
	}

	removed := 0
	for _, id := range candidates {
		idleFor, ok := s.sessionRepo.RemoveIfIdle(id, s.threshold, now)
		if !ok {
			continue
		}
		removed++
		if err := s.publisher.Publish(events.NewSessionEvicted(id, idleFor)); err != nil {
			s.log.Warn("scheduler", "Failed to publish eviction event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.log.Info("scheduler", "Sweep cycle finished", map[string]interface{}{
		"candidates": len(candidates),
		"removed":    removed,
	})
}
