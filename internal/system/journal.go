package system

import (
	"context"
	"time"

	"github.com/icarus-engine/icarus/internal/core/ecs"
	coresys "github.com/icarus-engine/icarus/internal/core/system"
	"go.uber.org/zap"
)

const maxPendingBatches = 10

// TickWriter stores batches of tick stats for one run.
type TickWriter interface {
	InsertBatch(ctx context.Context, runID string, stats []ecs.TickStats) error
}

// JournalSystem records the stats of every world tick and writes them out in
// batches. Phase 3 (Persist).
type JournalSystem struct {
	world    *ecs.World
	writer   TickWriter
	runID    string
	log      *zap.Logger
	interval int // flush every N recorded ticks
	pending  []ecs.TickStats
	lastTick uint64
	written  int
}

func NewJournalSystem(world *ecs.World, writer TickWriter, runID string, log *zap.Logger, intervalTicks int) *JournalSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	return &JournalSystem{
		world:    world,
		writer:   writer,
		runID:    runID,
		log:      log,
		interval: intervalTicks,
		pending:  make([]ecs.TickStats, 0, intervalTicks),
	}
}

func (s *JournalSystem) Name() string         { return "journal" }
func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) error {
	stats := s.world.LastTick()
	if stats.Tick == 0 || stats.Tick == s.lastTick {
		return nil
	}
	s.lastTick = stats.Tick
	s.pending = append(s.pending, stats)
	if len(s.pending) < s.interval {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.flush(ctx); err != nil && len(s.pending) >= maxPendingBatches*s.interval {
		dropped := len(s.pending) - s.interval
		s.pending = append(s.pending[:0], s.pending[dropped:]...)
		s.log.Warn("journal backlog trimmed", zap.Int("dropped", dropped))
	}
	return nil
}

// Flush writes whatever is pending. Called on shutdown.
func (s *JournalSystem) Flush(ctx context.Context) error {
	return s.flush(ctx)
}

// Written returns the number of tick rows stored so far.
func (s *JournalSystem) Written() int { return s.written }

func (s *JournalSystem) flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.writer.InsertBatch(ctx, s.runID, s.pending); err != nil {
		// keep the batch; the next flush retries it
		s.log.Error("journal flush failed", zap.Int("pending", len(s.pending)), zap.Error(err))
		return err
	}
	s.written += len(s.pending)
	s.pending = s.pending[:0]
	return nil
}
