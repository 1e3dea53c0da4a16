package system

import (
	"time"

	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/core/ecs"
	"github.com/icarus-engine/icarus/internal/core/event"
	coresys "github.com/icarus-engine/icarus/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem queues every expired Lifetime for removal, then flushes the world's
// deferred removal queue and announces what moved. Phase 4 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	bus   *event.Bus
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, bus: bus, log: log}
}

func (s *CleanupSystem) Name() string         { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) error {
	lifetime := ecs.ComponentOf[component.Lifetime]()
	for _, a := range s.world.Archetypes() {
		if !a.Shape().Has(lifetime) {
			continue
		}
		col, err := ecs.ColumnOf[component.Lifetime](a)
		if err != nil {
			return err
		}
		for i, e := range a.Entities() {
			if col.At(i).Expired() {
				s.world.MarkForRemoval(e)
			}
		}
	}

	removals, err := s.world.FlushRemovals()
	for _, r := range removals {
		event.Emit(s.bus, event.EntityDespawned{Entity: r.Entity, Row: r.Row})
		if !r.Moved.IsZero() {
			event.Emit(s.bus, event.EntityMoved{From: r.MovedFrom, To: r.Moved})
		}
	}
	if err != nil {
		// stale handles queued by other code; the rest of the queue was flushed
		s.log.Warn("cleanup skipped unknown entities", zap.Error(err))
	}
	if len(removals) > 0 {
		if ce := s.log.Check(zap.DebugLevel, "entities despawned"); ce != nil {
			ce.Write(zap.Int("count", len(removals)))
		}
	}
	return nil
}
