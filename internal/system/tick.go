package system

import (
	"time"

	"github.com/icarus-engine/icarus/internal/core/ecs"
	"github.com/icarus-engine/icarus/internal/core/event"
	coresys "github.com/icarus-engine/icarus/internal/core/system"
)

// EventDispatchSystem delivers the events emitted during the previous frame.
// Phase 0 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Name() string         { return "events" }
func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}

// WorldTickSystem advances the ECS world by one tick. Phase 1 (Update).
type WorldTickSystem struct {
	world *ecs.World
	bus   *event.Bus
}

func NewWorldTickSystem(world *ecs.World, bus *event.Bus) *WorldTickSystem {
	return &WorldTickSystem{world: world, bus: bus}
}

func (s *WorldTickSystem) Name() string         { return "world-tick" }
func (s *WorldTickSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *WorldTickSystem) Update(_ time.Duration) error {
	if err := s.world.Tick(); err != nil {
		return err
	}
	event.Emit(s.bus, event.TickCompleted{Stats: s.world.LastTick()})
	return nil
}
