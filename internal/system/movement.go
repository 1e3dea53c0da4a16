package system

import (
	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/core/ecs"
)

// NewMovement applies each entity's DeltaTransform to its Transform once per tick.
func NewMovement() ecs.System {
	return ecs.NewSystem2("movement", func(d *component.DeltaTransform, t *component.Transform) error {
		t.Add(*d)
		return nil
	})
}

// NewAging counts every Lifetime down by one tick. CleanupSystem despawns the
// entities that reach zero.
func NewAging() ecs.System {
	return ecs.NewSystem1("aging", func(l *component.Lifetime) error {
		if l.Ticks > 0 {
			l.Ticks--
		}
		return nil
	})
}
