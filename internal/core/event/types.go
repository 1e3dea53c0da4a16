package event

import "github.com/icarus-engine/icarus/internal/core/ecs"

// TickCompleted is emitted after every successful world tick.
type TickCompleted struct {
	Stats ecs.TickStats
}

// EntityDespawned is emitted for every entity removed during cleanup.
type EntityDespawned struct {
	Entity ecs.Entity
	Row    ecs.Row
}

// EntityMoved is emitted when a removal relocates another entity to a new row.
// Holders of From must switch to To.
type EntityMoved struct {
	From ecs.Entity
	To   ecs.Entity
}
