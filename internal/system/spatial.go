package system

import (
	"time"

	"github.com/icarus-engine/icarus/internal/core/ecs"
	coresys "github.com/icarus-engine/icarus/internal/core/system"
	"github.com/icarus-engine/icarus/internal/world"
)

// SpatialIndexSystem rebuilds the neighbourhood grid from post-tick positions.
// Phase 2 (PostUpdate).
type SpatialIndexSystem struct {
	world *ecs.World
	grid  *world.Grid
}

func NewSpatialIndexSystem(w *ecs.World, grid *world.Grid) *SpatialIndexSystem {
	return &SpatialIndexSystem{world: w, grid: grid}
}

func (s *SpatialIndexSystem) Name() string         { return "spatial-index" }
func (s *SpatialIndexSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SpatialIndexSystem) Update(_ time.Duration) error {
	return s.grid.Rebuild(s.world)
}
