package system

import (
	"sync/atomic"
	"time"

	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/core/ecs"
	coresys "github.com/icarus-engine/icarus/internal/core/system"
	"go.uber.org/zap"
)

// DrawList collects what the render system saw during one tick. Rows are
// evaluated concurrently, so every counter is atomic.
type DrawList struct {
	visible atomic.Int64
	culled  atomic.Int64 // zero scale or no mesh
}

// DrawStats is one frame's snapshot of a DrawList.
type DrawStats struct {
	Visible int64
	Culled  int64
}

// Swap returns the counts since the previous Swap and resets them.
func (d *DrawList) Swap() DrawStats {
	return DrawStats{Visible: d.visible.Swap(0), Culled: d.culled.Swap(0)}
}

// NewRender counts every {Transform, Model} row into dl.
func NewRender(dl *DrawList) ecs.System {
	return ecs.NewSystem2("render", func(t *component.Transform, m *component.Model) error {
		if m.Mesh == "" || t.Scale == (component.Vec3{}) {
			dl.culled.Add(1)
			return nil
		}
		dl.visible.Add(1)
		return nil
	})
}

// DrawStatsSystem snapshots the draw list after every world tick.
// Phase 2 (PostUpdate).
type DrawStatsSystem struct {
	list  *DrawList
	last  DrawStats
	total DrawStats
	log   *zap.Logger
}

func NewDrawStatsSystem(list *DrawList, log *zap.Logger) *DrawStatsSystem {
	return &DrawStatsSystem{list: list, log: log}
}

func (s *DrawStatsSystem) Name() string         { return "draw-stats" }
func (s *DrawStatsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DrawStatsSystem) Update(_ time.Duration) error {
	s.last = s.list.Swap()
	s.total.Visible += s.last.Visible
	s.total.Culled += s.last.Culled
	if ce := s.log.Check(zap.DebugLevel, "frame drawn"); ce != nil {
		ce.Write(zap.Int64("visible", s.last.Visible), zap.Int64("culled", s.last.Culled))
	}
	return nil
}

// Last returns the most recent frame.
func (s *DrawStatsSystem) Last() DrawStats { return s.last }

// Total returns the sum over every frame so far.
func (s *DrawStatsSystem) Total() DrawStats { return s.total }
