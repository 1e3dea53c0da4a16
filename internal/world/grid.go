package world

import (
	"math"

	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/core/ecs"
)

// Grid buckets entities into square cells on the XZ plane so neighbourhood
// queries only look at a 3x3 block of cells.
// Accessed only from the engine loop goroutine, no locks.
type Grid struct {
	cellSize float32
	cells    map[cellKey][]ecs.Entity
	count    int
}

type cellKey struct {
	cx int32
	cz int32
}

func NewGrid(cellSize float32) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]ecs.Entity),
	}
}

func (g *Grid) toCellCoord(v float32) int32 {
	return int32(math.Floor(float64(v / g.cellSize)))
}

func (g *Grid) key(p component.Vec3) cellKey {
	return cellKey{cx: g.toCellCoord(p.X), cz: g.toCellCoord(p.Z)}
}

// Add places an entity into the cell holding p.
func (g *Grid) Add(e ecs.Entity, p component.Vec3) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], e)
	g.count++
}

// Reset empties the grid, keeping cell storage for reuse.
func (g *Grid) Reset() {
	for k, cell := range g.cells {
		if len(cell) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = cell[:0]
	}
	g.count = 0
}

// Rebuild indexes every entity of w that has a Transform.
func (g *Grid) Rebuild(w *ecs.World) error {
	g.Reset()
	transform := ecs.ComponentOf[component.Transform]()
	for _, a := range w.Archetypes() {
		if !a.Shape().Has(transform) {
			continue
		}
		col, err := ecs.ColumnOf[component.Transform](a)
		if err != nil {
			return err
		}
		for i, e := range a.Entities() {
			g.Add(e, col.At(i).Position)
		}
	}
	return nil
}

// Nearby returns all entities in a 3x3 neighbourhood of cells around p.
// Caller does fine-grained distance filtering.
func (g *Grid) Nearby(p component.Vec3) []ecs.Entity {
	c := g.key(p)
	var result []ecs.Entity
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			result = append(result, g.cells[cellKey{cx: c.cx + dx, cz: c.cz + dz}]...)
		}
	}
	return result
}

// Len returns the number of indexed entities.
func (g *Grid) Len() int { return g.count }

// Cells returns the number of non-empty cells.
func (g *Grid) Cells() int {
	n := 0
	for _, cell := range g.cells {
		if len(cell) > 0 {
			n++
		}
	}
	return n
}
