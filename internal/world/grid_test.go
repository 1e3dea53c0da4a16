package world

import (
	"testing"

	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/core/ecs"
)

func TestGridNearby(t *testing.T) {
	g := NewGrid(10)
	a := ecs.Entity{Row: 0, Archetype: 1, Generation: 1}
	b := ecs.Entity{Row: 1, Archetype: 1, Generation: 1}
	c := ecs.Entity{Row: 2, Archetype: 1, Generation: 1}
	g.Add(a, component.Vec3{X: 1, Z: 1})
	g.Add(b, component.Vec3{X: -5, Z: 12}) // cell (-1, 1)
	g.Add(c, component.Vec3{X: 55, Z: 0})

	near := g.Nearby(component.Vec3{})
	if len(near) != 2 {
		t.Fatalf("Nearby = %v", near)
	}
	for _, e := range near {
		if e == c {
			t.Fatal("far entity returned")
		}
	}
	if g.Len() != 3 || g.Cells() != 3 {
		t.Errorf("Len = %d, Cells = %d", g.Len(), g.Cells())
	}
	g.Reset()
	if g.Len() != 0 || len(g.Nearby(component.Vec3{})) != 0 {
		t.Error("Reset left entities behind")
	}
}

func TestGridRebuild(t *testing.T) {
	w := ecs.NewWorld()
	units := w.Archetype(ecs.MustShape(ecs.ComponentOf[component.Transform](), ecs.ComponentOf[component.Model]()))
	other := w.Archetype(ecs.MustShape(ecs.ComponentOf[component.Lifetime]()))
	for i := 0; i < 5; i++ {
		units.Push(ecs.Row{component.NewTransform(component.Vec3{X: float32(i * 100)}), component.Model{}})
	}
	other.Push(ecs.Row{component.Lifetime{Ticks: 1}})

	g := NewGrid(50)
	if err := g.Rebuild(w); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if g.Len() != 5 || g.Cells() != 5 {
		t.Fatalf("Len = %d, Cells = %d", g.Len(), g.Cells())
	}
	near := g.Nearby(component.Vec3{X: 210})
	if len(near) != 1 || near[0] != units.Entities()[2] {
		t.Errorf("Nearby = %v", near)
	}
}
