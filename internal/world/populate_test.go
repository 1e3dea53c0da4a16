package world

import (
	"testing"

	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/core/ecs"
	"github.com/icarus-engine/icarus/internal/data"
	"github.com/icarus-engine/icarus/internal/scripting"
)

const testScene = `
archetypes:
  - name: units
    components: [transform, delta_transform, model, lifetime]
    count: 4
    spawn: line_spawn
    values:
      delta_transform:
        position: {x: -10, y: 4, z: 2}
      model: {mesh: teapot}
      lifetime: {ticks: 100}
  - name: tiles
    components: [transform, model]
    count: 3
    values:
      model: {mesh: hex}
`

func parseScene(t *testing.T, raw string) *data.Scene {
	t.Helper()
	s, err := data.ParseScene([]byte(raw))
	if err != nil {
		t.Fatalf("ParseScene: %v", err)
	}
	return s
}

func luaEngine(t *testing.T) *scripting.Engine {
	t.Helper()
	e, err := scripting.NewEngine("", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	if err := e.DoString(`
function line_spawn(ctx)
  return { position = { x = ctx.index }, lifetime = ctx.index + 1 }
end`); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestPopulate(t *testing.T) {
	w := ecs.NewWorld()
	sum, err := Populate(w, parseScene(t, testScene), component.DefaultCatalog(), luaEngine(t), nil)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if sum.Entities != 7 || len(sum.Archetypes) != 2 || w.Len() != 7 {
		t.Fatalf("summary = %+v, world has %d", sum, w.Len())
	}

	units, ok := w.ArchetypeByID(sum.Archetypes[0].ID)
	if !ok {
		t.Fatal("units archetype not registered")
	}
	tr, _ := ecs.ColumnOf[component.Transform](units)
	dt, _ := ecs.ColumnOf[component.DeltaTransform](units)
	lt, _ := ecs.ColumnOf[component.Lifetime](units)
	md, _ := ecs.ColumnOf[component.Model](units)
	for i := 0; i < units.Len(); i++ {
		if tr.At(i).Position.X != float32(i) || tr.At(i).Scale != (component.Vec3{X: 1, Y: 1, Z: 1}) {
			t.Errorf("unit %d transform = %+v", i, *tr.At(i))
		}
		if dt.At(i).Position != (component.Vec3{X: -10, Y: 4, Z: 2}) {
			t.Errorf("unit %d delta = %+v", i, *dt.At(i))
		}
		if lt.At(i).Ticks != i+1 {
			t.Errorf("unit %d lifetime = %d", i, lt.At(i).Ticks)
		}
		if md.At(i).Mesh != "teapot" {
			t.Errorf("unit %d model = %+v", i, *md.At(i))
		}
	}

	tiles, _ := w.ArchetypeByID(sum.Archetypes[1].ID)
	tm, _ := ecs.ColumnOf[component.Model](tiles)
	for i, m := range tm.Values() {
		if m.Mesh != "hex" {
			t.Errorf("tile %d model = %+v", i, m)
		}
	}
}

func TestPopulateErrors(t *testing.T) {
	cases := map[string]string{
		"unknown component":  "archetypes:\n  - {name: a, components: [wings], count: 1}\n",
		"missing spawn":      "archetypes:\n  - {name: a, components: [model], count: 1, spawn: absent}\n",
		"bad value":          "archetypes:\n  - name: a\n    components: [lifetime]\n    count: 1\n    values: {lifetime: {ticks: many}}\n",
		"same set reordered": "archetypes:\n  - {name: a, components: [model, transform]}\n  - {name: b, components: [transform, model]}\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Populate(ecs.NewWorld(), parseScene(t, raw), component.DefaultCatalog(), luaEngine(t), nil)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPopulateWithoutLua(t *testing.T) {
	raw := "archetypes:\n  - {name: a, components: [transform], count: 2}\n"
	sum, err := Populate(ecs.NewWorld(), parseScene(t, raw), component.DefaultCatalog(), nil, nil)
	if err != nil || sum.Entities != 2 {
		t.Fatalf("Populate = %+v, %v", sum, err)
	}
}
