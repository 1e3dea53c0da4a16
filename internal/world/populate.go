package world

import (
	"fmt"
	"slices"

	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/core/ecs"
	"github.com/icarus-engine/icarus/internal/data"
	"github.com/icarus-engine/icarus/internal/scripting"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ArchetypeSummary describes one archetype created by Populate.
type ArchetypeSummary struct {
	Name     string
	ID       ecs.ArchetypeID
	Shape    string
	Entities int
}

// Summary is the result of populating a world from a scene.
type Summary struct {
	Archetypes []ArchetypeSummary
	Entities   int
}

// Populate creates one archetype per scene entry and pushes its entities. Shared
// values come from the scene; entries naming a spawn function get per-entity
// overrides from the Lua engine, which may be nil when no entry uses one.
func Populate(w *ecs.World, scene *data.Scene, catalog *component.Catalog, lua *scripting.Engine, log *zap.Logger) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var sum Summary
	for _, sa := range scene.Archetypes {
		as, err := populateOne(w, sa, catalog, lua)
		if err != nil {
			return sum, fmt.Errorf("archetype %s: %w", sa.Name, err)
		}
		sum.Archetypes = append(sum.Archetypes, as)
		sum.Entities += as.Entities
		log.Info("archetype populated",
			zap.String("name", as.Name),
			zap.Uint32("id", uint32(as.ID)),
			zap.String("shape", as.Shape),
			zap.Int("entities", as.Entities))
	}
	return sum, nil
}

func populateOne(w *ecs.World, sa data.SceneArchetype, catalog *component.Catalog, lua *scripting.Engine) (ArchetypeSummary, error) {
	shape, entries, err := catalog.Shape(sa.Components)
	if err != nil {
		return ArchetypeSummary{}, err
	}
	base := make(ecs.Row, len(entries))
	for i, e := range entries {
		var node *yaml.Node
		if n, ok := sa.Values[e.Name]; ok {
			node = &n
		}
		if base[i], err = e.Value(node); err != nil {
			return ArchetypeSummary{}, err
		}
	}
	if sa.Spawn != "" {
		if lua == nil || !lua.Has(sa.Spawn) {
			return ArchetypeSummary{}, fmt.Errorf("spawn function %q not loaded", sa.Spawn)
		}
	}

	a := w.Archetype(shape)
	if a.Shape().Key() != shape.Key() {
		return ArchetypeSummary{}, fmt.Errorf("component set %s already stored as %s", shape, a.Shape())
	}
	if err := a.Reserve(sa.Count); err != nil {
		return ArchetypeSummary{}, err
	}
	for i := 0; i < sa.Count; i++ {
		row := slices.Clone(base)
		if sa.Spawn != "" {
			ov, err := lua.Spawn(sa.Spawn, scripting.SpawnContext{Archetype: sa.Name, Index: i, Count: sa.Count})
			if err != nil {
				return ArchetypeSummary{}, fmt.Errorf("entity %d: %w", i, err)
			}
			applyOverrides(row, ov)
		}
		if _, err := a.Push(row); err != nil {
			return ArchetypeSummary{}, fmt.Errorf("entity %d: %w", i, err)
		}
	}
	return ArchetypeSummary{Name: sa.Name, ID: a.ID(), Shape: shape.String(), Entities: sa.Count}, nil
}

// applyOverrides patches the known component values of row in place. Overrides for
// components the row does not hold are ignored.
func applyOverrides(row ecs.Row, ov scripting.SpawnOverrides) {
	for i, v := range row {
		switch c := v.(type) {
		case component.Transform:
			if ov.Position != nil {
				c.Position = *ov.Position
			}
			if ov.Scale != nil {
				c.Scale = *ov.Scale
			}
			row[i] = c
		case component.DeltaTransform:
			if ov.Delta != nil {
				c.Position = *ov.Delta
			}
			row[i] = c
		case component.Lifetime:
			if ov.Lifetime != nil {
				c.Ticks = *ov.Lifetime
			}
			row[i] = c
		case component.Model:
			if ov.Mesh != nil {
				c.Mesh = *ov.Mesh
			}
			row[i] = c
		}
	}
}
