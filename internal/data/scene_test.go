package data

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleScene = `
archetypes:
  - name: units
    components: [transform, delta_transform, model]
    count: 4
    spawn: unit_spawn
    values:
      delta_transform:
        position: {x: -10, y: 4, z: 2}
      model: {mesh: teapot}
  - name: tiles
    components: [transform, model]
    count: 2
`

func TestLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(sampleScene), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScene(path)
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	if len(s.Archetypes) != 2 || s.Entities() != 6 {
		t.Fatalf("scene = %+v", s)
	}
	units := s.Archetypes[0]
	if units.Spawn != "unit_spawn" || units.Components[1] != "delta_transform" {
		t.Errorf("units = %+v", units)
	}
	node, ok := units.Values["model"]
	if !ok {
		t.Fatal("model value missing")
	}
	var model struct {
		Mesh string `yaml:"mesh"`
	}
	if err := node.Decode(&model); err != nil || model.Mesh != "teapot" {
		t.Errorf("model = %+v, %v", model, err)
	}
}

func TestParseSceneRejects(t *testing.T) {
	cases := map[string]string{
		"empty":          "archetypes: []\n",
		"no name":        "archetypes:\n  - components: [model]\n",
		"duplicate name": "archetypes:\n  - {name: a, components: [model]}\n  - {name: a, components: [model]}\n",
		"no components":  "archetypes:\n  - {name: a}\n",
		"negative count": "archetypes:\n  - {name: a, components: [model], count: -1}\n",
		"repeated comp":  "archetypes:\n  - {name: a, components: [model, model]}\n",
		"unlisted value": "archetypes:\n  - name: a\n    components: [model]\n    values: {transform: {}}\n",
		"bad yaml":       "archetypes: [\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseScene([]byte(raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
