package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SceneArchetype describes one archetype of a scene and how to fill it.
type SceneArchetype struct {
	Name       string               `yaml:"name"`
	Components []string             `yaml:"components"` // column order
	Count      int                  `yaml:"count"`
	Spawn      string               `yaml:"spawn"`  // optional Lua function producing per-entity overrides
	Values     map[string]yaml.Node `yaml:"values"` // component name → value shared by every entity
}

// Scene is the initial content of a world.
type Scene struct {
	Archetypes []SceneArchetype `yaml:"archetypes"`
}

// Entities returns the total number of entities the scene spawns.
func (s *Scene) Entities() int {
	n := 0
	for _, a := range s.Archetypes {
		n += a.Count
	}
	return n
}

// LoadScene loads a scene yaml file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := ParseScene(raw)
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return s, nil
}

func ParseScene(raw []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	if len(s.Archetypes) == 0 {
		return errors.New("scene has no archetypes")
	}
	names := make(map[string]bool, len(s.Archetypes))
	for i, a := range s.Archetypes {
		if a.Name == "" {
			return fmt.Errorf("archetype %d has no name", i)
		}
		if names[a.Name] {
			return fmt.Errorf("archetype %q declared twice", a.Name)
		}
		names[a.Name] = true
		if len(a.Components) == 0 {
			return fmt.Errorf("archetype %q has no components", a.Name)
		}
		if a.Count < 0 {
			return fmt.Errorf("archetype %q: negative count %d", a.Name, a.Count)
		}
		listed := make(map[string]bool, len(a.Components))
		for _, c := range a.Components {
			if listed[c] {
				return fmt.Errorf("archetype %q lists component %q twice", a.Name, c)
			}
			listed[c] = true
		}
		for c := range a.Values {
			if !listed[c] {
				return fmt.Errorf("archetype %q sets value for unlisted component %q", a.Name, c)
			}
		}
	}
	return nil
}
