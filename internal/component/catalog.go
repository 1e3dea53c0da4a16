package component

import (
	"fmt"
	"sort"

	"github.com/icarus-engine/icarus/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

// Entry describes one component type that scene files may name.
type Entry struct {
	Name   string
	Type   ecs.ComponentType
	decode func(node *yaml.Node) (any, error)
}

// Value decodes node over the entry's default value. A nil node yields the default.
func (e Entry) Value(node *yaml.Node) (any, error) {
	v, err := e.decode(node)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Name, err)
	}
	return v, nil
}

// Catalog maps scene-file component names to registered component types.
type Catalog struct {
	byName map[string]Entry
}

func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]Entry)}
}

// DefaultCatalog holds every component type defined in this package.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	Register(c, "transform", NewTransform(Vec3{}))
	Register(c, "delta_transform", DeltaTransform{})
	Register(c, "model", Model{})
	Register(c, "lifetime", Lifetime{})
	return c
}

// Register adds T under name with def as the value used for fields a scene omits.
func Register[T any](c *Catalog, name string, def T) error {
	if _, dup := c.byName[name]; dup {
		return fmt.Errorf("component %q already registered", name)
	}
	c.byName[name] = Entry{
		Name: name,
		Type: ecs.ComponentOf[T](),
		decode: func(node *yaml.Node) (any, error) {
			v := def
			if node != nil {
				if err := node.Decode(&v); err != nil {
					return nil, err
				}
			}
			return v, nil
		},
	}
	return nil
}

func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Shape resolves names to entries and builds the shape with the same column order.
func (c *Catalog) Shape(names []string) (ecs.Shape, []Entry, error) {
	entries := make([]Entry, len(names))
	types := make([]ecs.ComponentType, len(names))
	for i, n := range names {
		e, ok := c.byName[n]
		if !ok {
			return ecs.Shape{}, nil, fmt.Errorf("unknown component %q (known: %v)", n, c.Names())
		}
		entries[i] = e
		types[i] = e.Type
	}
	shape, err := ecs.NewShape(types...)
	if err != nil {
		return ecs.Shape{}, nil, err
	}
	return shape, entries, nil
}
