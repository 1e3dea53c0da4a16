package component

import (
	"errors"
	"testing"

	"github.com/icarus-engine/icarus/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

func TestTransformAdd(t *testing.T) {
	tr := NewTransform(Vec3{1, 2, 3})
	tr.Add(DeltaTransform{
		Position: Vec3{-10, 4, 2},
		Rotation: Quat{X: 0.5},
		Scale:    Vec3{1, 0, 0},
	})
	if tr.Position != (Vec3{-9, 6, 5}) {
		t.Errorf("Position = %+v", tr.Position)
	}
	if tr.Rotation != (Quat{X: 0.5, W: 1}) {
		t.Errorf("Rotation = %+v", tr.Rotation)
	}
	if tr.Scale != (Vec3{2, 1, 1}) {
		t.Errorf("Scale = %+v", tr.Scale)
	}
}

func TestQuatNormalized(t *testing.T) {
	if got := (Quat{}).Normalized(); got != IdentityQuat {
		t.Errorf("zero quat normalized to %+v", got)
	}
	if got := (Quat{W: 4}).Normalized(); got != IdentityQuat {
		t.Errorf("Normalized = %+v", got)
	}
}

func TestCatalogDecodesOverDefaults(t *testing.T) {
	c := DefaultCatalog()
	e, ok := c.Lookup("transform")
	if !ok {
		t.Fatal("transform not registered")
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte("position: {x: 5}\n"), &node); err != nil {
		t.Fatal(err)
	}
	v, err := e.Value(node.Content[0])
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	tr, ok := v.(Transform)
	if !ok {
		t.Fatalf("decoded %T", v)
	}
	if tr.Position.X != 5 || tr.Scale != (Vec3{1, 1, 1}) || tr.Rotation != IdentityQuat {
		t.Errorf("decoded %+v", tr)
	}

	v, err = e.Value(nil)
	if err != nil || v.(Transform) != NewTransform(Vec3{}) {
		t.Errorf("default = %v, %v", v, err)
	}
}

func TestCatalogShape(t *testing.T) {
	c := DefaultCatalog()
	shape, entries, err := c.Shape([]string{"model", "transform"})
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if shape.Len() != 2 || entries[0].Name != "model" {
		t.Fatalf("shape %s entries %v", shape, entries)
	}
	if shape.IndexOf(ecs.ComponentOf[Transform]()) != 1 {
		t.Errorf("column order not preserved: %s", shape)
	}
	if _, _, err := c.Shape([]string{"transform", "wings"}); err == nil {
		t.Error("unknown name accepted")
	}
	if _, _, err := c.Shape([]string{"model", "model"}); !errors.Is(err, ecs.ErrDuplicateComponent) {
		t.Errorf("duplicate: err = %v", err)
	}
	if err := Register(c, "model", Model{}); err == nil {
		t.Error("duplicate registration accepted")
	}
}
