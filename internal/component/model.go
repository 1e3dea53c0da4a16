package component

import "math"

// Model references a mesh by name. Handle is assigned by the renderer and is opaque
// to the engine.
type Model struct {
	Mesh   string `yaml:"mesh"`
	Handle uint32 `yaml:"handle"`
}

// Lifetime counts down one per tick. Entities reaching zero are despawned.
type Lifetime struct {
	Ticks int `yaml:"ticks"`
}

func (l Lifetime) Expired() bool { return l.Ticks <= 0 }

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }
