package component

// Vec3 is a three-component float vector.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Quat is a rotation quaternion. Deltas add to it component-wise; callers that
// need a unit quaternion call Normalized.
type Quat struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
	W float32 `yaml:"w"`
}

// IdentityQuat is the rotation that leaves every vector unchanged.
var IdentityQuat = Quat{W: 1}

func (q Quat) Add(o Quat) Quat { return Quat{q.X + o.X, q.Y + o.Y, q.Z + o.Z, q.W + o.W} }

func (q Quat) Normalized() Quat {
	n := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if n == 0 {
		return IdentityQuat
	}
	inv := 1 / sqrt32(n)
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Transform places an entity in the world.
type Transform struct {
	Position Vec3 `yaml:"position"`
	Rotation Quat `yaml:"rotation"`
	Scale    Vec3 `yaml:"scale"`
}

// NewTransform returns a transform at pos with identity rotation and unit scale.
func NewTransform(pos Vec3) Transform {
	return Transform{Position: pos, Rotation: IdentityQuat, Scale: Vec3{1, 1, 1}}
}

// DeltaTransform is the per-tick change applied to a Transform by the movement system.
type DeltaTransform struct {
	Position Vec3 `yaml:"position"`
	Rotation Quat `yaml:"rotation"`
	Scale    Vec3 `yaml:"scale"`
}

// Add applies d to every part of t.
func (t *Transform) Add(d DeltaTransform) {
	t.Position = t.Position.Add(d.Position)
	t.Rotation = t.Rotation.Add(d.Rotation)
	t.Scale = t.Scale.Add(d.Scale)
}
