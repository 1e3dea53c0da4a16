package ecs

// column is the type-erased face of Column[T] used by archetypes for whole-row
// operations. Typed access goes through SliceOf and ColumnOf.
type column interface {
	componentType() ComponentType
	len() int
	reserve(n int)
	accepts(v any) bool
	appendValue(v any)
	get(row int) any
	swapRemove(row int) any
}

// Column is a densely packed, growable array of one component type.
// Insertion order is row order.
type Column[T any] struct {
	ct     ComponentType
	values []T
}

func newColumn[T any](ct ComponentType, capacity int) *Column[T] {
	return &Column[T]{ct: ct, values: make([]T, 0, capacity)}
}

func (c *Column[T]) Len() int { return len(c.values) }

// Values returns the backing slice. It stays valid until the next Push or Remove on
// the owning archetype.
func (c *Column[T]) Values() []T { return c.values }

// At returns a pointer to the value in row i.
func (c *Column[T]) At(i int) *T { return &c.values[i] }

func (c *Column[T]) componentType() ComponentType { return c.ct }
func (c *Column[T]) len() int                     { return len(c.values) }

func (c *Column[T]) reserve(n int) {
	if cap(c.values)-len(c.values) >= n {
		return
	}
	grown := make([]T, len(c.values), len(c.values)+n)
	copy(grown, c.values)
	c.values = grown
}

func (c *Column[T]) accepts(v any) bool {
	_, ok := v.(T)
	return ok
}

func (c *Column[T]) appendValue(v any) {
	c.values = append(c.values, v.(T))
}

func (c *Column[T]) get(row int) any { return c.values[row] }

// swapRemove moves the last value into row and truncates. The vacated tail slot is
// zeroed so the column does not keep references alive.
func (c *Column[T]) swapRemove(row int) any {
	removed := c.values[row]
	last := len(c.values) - 1
	c.values[row] = c.values[last]
	var zero T
	c.values[last] = zero
	c.values = c.values[:last]
	return removed
}
