package ecs

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Row is one full set of component values in shape order.
type Row []any

// Archetype stores every entity of one exact shape, one column per component type
// plus a parallel entity id array. All arrays always have the same length and row i
// of each describes the same entity.
//
// An Archetype is not safe for concurrent mutation. A dispatch holds an exclusive
// borrow for its whole duration; Push, Remove, Get and other dispatches attempted
// while the borrow is held fail with ErrArchetypeBorrowed.
type Archetype struct {
	id          ArchetypeID
	shape       Shape
	entities    []Entity
	columns     []column
	generations []uint32 // per row slot, never shrinks
	borrowed    atomic.Bool
}

func NewArchetype(shape Shape) *Archetype {
	a := &Archetype{
		id:      nextArchetypeID(),
		shape:   shape,
		columns: make([]column, shape.Len()),
	}
	for i, ct := range shape.types {
		a.columns[i] = ct.factory(0)
	}
	return a
}

func (a *Archetype) ID() ArchetypeID { return a.id }
func (a *Archetype) Shape() Shape    { return a.shape }
func (a *Archetype) Len() int        { return len(a.entities) }
func (a *Archetype) IsEmpty() bool   { return len(a.entities) == 0 }

// Entities returns the entity ids in row order. The slice is owned by the archetype
// and is only valid until the next Push or Remove.
func (a *Archetype) Entities() []Entity { return a.entities }

func (a *Archetype) acquire() error {
	if !a.borrowed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: archetype %d", ErrArchetypeBorrowed, a.id)
	}
	return nil
}

func (a *Archetype) release() { a.borrowed.Store(false) }

// Reserve grows every column so that n more rows fit without reallocation.
func (a *Archetype) Reserve(n int) error {
	if err := a.acquire(); err != nil {
		return err
	}
	defer a.release()
	for _, col := range a.columns {
		col.reserve(n)
	}
	if cap(a.entities)-len(a.entities) < n {
		grown := make([]Entity, len(a.entities), len(a.entities)+n)
		copy(grown, a.entities)
		a.entities = grown
	}
	return nil
}

// Push appends one row and returns its handle. The row must hold exactly one value
// per column, in shape order; otherwise nothing is written and ErrShapeMismatch is
// returned.
func (a *Archetype) Push(row Row) (Entity, error) {
	if len(row) != len(a.columns) {
		return Entity{}, fmt.Errorf("%w: archetype %d %s wants %d values, got %d",
			ErrShapeMismatch, a.id, a.shape, len(a.columns), len(row))
	}
	for i, col := range a.columns {
		if !col.accepts(row[i]) {
			return Entity{}, fmt.Errorf("%w: position %d is %T, want %s",
				ErrShapeMismatch, i, row[i], col.componentType())
		}
	}
	if err := a.acquire(); err != nil {
		return Entity{}, err
	}
	defer a.release()

	n := len(a.entities)
	if uint64(n) >= math.MaxUint32 {
		return Entity{}, fmt.Errorf("%w: archetype %d", ErrArchetypeCapacity, a.id)
	}
	for i, col := range a.columns {
		col.appendValue(row[i])
	}
	if n == len(a.generations) {
		a.generations = append(a.generations, 1)
	}
	e := Entity{Row: uint32(n), Archetype: a.id, Generation: a.generations[n]}
	a.entities = append(a.entities, e)
	return e, nil
}

// resolve returns the row index of e, or ErrUnknownEntity.
func (a *Archetype) resolve(e Entity) (int, error) {
	if e.Archetype != a.id || int(e.Row) >= len(a.entities) || a.entities[e.Row] != e {
		return -1, fmt.Errorf("%w: %s in archetype %d", ErrUnknownEntity, e, a.id)
	}
	return int(e.Row), nil
}

// Contains reports whether e currently names a row of this archetype.
func (a *Archetype) Contains(e Entity) bool {
	_, err := a.resolve(e)
	return err == nil
}

// Remove deletes the row of e by moving the last row into its slot. It returns the
// removed values and, when a row was moved, the moved entity's new handle so callers
// can fix up external indexes. moved is the zero Entity when e was the last row.
func (a *Archetype) Remove(e Entity) (removed Row, moved Entity, err error) {
	removed, moved, _, err = a.remove(e)
	return removed, moved, err
}

// remove is Remove that also reports the moved entity's previous handle.
func (a *Archetype) remove(e Entity) (Row, Entity, Entity, error) {
	if err := a.acquire(); err != nil {
		return nil, Entity{}, Entity{}, err
	}
	defer a.release()

	idx, err := a.resolve(e)
	if err != nil {
		return nil, Entity{}, Entity{}, err
	}
	last := len(a.entities) - 1
	removed := make(Row, len(a.columns))
	for i, col := range a.columns {
		removed[i] = col.swapRemove(idx)
	}

	a.generations[idx]++
	var moved, movedFrom Entity
	if idx != last {
		movedFrom = a.entities[last]
		a.generations[last]++
		moved = Entity{Row: uint32(idx), Archetype: a.id, Generation: a.generations[idx]}
		a.entities[idx] = moved
	}
	a.entities[last] = Entity{}
	a.entities = a.entities[:last]
	return removed, moved, movedFrom, nil
}

// Get returns a copy of the row named by e.
func (a *Archetype) Get(e Entity) (Row, error) {
	if err := a.acquire(); err != nil {
		return nil, err
	}
	defer a.release()

	idx, err := a.resolve(e)
	if err != nil {
		return nil, err
	}
	row := make(Row, len(a.columns))
	for i, col := range a.columns {
		row[i] = col.get(idx)
	}
	return row, nil
}

// Columns returns mutable views over the named columns in request order.
func (a *Archetype) Columns(types ...ComponentType) (Columns, error) {
	indices := make([]int, len(types))
	for j, ct := range types {
		i := a.shape.IndexOf(ct)
		if i < 0 {
			return Columns{}, fmt.Errorf("%w: %s in archetype %d %s", ErrComponentNotPresent, ct, a.id, a.shape)
		}
		indices[j] = i
	}
	sel := Selection{Indices: indices}
	if err := sel.verify(); err != nil {
		return Columns{}, err
	}
	return a.view(sel), nil
}

// view builds the access descriptor for a verified selection.
func (a *Archetype) view(sel Selection) Columns {
	cols := make([]column, len(sel.Indices))
	for j, i := range sel.Indices {
		cols[j] = a.columns[i]
	}
	return Columns{archetype: a.id, rows: len(a.entities), cols: cols}
}
