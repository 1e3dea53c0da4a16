package ecs

import "fmt"

// Columns is the access descriptor of one dispatch or column request: the selected
// columns of one archetype in request order. Row i of every column belongs to the
// same entity, and no column appears twice.
type Columns struct {
	archetype ArchetypeID
	rows      int
	cols      []column
}

func (c Columns) Archetype() ArchetypeID { return c.archetype }

// Rows returns the number of rows visible through the descriptor.
func (c Columns) Rows() int { return c.rows }

// Width returns the number of selected columns.
func (c Columns) Width() int { return len(c.cols) }

// SliceOf returns the j-th selected column as a typed slice. Writes through the slice
// mutate the archetype in place.
func SliceOf[T any](c Columns, j int) ([]T, error) {
	if j < 0 || j >= len(c.cols) {
		return nil, fmt.Errorf("ecs: column %d out of range, %d selected", j, len(c.cols))
	}
	col, ok := c.cols[j].(*Column[T])
	if !ok {
		return nil, fmt.Errorf("%w: column %d holds %s, not %s",
			ErrShapeMismatch, j, c.cols[j].componentType(), ComponentOf[T]())
	}
	return col.values, nil
}

// ColumnOf returns the column of type T in a.
func ColumnOf[T any](a *Archetype) (*Column[T], error) {
	ct := ComponentOf[T]()
	i := a.shape.IndexOf(ct)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s in archetype %d %s", ErrComponentNotPresent, ct, a.id, a.shape)
	}
	return a.columns[i].(*Column[T]), nil
}

// Component returns a pointer to e's value of type T. The pointer is valid until the
// next Push or Remove on a.
func Component[T any](a *Archetype, e Entity) (*T, error) {
	col, err := ColumnOf[T](a)
	if err != nil {
		return nil, err
	}
	if err := a.acquire(); err != nil {
		return nil, err
	}
	defer a.release()
	idx, err := a.resolve(e)
	if err != nil {
		return nil, err
	}
	return col.At(idx), nil
}
