package ecs

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// typeList is an ordered list of component types with its set mask and a stable key
// derived from the ordered ids. Shapes and requirements are both built on it.
type typeList struct {
	types []ComponentType
	mask  bitmask256
	key   string
}

// newTypeList builds the list and reports the first pair of positions holding the
// same type, or (-1, -1).
func newTypeList(types []ComponentType) (typeList, int, int) {
	l := typeList{types: slices.Clone(types)}
	first, second := -1, -1
	var b strings.Builder
	for i, ct := range l.types {
		if first < 0 && l.mask.containsBit(ct.id) {
			for j := 0; j < i; j++ {
				if l.types[j].same(ct) {
					first, second = j, i
					break
				}
			}
		}
		l.mask.set(ct.id)
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(int(ct.id)))
	}
	l.key = b.String()
	return l, first, second
}

func (l typeList) Len() int                  { return len(l.types) }
func (l typeList) At(i int) ComponentType    { return l.types[i] }
func (l typeList) Types() []ComponentType    { return slices.Clone(l.types) }
func (l typeList) Key() string               { return l.key }
func (l typeList) Has(ct ComponentType) bool { return l.IndexOf(ct) >= 0 }

// IndexOf returns the position of ct, or -1.
func (l typeList) IndexOf(ct ComponentType) int {
	if !ct.valid() || !l.mask.containsBit(ct.id) {
		return -1
	}
	for i, t := range l.types {
		if t.same(ct) {
			return i
		}
	}
	return -1
}

func (l typeList) String() string {
	names := make([]string, len(l.types))
	for i, ct := range l.types {
		names[i] = ct.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func checkValid(types []ComponentType) error {
	for i, ct := range types {
		if !ct.valid() {
			return fmt.Errorf("ecs: invalid component type at position %d", i)
		}
	}
	return nil
}

// Shape is the ordered, duplicate-free component layout of an archetype.
type Shape struct {
	typeList
}

// NewShape validates types and returns the shape. Order is preserved and becomes the
// column order of archetypes built from it.
func NewShape(types ...ComponentType) (Shape, error) {
	if err := checkValid(types); err != nil {
		return Shape{}, err
	}
	l, i, j := newTypeList(types)
	if i >= 0 {
		return Shape{}, fmt.Errorf("%w: %s at positions %d and %d", ErrDuplicateComponent, types[i], i, j)
	}
	return Shape{l}, nil
}

// MustShape is NewShape that panics on error. Intended for package-level declarations.
func MustShape(types ...ComponentType) Shape {
	s, err := NewShape(types...)
	if err != nil {
		panic(err)
	}
	return s
}

// Satisfies reports whether the shape holds every type the requirement names.
func (s Shape) Satisfies(r Requirement) bool {
	return s.mask.contains(r.mask)
}

// SameSet reports whether both shapes hold the same component types, in any order.
func (s Shape) SameSet(o Shape) bool {
	return s.mask == o.mask
}

// Requirement is the ordered list of component types a system reads and writes.
type Requirement struct {
	typeList
	dup [2]int
}

// NewRequirement validates types and returns the requirement. A repeated type would
// hand the same column to one update twice and fails with ErrAliasConflict.
func NewRequirement(types ...ComponentType) (Requirement, error) {
	r := requirementOf(types...)
	if err := r.Validate(); err != nil {
		return Requirement{}, err
	}
	return r, nil
}

// requirementOf builds a requirement without validating it. The typed system
// constructors use it and leave validation to World.RegisterSystem.
func requirementOf(types ...ComponentType) Requirement {
	l, i, j := newTypeList(types)
	return Requirement{typeList: l, dup: [2]int{i, j}}
}

// Validate reports whether the requirement is non-empty and alias free.
func (r Requirement) Validate() error {
	if len(r.types) == 0 {
		return ErrEmptyRequirement
	}
	if err := checkValid(r.types); err != nil {
		return err
	}
	if r.dup[0] >= 0 {
		return fmt.Errorf("%w: requirement %s names %s at positions %d and %d",
			ErrAliasConflict, r, r.types[r.dup[0]], r.dup[0], r.dup[1])
	}
	return nil
}
