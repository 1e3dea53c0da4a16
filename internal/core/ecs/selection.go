package ecs

import (
	"fmt"
	"sync"
)

// Selection maps requirement position j to the column index holding the j-th
// required type in one archetype shape. A verified selection never repeats an index,
// so the columns it names can be borrowed mutably at the same time.
type Selection struct {
	Indices []int
}

// Resolve computes the selection of req in shape. ok is false when the shape lacks a
// required type; that is a skip condition, not an error.
func Resolve(shape Shape, req Requirement) (sel Selection, ok bool, err error) {
	if err := req.Validate(); err != nil {
		return Selection{}, false, err
	}
	if !shape.Satisfies(req) {
		return Selection{}, false, nil
	}
	indices := make([]int, req.Len())
	for j, ct := range req.types {
		indices[j] = shape.IndexOf(ct)
	}
	sel = Selection{Indices: indices}
	if err := sel.verifyAgainst(shape, req); err != nil {
		return Selection{}, false, err
	}
	return sel, true, nil
}

// verify asserts the indices are pairwise distinct.
func (s Selection) verify() error {
	for i := 1; i < len(s.Indices); i++ {
		for j := 0; j < i; j++ {
			if s.Indices[i] == s.Indices[j] {
				return fmt.Errorf("%w: column %d selected at positions %d and %d",
					ErrAliasConflict, s.Indices[i], j, i)
			}
		}
	}
	return nil
}

// verifyAgainst asserts alias freedom and that each index holds the required type.
func (s Selection) verifyAgainst(shape Shape, req Requirement) error {
	if len(s.Indices) != req.Len() {
		return fmt.Errorf("ecs: selection has %d indices for requirement %s", len(s.Indices), req)
	}
	for j, i := range s.Indices {
		if i < 0 || i >= shape.Len() || !shape.At(i).same(req.At(j)) {
			return fmt.Errorf("%w: selection index %d does not hold %s in %s",
				ErrComponentNotPresent, j, req.At(j), shape)
		}
	}
	return s.verify()
}

type selectionKey struct {
	shape string
	req   string
}

type selectionEntry struct {
	sel Selection
	ok  bool
}

// SelectionCache memoizes Resolve per (shape, requirement) pair. Both halves of the
// key are immutable, so entries never go stale. Safe for concurrent use.
type SelectionCache struct {
	mu      sync.RWMutex
	entries map[selectionKey]selectionEntry
}

func NewSelectionCache() *SelectionCache {
	return &SelectionCache{entries: make(map[selectionKey]selectionEntry, 64)}
}

// Get returns the cached selection, resolving and storing it on first use.
// Incompatible pairs are cached too.
func (c *SelectionCache) Get(shape Shape, req Requirement) (Selection, bool, error) {
	key := selectionKey{shape: shape.Key(), req: req.Key()}
	c.mu.RLock()
	entry, hit := c.entries[key]
	c.mu.RUnlock()
	if hit {
		return entry.sel, entry.ok, nil
	}

	sel, ok, err := Resolve(shape, req)
	if err != nil {
		return Selection{}, false, err
	}
	c.mu.Lock()
	c.entries[key] = selectionEntry{sel: sel, ok: ok}
	c.mu.Unlock()
	return sel, ok, nil
}

func (c *SelectionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
