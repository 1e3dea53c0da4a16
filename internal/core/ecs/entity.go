package ecs

import (
	"fmt"
	"sync/atomic"
)

// ArchetypeID identifies one archetype for the life of the process.
type ArchetypeID uint32

var lastArchetypeID atomic.Uint32

func nextArchetypeID() ArchetypeID {
	return ArchetypeID(lastArchetypeID.Add(1))
}

// Entity is a lookup key for one row of one archetype. It is not an owning reference.
//
// Generation is the generation of the row slot when the handle was issued. A slot's
// generation increments whenever its occupant leaves, so a handle kept across a
// Remove that vacated or refilled its slot no longer resolves. The zero Entity never
// resolves.
type Entity struct {
	Row        uint32
	Archetype  ArchetypeID
	Generation uint32
}

func (e Entity) IsZero() bool { return e == Entity{} }

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d/%d", e.Archetype, e.Row, e.Generation)
}
