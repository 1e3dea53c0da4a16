package ecs

import (
	"fmt"
	"reflect"
	"sync"
)

// MaxComponentTypes is the number of distinct component types a process can register.
// Shape masks are 256 bits wide.
const MaxComponentTypes = 256

// ComponentID is the dense registry index of a component type.
type ComponentID uint8

// ComponentType is the runtime tag of one Go component type. Two tags are equal
// exactly when they describe the same Go type.
type ComponentType struct {
	id      ComponentID
	typ     reflect.Type
	factory func(capacity int) column
}

func (c ComponentType) ID() ComponentID    { return c.id }
func (c ComponentType) Type() reflect.Type { return c.typ }

func (c ComponentType) String() string {
	if c.typ == nil {
		return "<invalid>"
	}
	return c.typ.String()
}

func (c ComponentType) valid() bool { return c.typ != nil }

func (c ComponentType) same(o ComponentType) bool { return c.typ == o.typ }

// componentRegistry maps Go types to dense ids. Types are registered lazily and never
// unregistered, so ids are stable for the life of the process.
type componentRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]ComponentType
	byID   []ComponentType
}

var components = componentRegistry{
	byType: make(map[reflect.Type]ComponentType, 32),
	byID:   make([]ComponentType, 0, 32),
}

// ComponentOf returns the component type for T, registering it on first use.
// It panics when more than MaxComponentTypes types are registered.
func ComponentOf[T any]() ComponentType {
	t := reflect.TypeFor[T]()

	components.mu.RLock()
	ct, ok := components.byType[t]
	components.mu.RUnlock()
	if ok {
		return ct
	}

	components.mu.Lock()
	defer components.mu.Unlock()
	if ct, ok := components.byType[t]; ok {
		return ct
	}
	if len(components.byID) >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: cannot register component %s: %d component types already registered", t, MaxComponentTypes))
	}
	ct = ComponentType{id: ComponentID(len(components.byID)), typ: t}
	ct.factory = func(capacity int) column { return newColumn[T](ct, capacity) }
	components.byType[t] = ct
	components.byID = append(components.byID, ct)
	return ct
}

// LookupComponent returns the registered component type for t, if any.
func LookupComponent(t reflect.Type) (ComponentType, bool) {
	components.mu.RLock()
	defer components.mu.RUnlock()
	ct, ok := components.byType[t]
	return ct, ok
}

// RegisteredComponents returns the number of registered component types.
func RegisteredComponents() int {
	components.mu.RLock()
	defer components.mu.RUnlock()
	return len(components.byID)
}
