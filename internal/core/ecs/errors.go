package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntity is returned when a handle does not name a live row of the archetype:
	// it belongs to another archetype, was already removed, or its slot has been reused.
	ErrUnknownEntity = errors.New("ecs: unknown entity")

	// ErrComponentNotPresent is returned when a column request names a type the archetype
	// does not store.
	ErrComponentNotPresent = errors.New("ecs: component not present")

	// ErrAliasConflict is returned when a column request or requirement names the same
	// column twice.
	ErrAliasConflict = errors.New("ecs: alias conflict")

	// ErrSystemExecution matches every *ExecutionError.
	ErrSystemExecution = errors.New("ecs: system execution failure")

	ErrShapeMismatch      = errors.New("ecs: row does not match archetype shape")
	ErrDuplicateComponent = errors.New("ecs: duplicate component in shape")
	ErrEmptyRequirement   = errors.New("ecs: empty requirement")
	ErrArchetypeBorrowed  = errors.New("ecs: archetype is borrowed by another operation")
	ErrArchetypeCapacity  = errors.New("ecs: archetype row capacity exhausted")
)

// ExecutionError reports a per-row update that returned an error or panicked.
// Rows evaluated before the failure keep their updated values.
type ExecutionError struct {
	System    string
	Archetype ArchetypeID
	Row       int
	Cause     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("system %s failed on archetype %d row %d: %v", e.System, e.Archetype, e.Row, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

func (e *ExecutionError) Is(target error) bool { return target == ErrSystemExecution }

// PanicError carries a value recovered from a panicking update function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
