package ecs

import (
	"errors"
	"sync/atomic"
	"testing"
)

var errRowTwo = errors.New("row two refused")

func serialOpts() DispatcherOptions   { return DispatcherOptions{Workers: 1} }
func parallelOpts() DispatcherOptions { return DispatcherOptions{Workers: 4, ChunkRows: 1, MinParallelRows: 1} }

func moveSystem() System {
	return NewSystem2("move", func(d *delta, p *position) error {
		p.X += d.X
		p.Y += d.Y
		p.Z += d.Z
		return nil
	})
}

// go test -run ^TestDispatchMovesPositions$ ./internal/core/ecs -count 1
func TestDispatchMovesPositions(t *testing.T) {
	for name, opts := range map[string]DispatcherOptions{"serial": serialOpts(), "parallel": parallelOpts()} {
		t.Run(name, func(t *testing.T) {
			a := NewArchetype(MustShape(ComponentOf[position](), ComponentOf[delta]()))
			for i := 0; i < 4; i++ {
				if _, err := a.Push(Row{position{}, delta{-10, 4, 2}}); err != nil {
					t.Fatalf("Push: %v", err)
				}
			}
			d := NewDispatcher(opts, nil)
			ok, err := d.Dispatch(moveSystem(), a)
			if err != nil || !ok {
				t.Fatalf("Dispatch: ok=%v err=%v", ok, err)
			}
			col, _ := ColumnOf[position](a)
			for i, p := range col.Values() {
				if p != (position{-10, 4, 2}) {
					t.Errorf("row %d: %+v", i, p)
				}
			}
			ds, _ := ColumnOf[delta](a)
			for i, v := range ds.Values() {
				if v != (delta{-10, 4, 2}) {
					t.Errorf("delta row %d changed: %+v", i, v)
				}
			}
		})
	}
}

func TestDispatchRequirementOrderIndependent(t *testing.T) {
	build := func() *Archetype {
		a := NewArchetype(MustShape(ComponentOf[position](), ComponentOf[delta]()))
		for i := 0; i < 8; i++ {
			a.Push(Row{position{X: float32(i)}, delta{1, float32(i), -1}})
		}
		return a
	}
	ab := NewSystem2("pos-delta", func(p *position, d *delta) error {
		p.X += d.X
		p.Y += d.Y
		p.Z += d.Z
		return nil
	})
	left, right := build(), build()
	d := NewDispatcher(serialOpts(), nil)
	if _, err := d.Dispatch(moveSystem(), left); err != nil {
		t.Fatalf("Dispatch delta-pos: %v", err)
	}
	if _, err := d.Dispatch(ab, right); err != nil {
		t.Fatalf("Dispatch pos-delta: %v", err)
	}
	l, _ := ColumnOf[position](left)
	r, _ := ColumnOf[position](right)
	for i := range l.Values() {
		if l.Values()[i] != r.Values()[i] {
			t.Errorf("row %d: %+v vs %+v", i, l.Values()[i], r.Values()[i])
		}
	}
}

func TestDispatchParallelVisitsEveryRowOnce(t *testing.T) {
	a := NewArchetype(MustShape(ComponentOf[ident]()))
	const n = 10_000
	if err := a.Reserve(n); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	for i := 0; i < n; i++ {
		a.Push(Row{ident{}})
	}
	var calls atomic.Int64
	inc := NewSystem1("inc", func(c *ident) error {
		c.ID++
		calls.Add(1)
		return nil
	})
	d := NewDispatcher(DispatcherOptions{Workers: 8, ChunkRows: 7, MinParallelRows: 1}, nil)
	for round := 1; round <= 2; round++ {
		if _, err := d.Dispatch(inc, a); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		col, _ := ColumnOf[ident](a)
		for i, c := range col.Values() {
			if c.ID != round {
				t.Fatalf("round %d: row %d visited %d times", round, i, c.ID)
			}
		}
	}
	if calls.Load() != 2*n {
		t.Errorf("calls = %d, want %d", calls.Load(), 2*n)
	}
}

func TestDispatchFailFast(t *testing.T) {
	for name, opts := range map[string]DispatcherOptions{"serial": serialOpts(), "parallel": parallelOpts()} {
		t.Run(name, func(t *testing.T) {
			a := NewArchetype(MustShape(ComponentOf[ident](), ComponentOf[position]()))
			for i := 0; i < 4; i++ {
				a.Push(Row{ident{i}, position{}})
			}
			sys := NewSystem2("refuse-two", func(id *ident, p *position) error {
				if id.ID == 2 {
					return errRowTwo
				}
				p.X = 1
				return nil
			})
			_, err := NewDispatcher(opts, nil).Dispatch(sys, a)
			if !errors.Is(err, ErrSystemExecution) {
				t.Fatalf("err = %v, want ErrSystemExecution", err)
			}
			if !errors.Is(err, errRowTwo) {
				t.Fatalf("err = %v, want cause errRowTwo", err)
			}
			var ee *ExecutionError
			if !errors.As(err, &ee) {
				t.Fatalf("err is %T", err)
			}
			if ee.Row != 2 || ee.System != "refuse-two" || ee.Archetype != a.ID() {
				t.Errorf("ExecutionError = %+v", ee)
			}
			col, _ := ColumnOf[position](a)
			if col.At(2).X != 0 {
				t.Errorf("failing row was written")
			}
			if a.borrowed.Load() {
				t.Errorf("borrow not released after failure")
			}
		})
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	a := NewArchetype(MustShape(ComponentOf[ident]()))
	for i := 0; i < 4; i++ {
		a.Push(Row{ident{i}})
	}
	sys := NewSystem1("boom", func(id *ident) error {
		if id.ID == 2 {
			panic("boom")
		}
		return nil
	})
	_, err := NewDispatcher(serialOpts(), nil).Dispatch(sys, a)
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if pe.Value != "boom" || len(pe.Stack) == 0 {
		t.Errorf("PanicError = %v", pe)
	}
	if !errors.Is(err, ErrSystemExecution) {
		t.Errorf("panic not reported as execution failure: %v", err)
	}
}

func TestDispatchSkipsAndNoops(t *testing.T) {
	d := NewDispatcher(serialOpts(), nil)
	var calls int
	sys := NewSystem1("count", func(*ident) error { calls++; return nil })

	missing := NewArchetype(MustShape(ComponentOf[position]()))
	missing.Push(Row{position{}})
	ok, err := d.Dispatch(sys, missing)
	if err != nil || ok {
		t.Errorf("incompatible: ok=%v err=%v", ok, err)
	}

	empty := NewArchetype(MustShape(ComponentOf[ident]()))
	ok, err = d.Dispatch(sys, empty)
	if err != nil || !ok {
		t.Errorf("empty: ok=%v err=%v", ok, err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestDispatchBorrowedArchetype(t *testing.T) {
	a := NewArchetype(MustShape(ComponentOf[ident]()))
	a.Push(Row{ident{}})
	if err := a.acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer a.release()
	_, err := NewDispatcher(serialOpts(), nil).Dispatch(NewSystem1("noop", func(*ident) error { return nil }), a)
	if !errors.Is(err, ErrArchetypeBorrowed) {
		t.Fatalf("err = %v, want ErrArchetypeBorrowed", err)
	}
}

func TestDispatcherDefaults(t *testing.T) {
	opts := NewDispatcher(DispatcherOptions{ChunkRows: -3}, nil).Options()
	if opts.Workers < 1 || opts.MinParallelRows != defaultMinParallelRows || opts.ChunkRows != 0 {
		t.Errorf("defaults = %+v", opts)
	}
}
