package ecs

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMinParallelRows = 256
	chunksPerWorker        = 4
)

// DispatcherOptions tunes the row fan-out. Zero values select defaults.
type DispatcherOptions struct {
	// Workers is the number of goroutines evaluating rows of one dispatch.
	// Defaults to GOMAXPROCS.
	Workers int
	// ChunkRows is the number of consecutive rows a worker takes at a time.
	// Defaults to rows / (Workers * 4), at least 1.
	ChunkRows int
	// MinParallelRows is the archetype size below which rows are evaluated on the
	// calling goroutine. Defaults to 256.
	MinParallelRows int
}

func (o DispatcherOptions) withDefaults() DispatcherOptions {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MinParallelRows <= 0 {
		o.MinParallelRows = defaultMinParallelRows
	}
	if o.ChunkRows < 0 {
		o.ChunkRows = 0
	}
	return o
}

// Dispatcher evaluates one system over one archetype. It resolves and caches the
// selection, borrows the archetype exclusively and fans the rows out over a fixed
// set of workers that take chunks in a shuffled order.
type Dispatcher struct {
	opts  DispatcherOptions
	cache *SelectionCache
	log   *zap.Logger
}

func NewDispatcher(opts DispatcherOptions, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		opts:  opts.withDefaults(),
		cache: NewSelectionCache(),
		log:   log,
	}
}

func (d *Dispatcher) Options() DispatcherOptions { return d.opts }

// Cache exposes the selection cache, mainly for inspection in tests and stats.
func (d *Dispatcher) Cache() *SelectionCache { return d.cache }

// Dispatch evaluates sys over every row of a and blocks until all rows are done or
// one fails. ok is false when a lacks a required column; nothing runs in that case.
// A failing row aborts the remaining rows and is reported as *ExecutionError; rows
// already evaluated keep their effects.
func (d *Dispatcher) Dispatch(sys System, a *Archetype) (ok bool, err error) {
	sel, ok, err := d.cache.Get(a.shape, sys.Requirement())
	if err != nil {
		return false, fmt.Errorf("resolve system %s: %w", sys.Name(), err)
	}
	if !ok {
		return false, nil
	}
	if err := a.acquire(); err != nil {
		return true, err
	}
	defer a.release()

	n := len(a.entities)
	if n == 0 {
		return true, nil
	}
	fn, err := sys.Bind(a.view(sel))
	if err != nil {
		return true, fmt.Errorf("bind system %s: %w", sys.Name(), err)
	}
	if n < d.opts.MinParallelRows || d.opts.Workers == 1 {
		return true, d.runSerial(sys, a.id, fn, n)
	}
	return true, d.runParallel(sys, a.id, fn, n)
}

func (d *Dispatcher) runSerial(sys System, id ArchetypeID, fn RowFunc, n int) error {
	for row := 0; row < n; row++ {
		if err := evaluate(fn, row); err != nil {
			return &ExecutionError{System: sys.Name(), Archetype: id, Row: row, Cause: err}
		}
	}
	return nil
}

func (d *Dispatcher) runParallel(sys System, id ArchetypeID, fn RowFunc, n int) error {
	chunk := d.chunkRows(n)
	chunks := (n + chunk - 1) / chunk
	order := rand.Perm(chunks)
	workers := min(d.opts.Workers, chunks)

	var (
		g      errgroup.Group
		cursor atomic.Int64
		failed atomic.Bool
	)
	g.SetLimit(workers)
	for range workers {
		g.Go(func() error {
			for !failed.Load() {
				k := int(cursor.Add(1) - 1)
				if k >= chunks {
					return nil
				}
				lo := order[k] * chunk
				hi := min(lo+chunk, n)
				for row := lo; row < hi; row++ {
					if failed.Load() {
						return nil
					}
					if err := evaluate(fn, row); err != nil {
						failed.Store(true)
						return &ExecutionError{System: sys.Name(), Archetype: id, Row: row, Cause: err}
					}
				}
			}
			return nil
		})
	}
	err := g.Wait()
	if ce := d.log.Check(zap.DebugLevel, "parallel dispatch"); ce != nil {
		ce.Write(
			zap.String("system", sys.Name()),
			zap.Uint32("archetype", uint32(id)),
			zap.Int("rows", n),
			zap.Int("chunks", chunks),
			zap.Int("workers", workers),
			zap.Bool("failed", err != nil),
		)
	}
	return err
}

func (d *Dispatcher) chunkRows(n int) int {
	if d.opts.ChunkRows > 0 {
		return d.opts.ChunkRows
	}
	return max(1, n/(d.opts.Workers*chunksPerWorker))
}

// evaluate runs one row and turns a panic into a *PanicError.
func evaluate(fn RowFunc, row int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(row)
}
