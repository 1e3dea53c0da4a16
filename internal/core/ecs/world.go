package ecs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickStats summarizes one World.Tick.
type TickStats struct {
	Tick       uint64
	Duration   time.Duration
	Dispatches int // (system, archetype) pairs evaluated
	Rows       int // rows evaluated across all dispatches
	Skipped    int // systems that matched no archetype
}

// Removal describes one entity removed through the World.
type Removal struct {
	Entity Entity
	Row    Row
	// MovedFrom and Moved are the old and new handles of the entity that filled the
	// vacated row. Both are zero when the removed row was the last one.
	MovedFrom Entity
	Moved     Entity
}

// World owns a set of archetypes of different shapes and an ordered list of systems.
// Tick applies every system, in registration order, to every archetype whose shape
// holds the system's requirement.
type World struct {
	mu         sync.Mutex // held for a whole tick and for registry changes
	archetypes []*Archetype
	byID       map[ArchetypeID]*Archetype
	bySet      map[bitmask256]*Archetype
	systems    []System
	dispatcher *Dispatcher
	log        *zap.Logger
	tick       uint64
	last       TickStats

	queueMu     sync.Mutex
	removeQueue []Entity
}

type WorldOption func(*worldOptions)

type worldOptions struct {
	log      *zap.Logger
	dispatch DispatcherOptions
}

func WithLogger(log *zap.Logger) WorldOption {
	return func(o *worldOptions) { o.log = log }
}

func WithDispatcher(opts DispatcherOptions) WorldOption {
	return func(o *worldOptions) { o.dispatch = opts }
}

func NewWorld(opts ...WorldOption) *World {
	o := worldOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return &World{
		archetypes:  make([]*Archetype, 0, 16),
		byID:        make(map[ArchetypeID]*Archetype, 16),
		bySet:       make(map[bitmask256]*Archetype, 16),
		systems:     make([]System, 0, 16),
		dispatcher:  NewDispatcher(o.dispatch, o.log),
		log:         o.log,
		removeQueue: make([]Entity, 0, 64),
	}
}

// AddArchetype registers a. At most one archetype per component set is allowed.
func (w *World) AddArchetype(a *Archetype) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.byID[a.id]; ok {
		return fmt.Errorf("ecs: archetype %d already registered", a.id)
	}
	if other, ok := w.bySet[a.shape.mask]; ok {
		return fmt.Errorf("ecs: archetype %d already stores component set %s", other.id, a.shape)
	}
	w.register(a)
	return nil
}

// Archetype returns the archetype storing exactly the component set of shape,
// creating it with shape's column order if none exists yet.
func (w *World) Archetype(shape Shape) *Archetype {
	w.mu.Lock()
	defer w.mu.Unlock()
	if a, ok := w.bySet[shape.mask]; ok {
		return a
	}
	a := NewArchetype(shape)
	w.register(a)
	return a
}

func (w *World) register(a *Archetype) {
	w.archetypes = append(w.archetypes, a)
	w.byID[a.id] = a
	w.bySet[a.shape.mask] = a
	w.log.Debug("archetype registered",
		zap.Uint32("archetype", uint32(a.id)),
		zap.Stringer("shape", a.shape))
}

func (w *World) ArchetypeByID(id ArchetypeID) (*Archetype, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.byID[id]
	return a, ok
}

// Archetypes returns a snapshot of the registered archetypes.
func (w *World) Archetypes() []*Archetype {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Archetype, len(w.archetypes))
	copy(out, w.archetypes)
	return out
}

// Len returns the number of live entities across all archetypes.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, a := range w.archetypes {
		n += a.Len()
	}
	return n
}

// RegisterSystem appends sys to the tick order. Requirements naming a type twice are
// rejected with ErrAliasConflict.
func (w *World) RegisterSystem(sys System) error {
	if sys == nil {
		return errors.New("ecs: nil system")
	}
	req := sys.Requirement()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("register system %s: %w", sys.Name(), err)
	}
	w.mu.Lock()
	w.systems = append(w.systems, sys)
	w.mu.Unlock()
	w.log.Info("system registered",
		zap.String("system", sys.Name()),
		zap.Stringer("requires", req))
	return nil
}

// Dispatcher returns the dispatcher used by Tick.
func (w *World) Dispatcher() *Dispatcher { return w.dispatcher }

func (w *World) Systems() []System {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]System, len(w.systems))
	copy(out, w.systems)
	return out
}

// Tick runs every system over every compatible archetype. A system is applied to all
// of its archetypes before the next system starts. The first failure aborts the tick
// and is returned; effects applied before it stay visible.
func (w *World) Tick() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	w.tick++
	stats := TickStats{Tick: w.tick}
	err := w.runSystems(&stats)
	stats.Duration = time.Since(start)
	w.last = stats
	if err != nil {
		w.log.Error("tick failed", zap.Uint64("tick", w.tick), zap.Error(err))
		return fmt.Errorf("tick %d: %w", w.tick, err)
	}
	return nil
}

func (w *World) runSystems(stats *TickStats) error {
	for _, sys := range w.systems {
		req := sys.Requirement()
		matched := 0
		for _, a := range w.archetypes {
			if !a.shape.Satisfies(req) {
				continue
			}
			ok, err := w.dispatcher.Dispatch(sys, a)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			matched++
			stats.Dispatches++
			stats.Rows += a.Len()
			if ce := w.log.Check(zap.DebugLevel, "dispatched"); ce != nil {
				ce.Write(
					zap.String("system", sys.Name()),
					zap.Uint32("archetype", uint32(a.id)),
					zap.Int("rows", a.Len()),
				)
			}
		}
		if matched == 0 {
			stats.Skipped++
			if ce := w.log.Check(zap.DebugLevel, "system matched no archetype"); ce != nil {
				ce.Write(zap.String("system", sys.Name()), zap.Stringer("requires", req))
			}
		}
	}
	return nil
}

// LastTick returns the stats of the most recent Tick.
func (w *World) LastTick() TickStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Despawn removes e from its archetype immediately.
func (w *World) Despawn(e Entity) (Removal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.despawn(e)
}

func (w *World) despawn(e Entity) (Removal, error) {
	a, ok := w.byID[e.Archetype]
	if !ok {
		return Removal{}, fmt.Errorf("%w: %s has no archetype", ErrUnknownEntity, e)
	}
	row, moved, movedFrom, err := a.remove(e)
	if err != nil {
		return Removal{}, err
	}
	return Removal{Entity: e, Row: row, MovedFrom: movedFrom, Moved: moved}, nil
}

// MarkForRemoval queues e for FlushRemovals. Safe to call at any time, including from
// update functions.
func (w *World) MarkForRemoval(e Entity) {
	w.queueMu.Lock()
	w.removeQueue = append(w.removeQueue, e)
	w.queueMu.Unlock()
}

// FlushRemovals removes every queued entity. Handles that an earlier removal in the
// same flush moved to a new row are followed to that row. Handles that do not resolve
// are skipped and reported in the joined error; the rest of the queue still flushes.
func (w *World) FlushRemovals() ([]Removal, error) {
	w.queueMu.Lock()
	queue := w.removeQueue
	w.removeQueue = make([]Entity, 0, cap(queue))
	w.queueMu.Unlock()
	if len(queue) == 0 {
		return nil, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	removals := make([]Removal, 0, len(queue))
	remap := make(map[Entity]Entity)
	var errs []error
	for _, e := range queue {
		for {
			next, ok := remap[e]
			if !ok {
				break
			}
			e = next
		}
		r, err := w.despawn(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !r.Moved.IsZero() {
			remap[r.MovedFrom] = r.Moved
		}
		removals = append(removals, r)
	}
	if len(errs) > 0 {
		w.log.Warn("removal queue had unknown entities", zap.Int("count", len(errs)))
	}
	return removals, errors.Join(errs...)
}
