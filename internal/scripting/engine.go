package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/icarus-engine/icarus/internal/component"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding spawn formulas.
// Single-goroutine access only: scenes are populated before the first tick.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// An empty dir yields an engine with no scripts loaded.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}
	// Shared helpers first, then spawn formulas
	for _, dir := range []string{filepath.Join(scriptsDir, "lib"), scriptsDir} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua source in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Has reports whether a global Lua function named fn exists.
func (e *Engine) Has(fn string) bool {
	_, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	return ok
}

// SpawnContext is passed to a spawn formula for every entity it produces.
type SpawnContext struct {
	Archetype string
	Index     int // 0-based within the archetype
	Count     int
}

// SpawnOverrides replaces parts of the scene's shared component values for one
// entity. Nil fields keep the shared value.
type SpawnOverrides struct {
	Position *component.Vec3
	Delta    *component.Vec3
	Scale    *component.Vec3
	Lifetime *int
	Mesh     *string
}

// Spawn calls the Lua function fn with a context table
// {archetype, index, count} and converts the returned table into overrides.
func (e *Engine) Spawn(fn string, ctx SpawnContext) (SpawnOverrides, error) {
	f, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return SpawnOverrides{}, fmt.Errorf("lua function %s not found", fn)
	}

	// Build context table
	t := e.vm.NewTable()
	t.RawSetString("archetype", lua.LString(ctx.Archetype))
	t.RawSetString("index", lua.LNumber(ctx.Index))
	t.RawSetString("count", lua.LNumber(ctx.Count))

	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return SpawnOverrides{}, fmt.Errorf("lua %s: %w", fn, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return SpawnOverrides{}, nil
	}
	rt, ok := result.(*lua.LTable)
	if !ok {
		return SpawnOverrides{}, fmt.Errorf("lua %s returned %s, want table", fn, result.Type())
	}

	var out SpawnOverrides
	out.Position = vec3Field(rt, "position")
	out.Delta = vec3Field(rt, "delta")
	out.Scale = vec3Field(rt, "scale")
	if v, ok := rt.RawGetString("lifetime").(lua.LNumber); ok {
		n := int(v)
		out.Lifetime = &n
	}
	if v, ok := rt.RawGetString("mesh").(lua.LString); ok {
		s := string(v)
		out.Mesh = &s
	}
	return out, nil
}

// vec3Field reads {x=, y=, z=} from t[name]. Missing axes are zero.
func vec3Field(t *lua.LTable, name string) *component.Vec3 {
	sub, ok := t.RawGetString(name).(*lua.LTable)
	if !ok {
		return nil
	}
	return &component.Vec3{
		X: float32(lua.LVAsNumber(sub.RawGetString("x"))),
		Y: float32(lua.LVAsNumber(sub.RawGetString("y"))),
		Z: float32(lua.LVAsNumber(sub.RawGetString("z"))),
	}
}
