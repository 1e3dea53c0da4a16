package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/icarus-engine/icarus/internal/component"
	"github.com/icarus-engine/icarus/internal/config"
	"github.com/icarus-engine/icarus/internal/core/ecs"
	"github.com/icarus-engine/icarus/internal/core/event"
	coresys "github.com/icarus-engine/icarus/internal/core/system"
	"github.com/icarus-engine/icarus/internal/data"
	"github.com/icarus-engine/icarus/internal/persist"
	"github.com/icarus-engine/icarus/internal/scripting"
	"github.com/icarus-engine/icarus/internal/system"
	"github.com/icarus-engine/icarus/internal/world"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var printer = message.NewPrinter(language.English)

func printBanner(runID uuid.UUID) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               Icarus  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      archetype ECS · headless engine      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mrun:\033[0m %s\n\n", runID)
}

func printSection(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	numStr := printer.Sprint(value)
	dotsLen := max(3, 42-len(label)-len(numStr))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Engine ─────────────────────────────────────────────────────────

type journal struct {
	db    *persist.DB
	runs  *persist.RunRepo
	ticks *persist.TickRepo
}

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("ICARUS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Logging.Level))
	log, err := newLogger(cfg.Logging, level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	runID := uuid.New()
	log = log.With(zap.Stringer("run", runID))
	printBanner(runID)

	// 3. Optional profiler
	if cfg.Profile.Mode != "" {
		defer profile.Start(profileMode(cfg.Profile.Mode), profile.ProfilePath(cfg.Profile.Dir), profile.NoShutdownHook, profile.Quiet).Stop()
		printOK(fmt.Sprintf("%s profile → %s", cfg.Profile.Mode, cfg.Profile.Dir))
	}

	// 4. Optional tick journal
	var jr *journal
	if cfg.Journal.Enabled {
		printSection("journal")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		jr, err = openJournal(ctx, cfg.Journal, log)
		cancel()
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		defer jr.db.Close()
		fmt.Println()
	}

	// 5. Scripts and scene
	printSection("scene")
	lua, err := scripting.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	defer lua.Close()

	scene, err := data.LoadScene(cfg.Scene.Path)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}

	ecsWorld := ecs.NewWorld(
		ecs.WithLogger(log),
		ecs.WithDispatcher(ecs.DispatcherOptions{
			Workers:         cfg.Engine.Workers,
			ChunkRows:       cfg.Engine.ChunkRows,
			MinParallelRows: cfg.Engine.MinParallelRows,
		}),
	)
	summary, err := world.Populate(ecsWorld, scene, component.DefaultCatalog(), lua, log)
	if err != nil {
		return fmt.Errorf("populate world: %w", err)
	}
	for _, a := range summary.Archetypes {
		printStat(a.Name, a.Entities)
	}
	printStat("entities", summary.Entities)
	fmt.Println()

	if jr != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := jr.runs.Start(ctx, persist.RunInfo{
			ID:       runID,
			Scene:    cfg.Scene.Path,
			Workers:  ecsWorld.Dispatcher().Options().Workers,
			Entities: summary.Entities,
		})
		cancel()
		if err != nil {
			return err
		}
	}

	// 6. Register ECS systems, then loop systems with the runner
	draw := &system.DrawList{}
	for _, sys := range []ecs.System{system.NewMovement(), system.NewAging(), system.NewRender(draw)} {
		if err := ecsWorld.RegisterSystem(sys); err != nil {
			return err
		}
	}

	bus := event.NewBus()
	var tickTime time.Duration
	event.Subscribe(bus, func(e event.TickCompleted) { tickTime += e.Stats.Duration })
	var despawned int
	event.Subscribe(bus, func(event.EntityDespawned) { despawned++ })

	drawStats := system.NewDrawStatsSystem(draw, log)
	grid := world.NewGrid(cfg.Engine.GridCell)
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewWorldTickSystem(ecsWorld, bus))
	runner.Register(drawStats)
	runner.Register(system.NewSpatialIndexSystem(ecsWorld, grid))
	var journalSys *system.JournalSystem
	if jr != nil {
		journalSys = system.NewJournalSystem(ecsWorld, jr.ticks, runID.String(), log, cfg.Journal.FlushEvery)
		runner.Register(journalSys)
	}
	runner.Register(system.NewCleanupSystem(ecsWorld, bus, log))

	// 7. Live log level
	if cfg.Watch.Enabled {
		w, err := config.Watch(cfgPath, log, func(c *config.Config) {
			level.SetLevel(parseLevel(c.Logging.Level))
		})
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer w.Close()
	}

	// 8. Start engine loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printSection("engine")
	printReady(fmt.Sprintf("%d systems, %d workers", len(ecsWorld.Systems()), ecsWorld.Dispatcher().Options().Workers))
	printReady(fmt.Sprintf("loop started (tick: %s)", cfg.Engine.TickRate))
	fmt.Println()

	started := time.Now()
	status := "done"
	var loopErr error
	var frames, failures uint64
loop:
	for {
		select {
		case <-ticker.C:
			frames++
			if err := runner.Tick(cfg.Engine.TickRate); err != nil {
				failures++
				if cfg.Engine.StopOnError {
					status, loopErr = "failed", err
					break loop
				}
				log.Error("frame failed", zap.Uint64("frame", frames), zap.Error(err))
			}
			if cfg.Engine.MaxTicks > 0 && frames >= cfg.Engine.MaxTicks {
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			status = "interrupted"
			break loop
		}
	}

	// 9. Shutdown
	ticks := ecsWorld.LastTick().Tick
	if jr != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := errors.Join(journalSys.Flush(ctx), jr.runs.Finish(ctx, runID, ticks, status))
		cancel()
		if err != nil {
			log.Error("journal shutdown", zap.Error(err))
		}
	}

	printSection("stats")
	printStat("frames", frames)
	printStat("world ticks", ticks)
	printStat("failed frames", failures)
	printStat("entities left", ecsWorld.Len())
	printStat("despawned", despawned)
	printStat("instances drawn", drawStats.Total().Visible)
	printStat("occupied cells", grid.Cells())
	if ticks > 0 {
		printStat("avg tick (µs)", tickTime.Microseconds()/int64(ticks))
	}
	printStat("wall time (ms)", time.Since(started).Milliseconds())
	fmt.Println()

	log.Info("engine stopped", zap.String("status", status), zap.Uint64("ticks", ticks))
	return loopErr
}

func openJournal(ctx context.Context, cfg config.JournalConfig, log *zap.Logger) (*journal, error) {
	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	printOK("PostgreSQL connected")
	version, err := persist.RunMigrationsLogged(ctx, db.Pool, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	printOK(fmt.Sprintf("schema at version %d", version))
	return &journal{db: db, runs: persist.NewRunRepo(db), ticks: persist.NewTickRepo(db)}, nil
}

func profileMode(mode string) func(*profile.Profile) {
	switch mode {
	case "mem":
		return profile.MemProfile
	case "block":
		return profile.BlockProfile
	case "mutex":
		return profile.MutexProfile
	case "trace":
		return profile.TraceProfile
	default:
		return profile.CPUProfile
	}
}

func parseLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func newLogger(cfg config.LoggingConfig, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
