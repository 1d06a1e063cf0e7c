package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hearthfall/server/internal/config"
	"github.com/hearthfall/server/internal/core/event"
	coresys "github.com/hearthfall/server/internal/core/system"
	"github.com/hearthfall/server/internal/data"
	"github.com/hearthfall/server/internal/encounter"
	"github.com/hearthfall/server/internal/persist"
	"github.com/hearthfall/server/internal/scripting"
	"github.com/hearthfall/server/internal/system"
	"github.com/hearthfall/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           Hearthfall  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        encounter runtime server           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("HEARTHFALL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Load content tables
	printSection("content")

	enemyTable, err := data.LoadEnemyTable("data/yaml/enemy_list.yaml")
	if err != nil {
		return fmt.Errorf("load enemy table: %w", err)
	}
	printStat("enemy specs", enemyTable.Count())

	encounterTable, err := data.LoadEncounterTable("data/yaml/encounter_list.yaml")
	if err != nil {
		return fmt.Errorf("load encounter table: %w", err)
	}
	printStat("encounter definitions", encounterTable.Count())

	skillTable, err := data.LoadSkillTable("data/yaml/skill_list.yaml")
	if err != nil {
		return fmt.Errorf("load skill table: %w", err)
	}
	printStat("skills", skillTable.Count())

	// Fail fast on malformed content so a bad definition never reaches a
	// running match.
	for _, def := range encounterTable.All() {
		if err := def.Validate(enemyTable); err != nil {
			return fmt.Errorf("validate content: %w", err)
		}
	}
	printOK("content validated")

	// 4. Lua combat formulas
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")
	fmt.Println()

	// 5. Optional result persistence
	var repo *persist.EncounterRepo
	if cfg.Database.DSN != "" {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		printOK("migrations applied")
		fmt.Println()

		repo = persist.NewEncounterRepo(db)
	}

	// 6. World, builder, event bus
	worldState := world.NewState()
	bus := event.NewBus()
	builder := encounter.NewBuilder(
		enemyTable,
		cfg.Simulation.EntityPoolCapacity,
		cfg.Simulation.DefaultEngagementRadius,
		cfg.Simulation.DefaultEngagementDelay.Milliseconds(),
		log,
	)

	event.Subscribe(bus, func(ev event.SkillUnlocked) {
		sk := skillTable.Get(ev.SkillID)
		if sk == nil {
			log.Warn("boss taught unknown skill", zap.Int32("skill_id", ev.SkillID))
			return
		}
		log.Info("signature skill unlocked",
			zap.String("encounter", ev.EncounterID),
			zap.String("skill", sk.Name))
	})

	// 7. Systems in phase order
	snapHolder := &system.SnapshotHolder{}
	runner := coresys.NewRunner()
	runner.Register(system.NewSnapshotSystem(worldState, snapHolder))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewEngagementSystem(worldState, snapHolder, bus, log))
	runner.Register(system.NewBossPhaseSystem(worldState, builder, bus, log))
	runner.Register(system.NewCombatSystem(worldState, snapHolder, luaEngine, bus, log))
	runner.Register(system.NewHazardSystem(worldState, luaEngine, bus, log))
	runner.Register(system.NewMovementSystem(worldState))
	runner.Register(system.NewRespawnSystem(worldState, log))
	if repo != nil {
		runner.Register(system.NewPersistSystem(bus, repo, cfg.Server.ID, log))
	}
	runner.Register(system.NewCleanupSystem(worldState))

	// 8. Spawn every authored encounter once. A full deployment takes
	// instance requests from the lobby service instead.
	rng := rand.New(rand.NewSource(cfg.Server.StartTime))
	spawned := 0
	for _, def := range encounterTable.All() {
		in, err := builder.Build(def, def.DifficultyRating, def.Affixes, rng, world.NextEntityID)
		if err != nil {
			return fmt.Errorf("build %s: %w", def.ID, err)
		}
		worldState.AddInstance(in)
		spawned += len(in.Enemies)
	}

	printSection("server ready")
	printStat("entities spawned", spawned)
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	// 9. Fixed-timestep game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			// One final tick so queued results flush before exit.
			runner.Tick(cfg.Simulation.TickRate)
			log.Info("server stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

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
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
