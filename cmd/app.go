package main

import (
	"chat-sim/contract"
	"chat-sim/domain/event"
	"chat-sim/internal"
	"chat-sim/notify"
	"chat-sim/observability"
	"chat-sim/runtime"
	"chat-sim/runtime/workers"
	"chat-sim/search"
	"chat-sim/seed"
	"chat-sim/storage"
	"chat-sim/tone"
	"chat-sim/ui"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mama165/sdk-go/logs"
)

type mode int

const (
	modeTUI mode = iota
	modeHeadless
)

func runMode(m mode) error {
	// 1. Configuration
	config, err := internal.LoadConfig()
	if err != nil {
		return &configError{err: err}
	}

	// 2. Logger: the screen belongs to the client in TUI mode
	log, closeLog, err := newLogger(m, config)
	if err != nil {
		return &configError{err: err}
	}
	defer closeLog()

	// 3. Seed data
	data, err := seed.Load(config.SeedFile)
	if err != nil {
		return &configError{err: fmt.Errorf("seed error: %w", err)}
	}
	store, err := data.Store()
	if err != nil {
		return &configError{err: fmt.Errorf("seed error: %w", err)}
	}

	// 4. Tone
	device, err := tone.NewDevice(config.ToneDevice, config.ToneDir, os.Stderr)
	if err != nil {
		return &configError{err: err}
	}
	player := tone.NewPlayer(log, device)
	defer player.Wait()

	// 5. Sinks
	index, err := search.NewIndex(log)
	if err != nil {
		return fmt.Errorf("search index failed: %w", err)
	}
	defer func() { _ = index.Close() }()
	if err = index.Load(store.Snapshot()); err != nil {
		return fmt.Errorf("search index load failed: %w", err)
	}

	journal, err := storage.OpenJournal(log)
	if err != nil {
		return fmt.Errorf("journal opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing journal...")
		_ = journal.Close()
	}()

	metrics := observability.NewMetrics(log)

	// 6. Controller
	var notifier contract.Notifier
	board := notify.NewBoard()
	if m == modeHeadless {
		notifier = notify.NewConsole(os.Stdout, true)
	} else {
		notifier = board
	}

	settings := runtime.Settings{
		SimulatorEnabled:     config.SimulatorEnabled,
		Tick:                 config.SimulatorTick,
		Probability:          config.SimulatorProbability,
		NotificationDuration: config.NotificationDuration,
		BufferSize:           config.BufferSize,
		SinkTimeout:          config.SinkTimeout,
		MetricInterval:       config.MetricInterval,
	}
	controller := runtime.NewController(log, data.Directory, store, data.Phrases,
		notifier, player, newRandom(config.SimulatorSeed),
		workers.NewSupervisor(log, config.RestartInterval), settings).
		Add(index, journal, metrics).
		Handle(metrics,
			event.NewProcessStatsHandler(log),
			event.NewWorkerRestartedAfterPanicHandler(log))

	// 7. Debug server
	if config.DebugPort > 0 {
		debug := internal.NewDebugServer(log, journal.DB(), storage.KeyPrefix,
			storage.Mapper, metrics.StatsMap, metrics.Handler())
		debug.Start(config.DebugPort)
		defer func() { _ = debug.Close() }()
	}

	// 8. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var program *tea.Program
	if m == modeTUI {
		theme, err := ui.LoadTheme()
		if err != nil {
			return &configError{err: fmt.Errorf("theme error: %w", err)}
		}
		model := ui.NewModel(log, controller, data.Panels, board, index, theme)
		program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		sink := ui.NewSink(program)
		controller.Add(sink)
		board.OnChange(sink.ToastChanged)
	}

	// 9. Start the controller
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = controller.Start(ctx)
	}()

	// 10. Wait for the screen to close or a signal
	var runErr error
	if program != nil {
		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			runErr = fmt.Errorf("terminal client failed: %w", err)
		}
	} else {
		log.Info("Running headless, press Ctrl+C to stop")
		<-ctx.Done()
	}

	// 11. Final Cleanup
	log.Info("Shutting down gracefully...")
	stop()
	controller.Stop()
	<-done

	if dump {
		if err := journal.Dump(os.Stdout); err != nil {
			return fmt.Errorf("journal dump failed: %w", err)
		}
	}
	log.Info("Program stopped cleanly")
	return runErr
}

func newLogger(m mode, config internal.Config) (*slog.Logger, func(), error) {
	if m == modeHeadless {
		return logs.GetLoggerFromString(config.LogLevel), func() {}, nil
	}
	file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log file error: %w", err)
	}
	var level slog.Level
	if err = level.UnmarshalText([]byte(strings.ToUpper(config.LogLevel))); err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("log level error: %w", err)
	}
	log := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	return log, func() { _ = file.Close() }, nil
}

func newRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1))
}
