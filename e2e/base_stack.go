// Package e2e runs the whole client stack in-process: seed, controller,
// supervised workers and every sink, without a terminal.
package e2e

import (
	"chat-sim/domain/event"
	"chat-sim/notify"
	"chat-sim/observability"
	"chat-sim/runtime"
	"chat-sim/runtime/workers"
	"chat-sim/search"
	"chat-sim/seed"
	"chat-sim/storage"
	"chat-sim/tone"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseStackSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseStackSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Stack is a running client without a screen.
type Stack struct {
	Controller *runtime.Controller
	Board      *notify.Board
	Index      *search.Index
	Journal    *storage.Journal
	Metrics    *observability.Metrics
	Wav        *tone.WavFile
	Player     *tone.Player
	stop       context.CancelFunc
	done       chan struct{}
}

// StartStack wires a full stack whose simulator fires on every tick.
func (s *BaseStackSuite) StartStack(simulator bool) *Stack {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	data, err := seed.Load(s.Config.SeedFile)
	s.Require().NoError(err)
	store, err := data.Store()
	s.Require().NoError(err)

	index, err := search.NewIndex(log)
	s.Require().NoError(err)
	s.Require().NoError(index.Load(store.Snapshot()))
	journal, err := storage.OpenJournal(log)
	s.Require().NoError(err)
	metrics := observability.NewMetrics(log)
	wav := tone.NewWavFile(s.T().TempDir())
	player := tone.NewPlayer(log, wav)
	board := notify.NewBoard()

	settings := runtime.DefaultSettings()
	settings.SimulatorEnabled = simulator
	settings.Tick = s.Config.Tick
	settings.Probability = 1
	settings.SinkTimeout = time.Second

	controller := runtime.NewController(log, data.Directory, store, data.Phrases,
		board, player, rand.New(rand.NewPCG(7, 11)),
		workers.NewSupervisor(log, 10*time.Millisecond), settings).
		Add(index, journal, metrics).
		Handle(metrics, event.NewProcessStatsHandler(log))

	ctx, cancel := context.WithCancel(context.Background())
	stack := &Stack{
		Controller: controller,
		Board:      board,
		Index:      index,
		Journal:    journal,
		Metrics:    metrics,
		Wav:        wav,
		Player:     player,
		stop:       cancel,
		done:       make(chan struct{}),
	}
	go func() {
		defer close(stack.done)
		_ = controller.Start(ctx)
	}()
	s.T().Cleanup(func() { s.StopStack(stack) })
	return stack
}

// StopStack shuts the workers down and releases the stores. It is safe to
// call more than once.
func (s *BaseStackSuite) StopStack(stack *Stack) {
	select {
	case <-stack.done:
		return
	default:
	}
	stack.Controller.Stop()
	stack.stop()
	<-stack.done
	stack.Player.Wait()
	if s.Config.DumpJournal {
		var out strings.Builder
		s.Require().NoError(stack.Journal.Dump(&out))
		s.T().Log("\n" + out.String())
	}
	_ = stack.Index.Close()
	_ = stack.Journal.Close()
}

// Step prints a header for a scenario step and runs it.
func (s *BaseStackSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	fn()
}

// Eventually waits for condition within the configured timeout.
func (s *BaseStackSuite) Eventually(condition func() bool, msg string) {
	s.Require().Eventually(condition, s.Config.Timeout, 5*time.Millisecond, msg)
}
