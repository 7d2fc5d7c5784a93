package runtime

import (
	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/errors"
	"chat-sim/mocks"
	"chat-sim/runtime/workers"
	"chat-sim/seed"
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 11, 15, 14, 40, 0, 0, time.Local)

type fixture struct {
	controller *Controller
	store      *domain.MessageStore
	notifier   *mocks.MockNotifier
	player     *mocks.MockTonePlayer
	rnd        *mocks.MockRandomSource
}

func newFixture(t *testing.T, dir *domain.Directory, history map[domain.ConversationID][]domain.Message) fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	store, err := domain.NewMessageStore(dir, history)
	require.NoError(t, err)

	f := fixture{
		store:    store,
		notifier: mocks.NewMockNotifier(ctrl),
		player:   mocks.NewMockTonePlayer(ctrl),
		rnd:      mocks.NewMockRandomSource(ctrl),
	}
	f.controller = NewController(log, dir, store, domain.Phrases{"Привет!", "Созвонимся?"},
		f.notifier, f.player, f.rnd, workers.NewSupervisor(log, 0), DefaultSettings()).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func newSeededFixture(t *testing.T) fixture {
	t.Helper()
	s, err := seed.Default()
	require.NoError(t, err)
	return newFixture(t, s.Directory, s.History)
}

func TestController_SeedScenarioSend(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)

	// Given the seeded conversation 1 with four messages
	req.Len(f.controller.Messages(1), 4)

	// When "Hello" is sent
	f.controller.SetDraft("Hello")
	req.True(f.controller.Send())

	// Then the fifth message is the sent "Hello" and the draft is cleared
	messages := f.controller.Messages(1)
	req.Len(messages, 5)
	req.Equal("Hello", messages[4].Text)
	req.True(messages[4].Sent)
	req.Equal("14:40", messages[4].Time)
	req.Equal(domain.MessageID(fixedNow.UnixMilli()), messages[4].ID)
	req.Empty(f.controller.Draft())
}

func TestController_SendTrimsDraft(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)

	f.controller.SetDraft("   Привет   ")
	req.True(f.controller.Send())

	messages := f.controller.Messages(1)
	req.Equal("Привет", messages[len(messages)-1].Text)
	req.Empty(f.controller.Draft())
}

func TestController_BlankSendIsIgnored(t *testing.T) {
	for _, draft := range []string{"", "   ", "\t\n"} {
		t.Run(draft, func(t *testing.T) {
			req := require.New(t)
			f := newSeededFixture(t)
			before := f.store.Snapshot()

			f.controller.SetDraft(draft)
			req.False(f.controller.Send())

			req.Equal(before, f.store.Snapshot())
			req.Equal(draft, f.controller.Draft())
		})
	}
}

func TestController_RepeatedSendsKeepPrefix(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)
	initial := f.controller.Messages(1)

	const n = 10
	for i := 0; i < n; i++ {
		f.controller.SetDraft("msg")
		req.True(f.controller.Send())
	}

	messages := f.controller.Messages(1)
	req.Len(messages, len(initial)+n)
	req.Equal(initial, messages[:len(initial)])
}

func TestController_SimulatedMessageNeverTargetsActive(t *testing.T) {
	req := require.New(t)
	s, err := seed.Default()
	req.NoError(err)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store, err := s.Store()
	req.NoError(err)

	names := map[string]domain.ConversationID{}
	for _, c := range s.Directory.Conversations() {
		names[c.Name] = c.ID
	}

	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	player := mocks.NewMockTonePlayer(ctrl)
	player.EXPECT().PlayNotification().AnyTimes()

	targets := map[domain.ConversationID]int{}
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), 3*time.Second).
		Do(func(title, body string, d time.Duration) {
			targets[names[title]]++
		}).AnyTimes()

	controller := NewController(log, s.Directory, store, s.Phrases, notifier, player,
		rand.New(rand.NewPCG(1, 2)), workers.NewSupervisor(log, 0), DefaultSettings())

	// Given conversation 1 is active
	req.Equal(domain.ConversationID(1), controller.ActiveConversation().ID)

	// When many simulated messages are delivered
	for i := 0; i < 300; i++ {
		req.True(controller.SimulateIncoming())
	}

	// Then targets are drawn from {2,3,4,5,6} only
	req.NotContains(targets, domain.ConversationID(1))
	for id := domain.ConversationID(2); id <= 6; id++ {
		req.Positive(targets[id], "conversation %d never targeted", id)
	}
	req.Empty(store.Messages(1)[4:])
}

func TestController_SimulateIncomingDelivers(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)

	// Given a random source picking the third eligible id and the second phrase
	f.rnd.EXPECT().Float64().Return(0.1)
	gomock.InOrder(
		f.rnd.EXPECT().IntN(5).Return(2),
		f.rnd.EXPECT().IntN(2).Return(1),
	)
	f.notifier.EXPECT().Notify("Мама", "Созвонимся?", 3*time.Second).Times(1)
	f.player.EXPECT().PlayNotification().Times(1)

	// When the tick fires
	req.True(f.controller.Tick())

	// Then conversation 4 received one remote message
	messages := f.controller.Messages(4)
	req.Len(messages, 1)
	req.Equal("Созвонимся?", messages[0].Text)
	req.False(messages[0].Sent)
	req.Equal("14:40", messages[0].Time)
}

func TestController_TickCoinFlip(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)
	before := f.store.Snapshot()

	// Given the coin lands above the probability
	f.rnd.EXPECT().Float64().Return(0.5)

	// Then nothing happens (no notify nor tone expected)
	req.False(f.controller.Tick())
	req.Equal(before, f.store.Snapshot())
}

func TestController_NoEligibleTarget(t *testing.T) {
	req := require.New(t)
	dir, err := domain.NewDirectory([]domain.Conversation{{ID: 1, Name: "Solo"}})
	req.NoError(err)
	f := newFixture(t, dir, nil)
	before := f.store.Snapshot()

	// Given a single conversation, which is the active one
	f.rnd.EXPECT().Float64().Return(0.0)

	// When the tick fires, then nothing changes and nobody is notified
	req.False(f.controller.Tick())
	req.Equal(before, f.store.Snapshot())
}

func TestController_SelectSectionKeepsConversationAndStore(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)
	req.NoError(f.controller.SelectConversation(3))
	before := f.store.Snapshot()

	for _, s := range domain.Sections() {
		req.NoError(f.controller.SelectSection(s))
		req.Equal(s, f.controller.ActiveSection())
		req.Equal(domain.ConversationID(3), f.controller.ActiveConversation().ID)
		req.Equal(before, f.store.Snapshot())
	}
}

func TestController_SelectRejectsUnknown(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)

	req.ErrorIs(f.controller.SelectConversation(42), errors.ErrUnknownConversation)
	req.ErrorIs(f.controller.SelectSection("wallet"), errors.ErrUnknownSection)
	req.Equal(domain.NewSelection(1), f.controller.Selection())
}

func TestController_SendTargetsSelectedConversation(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)

	req.NoError(f.controller.SelectConversation(2))
	f.controller.SetDraft("Документы?")
	req.True(f.controller.Send())

	req.Len(f.controller.Messages(2), 1)
	req.Len(f.controller.Messages(1), 4)
}

func TestController_ConcurrentSendsAndSimulationKeepEveryMessage(t *testing.T) {
	req := require.New(t)
	s, err := seed.Default()
	req.NoError(err)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store, err := s.Store()
	req.NoError(err)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	player := mocks.NewMockTonePlayer(ctrl)
	player.EXPECT().PlayNotification().AnyTimes()

	controller := NewController(log, s.Directory, store, s.Phrases, notifier, player,
		rand.New(rand.NewPCG(7, 7)), workers.NewSupervisor(log, 0), DefaultSettings())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			controller.SimulateIncoming()
		}()
		go func() {
			defer wg.Done()
			controller.SetDraft("x")
			controller.Send()
		}()
	}
	wg.Wait()

	total := 0
	for _, seq := range store.Snapshot() {
		total += len(seq)
	}
	// 4 seeded + 50 simulated + at most 50 sends (drafts may be overwritten before sending)
	req.GreaterOrEqual(total, 4+50+1)
	req.LessOrEqual(total, 4+50+50)
}

func TestController_PublishesEventsToSinks(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)

	received := make(chan event.Event, 4)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.Event) error {
			received <- e
			return nil
		}).AnyTimes()

	f.controller.settings.SimulatorEnabled = false
	f.controller.Add(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error)
	go func() { done <- f.controller.Start(ctx) }()

	// When a message is sent
	f.controller.SetDraft("Hello")
	req.True(f.controller.Send())

	// Then the sink receives the MessageSent event
	select {
	case e := <-received:
		req.Equal(event.MessageSentType, e.Type)
		id, msg, ok := event.ConversationMessage(e)
		req.True(ok)
		req.Equal(domain.ConversationID(1), id)
		req.Equal("Hello", msg.Text)
	case <-time.After(time.Second):
		req.Fail("event not delivered to sink")
	}

	f.controller.Stop()
	req.NoError(<-done)
}

func TestController_StartRunsSimulatorUntilStop(t *testing.T) {
	req := require.New(t)
	s, err := seed.Default()
	req.NoError(err)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store, err := s.Store()
	req.NoError(err)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	player := mocks.NewMockTonePlayer(ctrl)
	player.EXPECT().PlayNotification().AnyTimes()

	settings := DefaultSettings()
	settings.Tick = 5 * time.Millisecond
	settings.Probability = 1
	controller := NewController(log, s.Directory, store, s.Phrases, notifier, player,
		rand.New(rand.NewPCG(3, 4)), workers.NewSupervisor(log, 0), settings)

	done := make(chan error)
	go func() { done <- controller.Start(context.Background()) }()

	req.Eventually(func() bool {
		total := 0
		for id := domain.ConversationID(2); id <= 6; id++ {
			total += store.Len(id)
		}
		return total >= 3
	}, 2*time.Second, 5*time.Millisecond)

	// When the controller is torn down
	controller.Stop()

	// Then Start returns and the generator is released
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("controller did not stop")
	}
}

func TestController_StopBeforeStartRunsNothing(t *testing.T) {
	req := require.New(t)
	s, err := seed.Default()
	req.NoError(err)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store, err := s.Store()
	req.NoError(err)
	ctrl := gomock.NewController(t)

	settings := DefaultSettings()
	settings.Tick = 5 * time.Millisecond
	settings.Probability = 1
	controller := NewController(log, s.Directory, store, s.Phrases,
		mocks.NewMockNotifier(ctrl), mocks.NewMockTonePlayer(ctrl),
		rand.New(rand.NewPCG(3, 4)), workers.NewSupervisor(log, 0), settings)

	// Given a controller torn down before it was started
	controller.Stop()

	// When it is started
	done := make(chan error)
	go func() { done <- controller.Start(context.Background()) }()

	// Then Start returns at once and the simulator never fired
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("controller kept running after Stop")
	}
	time.Sleep(30 * time.Millisecond)
	for id := domain.ConversationID(2); id <= 6; id++ {
		req.Zero(store.Len(id))
	}
}

func TestController_RestartTelemetryUsesClockSafely(t *testing.T) {
	req := require.New(t)
	f := newSeededFixture(t)

	// Given a clock replaced while restarts are reported
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 100 {
			f.controller.WithClock(func() time.Time { return fixedNow })
		}
	}()
	f.controller.restarted("SimulatorWorker")
	wg.Wait()

	// Then the restart reached telemetry stamped with the injected clock
	select {
	case evt := <-f.controller.telemetry:
		req.Equal(event.RestartedAfterPanicType, evt.Type)
		req.Equal(fixedNow.UTC(), evt.CreatedAt)
		req.Equal(event.WorkerRestartedAfterPanic{WorkerName: "SimulatorWorker"}, evt.Payload)
	default:
		req.Fail("restart event not emitted")
	}
}
