// Package runtime owns the client state and drives it: sending, selection,
// simulated incoming messages and the supervised background workers.
// It holds no rendering, audio or storage logic.
package runtime

import (
	"chat-sim/contract"
	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/errors"
	"chat-sim/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Settings tune the background behaviour of the controller.
type Settings struct {
	SimulatorEnabled     bool
	Tick                 time.Duration
	Probability          float64
	NotificationDuration time.Duration
	BufferSize           int
	SinkTimeout          time.Duration
	MetricInterval       time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		SimulatorEnabled:     true,
		Tick:                 10 * time.Second,
		Probability:          0.5,
		NotificationDuration: 3 * time.Second,
		BufferSize:           64,
		SinkTimeout:          500 * time.Millisecond,
		MetricInterval:       30 * time.Second,
	}
}

// Controller is the single owner of the selection, the compose draft and
// the message store. Every operation runs under one mutex, which gives the
// same ordering as a single event loop.
type Controller struct {
	mu         sync.Mutex
	log        *slog.Logger
	directory  *domain.Directory
	store      *domain.MessageStore
	phrases    domain.Phrases
	notifier   contract.Notifier
	player     contract.TonePlayer
	rnd        contract.RandomSource
	supervisor *workers.Supervisor
	settings   Settings
	now        func() time.Time

	selection domain.Selection
	draft     string

	sinks     []contract.EventSink
	handlers  []event.Handler
	events    chan event.Event
	telemetry chan event.Event
}

func NewController(log *slog.Logger,
	directory *domain.Directory,
	store *domain.MessageStore,
	phrases domain.Phrases,
	notifier contract.Notifier,
	player contract.TonePlayer,
	rnd contract.RandomSource,
	supervisor *workers.Supervisor,
	settings Settings) *Controller {
	bufferSize := max(settings.BufferSize, 1)
	return &Controller{
		log:        log,
		directory:  directory,
		store:      store,
		phrases:    phrases,
		notifier:   notifier,
		player:     player,
		rnd:        rnd,
		supervisor: supervisor,
		settings:   settings,
		now:        time.Now,
		selection:  domain.NewSelection(directory.First().ID),
		events:     make(chan event.Event, bufferSize),
		telemetry:  make(chan event.Event, bufferSize),
	}
}

// WithClock replaces the wall clock used to stamp messages.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Add registers sinks receiving every published event. Call before Start.
func (c *Controller) Add(sinks ...contract.EventSink) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, sinks...)
	return c
}

// Handle registers telemetry handlers. Call before Start.
func (c *Controller) Handle(handlers ...event.Handler) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handlers...)
	return c
}

func (c *Controller) Directory() *domain.Directory {
	return c.directory
}

func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Send appends the trimmed draft to the active conversation as a sent
// message and clears the draft. A blank draft is ignored and kept as is.
func (c *Controller) Send() bool {
	c.mu.Lock()
	text, ok := domain.ComposeText(c.draft)
	if !ok {
		c.mu.Unlock()
		return false
	}
	target := c.selection.Conversation
	now := c.now()
	msg := domain.NewMessage(now, text, true)
	if err := c.store.Append(target, msg); err != nil {
		c.mu.Unlock()
		c.log.Error("Send failed", "conversation_id", target, "error", err)
		return false
	}
	c.draft = ""
	c.mu.Unlock()

	c.log.Debug("Message sent", "conversation_id", target, "message_id", msg.ID)
	c.publish(event.New(event.MessageSentType, now, event.MessageSent{ConversationID: target, Message: msg}))
	return true
}

// SelectSection only replaces the section, never the conversation.
func (c *Controller) SelectSection(section domain.Section) error {
	if !section.Valid() {
		return fmt.Errorf("%w: %q", errors.ErrUnknownSection, section)
	}
	c.mu.Lock()
	c.selection = c.selection.WithSection(section)
	at := c.now()
	c.mu.Unlock()

	c.publish(event.New(event.SectionChangedType, at, event.SectionChanged{Section: section}))
	return nil
}

// SelectConversation only replaces the conversation, never the section.
func (c *Controller) SelectConversation(id domain.ConversationID) error {
	if !c.directory.Contains(id) {
		return fmt.Errorf("%w: %d", errors.ErrUnknownConversation, id)
	}
	c.mu.Lock()
	c.selection = c.selection.WithConversation(id)
	at := c.now()
	c.mu.Unlock()

	c.publish(event.New(event.ConversationSelectedType, at, event.ConversationSelected{ConversationID: id}))
	return nil
}

func (c *Controller) Selection() domain.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

func (c *Controller) ActiveSection() domain.Section {
	return c.Selection().Section
}

func (c *Controller) ActiveConversation() domain.Conversation {
	conversation, _ := c.directory.Get(c.Selection().Conversation)
	return conversation
}

// Messages returns the current sequence of a conversation. The slice must
// not be modified.
func (c *Controller) Messages(id domain.ConversationID) []domain.Message {
	return c.store.Messages(id)
}

// Tick flips the coin of one simulator period and, on success, delivers a
// simulated message.
func (c *Controller) Tick() bool {
	c.mu.Lock()
	fire := c.rnd.Float64() < c.settings.Probability
	c.mu.Unlock()
	if !fire {
		return false
	}
	return c.SimulateIncoming()
}

// SimulateIncoming appends a canned phrase to a random conversation other
// than the active one, then notifies and plays the tone. It reports false
// when no conversation is eligible.
func (c *Controller) SimulateIncoming() bool {
	c.mu.Lock()
	target, msg, err := c.simulate()
	at := c.now()
	c.mu.Unlock()
	if err != nil {
		c.log.Debug("Simulated message skipped", "error", err)
		return false
	}

	c.log.Debug("Simulated message received", "target", target.ID, "message_id", msg.ID)
	c.notifier.Notify(target.Name, msg.Text, c.settings.NotificationDuration)
	c.player.PlayNotification()
	c.publish(event.New(event.MessageReceivedType, at, event.MessageReceived{
		ConversationID:   target.ID,
		ConversationName: target.Name,
		Message:          msg,
	}))
	return true
}

// simulate must be called with mu held.
func (c *Controller) simulate() (domain.Conversation, domain.Message, error) {
	active := c.selection.Conversation
	eligible := lo.Filter(c.directory.IDs(), func(id domain.ConversationID, _ int) bool {
		return id != active
	})
	if len(eligible) == 0 {
		return domain.Conversation{}, domain.Message{}, errors.ErrNoEligibleTarget
	}
	if len(c.phrases) == 0 {
		return domain.Conversation{}, domain.Message{}, errors.ErrEmptyPhrases
	}
	id := eligible[c.rnd.IntN(len(eligible))]
	phrase := c.phrases[c.rnd.IntN(len(c.phrases))]
	msg := domain.NewMessage(c.now(), phrase, false)
	if err := c.store.Append(id, msg); err != nil {
		return domain.Conversation{}, domain.Message{}, err
	}
	target, _ := c.directory.Get(id)
	return target, msg, nil
}

// publish never blocks: when the buffer is full the event is dropped.
func (c *Controller) publish(e event.Event) {
	select {
	case c.events <- e:
	default:
		c.log.Warn("Event channel full, dropping event", "type", e.Type)
		select {
		case c.telemetry <- event.New(event.EventDroppedType, e.CreatedAt, event.EventDropped{Dropped: e.Type}):
		default:
		}
	}
}

// Start registers the background workers and blocks until Stop is called
// or ctx is canceled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	fanout := workers.NewEventFanout(c.log, c.events, c.telemetry, c.settings.SinkTimeout).Add(c.sinks...)
	telemetry := workers.NewTelemetryWorker(c.log, c.settings.MetricInterval, c.telemetry, c.handlers)
	c.supervisor.OnRestart(c.restarted)
	c.supervisor.Add(fanout, telemetry)
	if c.settings.SimulatorEnabled {
		c.supervisor.Add(workers.NewSimulatorWorker(c.log, c, c.settings.Tick))
	}
	sinks := len(c.sinks)
	c.mu.Unlock()

	c.log.Info("Starting controller and all supervised workers",
		"simulator", c.settings.SimulatorEnabled,
		"sinks", sinks)
	c.supervisor.Run(ctx)
	return nil
}

func (c *Controller) restarted(workerName string) {
	c.mu.Lock()
	at := c.now()
	c.mu.Unlock()
	select {
	case c.telemetry <- event.New(event.RestartedAfterPanicType, at,
		event.WorkerRestartedAfterPanic{WorkerName: workerName}):
	default:
	}
}

// Stop tears the workers down. The simulator releases its ticker. A Stop
// issued before Start makes Start return without running any worker.
func (c *Controller) Stop() {
	c.log.Info("Requesting controller shutdown")
	c.supervisor.Stop()
}
