package workers

import (
	"chat-sim/contract"
	"chat-sim/domain/event"
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventFanout broadcasts controller events to multiple in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. EventFanout is not a message broker.
//
// It is intended for side effects (UI refresh, search index, journal,
// metrics), never for core state changes.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.Event
	telemetry   chan<- event.Event
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger,
	events <-chan event.Event,
	telemetry chan<- event.Event,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, events: events, telemetry: telemetry, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
			if w.telemetry == nil {
				continue
			}
			select {
			case w.telemetry <- evt:
			default:
				w.log.Debug("Observability telemetry event lost", "type", evt.Type)
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One goroutine for each sink, each bounded by the sink timeout.
// It returns once every sink has returned or timed out, so a single sink
// observes events in publication order. A sink ignoring its context is
// abandoned at the deadline and finishes in the background.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	var wg sync.WaitGroup
	for _, sink := range w.sinks {
		wg.Add(1)
		go func(s contract.EventSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- s.Consume(sinkCtx, evt) }()

			select {
			case err := <-done:
				if err != nil {
					w.log.Warn("Sink failed to consume event",
						"sink", sinkName(s),
						"type", evt.Type,
						"error", err)
				}
			case <-sinkCtx.Done():
				w.log.Warn("Sink timed out, event abandoned",
					"sink", sinkName(s),
					"type", evt.Type,
					"timeout", w.sinkTimeout)
			}
		}(sink)
	}
	wg.Wait()
}

func sinkName(s contract.EventSink) string {
	if w, ok := s.(contract.Worker); ok {
		return contract.GetWorkerName(w)
	}
	return "sink"
}
