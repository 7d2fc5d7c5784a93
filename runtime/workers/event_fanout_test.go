package workers

import (
	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)

	mockSink := mocks.NewMockEventSink(ctrl)
	mockSink1 := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(log, nil, nil, time.Second).Add(mockSink, mockSink1)

	evt := event.New(event.MessageSentType, time.Now(), event.MessageSent{ConversationID: 1})

	// Given two sinks consuming the event
	mockSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	mockSink1.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	// When an event is handled by the worker
	fanout.Fanout(context.Background(), evt)

	// Then both sinks were called before Fanout returned (checked by gomock)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)

	slowSink := mocks.NewMockEventSink(ctrl)
	fastSink := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(log, nil, nil, 20*time.Millisecond).Add(slowSink, fastSink)

	// Given a sink blocking until its deadline
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.Event) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)
	fastSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// When an event is handled
	start := time.Now()
	fanout.Fanout(context.Background(), event.Event{Type: event.MessageReceivedType})

	// Then the slow sink did not hold the fanout beyond its timeout
	req.Less(time.Since(start), 500*time.Millisecond)
}

func TestEventFanout_SinkIgnoringContextIsAbandoned(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	stuckSink := mocks.NewMockEventSink(ctrl)
	fastSink := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(log, nil, nil, 10*time.Millisecond).Add(stuckSink, fastSink)

	// Given a sink that never looks at its context
	stuckSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.Event) error {
			select {
			case <-release:
			case <-time.After(time.Second):
			}
			return nil
		}).
		Times(1)
	fastSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// When an event is handled
	start := time.Now()
	fanout.Fanout(context.Background(), event.Event{Type: event.MessageSentType})

	// Then the fanout returned at the sink deadline, not when the sink did
	req.Less(time.Since(start), 500*time.Millisecond)
}

func TestEventFanout_RunForwardsToTelemetry(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)

	events := make(chan event.Event, 1)
	telemetry := make(chan event.Event, 1)
	sink := mocks.NewMockEventSink(ctrl)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	fanout := NewEventFanout(log, events, telemetry, time.Second).Add(sink)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- fanout.Run(ctx) }()

	// When an event is published
	events <- event.New(event.SectionChangedType, time.Now(), event.SectionChanged{Section: domain.SectionCalls})

	// Then it reaches the telemetry channel
	select {
	case evt := <-telemetry:
		req.Equal(event.SectionChangedType, evt.Type)
	case <-time.After(time.Second):
		req.Fail("event not forwarded to telemetry")
	}

	cancel()
	req.NoError(<-done)
}
