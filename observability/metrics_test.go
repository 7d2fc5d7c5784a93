package observability

import (
	"chat-sim/domain"
	"chat-sim/domain/event"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsMessages(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics(logs.GetLoggerFromLevel(slog.LevelDebug))
	ctx := context.Background()
	now := time.Now()

	// Given two sends and one simulated receipt
	req.NoError(metrics.Consume(ctx, event.New(event.MessageSentType, now, event.MessageSent{ConversationID: 1})))
	req.NoError(metrics.Consume(ctx, event.New(event.MessageSentType, now, event.MessageSent{ConversationID: 1})))
	req.NoError(metrics.Consume(ctx, event.New(event.MessageReceivedType, now, event.MessageReceived{ConversationID: 4})))
	req.NoError(metrics.Consume(ctx, event.New(event.SectionChangedType, now, event.SectionChanged{Section: domain.SectionCalls})))

	// Then counters follow
	req.Equal(2.0, testutil.ToFloat64(metrics.messages.WithLabelValues("sent", "1")))
	req.Equal(1.0, testutil.ToFloat64(metrics.messages.WithLabelValues("received", "4")))
	req.Equal(1.0, testutil.ToFloat64(metrics.selections.WithLabelValues("section")))
	latest := metrics.GetLatest()
	req.Equal(uint64(2), latest.MessagesSent)
	req.Equal(uint64(1), latest.MessagesReceived)
}

func TestMetrics_HandlesTelemetry(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics(logs.GetLoggerFromLevel(slog.LevelDebug))
	now := time.Now()

	metrics.Handle(event.New(event.ProcessStatsType, now, event.ProcessStats{PID: 1, Status: "R", Cpu: 12.5, Ram: 2048}))
	metrics.Handle(event.New(event.RestartedAfterPanicType, now, event.WorkerRestartedAfterPanic{WorkerName: "SimulatorWorker"}))
	metrics.Handle(event.New(event.EventDroppedType, now, event.EventDropped{Dropped: event.MessageSentType}))

	req.Equal(2048.0, testutil.ToFloat64(metrics.rss))
	req.Equal(12.5, testutil.ToFloat64(metrics.cpu))
	req.Equal(1.0, testutil.ToFloat64(metrics.restarts.WithLabelValues("SimulatorWorker")))
	req.Equal(1.0, testutil.ToFloat64(metrics.dropped.WithLabelValues(string(event.MessageSentType))))

	stats := metrics.StatsMap()
	req.Equal("R", stats["status"])
	req.Equal(uint64(1), stats["worker_restarts"])
}

func TestMetrics_Handler(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics(logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(metrics.Consume(context.Background(),
		event.New(event.MessageSentType, time.Now(), event.MessageSent{ConversationID: 2})))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	req.Equal(200, rec.Code)
	body := rec.Body.String()
	req.True(strings.Contains(body, `chat_sim_messages_total{conversation="2",direction="sent"} 1`), body)
	req.Contains(body, "chat_sim_heap_alloc_bytes")
}
