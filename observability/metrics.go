// Package observability exposes the client activity as prometheus metrics.
package observability

import (
	"chat-sim/domain/event"
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat_sim"

// Stats is the latest snapshot shown by the debug inspector.
type Stats struct {
	MessagesSent     uint64
	MessagesReceived uint64
	EventsDropped    uint64
	WorkerRestarts   uint64
	ProcessRSS       uint64
	ProcessCPU       float64
	ProcessStatus    string
	AllocMemMb       uint64
	NumGC            uint32
	LastSample       time.Time
}

// Metrics is both an event sink (message activity) and a telemetry handler
// (process footprint, restarts, drops). It owns its registry.
type Metrics struct {
	log      *slog.Logger
	registry *prometheus.Registry

	messages   *prometheus.CounterVec
	selections *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	restarts   *prometheus.CounterVec
	rss        prometheus.Gauge
	cpu        prometheus.Gauge

	mu     sync.RWMutex
	latest Stats
}

func NewMetrics(log *slog.Logger) *Metrics {
	m := &Metrics{
		log:      log,
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages appended to a conversation, by direction.",
		}, []string{"direction", "conversation"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Section and conversation changes.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Events dropped because the event channel was full.",
		}, []string{"type"}),
		restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_restarts_total",
			Help:      "Workers restarted by the supervisor after a crash.",
		}, []string{"worker"}),
		rss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Resident memory sampled by the telemetry worker.",
		}),
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage sampled by the telemetry worker.",
		}),
	}
	heapAlloc := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "heap_alloc_bytes",
		Help:      "Bytes of allocated heap objects.",
	}, func() float64 {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return float64(ms.HeapAlloc)
	})
	m.registry.MustRegister(m.messages, m.selections, m.dropped, m.restarts, m.rss, m.cpu, heapAlloc)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Consume counts controller events.
func (m *Metrics) Consume(_ context.Context, e event.Event) error {
	switch p := e.Payload.(type) {
	case event.MessageSent:
		m.messages.WithLabelValues("sent", strconv.Itoa(int(p.ConversationID))).Inc()
		m.bump(func(s *Stats) { s.MessagesSent++ })
	case event.MessageReceived:
		m.messages.WithLabelValues("received", strconv.Itoa(int(p.ConversationID))).Inc()
		m.bump(func(s *Stats) { s.MessagesReceived++ })
	case event.SectionChanged:
		m.selections.WithLabelValues("section").Inc()
	case event.ConversationSelected:
		m.selections.WithLabelValues("conversation").Inc()
	}
	return nil
}

// Handle records technical events coming from the telemetry worker.
func (m *Metrics) Handle(e event.Event) {
	switch p := e.Payload.(type) {
	case event.ProcessStats:
		m.rss.Set(float64(p.Ram))
		m.cpu.Set(p.Cpu)
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		m.bump(func(s *Stats) {
			s.ProcessRSS = p.Ram
			s.ProcessCPU = p.Cpu
			s.ProcessStatus = p.Status
			s.AllocMemMb = ms.Alloc / 1024 / 1024
			s.NumGC = ms.NumGC
			s.LastSample = e.CreatedAt
		})
	case event.WorkerRestartedAfterPanic:
		m.restarts.WithLabelValues(p.WorkerName).Inc()
		m.bump(func(s *Stats) { s.WorkerRestarts++ })
	case event.EventDropped:
		m.dropped.WithLabelValues(string(p.Dropped)).Inc()
		m.bump(func(s *Stats) { s.EventsDropped++ })
	}
}

func (m *Metrics) bump(fn func(s *Stats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.latest)
}

func (m *Metrics) GetLatest() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// StatsMap flattens the latest snapshot for the inspector page.
func (m *Metrics) StatsMap() map[string]any {
	s := m.GetLatest()
	return map[string]any{
		"messages_sent":     s.MessagesSent,
		"messages_received": s.MessagesReceived,
		"events_dropped":    s.EventsDropped,
		"worker_restarts":   s.WorkerRestarts,
		"rss_bytes":         s.ProcessRSS,
		"cpu_percent":       s.ProcessCPU,
		"status":            s.ProcessStatus,
		"alloc_mem_mb":      s.AllocMemMb,
		"num_gc":            s.NumGC,
	}
}
