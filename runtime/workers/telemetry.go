package workers

import (
	"chat-sim/domain/event"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

const defaultMetricInterval = 30 * time.Second

// TelemetryWorker drains technical events and periodically samples the
// process footprint. Every event goes through all handlers.
type TelemetryWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	telemetryChan  <-chan event.Event
	handlers       []event.Handler
	now            func() time.Time
}

func NewTelemetryWorker(log *slog.Logger,
	metricInterval time.Duration,
	telemetryChan <-chan event.Event,
	handlers []event.Handler) *TelemetryWorker {
	if metricInterval <= 0 {
		metricInterval = defaultMetricInterval
	}
	return &TelemetryWorker{
		log:            log,
		metricInterval: metricInterval,
		telemetryChan:  telemetryChan,
		handlers:       handlers,
		now:            time.Now,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Warn("Process stats unavailable", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-w.telemetryChan:
			w.handle(evt)
		case <-ticker.C:
			if p == nil {
				continue
			}
			stats, err := selfStats(p)
			if err != nil {
				w.log.Debug("Failed to collect self stats", "error", err)
				continue
			}
			w.handle(event.New(event.ProcessStatsType, w.now(), stats))
		}
	}
}

func (w *TelemetryWorker) handle(evt event.Event) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}

// selfStats retrieves memory, CPU and OS status for the given process.
func selfStats(p *process.Process) (event.ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return event.ProcessStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return event.ProcessStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return event.ProcessStats{}, err
	}
	return event.ProcessStats{PID: p.Pid, Status: status, Cpu: cpuPercent, Ram: memInfo.RSS}, nil
}
