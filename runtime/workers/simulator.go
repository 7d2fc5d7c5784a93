package workers

import (
	"chat-sim/contract"
	"context"
	"log/slog"
	"time"
)

const defaultSimulatorPeriod = 10 * time.Second

// SimulatorWorker drives the simulated remote activity: one Tick per period.
// The ticker is owned by Run and released when the context is canceled.
type SimulatorWorker struct {
	log       *slog.Logger
	simulator contract.Simulator
	period    time.Duration
}

func NewSimulatorWorker(log *slog.Logger, simulator contract.Simulator, period time.Duration) *SimulatorWorker {
	if period <= 0 {
		period = defaultSimulatorPeriod
	}
	return &SimulatorWorker{log: log, simulator: simulator, period: period}
}

func (w *SimulatorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()
	w.log.Debug("Simulator started", "period", w.period)

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Simulator stopped")
			return nil
		case <-ticker.C:
			if w.simulator.Tick() {
				w.log.Debug("Simulated message delivered")
			}
		}
	}
}
