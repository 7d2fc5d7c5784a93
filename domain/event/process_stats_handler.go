package event

import (
	"chat-sim/errors"
	"log/slog"
)

// ProcessStatsHandler logs the process footprint sampled by the telemetry worker.
type ProcessStatsHandler struct {
	log *slog.Logger
}

func NewProcessStatsHandler(log *slog.Logger) *ProcessStatsHandler {
	return &ProcessStatsHandler{log: log}
}

func (h ProcessStatsHandler) Handle(e Event) {
	if e.Type != ProcessStatsType {
		return
	}
	payload, ok := e.Payload.(ProcessStats)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", e.Type)
		return
	}
	h.log.Debug("telemetry: process stats",
		"pid", payload.PID,
		"status", payload.Status,
		"cpu_percent", payload.Cpu,
		"rss_bytes", payload.Ram,
	)
}
