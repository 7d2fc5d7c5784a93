package event

import (
	"chat-sim/errors"
	"log/slog"
	"sync"
)

// WorkerRestartedAfterPanicHandler handles events when a worker panics and is restarted.
// It is triggered by the Supervisor when a worker recovers from a panic.
type WorkerRestartedAfterPanicHandler struct {
	log      *slog.Logger
	mu       sync.Mutex
	restarts map[string]int
}

func NewWorkerRestartedAfterPanicHandler(log *slog.Logger) *WorkerRestartedAfterPanicHandler {
	return &WorkerRestartedAfterPanicHandler{log: log, restarts: make(map[string]int)}
}

func (h *WorkerRestartedAfterPanicHandler) Handle(e Event) {
	if e.Type != RestartedAfterPanicType {
		return
	}
	payload, ok := e.Payload.(WorkerRestartedAfterPanic)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", e.Type)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.restarts[payload.WorkerName]++
	h.log.Warn("worker restarted after panic",
		"name", payload.WorkerName,
		"total", h.restarts[payload.WorkerName])
}

func (h *WorkerRestartedAfterPanicHandler) Restarts(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restarts[name]
}
