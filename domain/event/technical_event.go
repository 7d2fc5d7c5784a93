package event

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ProcessStatsType        Type = "PROCESS_STATS"
	EventDroppedType        Type = "EVENT_DROPPED"
)

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ProcessStats struct {
	PID    int32
	Status string
	Cpu    float64
	Ram    uint64
}

type EventDropped struct {
	Dropped Type
}
