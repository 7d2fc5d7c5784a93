//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sim/domain/event"
	"context"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision during worker lifecycle events.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives every event published by the controller.
// Consume must honour ctx: the fanout gives each sink a bounded time.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// Notifier is the transient notification surface (toast).
// It shows title and body and dismisses them after duration.
type Notifier interface {
	Notify(title, body string, duration time.Duration)
}

// AudioDevice renders mono PCM samples in [-1, 1].
type AudioDevice interface {
	Play(ctx context.Context, samples []float64, sampleRate int) error
}

// TonePlayer plays the notification cue. It never blocks nor fails.
type TonePlayer interface {
	PlayNotification()
}

// RandomSource is satisfied by *math/rand/v2.Rand.
type RandomSource interface {
	IntN(n int) int
	Float64() float64
}

// Simulator runs one step of the simulated remote activity and reports
// whether a message was appended.
type Simulator interface {
	Tick() bool
}
