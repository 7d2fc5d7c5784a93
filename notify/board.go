// Package notify implements the transient notification surfaces: an
// in-memory toast board rendered by the terminal UI and a coloured console
// printer used in headless mode.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Toast is one transient notification.
type Toast struct {
	ID        uuid.UUID
	Title     string
	Body      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Board keeps toasts until they expire. It is safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	toasts   map[uuid.UUID]Toast
	now      func() time.Time
	onChange func()
}

func NewBoard() *Board {
	return &Board{toasts: make(map[uuid.UUID]Toast), now: time.Now}
}

func (b *Board) WithClock(now func() time.Time) *Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	return b
}

// OnChange registers a hook called after a toast is added.
func (b *Board) OnChange(hook func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = hook
}

func (b *Board) Notify(title, body string, duration time.Duration) {
	b.mu.Lock()
	now := b.now()
	toast := Toast{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
	b.toasts[toast.ID] = toast
	hook := b.onChange
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Active prunes expired toasts and returns the remaining ones, oldest first.
func (b *Board) Active() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	active := make([]Toast, 0, len(b.toasts))
	for id, t := range b.toasts {
		if !now.Before(t.ExpiresAt) {
			delete(b.toasts, id)
			continue
		}
		active = append(active, t)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active
}

// Dismiss removes a toast before its expiry.
func (b *Board) Dismiss(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.toasts, id)
}
