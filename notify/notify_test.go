package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBoard_ExpiresToasts(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	board := NewBoard().WithClock(func() time.Time { return now })

	changes := 0
	board.OnChange(func() { changes++ })

	// Given two toasts with different durations
	board.Notify("Мама", "Привет!", 3*time.Second)
	now = now.Add(time.Second)
	board.Notify("Елена Иванова", "Файл отправлен", 3*time.Second)
	req.Equal(2, changes)

	active := board.Active()
	req.Len(active, 2)
	req.Equal("Мама", active[0].Title)

	// When the first one reaches its expiry
	now = now.Add(2 * time.Second)

	// Then only the second one remains
	active = board.Active()
	req.Len(active, 1)
	req.Equal("Елена Иванова", active[0].Title)

	board.Dismiss(active[0].ID)
	req.Empty(board.Active())
}

func TestConsole_Notify(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	console := NewConsole(&out, false)
	console.now = func() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) }

	console.Notify("Мама", "Не забудь позвонить", 3*time.Second)

	req.Equal("[09:30:00] Мама: Не забудь позвонить (3s)\n", out.String())
}
