package ui

import (
	"chat-sim/domain/event"
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink forwards controller events to the running program so the open
// conversation is redrawn.
type Sink struct {
	sender Sender
}

func NewSink(sender Sender) *Sink {
	return &Sink{sender: sender}
}

func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.sender.Send(eventMsg{event: e})
	return nil
}

// ToastChanged is the hook given to notify.Board.OnChange.
func (s *Sink) ToastChanged() {
	s.sender.Send(toastMsg{})
}
