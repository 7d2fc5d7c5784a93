package event

import (
	"chat-sim/domain"
	"time"
)

type Type string

const (
	MessageSentType          Type = "MESSAGE_SENT"
	MessageReceivedType      Type = "MESSAGE_RECEIVED"
	SectionChangedType       Type = "SECTION_CHANGED"
	ConversationSelectedType Type = "CONVERSATION_SELECTED"
)

// Event is the envelope published by the controller and the workers.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

// MessageSent is published after the local user appended a message.
type MessageSent struct {
	ConversationID domain.ConversationID
	Message        domain.Message
}

// MessageReceived is published after a simulated remote message was appended.
type MessageReceived struct {
	ConversationID   domain.ConversationID
	ConversationName string
	Message          domain.Message
}

type SectionChanged struct {
	Section domain.Section
}

type ConversationSelected struct {
	ConversationID domain.ConversationID
}

func New(t Type, at time.Time, payload any) Event {
	return Event{Type: t, CreatedAt: at.UTC(), Payload: payload}
}

// ConversationMessage extracts the conversation and message carried by a
// message event.
func ConversationMessage(e Event) (domain.ConversationID, domain.Message, bool) {
	switch p := e.Payload.(type) {
	case MessageSent:
		return p.ConversationID, p.Message, true
	case MessageReceived:
		return p.ConversationID, p.Message, true
	}
	return 0, domain.Message{}, false
}
