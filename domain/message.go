package domain

import (
	"strings"
	"time"
)

// TimeLayout is the hour:minute label shown under every message.
const TimeLayout = "15:04"

type MessageID int64

// Message is immutable once appended to the store.
type Message struct {
	ID   MessageID
	Text string
	Time string
	Sent bool
}

// NewMessage stamps a message with the creation instant: the id is the
// millisecond clock value and the label is the local hour:minute.
// Two messages created within the same millisecond share an id.
func NewMessage(now time.Time, text string, sent bool) Message {
	return Message{
		ID:   MessageID(now.UnixMilli()),
		Text: text,
		Time: now.Local().Format(TimeLayout),
		Sent: sent,
	}
}

// ComposeText returns the text that would be sent for a draft, and false when
// the draft is empty or whitespace only.
func ComposeText(draft string) (string, bool) {
	text := strings.TrimSpace(draft)
	return text, text != ""
}
