// Package domain contains core concepts of the chat client.
// Conversations, messages, sections and the in-memory message store live here.
// No runtime, terminal or audio logic should be added here.
package domain

import (
	"strings"
	"unicode/utf8"
)

type ConversationID int

// Conversation is a summary row of the chat list.
// LastMessage, Time and Unread are display labels and are never kept in sync
// with the message store.
type Conversation struct {
	ID          ConversationID
	Name        string
	Avatar      string
	LastMessage string
	Time        string
	Unread      int
	Online      bool
}

// Initials returns the first rune of every word of the display name,
// used when Avatar is empty.
func (c Conversation) Initials() string {
	var b strings.Builder
	for _, word := range strings.Fields(c.Name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String()
}
