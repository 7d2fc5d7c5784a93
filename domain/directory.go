package domain

import (
	"chat-sim/errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Directory is the fixed list of conversations, built once at startup.
// It is never mutated afterwards, so it is safe for concurrent readers.
type Directory struct {
	conversations []Conversation
	index         map[ConversationID]int
}

func NewDirectory(conversations []Conversation) (*Directory, error) {
	if len(conversations) == 0 {
		return nil, errors.ErrEmptySeed
	}
	index := make(map[ConversationID]int, len(conversations))
	for i, c := range conversations {
		if _, ok := index[c.ID]; ok {
			return nil, fmt.Errorf("%w: %d", errors.ErrDuplicateConversation, c.ID)
		}
		index[c.ID] = i
	}
	return &Directory{
		conversations: append([]Conversation(nil), conversations...),
		index:         index,
	}, nil
}

// Conversations returns a copy in display order.
func (d *Directory) Conversations() []Conversation {
	return append([]Conversation(nil), d.conversations...)
}

func (d *Directory) Get(id ConversationID) (Conversation, bool) {
	i, ok := d.index[id]
	if !ok {
		return Conversation{}, false
	}
	return d.conversations[i], true
}

func (d *Directory) Contains(id ConversationID) bool {
	_, ok := d.index[id]
	return ok
}

func (d *Directory) IDs() []ConversationID {
	return lo.Map(d.conversations, func(c Conversation, _ int) ConversationID { return c.ID })
}

func (d *Directory) Len() int {
	return len(d.conversations)
}

// First is the conversation selected at startup.
func (d *Directory) First() Conversation {
	return d.conversations[0]
}

// Search filters conversations by a case-insensitive substring of the name.
// An empty query returns every conversation.
func (d *Directory) Search(query string) []Conversation {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return d.Conversations()
	}
	return lo.Filter(d.conversations, func(c Conversation, _ int) bool {
		return strings.Contains(strings.ToLower(c.Name), q)
	})
}
