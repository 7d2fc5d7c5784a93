package domain

import (
	"chat-sim/errors"
	"fmt"
	"sync"
)

// MessageStore maps every conversation of the directory to its ordered history.
//
// Sequences are copy-on-write: Append never touches a slice that was handed
// out by Messages, it builds a new one and swaps it in under the lock. The
// read/append/replace triple runs in a single critical section so two
// concurrent appends cannot drop each other.
type MessageStore struct {
	mu        sync.RWMutex
	sequences map[ConversationID][]Message
}

// NewMessageStore creates an entry for every conversation of the directory.
// Seeded histories for ids absent from the directory are rejected.
func NewMessageStore(dir *Directory, seeded map[ConversationID][]Message) (*MessageStore, error) {
	sequences := make(map[ConversationID][]Message, dir.Len())
	for _, id := range dir.IDs() {
		sequences[id] = []Message{}
	}
	for id, messages := range seeded {
		if !dir.Contains(id) {
			return nil, fmt.Errorf("%w: seeded history for %d", errors.ErrUnknownConversation, id)
		}
		sequences[id] = append([]Message(nil), messages...)
	}
	return &MessageStore{sequences: sequences}, nil
}

// Messages returns the current sequence. The returned slice is never
// modified by the store and must be treated as read-only by callers.
func (s *MessageStore) Messages(id ConversationID) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.sequences[id]
	return seq[:len(seq):len(seq)]
}

func (s *MessageStore) Len(id ConversationID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sequences[id])
}

// Append replaces the sequence of id with a copy that ends with message.
func (s *MessageStore) Append(id ConversationID, message Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sequences[id]
	if !ok {
		return fmt.Errorf("%w: %d", errors.ErrUnknownConversation, id)
	}
	next := make([]Message, len(current), len(current)+1)
	copy(next, current)
	s.sequences[id] = append(next, message)
	return nil
}

// Snapshot returns the whole mapping. Sequences are shared, the map is not.
func (s *MessageStore) Snapshot() map[ConversationID][]Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[ConversationID][]Message, len(s.sequences))
	for id, seq := range s.sequences {
		out[id] = seq[:len(seq):len(seq)]
	}
	return out
}
