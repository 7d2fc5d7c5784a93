package domain

import (
	"chat-sim/errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessageStore_EveryConversationHasAnEntry(t *testing.T) {
	req := require.New(t)
	dir := newTestDirectory(t)

	store, err := NewMessageStore(dir, map[ConversationID][]Message{
		1: {{ID: 1, Text: "Привет! Как дела?"}},
	})
	req.NoError(err)

	snapshot := store.Snapshot()
	req.Len(snapshot, dir.Len())
	req.Len(snapshot[1], 1)
	req.NotNil(snapshot[2])
	req.Empty(snapshot[2])
}

func TestNewMessageStore_RejectsUnknownSeed(t *testing.T) {
	_, err := NewMessageStore(newTestDirectory(t), map[ConversationID][]Message{42: nil})
	require.ErrorIs(t, err, errors.ErrUnknownConversation)
}

func TestMessageStore_AppendIsCopyOnWrite(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(newTestDirectory(t), nil)
	req.NoError(err)

	now := time.Now()
	req.NoError(store.Append(1, NewMessage(now, "first", true)))
	before := store.Messages(1)

	// When more messages are appended
	for i := 0; i < 5; i++ {
		req.NoError(store.Append(1, NewMessage(now, fmt.Sprintf("m%d", i), true)))
	}

	// Then the earlier snapshot is untouched and is a prefix of the new one
	after := store.Messages(1)
	req.Len(before, 1)
	req.Len(after, 6)
	req.Equal(before, after[:1])
	req.Equal("m4", after[5].Text)
}

func TestMessageStore_AppendUnknownConversation(t *testing.T) {
	store, err := NewMessageStore(newTestDirectory(t), nil)
	require.NoError(t, err)
	require.ErrorIs(t, store.Append(99, Message{}), errors.ErrUnknownConversation)
}

func TestMessageStore_ConcurrentAppendsAreNotLost(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(newTestDirectory(t), nil)
	req.NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(2, Message{ID: MessageID(i), Text: "x"})
		}(i)
	}
	wg.Wait()

	req.Equal(100, store.Len(2))
}
