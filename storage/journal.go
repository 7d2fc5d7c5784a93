// Package storage keeps an in-memory journal of every message event.
// The journal lives in a badger database opened in memory only: nothing
// outlives the process.
package storage

import (
	"chat-sim/domain"
	"chat-sim/domain/event"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const KeyPrefix = "msg:"

// Entry is one journaled message.
type Entry struct {
	ID               uuid.UUID
	Kind             event.Type
	ConversationID   domain.ConversationID
	ConversationName string
	Message          domain.Message
	Language         string
	At               time.Time
}

type Journal struct {
	db  *badger.DB
	log *slog.Logger
}

// OpenJournal opens the in-memory badger database backing the journal.
func OpenJournal(log *slog.Logger) (*Journal, error) {
	options := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("journal opening failed: %w", err)
	}
	return &Journal{db: db, log: log}, nil
}

func (j *Journal) DB() *badger.DB { return j.db }

func (j *Journal) Close() error { return j.db.Close() }

// Consume journals message events and ignores the rest.
func (j *Journal) Consume(ctx context.Context, e event.Event) error {
	id, msg, ok := event.ConversationMessage(e)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := Entry{
		ID:             uuid.New(),
		Kind:           e.Type,
		ConversationID: id,
		Message:        msg,
		Language:       detectLanguage(msg.Text),
		At:             e.CreatedAt,
	}
	if received, ok := e.Payload.(event.MessageReceived); ok {
		entry.ConversationName = received.ConversationName
	}
	return j.Store(entry)
}

// Store writes an entry under "msg:{conversation}:{timestamp_padded}:{uuid}"
// so a prefix scan returns a conversation in chronological order.
func (j *Journal) Store(entry Entry) error {
	value, err := encode(entry)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key(entry)), value)
	})
}

// Entries returns the journal of one conversation, oldest first.
func (j *Journal) Entries(id domain.ConversationID) ([]Entry, error) {
	return j.scan(fmt.Sprintf("%s%d:", KeyPrefix, id))
}

// All returns every entry, grouped by conversation.
func (j *Journal) All() ([]Entry, error) {
	return j.scan(KeyPrefix)
}

func (j *Journal) scan(prefix string) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				entry, err := decode(val)
				if err != nil {
					j.log.Warn("Skipping unreadable journal entry", "key", string(item.Key()), "error", err)
					return nil
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

func key(entry Entry) string {
	return fmt.Sprintf("%s%d:%019d:%s", KeyPrefix, entry.ConversationID, entry.At.UnixNano(), entry.ID)
}

func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return "??"
}

func encode(entry Entry) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":                entry.ID.String(),
		"kind":              string(entry.Kind),
		"conversation_id":   strconv.Itoa(int(entry.ConversationID)),
		"conversation_name": entry.ConversationName,
		"message_id":        strconv.FormatInt(int64(entry.Message.ID), 10),
		"text":              entry.Message.Text,
		"time":              entry.Message.Time,
		"sent":              entry.Message.Sent,
		"language":          entry.Language,
		"at":                entry.At.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("encode journal entry: %w", err)
	}
	return proto.Marshal(s)
}

func decode(val []byte) (Entry, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(val, &s); err != nil {
		return Entry{}, err
	}
	field := func(name string) string { return s.GetFields()[name].GetStringValue() }

	id, err := uuid.Parse(field("id"))
	if err != nil {
		return Entry{}, err
	}
	conversationID, err := strconv.Atoi(field("conversation_id"))
	if err != nil {
		return Entry{}, err
	}
	messageID, err := strconv.ParseInt(field("message_id"), 10, 64)
	if err != nil {
		return Entry{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, field("at"))
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:               id,
		Kind:             event.Type(field("kind")),
		ConversationID:   domain.ConversationID(conversationID),
		ConversationName: field("conversation_name"),
		Message: domain.Message{
			ID:   domain.MessageID(messageID),
			Text: field("text"),
			Time: field("time"),
			Sent: s.GetFields()["sent"].GetBoolValue(),
		},
		Language: field("language"),
		At:       at,
	}, nil
}
