// Package search indexes every message event so a conversation can be
// searched by text, and highlights the matched words in results.
package search

import (
	"chat-sim/domain"
	"chat-sim/domain/event"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/blugelabs/bluge"
)

const (
	fieldText         = "text"
	fieldConversation = "conversation"
	fieldTime         = "time"
	fieldSent         = "sent"
	defaultLimit      = 50
)

// Hit is a message matching a query.
type Hit struct {
	ConversationID domain.ConversationID
	Message        domain.Message
	Score          float64
}

// Index is an in-memory bluge index of messages. It is an event sink fed by
// the fanout and can be bootstrapped with the seeded histories.
type Index struct {
	mu     sync.Mutex
	log    *slog.Logger
	writer *bluge.Writer
}

func NewIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &Index{log: log, writer: writer}, nil
}

// Consume indexes message events and ignores the rest.
func (x *Index) Consume(ctx context.Context, e event.Event) error {
	id, msg, ok := event.ConversationMessage(e)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return x.Put(id, msg)
}

// Put indexes a single message.
func (x *Index) Put(id domain.ConversationID, msg domain.Message) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	doc := toDocument(id, msg)
	if err := x.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %d: %w", msg.ID, err)
	}
	return nil
}

// Load indexes a whole snapshot in one batch.
func (x *Index) Load(snapshot map[domain.ConversationID][]domain.Message) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	batch := bluge.NewBatch()
	count := 0
	for id, messages := range snapshot {
		for _, msg := range messages {
			doc := toDocument(id, msg)
			batch.Update(doc.ID(), doc)
			count++
		}
	}
	if err := x.writer.Batch(batch); err != nil {
		return fmt.Errorf("index snapshot: %w", err)
	}
	x.log.Debug("Search index loaded", "messages", count)
	return nil
}

// Search returns the messages of a conversation matching query, best first.
// An empty query returns nothing.
func (x *Index) Search(ctx context.Context, id domain.ConversationID, query string) ([]Hit, error) {
	if query == "" {
		return nil, nil
	}
	x.mu.Lock()
	reader, err := x.writer.Reader()
	x.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField(fieldText)).
		AddMust(bluge.NewTermQuery(conversationKey(id)).SetField(fieldConversation))
	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(defaultLimit, q))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var hits []Hit
	match, err := dmi.Next()
	for err == nil && match != nil {
		hit := Hit{ConversationID: id, Score: match.Score}
		if visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				n, _ := strconv.ParseInt(string(value), 10, 64)
				hit.Message.ID = domain.MessageID(n % messageIDSpan)
			case fieldText:
				hit.Message.Text = string(value)
			case fieldTime:
				hit.Message.Time = string(value)
			case fieldSent:
				hit.Message.Sent = string(value) == "true"
			}
			return true
		}); visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return hits, nil
}

func (x *Index) Close() error {
	return x.writer.Close()
}

// messageIDSpan separates the conversation part of a document id from the
// message part. Message ids are millisecond timestamps below 10^13 until
// the year 2286.
const messageIDSpan = 10_000_000_000_000

// documentID keeps ids unique across conversations. Two messages with the
// same id in one conversation collapse into one document.
func documentID(id domain.ConversationID, msg domain.Message) string {
	return strconv.FormatInt(int64(id)*messageIDSpan+int64(msg.ID), 10)
}

func conversationKey(id domain.ConversationID) string {
	return strconv.Itoa(int(id))
}

func toDocument(id domain.ConversationID, msg domain.Message) *bluge.Document {
	return bluge.NewDocument(documentID(id, msg)).
		AddField(bluge.NewTextField(fieldText, msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField(fieldConversation, conversationKey(id))).
		AddField(bluge.NewKeywordField(fieldTime, msg.Time).StoreValue()).
		AddField(bluge.NewKeywordField(fieldSent, strconv.FormatBool(msg.Sent)).StoreValue())
}
