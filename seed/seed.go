// Package seed loads the startup data of the client: the chat directory,
// the initial histories, the canned phrases and the read-only panels.
package seed

import (
	"chat-sim/domain"
	"chat-sim/errors"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type chatDoc struct {
	ID          int    `yaml:"id" validate:"gt=0"`
	Name        string `yaml:"name" validate:"required"`
	Avatar      string `yaml:"avatar"`
	LastMessage string `yaml:"last_message"`
	Time        string `yaml:"time"`
	Unread      int    `yaml:"unread" validate:"gte=0"`
	Online      bool   `yaml:"online"`
}

type messageDoc struct {
	ID   int64  `yaml:"id"`
	Text string `yaml:"text" validate:"required"`
	Time string `yaml:"time"`
	Sent bool   `yaml:"sent"`
}

type callDoc struct {
	Name      string `yaml:"name" validate:"required"`
	Direction string `yaml:"direction" validate:"oneof=incoming outgoing"`
	Time      string `yaml:"time"`
	Duration  string `yaml:"duration"`
	Answered  bool   `yaml:"answered"`
}

type groupDoc struct {
	Name        string `yaml:"name" validate:"required"`
	Members     int    `yaml:"members" validate:"gte=0"`
	LastMessage string `yaml:"last_message"`
	Unread      int    `yaml:"unread" validate:"gte=0"`
}

type profileDoc struct {
	Name     string `yaml:"name"`
	About    string `yaml:"about"`
	Phone    string `yaml:"phone"`
	Username string `yaml:"username"`
}

type settingDoc struct {
	Title    string `yaml:"title" validate:"required"`
	Subtitle string `yaml:"subtitle"`
}

type document struct {
	Chats    []chatDoc            `yaml:"chats" validate:"min=1,dive"`
	Messages map[int][]messageDoc `yaml:"messages" validate:"dive,dive"`
	Phrases  []string             `yaml:"phrases" validate:"min=1,dive,required"`
	Calls    []callDoc            `yaml:"calls" validate:"dive"`
	Groups   []groupDoc           `yaml:"groups" validate:"dive"`
	Profile  profileDoc           `yaml:"profile"`
	Settings []settingDoc         `yaml:"settings" validate:"dive"`
}

// Seed is the owned copy of the startup data.
type Seed struct {
	Directory *domain.Directory
	History   map[domain.ConversationID][]domain.Message
	Phrases   domain.Phrases
	Panels    domain.Panels
}

// Default decodes the seed embedded in the binary.
func Default() (*Seed, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file, falling back to the embedded seed when path is empty.
func Load(path string) (*Seed, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Seed, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(doc.Chats) == 0 {
		return nil, errors.ErrEmptySeed
	}
	if len(doc.Phrases) == 0 {
		return nil, errors.ErrEmptyPhrases
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	dir, err := domain.NewDirectory(lo.Map(doc.Chats, func(c chatDoc, _ int) domain.Conversation {
		return domain.Conversation{
			ID:          domain.ConversationID(c.ID),
			Name:        c.Name,
			Avatar:      c.Avatar,
			LastMessage: c.LastMessage,
			Time:        c.Time,
			Unread:      c.Unread,
			Online:      c.Online,
		}
	}))
	if err != nil {
		return nil, err
	}

	history := make(map[domain.ConversationID][]domain.Message, len(doc.Messages))
	for id, messages := range doc.Messages {
		history[domain.ConversationID(id)] = lo.Map(messages, func(m messageDoc, _ int) domain.Message {
			return domain.Message{ID: domain.MessageID(m.ID), Text: m.Text, Time: m.Time, Sent: m.Sent}
		})
	}

	return &Seed{
		Directory: dir,
		History:   history,
		Phrases:   append(domain.Phrases(nil), doc.Phrases...),
		Panels: domain.Panels{
			Calls: lo.Map(doc.Calls, func(c callDoc, _ int) domain.CallRecord {
				return domain.CallRecord{
					Name:      c.Name,
					Direction: domain.CallDirection(c.Direction),
					Time:      c.Time,
					Duration:  c.Duration,
					Answered:  c.Answered,
				}
			}),
			Groups: lo.Map(doc.Groups, func(g groupDoc, _ int) domain.Group {
				return domain.Group{Name: g.Name, Members: g.Members, LastMessage: g.LastMessage, Unread: g.Unread}
			}),
			Profile: domain.Profile(doc.Profile),
			Settings: lo.Map(doc.Settings, func(s settingDoc, _ int) domain.SettingsEntry {
				return domain.SettingsEntry(s)
			}),
		},
	}, nil
}

// Store builds a fresh message store from the seeded histories.
func (s *Seed) Store() (*domain.MessageStore, error) {
	return domain.NewMessageStore(s.Directory, s.History)
}
