package domain

import (
	"chat-sim/errors"
	"fmt"

	"github.com/samber/lo"
)

type Section string

const (
	SectionMessages Section = "messages"
	SectionContacts Section = "contacts"
	SectionCalls    Section = "calls"
	SectionGroups   Section = "groups"
	SectionProfile  Section = "profile"
	SectionSettings Section = "settings"
)

var sections = []Section{
	SectionMessages,
	SectionContacts,
	SectionCalls,
	SectionGroups,
	SectionProfile,
	SectionSettings,
}

// Sections returns the sidebar order.
func Sections() []Section {
	return append([]Section(nil), sections...)
}

func (s Section) Valid() bool {
	return lo.Contains(sections, s)
}

func ParseSection(value string) (Section, error) {
	s := Section(value)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownSection, value)
	}
	return s, nil
}
