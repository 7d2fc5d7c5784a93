package domain

// Selection is the pair of current-value slots driving the screen.
// Each setter overwrites its own slot only.
type Selection struct {
	Conversation ConversationID
	Section      Section
}

func NewSelection(conversation ConversationID) Selection {
	return Selection{Conversation: conversation, Section: SectionMessages}
}

func (s Selection) WithSection(section Section) Selection {
	s.Section = section
	return s
}

func (s Selection) WithConversation(id ConversationID) Selection {
	s.Conversation = id
	return s
}
