// Package ui is the terminal presentation layer. It reads state from the
// controller and forwards user intents to it; it owns no chat state.
package ui

import (
	"chat-sim/domain"
	"chat-sim/domain/event"
	"chat-sim/notify"
	"chat-sim/search"
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	sidebarWidth  = 16
	chatListWidth = 34
	refreshPeriod = 250 * time.Millisecond
)

// Client is what the screen needs from the controller.
type Client interface {
	Directory() *domain.Directory
	Selection() domain.Selection
	ActiveConversation() domain.Conversation
	Messages(id domain.ConversationID) []domain.Message
	SetDraft(text string)
	Draft() string
	Send() bool
	SelectSection(section domain.Section) error
	SelectConversation(id domain.ConversationID) error
}

// Searcher runs full-text queries over a conversation.
type Searcher interface {
	Search(ctx context.Context, id domain.ConversationID, query string) ([]search.Hit, error)
}

type focus int

const (
	focusCompose focus = iota
	focusChatFilter
	focusMessageSearch
)

type eventMsg struct{ event event.Event }
type toastMsg struct{}
type refreshMsg time.Time

type Model struct {
	log      *slog.Logger
	client   Client
	panels   domain.Panels
	board    *notify.Board
	searcher Searcher
	styles   styles

	width  int
	height int
	focus  focus

	compose       textinput.Model
	chatFilter    textinput.Model
	messageSearch textinput.Model
	conversation  viewport.Model

	hits      []search.Hit
	searchErr error
}

func NewModel(log *slog.Logger, client Client, panels domain.Panels,
	board *notify.Board, searcher Searcher, theme Theme) Model {
	compose := textinput.New()
	compose.Placeholder = "Введите сообщение..."
	compose.CharLimit = 1000
	compose.SetValue(client.Draft())
	compose.Focus()

	chatFilter := textinput.New()
	chatFilter.Placeholder = "Поиск"
	chatFilter.CharLimit = 64

	messageSearch := textinput.New()
	messageSearch.Placeholder = "Поиск в чате"
	messageSearch.CharLimit = 100

	m := Model{
		log:           log,
		client:        client,
		panels:        panels,
		board:         board,
		searcher:      searcher,
		styles:        newStyles(theme),
		compose:       compose,
		chatFilter:    chatFilter,
		messageSearch: messageSearch,
		conversation:  viewport.New(60, 20),
		width:         120,
		height:        32,
	}
	m.resize()
	m.refreshConversation(true)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refresh())
}

func refresh() tea.Cmd {
	return tea.Tick(refreshPeriod, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refreshConversation(true)
		return m, nil

	case eventMsg:
		id, _, ok := event.ConversationMessage(msg.event)
		if ok && id == m.client.Selection().Conversation {
			m.runSearch()
			m.refreshConversation(true)
		}
		return m, nil

	case toastMsg:
		return m, nil

	case refreshMsg:
		return m, refresh()

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	cmds = append(cmds, m.updateFocusedInput(msg))
	return m, tea.Batch(cmds...)
}

// handleKey processes the bindings shared by every focus.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "tab":
		m.cycleSection(1)
		return nil, true
	case "shift+tab":
		m.cycleSection(-1)
		return nil, true
	case "up":
		m.moveConversation(-1)
		return nil, true
	case "down":
		m.moveConversation(1)
		return nil, true
	case "pgup":
		m.conversation.HalfPageUp()
		return nil, true
	case "pgdown":
		m.conversation.HalfPageDown()
		return nil, true
	case "ctrl+f":
		m.setFocus(focusChatFilter)
		return nil, true
	case "ctrl+s":
		m.setFocus(focusMessageSearch)
		return nil, true
	case "esc":
		if m.focus != focusCompose {
			m.chatFilter.SetValue("")
			m.messageSearch.SetValue("")
			m.hits = nil
			m.searchErr = nil
			m.setFocus(focusCompose)
			m.refreshConversation(true)
			return nil, true
		}
		m.dismissOldestToast()
		return nil, true
	case "enter":
		switch m.focus {
		case focusCompose:
			if m.client.Send() {
				m.compose.SetValue(m.client.Draft())
				m.refreshConversation(true)
			}
		case focusChatFilter:
			if visible := m.visibleChats(); len(visible) > 0 {
				m.selectConversation(visible[0].ID)
			}
			m.setFocus(focusCompose)
		case focusMessageSearch:
			m.runSearch()
			m.refreshConversation(false)
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusCompose:
		before := m.compose.Value()
		m.compose, cmd = m.compose.Update(msg)
		if m.compose.Value() != before {
			m.client.SetDraft(m.compose.Value())
		}
	case focusChatFilter:
		m.chatFilter, cmd = m.chatFilter.Update(msg)
	case focusMessageSearch:
		m.messageSearch, cmd = m.messageSearch.Update(msg)
	}
	return cmd
}

func (m *Model) dismissOldestToast() {
	if m.board == nil {
		return
	}
	if toasts := m.board.Active(); len(toasts) > 0 {
		m.board.Dismiss(toasts[0].ID)
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.compose.Blur()
	m.chatFilter.Blur()
	m.messageSearch.Blur()
	switch f {
	case focusCompose:
		m.compose.Focus()
	case focusChatFilter:
		m.chatFilter.Focus()
	case focusMessageSearch:
		m.messageSearch.Focus()
	}
}

func (m *Model) cycleSection(step int) {
	sections := domain.Sections()
	current := m.client.Selection().Section
	index := 0
	for i, s := range sections {
		if s == current {
			index = i
		}
	}
	next := sections[(index+step+len(sections))%len(sections)]
	if err := m.client.SelectSection(next); err != nil {
		m.log.Warn("Section change refused", "section", next, "error", err)
	}
}

func (m *Model) moveConversation(step int) {
	if m.client.Selection().Section != domain.SectionMessages {
		return
	}
	visible := m.visibleChats()
	if len(visible) == 0 {
		return
	}
	active := m.client.Selection().Conversation
	index := -1
	for i, c := range visible {
		if c.ID == active {
			index = i
		}
	}
	next := index + step
	if next < 0 || next >= len(visible) {
		return
	}
	m.selectConversation(visible[next].ID)
}

func (m *Model) selectConversation(id domain.ConversationID) {
	if err := m.client.SelectConversation(id); err != nil {
		m.log.Warn("Conversation change refused", "conversation_id", id, "error", err)
		return
	}
	m.hits = nil
	m.searchErr = nil
	m.messageSearch.SetValue("")
	m.refreshConversation(true)
}

func (m Model) visibleChats() []domain.Conversation {
	return m.client.Directory().Search(m.chatFilter.Value())
}

func (m *Model) runSearch() {
	query := m.messageSearch.Value()
	if query == "" || m.searcher == nil {
		m.hits, m.searchErr = nil, nil
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.hits, m.searchErr = m.searcher.Search(ctx, m.client.Selection().Conversation, query)
	if m.searchErr != nil {
		m.log.Warn("Message search failed", "query", query, "error", m.searchErr)
	}
}

func (m *Model) resize() {
	width := m.width - sidebarWidth - chatListWidth - 8
	height := m.height - 9
	m.conversation.Width = max(width, 20)
	m.conversation.Height = max(height, 5)
	m.compose.Width = max(width-4, 10)
	m.chatFilter.Width = chatListWidth - 6
	m.messageSearch.Width = max(width-4, 10)
}

func (m *Model) refreshConversation(bottom bool) {
	m.conversation.SetContent(m.renderMessages())
	if bottom {
		m.conversation.GotoBottom()
	}
}
