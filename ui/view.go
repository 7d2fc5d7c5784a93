package ui

import (
	"chat-sim/domain"
	"chat-sim/search"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sectionLabels = map[domain.Section]string{
	domain.SectionMessages: "Сообщения",
	domain.SectionContacts: "Контакты",
	domain.SectionCalls:    "Звонки",
	domain.SectionGroups:   "Группы",
	domain.SectionProfile:  "Профиль",
	domain.SectionSettings: "Настройки",
}

const encryptionLabel = "🔒 Сквозное шифрование"

func (m Model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(),
		m.renderMain(),
	)
	if toasts := m.renderToasts(); toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, toasts)
	}
	return body
}

func (m Model) renderSidebar() string {
	active := m.client.Selection().Section
	var b strings.Builder
	b.WriteString(m.styles.title.Render("chat-sim"))
	b.WriteString("\n\n")
	for _, s := range domain.Sections() {
		label := sectionLabels[s]
		if s == active {
			b.WriteString(m.styles.selected.Render(label))
		} else {
			b.WriteString(m.styles.unselected.Render(label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("tab  раздел\n↑/↓  чат\n^f   фильтр\n^s   поиск\nesc  скрыть\n^c   выход"))
	return m.styles.pane.Width(sidebarWidth).Render(b.String())
}

func (m Model) renderMain() string {
	switch m.client.Selection().Section {
	case domain.SectionMessages:
		return lipgloss.JoinHorizontal(lipgloss.Top, m.renderChatList(), m.renderConversation())
	case domain.SectionContacts:
		return m.panel("Контакты", m.renderContacts())
	case domain.SectionCalls:
		return m.panel("Звонки", m.renderCalls())
	case domain.SectionGroups:
		return m.panel("Группы", m.renderGroups())
	case domain.SectionProfile:
		return m.panel("Профиль", m.renderProfile())
	case domain.SectionSettings:
		return m.panel("Настройки", m.renderSettings())
	}
	return ""
}

func (m Model) panel(title, content string) string {
	width := max(m.width-sidebarWidth-6, 30)
	return m.styles.pane.Width(width).Render(m.styles.title.Render(title) + "\n\n" + content)
}

func (m Model) renderChatList() string {
	active := m.client.Selection().Conversation
	var b strings.Builder
	b.WriteString(m.chatFilter.View())
	b.WriteString("\n\n")
	visible := m.visibleChats()
	if len(visible) == 0 {
		b.WriteString(m.styles.muted.Render("Ничего не найдено"))
	}
	for _, c := range visible {
		b.WriteString(m.renderChatRow(c, c.ID == active))
		b.WriteString("\n")
	}
	return m.styles.pane.Width(chatListWidth).Render(b.String())
}

func (m Model) renderChatRow(c domain.Conversation, selected bool) string {
	name := c.Name
	if c.Online {
		name += " " + m.styles.online.Render("●")
	}
	top := fmt.Sprintf("%s  %s", name, m.styles.muted.Render(c.Time))
	if c.Unread > 0 {
		top += " " + m.styles.badge.Render(fmt.Sprint(c.Unread))
	}
	preview := truncate(c.LastMessage, chatListWidth-8)
	row := top + "\n" + m.styles.muted.Render(preview)
	if selected {
		return m.styles.selected.Render(row)
	}
	return m.styles.unselected.Render(row)
}

func (m Model) renderConversation() string {
	c := m.client.ActiveConversation()
	dot := m.styles.muted.Render("○ не в сети")
	if c.Online {
		dot = m.styles.online.Render("● в сети")
	}
	avatar := c.Avatar
	if avatar == "" {
		avatar = c.Initials()
	}
	header := m.styles.header.Render(fmt.Sprintf("%s  %s  %s\n%s",
		m.styles.badge.Render(avatar), c.Name, dot, m.styles.muted.Render(encryptionLabel)))

	parts := []string{header}
	if m.focus == focusMessageSearch || m.messageSearch.Value() != "" {
		parts = append(parts, m.messageSearch.View())
	}
	parts = append(parts, m.conversation.View(), m.compose.View())
	width := max(m.width-sidebarWidth-chatListWidth-8, 24)
	return m.styles.pane.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderMessages() string {
	id := m.client.Selection().Conversation
	messages := m.client.Messages(id)
	if query := m.messageSearch.Value(); query != "" && (m.hits != nil || m.searchErr != nil) {
		return m.renderHits(query)
	}
	if len(messages) == 0 {
		return m.styles.muted.Render("Нет сообщений")
	}
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(m.renderMessage(msg, nil))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHits(query string) string {
	if m.searchErr != nil {
		return m.styles.alert.Render("Ошибка поиска: " + m.searchErr.Error())
	}
	if len(m.hits) == 0 {
		return m.styles.muted.Render("Совпадений нет")
	}
	highlighter, err := search.NewHighlighter(query)
	if err != nil {
		m.log.Warn("Highlighter unavailable", "query", query, "error", err)
		highlighter = nil
	}
	var b strings.Builder
	for _, hit := range m.hits {
		b.WriteString(m.renderMessage(hit.Message, highlighter))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMessage(msg domain.Message, highlighter *search.Highlighter) string {
	text := msg.Text
	if highlighter != nil {
		text = highlighter.Highlight(text, func(s string) string { return m.styles.mark.Render(s) })
	}
	line := fmt.Sprintf("%s %s", text, m.styles.muted.Render(msg.Time))
	if msg.Sent {
		return lipgloss.PlaceHorizontal(m.conversation.Width, lipgloss.Right, m.styles.sent.Render("› ")+line)
	}
	return m.styles.received.Render("‹ ") + line
}

func (m Model) renderContacts() string {
	var b strings.Builder
	for _, c := range m.client.Directory().Conversations() {
		status := m.styles.muted.Render("не в сети")
		if c.Online {
			status = m.styles.online.Render("в сети")
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", m.styles.badge.Render(c.Initials()), c.Name, status)
	}
	return b.String()
}

func (m Model) renderCalls() string {
	var b strings.Builder
	for _, call := range m.panels.Calls {
		arrow := "↙"
		if call.Direction == domain.CallOutgoing {
			arrow = "↗"
		}
		name := call.Name
		if !call.Answered {
			arrow = m.styles.alert.Render(arrow)
			name = m.styles.alert.Render(name)
		}
		fmt.Fprintf(&b, "%s %s  %s  %s\n", arrow, name,
			m.styles.muted.Render(call.Time), m.styles.muted.Render(call.Duration))
	}
	return b.String()
}

func (m Model) renderGroups() string {
	var b strings.Builder
	for _, g := range m.panels.Groups {
		line := fmt.Sprintf("%s  %s", g.Name, m.styles.muted.Render(fmt.Sprintf("%d участников", g.Members)))
		if g.Unread > 0 {
			line += " " + m.styles.badge.Render(fmt.Sprint(g.Unread))
		}
		fmt.Fprintf(&b, "%s\n  %s\n", line, m.styles.muted.Render(g.LastMessage))
	}
	return b.String()
}

func (m Model) renderProfile() string {
	p := m.panels.Profile
	return fmt.Sprintf("%s\n%s\n\n%s %s\n%s %s\n",
		m.styles.title.Render(p.Name),
		m.styles.muted.Render(p.About),
		m.styles.muted.Render("Телефон:"), p.Phone,
		m.styles.muted.Render("Имя пользователя:"), p.Username)
}

func (m Model) renderSettings() string {
	var b strings.Builder
	for _, s := range m.panels.Settings {
		fmt.Fprintf(&b, "%s\n  %s\n", s.Title, m.styles.muted.Render(s.Subtitle))
	}
	return b.String()
}

func (m Model) renderToasts() string {
	if m.board == nil {
		return ""
	}
	toasts := m.board.Active()
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, m.styles.toast.Render(m.styles.title.Render(t.Title)+"\n"+t.Body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 1 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
