// Package chat holds the conversation transcript: an append-only ordered
// sequence of user and agent messages, plus the transient typing placeholder
// shown between a submission and its response.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"agentdeck/internal/log"
	"agentdeck/internal/protocol"
)

// Message roles.
const (
	RoleUser   = "user"
	RoleAgent  = "agent"
	RoleSystem = "system"
)

// Message is one transcript entry. The typing placeholder is not a Message
// and is never persisted.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	AgentType string `json:"agent_type,omitempty"`
}

// SubmitMsg is emitted when the user submits a query. The parent drives the
// submission flow: optimistic append, pipeline clear, elapsed timer, send.
type SubmitMsg struct {
	Content string
}

// Model holds the chat transcript state.
type Model struct {
	width  int
	height int

	messages []Message
	typing   bool

	input    textinput.Model
	viewport viewport.Model

	renderer      *Renderer
	markdownStyle string
}

// New creates a chat model. markdownStyle is "dark" or "light".
func New(markdownStyle string) Model {
	input := textinput.New()
	input.Placeholder = "Ask about your application..."
	input.Prompt = "> "
	input.Focus()

	return Model{
		messages:      make([]Message, 0),
		input:         input,
		viewport:      viewport.New(0, 0),
		markdownStyle: markdownStyle,
	}
}

// Restore creates a chat model seeded with a persisted transcript.
func Restore(markdownStyle string, messages []Message) Model {
	m := New(markdownStyle)
	m.messages = append(m.messages, messages...)
	return m
}

// SetSize updates the panel dimensions and rebuilds the renderer at the new
// wrap width.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	inputHeight := 1
	m.viewport.Width = width
	m.viewport.Height = max(height-inputHeight-1, 1)
	m.input.Width = max(width-4, 10)

	wrapWidth := max(width-2, 20)
	renderer, err := NewRenderer(wrapWidth, m.markdownStyle)
	if err != nil {
		log.ErrorErr(log.CatChat, "Markdown renderer init failed, using plain text", err)
		renderer = nil
	}
	m.renderer = renderer
	return m
}

// SetMarkdownStyle switches the rendering style and rebuilds the renderer.
func (m Model) SetMarkdownStyle(style string) Model {
	if style == m.markdownStyle {
		return m
	}
	m.markdownStyle = style
	return m.SetSize(m.width, m.height)
}

// Update handles key input for the chat input line.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			content := strings.TrimSpace(m.input.Value())
			if content == "" {
				return m, nil
			}
			m.input.Reset()
			return m, func() tea.Msg { return SubmitMsg{Content: content} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// AppendUser appends the user's message optimistically, before any network
// confirmation, and shows the typing placeholder.
func (m Model) AppendUser(content string) Model {
	m.messages = append(m.messages, Message{Role: RoleUser, Content: content})
	m.typing = true
	return m
}

// AppendAgent removes the typing placeholder (its absence is not an error)
// and appends the agent's response.
func (m Model) AppendAgent(resp protocol.ChatResponse) Model {
	m.typing = false
	m.messages = append(m.messages, Message{
		Role:      RoleAgent,
		Content:   resp.Message,
		AgentType: resp.AgentType,
	})
	return m
}

// AppendSystem appends a system notice line (connect banner).
func (m Model) AppendSystem(content string) Model {
	m.messages = append(m.messages, Message{Role: RoleSystem, Content: content})
	return m
}

// Messages returns the transcript, excluding the typing placeholder. This is
// exactly what the persistence layer snapshots.
func (m Model) Messages() []Message {
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Typing reports whether the typing placeholder is visible.
func (m Model) Typing() bool {
	return m.typing
}

// InputValue returns the current input line contents.
func (m Model) InputValue() string {
	return m.input.Value()
}
