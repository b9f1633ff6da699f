package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"agentdeck/internal/ui/styles"
)

var (
	userLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.UserColor)
	agentLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.AgentColor)
	systemLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.SystemColor)
	typingStyle      = lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true)
)

// View renders the transcript pane above the input line.
func (m Model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}

	// View works on a value copy, so content is set here rather than in
	// Update; the viewport always follows the newest message.
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		"",
		m.input.View(),
	)
}

// renderTranscript builds the full transcript text. User- and system-authored
// content is sanitized and wrapped as plain text; only agent content goes
// through the markdown renderer.
func (m Model) renderTranscript() string {
	wrapWidth := max(m.width-2, 20)
	var b strings.Builder

	for _, msg := range m.messages {
		switch msg.Role {
		case RoleUser:
			b.WriteString(userLabelStyle.Render("You") + "\n")
			b.WriteString(wordwrap.String(Sanitize(msg.Content), wrapWidth) + "\n\n")

		case RoleSystem:
			b.WriteString(systemLabelStyle.Render("System") + "\n")
			b.WriteString(wordwrap.String(Sanitize(msg.Content), wrapWidth) + "\n\n")

		default:
			label := "Agent"
			if msg.AgentType != "" {
				label = msg.AgentType
			}
			b.WriteString(agentLabelStyle.Render(label) + "\n")
			b.WriteString(renderAgentContent(m.renderer, msg.Content, wrapWidth) + "\n\n")
		}
	}

	if m.typing {
		b.WriteString(typingStyle.Render("agent is typing...") + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
