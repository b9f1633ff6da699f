package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"agentdeck/internal/ui/overlay"
	"agentdeck/internal/ui/styles"
	"agentdeck/internal/ws"
)

// layout distributes the window between the panels: chat on the left,
// pipeline and history stacked on the right, status bar at the bottom.
func (m Model) layout() Model {
	contentHeight := m.height
	if m.cfg.UI.ShowStatusBar {
		contentHeight--
	}
	if contentHeight < 1 {
		contentHeight = 1
	}

	chatWidth := m.width * 3 / 5
	if chatWidth < 20 {
		chatWidth = m.width
	}
	sideWidth := m.width - chatWidth
	pipelineHeight := contentHeight * 2 / 3
	historyHeight := contentHeight - pipelineHeight

	m.chat = m.chat.SetSize(chatWidth-2, contentHeight-2)
	m.pipeline = m.pipeline.SetSize(sideWidth-2, pipelineHeight-2)
	m.inspect = m.inspect.SetSize(m.width, m.height)
	m.historyHeight = historyHeight
	m.sideWidth = sideWidth
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}

	chatWidth := m.width * 3 / 5
	if chatWidth < 20 {
		chatWidth = m.width
	}
	contentHeight := m.height
	if m.cfg.UI.ShowStatusBar {
		contentHeight--
	}

	chatPanel := styles.PanelBorderStyle.
		Width(chatWidth - 2).
		Height(contentHeight - 2).
		Render(m.chat.View())

	var view string
	if chatWidth == m.width {
		view = chatPanel
	} else {
		pipelineHeight := contentHeight * 2 / 3
		pipelinePanel := styles.PanelBorderStyle.
			Width(m.sideWidth - 2).
			Height(pipelineHeight - 2).
			Render(m.pipeline.View())
		historyPanel := styles.PanelBorderStyle.
			Width(m.sideWidth - 2).
			Height(m.historyHeight - 2).
			Render(m.renderHistory())

		side := lipgloss.JoinVertical(lipgloss.Left, pipelinePanel, historyPanel)
		view = lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, side)
	}

	if m.cfg.UI.ShowStatusBar {
		view = lipgloss.JoinVertical(lipgloss.Left, view, m.renderStatusBar())
	}

	if m.inspect.Visible() {
		view = overlay.Place(m.width, m.height, m.inspect.View(), view)
	}

	return zone.Scan(view)
}

// renderHistory shows the bounded run ledger, newest first.
func (m Model) renderHistory() string {
	items := m.history.Items()
	title := styles.PanelTitleStyle.Render("History")
	if len(items) == 0 {
		return title + "\n" + styles.MutedTextStyle.Render("No completed runs.")
	}

	typeCol := 0
	for _, item := range items {
		if w := runewidth.StringWidth(item.AgentType); w > typeCol {
			typeCol = w
		}
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	rows := m.historyHeight - 3
	if rows < 1 {
		rows = 1
	}
	for i, item := range items {
		if i >= rows {
			break
		}
		b.WriteString(fmt.Sprintf("%s  %s\n",
			styles.DetailValueStyle.Render(runewidth.FillRight(item.AgentType, typeCol)),
			styles.MutedTextStyle.Render(fmt.Sprintf("%.1fs", item.DurationSeconds)),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderStatusBar shows the stream state and the MCP reachability badge.
func (m Model) renderStatusBar() string {
	var conn string
	switch m.wsStatus {
	case ws.Open:
		conn = styles.BadgeUpStyle.Render("● connected")
	case ws.Connecting:
		conn = styles.StatusBarStyle.Render("◌ connecting")
	default:
		conn = styles.BadgeDownStyle.Render("○ disconnected")
	}

	mcp := styles.StatusBarStyle.Render("mcp ?")
	if m.probed {
		if m.mcpUp {
			mcp = styles.BadgeUpStyle.Render("mcp up")
		} else {
			mcp = styles.BadgeDownStyle.Render("mcp down")
		}
	}

	bar := styles.StatusBarStyle.Render(" ") + conn +
		styles.StatusBarStyle.Render("  ") + mcp
	if len(m.agents) > 0 {
		bar += styles.StatusBarStyle.Render("  agents: " + strings.Join(m.agents, ", "))
	}
	return bar
}
