package inspect

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/truncate"

	"agentdeck/internal/protocol"
	"agentdeck/internal/ui/styles"
)

// PanelZoneID marks the overlay panel itself: a mouse click outside its
// bounds dismisses the session.
const PanelZoneID = "inspect:panel"

// View renders the inspect panel. The parent composes it over the main
// layout. Empty when the session is closed.
func (m Model) View() string {
	if !m.visible || m.width < 1 || m.height < 1 {
		return ""
	}

	panelWidth := min(m.width-8, 72)
	if panelWidth < 30 {
		panelWidth = m.width - 2
	}

	var body string
	switch {
	case m.gone:
		body = styles.SummaryGoneStyle.Render("Agent destroyed -- no longer inspectable.") +
			"\n\n" + styles.MutedTextStyle.Render("The orchestrator has torn this agent down.")
	case m.snapshot == nil:
		body = styles.MutedTextStyle.Render("Fetching agent detail...")
	default:
		body = m.renderSnapshot(*m.snapshot, panelWidth-4)
	}

	title := styles.PanelTitleStyle.Render("Agent " + m.agentID)
	hint := styles.MutedTextStyle.Render("esc to close")
	panel := styles.PanelBorderStyle.Width(panelWidth).Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint),
	)

	return zone.Mark(PanelZoneID, panel)
}

func (m Model) renderSnapshot(d protocol.AgentDetail, width int) string {
	statusStyle := styles.SummaryActiveStyle
	switch d.Status {
	case protocol.AgentDestroyed:
		statusStyle = styles.SummaryGoneStyle
	case protocol.AgentCoolingDown:
		statusStyle = styles.CooldownStyle
	}

	rows := []struct {
		label string
		value string
	}{
		{"type", fmt.Sprintf("%s %s", d.AgentIcon, d.AgentType)},
		{"status", statusStyle.Render(d.Status)},
		{"class", d.RuntimeClass},
		{"object", memoryObjectHex(d.MemoryObjectID)},
		{"pid", intOrEmpty(d.ProcessID)},
		{"thread", threadInfo(d)},
		{"created", d.CreatedAt},
		{"completed", d.CompletedAt},
		{"duration", durationOrEmpty(d.DurationSeconds)},
		{"action", d.Action},
		{"result", d.ResultStatus},
		{"size", sizeOrEmpty(d.ResultSizeBytes)},
	}

	var b strings.Builder
	if d.Description != "" {
		b.WriteString(styles.MutedTextStyle.Render(d.Description) + "\n\n")
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		b.WriteString(styles.DetailLabelStyle.Render(fmt.Sprintf("%-10s", row.label)) +
			styles.DetailValueStyle.Render(row.value) + "\n")
	}

	if len(d.Events) > 0 {
		b.WriteString("\n" + styles.PanelTitleStyle.Render("Events") + "\n")
		for _, ev := range d.Events {
			line := "  " + ev.Step
			if ev.Detail != "" {
				line += "  " + styles.MutedTextStyle.Render(ev.Detail)
			}
			b.WriteString(truncate.StringWithTail(line, uint(max(width, 20)), "…") + "\n") //nolint:gosec // G115: width is clamped positive
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// memoryObjectHex renders the opaque numeric handle as hex.
func memoryObjectHex(id uint64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("0x%x", id)
}

func intOrEmpty(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func threadInfo(d protocol.AgentDetail) string {
	switch {
	case d.ThreadName != "" && d.ThreadID != 0:
		return fmt.Sprintf("%s (%d)", d.ThreadName, d.ThreadID)
	case d.ThreadName != "":
		return d.ThreadName
	case d.ThreadID != 0:
		return fmt.Sprintf("%d", d.ThreadID)
	default:
		return ""
	}
}

func durationOrEmpty(d *float64) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%.1fs", *d)
}

func sizeOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d bytes", n)
}
