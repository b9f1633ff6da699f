package pipeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/truncate"

	"agentdeck/internal/ui/styles"
)

// InspectZonePrefix namespaces the clickable inspect affordances so mouse
// hits can be resolved back to an agent id.
const InspectZonePrefix = "inspect:"

// InspectZoneID returns the zone id for a step's inspect affordance.
func InspectZoneID(agentID string) string {
	return InspectZonePrefix + agentID
}

var stepGlyphs = map[string]string{
	"pending":   "·",
	"running":   "▸",
	"completed": "✓",
	"error":     "✗",
}

// View renders the pipeline panel: summary card on top, step list below.
func (m Model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}

	var sections []string
	if m.summary.Visible {
		sections = append(sections, m.renderSummary(), "")
	}
	sections = append(sections, m.renderSteps())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderSummary() string {
	statusStyle := styles.SummaryActiveStyle
	switch m.summary.Status {
	case SummaryDone:
		statusStyle = styles.SummaryDoneStyle
	case SummaryDestroyed:
		statusStyle = styles.SummaryGoneStyle
	}

	title := fmt.Sprintf("%s %s", m.summary.Icon, m.summary.AgentType)
	line := styles.SummaryTitleStyle.Render(title) +
		"  " + statusStyle.Render(m.summary.Status)
	if m.summary.Elapsed != "" {
		line += "  " + styles.StatusBarStyle.Render(m.summary.Elapsed)
	}
	id := styles.DetailLabelStyle.Render("id ") +
		styles.DetailValueStyle.Render(m.summary.AgentID)

	return lipgloss.JoinVertical(lipgloss.Left, line, id)
}

func (m Model) renderSteps() string {
	if len(m.steps) == 0 {
		return styles.MutedTextStyle.Render("No pipeline activity yet.")
	}

	var b strings.Builder
	for _, step := range m.steps {
		b.WriteString(m.renderStep(step) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStep(step Step) string {
	glyph, ok := stepGlyphs[step.Status]
	if !ok {
		glyph = "·"
	}
	glyphStyle := styles.StepPendingStyle
	switch step.Status {
	case "running":
		glyphStyle = styles.StepRunningStyle
	case "completed":
		glyphStyle = styles.StepCompletedStyle
	case "error":
		glyphStyle = styles.StepErrorStyle
	}

	width := uint(max(m.width-4, 20)) //nolint:gosec // G115: width is clamped positive
	line := glyphStyle.Render(glyph) + " " + truncate.StringWithTail(step.Label, width, "…")

	// Detail lines: the inspect affordance and the cooldown countdown are not
	// exclusive -- an inspectable agent counts down on the same step.
	if step.InspectTarget != "" {
		link := styles.InspectLinkStyle.Render("inspect " + step.InspectTarget)
		line += "\n    " + zone.Mark(InspectZoneID(step.InspectTarget), link)
	}
	switch {
	case step.Destroying:
		line += "\n    " + styles.DestroyingStyle.Render("destroying...")
	case step.Cooldown != nil:
		line += "\n    " + styles.CooldownStyle.Render(fmt.Sprintf("cooldown %ds", *step.Cooldown))
	case step.Detail != "" && step.InspectTarget == "":
		line += "\n    " + styles.StatusBarStyle.Render(truncate.StringWithTail(step.Detail, width, "…"))
	}

	return line
}
