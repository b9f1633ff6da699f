// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusRunningColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Chat roles
	UserColor   = lipgloss.AdaptiveColor{Light: "#FB923C", Dark: "#FB923C"}
	AgentColor  = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#179299"}
	SystemColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Step status glyph styles
	StepPendingStyle   = lipgloss.NewStyle().Foreground(TextMutedColor)
	StepRunningStyle   = lipgloss.NewStyle().Foreground(StatusRunningColor)
	StepCompletedStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	StepErrorStyle     = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)

	// Cooldown countdown and its terminal state
	CooldownStyle   = lipgloss.NewStyle().Foreground(StatusWarningColor)
	DestroyingStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)

	// Inspect affordance (clickable)
	InspectLinkStyle = lipgloss.NewStyle().Foreground(BorderFocusColor).Underline(true)

	// Summary card
	SummaryTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	SummaryActiveStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	SummaryDoneStyle   = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	SummaryGoneStyle   = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Muted helper text
	MutedTextStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Status bar
	BadgeUpStyle   = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	BadgeDownStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	StatusBarStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Panel chrome
	PanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(BorderDefaultColor)
	PanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	// Detail labels in the inspect panel
	DetailLabelStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	DetailValueStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor)
)
