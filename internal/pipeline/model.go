// Package pipeline reduces the orchestrator's progress events into the
// current run's state: an append-only step list, the single active-agent
// summary card, and the per-step cooldown countdowns.
package pipeline

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agentdeck/internal/log"
	"agentdeck/internal/protocol"
)

// Summary statuses.
const (
	SummaryActive    = "active"
	SummaryDone      = "done"
	SummaryDestroyed = "destroyed"
)

// Step is one rendered pipeline step. Immutable once appended except for its
// derived cooldown display; steps are only removed by a full clear.
type Step struct {
	Label         string    `json:"step"`
	Status        string    `json:"status"`
	Detail        string    `json:"detail,omitempty"`
	InspectTarget string    `json:"inspect_target,omitempty"`
	Cooldown      *int      `json:"cooldown_remaining,omitempty"`
	Destroying    bool      `json:"destroying,omitempty"`
	AgentType     string    `json:"agent_type,omitempty"`
	AgentID       string    `json:"agent_id,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
}

// Summary is the active-agent card. At most one per run; overwritten, never
// accumulated. The JSON fields are exactly what the persistence layer
// snapshots, so a hidden card restores hidden.
type Summary struct {
	Visible   bool      `json:"visible"`
	Icon      string    `json:"icon"`
	AgentType string    `json:"agent_type"`
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	Elapsed   string    `json:"elapsed"`
	Idle      bool      `json:"idle"`
	StartedAt time.Time `json:"started_at"`
}

// ElapsedTickMsg drives the summary's elapsed-time display.
type ElapsedTickMsg struct {
	Gen int
}

// CooldownTickMsg drives one step's cooldown countdown.
type CooldownTickMsg struct {
	Index int
	Gen   int
}

// agentIcons maps known agent types to their display icons, mirroring the
// orchestrator's roster.
var agentIcons = map[string]string{
	"log_agent":        "📋",
	"health_agent":     "🏥",
	"monitoring_agent": "📡",
	"runbook_agent":    "📕",
	"trace_agent":      "🔗",
	"dashboard_agent":  "📊",
	"deployment_agent": "🚀",
}

const defaultAgentIcon = "🤖"

// Model holds the pipeline state for the current run.
type Model struct {
	width  int
	height int

	steps   []Step
	summary Summary

	// gen guards every timer chain: Clear increments it and any tick carrying
	// a stale generation dies on arrival.
	gen        int
	queryStart time.Time

	elapsedEvery  time.Duration
	cooldownEvery time.Duration

	// Clock is the time source for testing. If nil, uses time.Now().
	Clock func() time.Time
}

// New creates an empty pipeline model. elapsedEvery is the elapsed-display
// tick interval (100ms in production).
func New(elapsedEvery time.Duration) Model {
	return Model{
		elapsedEvery:  elapsedEvery,
		cooldownEvery: time.Second,
	}
}

// RestoreSteps seeds the step list from a persisted snapshot. Cooldown
// countdowns are not resumed: a restored step that was mid-cooldown shows its
// last known value.
func (m Model) RestoreSteps(steps []Step) Model {
	m.steps = append(m.steps[:0], steps...)
	return m
}

// RestoreSummary seeds the summary card from a persisted snapshot,
// preserving its visibility.
func (m Model) RestoreSummary(s Summary) Model {
	m.summary = s
	m.summary.Idle = true
	return m
}

// SetSize updates the panel dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Steps returns the step list. The returned slice is a copy.
func (m Model) Steps() []Step {
	out := make([]Step, len(m.steps))
	copy(out, m.steps)
	return out
}

// ActiveSummary returns the active-agent card.
func (m Model) ActiveSummary() Summary {
	return m.summary
}

// Elapsed returns how long the current query has been running.
func (m Model) Elapsed() time.Duration {
	if m.queryStart.IsZero() {
		return 0
	}
	return m.now().Sub(m.queryStart)
}

// Apply reduces one pipeline event into the model. The returned command
// starts a cooldown countdown when the event carries one.
func (m Model) Apply(ev protocol.PipelineEvent) (Model, tea.Cmd) {
	// A qualifying agent_type overwrites the summary; the orchestrator's own
	// events never become the active agent.
	if ev.AgentType != "" && ev.AgentType != protocol.OrchestratorAgentType {
		m.summary = Summary{
			Visible:   true,
			Icon:      agentIcon(ev.AgentType),
			AgentType: ev.AgentType,
			AgentID:   ev.AgentID,
			Status:    SummaryActive,
			Elapsed:   m.summary.Elapsed,
			StartedAt: m.now(),
		}
	}

	step := Step{
		Label:         ev.Step,
		Status:        ev.Status,
		Detail:        ev.Detail,
		InspectTarget: ev.InspectTarget(),
		AgentType:     ev.AgentType,
		AgentID:       ev.AgentID,
		Timestamp:     protocol.ParseTimestamp(ev.Timestamp),
	}

	var cmd tea.Cmd
	if ev.CooldownRemaining != nil {
		remaining := *ev.CooldownRemaining
		if remaining < 0 {
			remaining = 0
		}
		if remaining == 0 {
			step.Destroying = true
		} else {
			step.Cooldown = &remaining
			cmd = m.cooldownTick(len(m.steps))
		}
	}
	m.steps = append(m.steps, step)
	log.Debug(log.CatPipeline, "Step appended", "step", ev.Step, "status", ev.Status)

	// Sentinel matching on the human-readable label drives summary
	// finalization and teardown.
	if ev.IsRequestComplete() {
		// Idle unconditionally: a run that errors out before any agent event
		// still has to stop the elapsed tick chain.
		m.summary.Idle = true
		if m.summary.Visible {
			m.summary.Status = SummaryDone
		}
	}
	if ev.IsAgentDestruction() && m.summary.Visible {
		m.summary.Status = SummaryDestroyed
		m.summary.Idle = true
	}

	return m, cmd
}

// Clear wipes the current run: steps, summary, and every outstanding timer
// chain. Called exactly when a new user query is submitted.
func (m Model) Clear() Model {
	m.steps = nil
	m.summary = Summary{}
	m.gen++
	m.queryStart = time.Time{}
	return m
}

// StartElapsed begins the 100ms elapsed-time display chain for a new query.
// Any prior chain is orphaned by the generation bump in Clear.
func (m Model) StartElapsed() (Model, tea.Cmd) {
	m.queryStart = m.now()
	return m, m.elapsedTick()
}

// Update handles timer ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ElapsedTickMsg:
		if msg.Gen != m.gen {
			return m, nil // superseded chain
		}
		if m.summary.Idle {
			return m, nil
		}
		if m.summary.Visible {
			m.summary.Elapsed = formatElapsed(m.Elapsed())
		}
		return m, m.elapsedTick()

	case CooldownTickMsg:
		return m.applyCooldownTick(msg)
	}
	return m, nil
}

// applyCooldownTick decrements one step's countdown. The chain is
// self-owned: it stops itself at zero and needs no external cancellation
// because steps only disappear via Clear, which orphans it by generation.
func (m Model) applyCooldownTick(msg CooldownTickMsg) (Model, tea.Cmd) {
	if msg.Gen != m.gen || msg.Index < 0 || msg.Index >= len(m.steps) {
		return m, nil
	}
	step := m.steps[msg.Index]
	if step.Cooldown == nil || step.Destroying {
		return m, nil
	}

	remaining := *step.Cooldown - 1
	if remaining <= 0 {
		step.Cooldown = nil
		step.Destroying = true
		m.steps[msg.Index] = step
		return m, nil
	}
	step.Cooldown = &remaining
	m.steps[msg.Index] = step
	return m, m.cooldownTick(msg.Index)
}

func (m Model) elapsedTick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.elapsedEvery, func(time.Time) tea.Msg {
		return ElapsedTickMsg{Gen: gen}
	})
}

func (m Model) cooldownTick(index int) tea.Cmd {
	gen := m.gen
	return tea.Tick(m.cooldownEvery, func(time.Time) tea.Msg {
		return CooldownTickMsg{Index: index, Gen: gen}
	})
}

func (m Model) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

func agentIcon(agentType string) string {
	if icon, ok := agentIcons[agentType]; ok {
		return icon
	}
	return defaultAgentIcon
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
