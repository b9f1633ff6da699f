// Package inspect provides the on-demand detail view of one agent's
// lifecycle, fed by polling the detail endpoint every two seconds.
package inspect

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agentdeck/internal/api"
	"agentdeck/internal/log"
	"agentdeck/internal/protocol"
)

// Fetcher fetches one agent's detail record. Satisfied by api.Client.
type Fetcher interface {
	AgentDetail(ctx context.Context, agentID string) (protocol.AgentDetail, error)
}

// ResultMsg carries one poll response.
type ResultMsg struct {
	Gen    int
	Detail protocol.AgentDetail
	Err    error
}

// PollTickMsg schedules the next poll.
type PollTickMsg struct {
	Gen int
}

// Model holds one inspect session. At most one poll chain is live at a time:
// opening a new session or closing bumps the generation, and any in-flight
// tick or response carrying a stale generation is dropped.
type Model struct {
	width  int
	height int

	visible  bool
	agentID  string
	snapshot *protocol.AgentDetail
	gone     bool
	terminal bool

	gen      int
	interval time.Duration
	fetcher  Fetcher
}

// New creates an inspect model polling via fetcher at the given interval.
func New(fetcher Fetcher, interval time.Duration) Model {
	return Model{
		fetcher:  fetcher,
		interval: interval,
	}
}

// SetSize updates the overlay dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Visible reports whether the session overlay is showing.
func (m Model) Visible() bool {
	return m.visible
}

// AgentID returns the inspected agent id.
func (m Model) AgentID() string {
	return m.agentID
}

// Open starts a session for agentID: one immediate detail request, then a
// repeating 2s poll. Any previous session's polling is torn down first by
// the generation bump.
func (m Model) Open(agentID string) (Model, tea.Cmd) {
	m.gen++
	m.visible = true
	m.agentID = agentID
	m.snapshot = nil
	m.gone = false
	m.terminal = false
	log.Info(log.CatInspect, "Inspect session opened", "agent_id", agentID)
	return m, m.fetchCmd()
}

// Close stops any active polling deterministically, regardless of
// classification state.
func (m Model) Close() Model {
	if m.visible {
		log.Info(log.CatInspect, "Inspect session closed", "agent_id", m.agentID)
	}
	m.gen++
	m.visible = false
	return m
}

// Update handles poll responses and ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		if msg.Gen != m.gen {
			return m, nil // stale session
		}
		return m.classify(msg)

	case PollTickMsg:
		if msg.Gen != m.gen || m.terminal || !m.visible {
			return m, nil
		}
		return m, m.fetchCmd()
	}
	return m, nil
}

// classify applies the response classification: agent-gone is terminal,
// status destroyed renders the snapshot then stops, anything else renders
// and keeps polling. Network failures keep the last snapshot visible.
func (m Model) classify(msg ResultMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrAgentGone) {
			m.gone = true
			m.terminal = true
			return m, nil
		}
		log.ErrorErr(log.CatInspect, "Poll failed, keeping last snapshot", msg.Err, "agent_id", m.agentID)
		return m, m.pollTick()
	}

	detail := msg.Detail
	m.snapshot = &detail
	if detail.Status == protocol.AgentDestroyed {
		m.terminal = true
		return m, nil
	}
	return m, m.pollTick()
}

func (m Model) fetchCmd() tea.Cmd {
	gen := m.gen
	agentID := m.agentID
	fetcher := m.fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		detail, err := fetcher.AgentDetail(ctx, agentID)
		return ResultMsg{Gen: gen, Detail: detail, Err: err}
	}
}

func (m Model) pollTick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return PollTickMsg{Gen: gen}
	})
}
