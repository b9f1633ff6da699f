// Package app contains the root application model: it owns the WebSocket
// channel, fans stream events out to the chat, pipeline, and inspect
// submodels, and snapshots UI state through the store.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"agentdeck/internal/api"
	"agentdeck/internal/chat"
	"agentdeck/internal/config"
	"agentdeck/internal/history"
	"agentdeck/internal/inspect"
	"agentdeck/internal/log"
	"agentdeck/internal/pipeline"
	"agentdeck/internal/protocol"
	"agentdeck/internal/pubsub"
	"agentdeck/internal/router"
	"agentdeck/internal/store"
	"agentdeck/internal/ws"
)

// healthResultMsg carries the outcome of one health probe.
type healthResultMsg struct {
	reachable bool
}

// configReloadedMsg carries a freshly re-read config after the config file
// changed on disk.
type configReloadedMsg struct {
	cfg config.Config
}

// rosterMsg carries a manually refreshed agent roster.
type rosterMsg struct {
	agents []string
}

// Model is the root application state.
type Model struct {
	cfg config.Config

	width         int
	height        int
	sideWidth     int
	historyHeight int

	chat     chat.Model
	pipeline pipeline.Model
	inspect  inspect.Model
	history  *history.Ledger

	conn     *ws.Manager
	listener *pubsub.ContinuousListener[ws.Payload]
	cancel   context.CancelFunc

	api    *api.Client
	store  *store.Store
	reload <-chan config.Config

	wsStatus ws.Status
	mcpUp    bool
	probed   bool
	agents   []string
}

// New creates the root model, restoring any persisted UI state from the
// store. Restore failures are "no prior state", never errors.
func New(cfg config.Config, conn *ws.Manager, apiClient *api.Client, snapshots *store.Store) Model {
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		cfg:      cfg,
		chat:     chat.New(cfg.UI.MarkdownStyle),
		pipeline: pipeline.New(cfg.ElapsedInterval),
		inspect:  inspect.New(apiClient, cfg.InspectInterval),
		history:  history.New(),
		conn:     conn,
		listener: conn.Subscribe(ctx),
		cancel:   cancel,
		api:      apiClient,
		store:    snapshots,
		wsStatus: ws.Connecting,
	}

	var messages []chat.Message
	if snapshots.Get(store.KeyChat, &messages) {
		m.chat = chat.Restore(cfg.UI.MarkdownStyle, messages)
	}
	var steps []pipeline.Step
	if snapshots.Get(store.KeyPipeline, &steps) {
		m.pipeline = m.pipeline.RestoreSteps(steps)
	}
	var summary pipeline.Summary
	if snapshots.Get(store.KeySummary, &summary) {
		m.pipeline = m.pipeline.RestoreSummary(summary)
	}
	var items []history.Item
	if snapshots.Get(store.KeyHistory, &items) {
		m.history = history.Restore(items)
	}

	return m
}

// WithConfigReload attaches a channel of re-read configs; only UI settings
// are applied live, timers and the server URL need a restart.
func (m Model) WithConfigReload(ch <-chan config.Config) Model {
	m.reload = ch
	return m
}

// Init implements tea.Model. Starts the stream listener; the connection
// manager itself is started by the caller before the program runs.
func (m Model) Init() tea.Cmd {
	if m.reload != nil {
		return tea.Batch(m.listener.Listen(), m.listenReload())
	}
	return m.listener.Listen()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.layout(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case pubsub.Event[ws.Payload]:
		return m.handleStream(msg)

	case router.SystemMsg:
		return m.handleSystem(msg.Notice)

	case router.PipelineEventMsg:
		return m.handlePipelineEvent(msg.Event)

	case router.ChatResponseMsg:
		return m.handleChatResponse(msg.Response)

	case chat.SubmitMsg:
		return m.handleSubmit(msg.Content)

	case healthResultMsg:
		m.mcpUp = msg.reachable
		m.probed = true
		return m, nil

	case configReloadedMsg:
		return m.applyConfig(msg.cfg)

	case rosterMsg:
		if len(msg.agents) > 0 {
			m.agents = msg.agents
		}
		return m, nil

	case pipeline.ElapsedTickMsg, pipeline.CooldownTickMsg:
		var cmd tea.Cmd
		m.pipeline, cmd = m.pipeline.Update(msg)
		return m, cmd

	case inspect.ResultMsg, inspect.PollTickMsg:
		var cmd tea.Cmd
		m.inspect, cmd = m.inspect.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		if m.inspect.Visible() {
			m.inspect = m.inspect.Close()
		}
		return m, nil

	case tea.KeyCtrlR:
		return m, m.refreshRoster()
	}

	// The inspect overlay is read-only; keys other than esc fall through to
	// the chat input so the user can keep typing.
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	// With the overlay up, a click outside the panel dismisses it.
	if m.inspect.Visible() {
		if z := zone.Get(inspect.PanelZoneID); z != nil && !z.InBounds(msg) {
			m.inspect = m.inspect.Close()
		}
		return m, nil
	}

	for _, step := range m.pipeline.Steps() {
		if step.InspectTarget == "" {
			continue
		}
		if z := zone.Get(pipeline.InspectZoneID(step.InspectTarget)); z != nil && z.InBounds(msg) {
			var cmd tea.Cmd
			m.inspect, cmd = m.inspect.Open(step.InspectTarget)
			return m, cmd
		}
	}
	return m, nil
}

// handleStream consumes one broker event: status changes update the badge,
// envelopes are routed to their typed message and fed back through Update.
// Either way the listener is re-armed.
func (m Model) handleStream(ev pubsub.Event[ws.Payload]) (tea.Model, tea.Cmd) {
	listen := m.listener.Listen()

	switch ev.Type {
	case pubsub.StatusEvent:
		m.wsStatus = ev.Payload.Status
		return m, listen

	case pubsub.EnvelopeEvent:
		routed := router.Route(ev.Payload.Envelope)
		if routed == nil {
			return m, listen
		}
		model, cmd := m.Update(routed)
		return model, tea.Batch(cmd, listen)
	}
	return m, listen
}

// handleSystem appends the connect banner, records the agent roster, and
// probes collaborator health.
func (m Model) handleSystem(notice protocol.SystemNotice) (tea.Model, tea.Cmd) {
	if notice.Message != "" {
		m.chat = m.chat.AppendSystem(notice.Message)
		m.store.Put(store.KeyChat, m.chat.Messages())
	}
	if len(notice.Agents) > 0 {
		m.agents = notice.Agents
	}
	return m, m.probeHealth()
}

func (m Model) handlePipelineEvent(ev protocol.PipelineEvent) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.pipeline, cmd = m.pipeline.Apply(ev)
	m.store.Put(store.KeyPipeline, m.pipeline.Steps())
	m.store.Put(store.KeySummary, m.pipeline.ActiveSummary())
	return m, cmd
}

func (m Model) handleChatResponse(resp protocol.ChatResponse) (tea.Model, tea.Cmd) {
	m.chat = m.chat.AppendAgent(resp)
	m.history.Add(history.Item{
		AgentType:       resp.AgentType,
		DurationSeconds: m.pipeline.Elapsed().Seconds(),
		CompletedAt:     time.Now().UTC(),
	})
	m.store.Put(store.KeyChat, m.chat.Messages())
	m.store.Put(store.KeyHistory, m.history.Items())
	return m, nil
}

// handleSubmit runs the submission flow: optimistic transcript append, fresh
// pipeline, elapsed timer, then the send. The send is fire-and-forget; when
// disconnected it is dropped and the transcript keeps the optimistic entry.
func (m Model) handleSubmit(content string) (tea.Model, tea.Cmd) {
	log.Info(log.CatUI, "Query submitted", "len", len(content))

	m.chat = m.chat.AppendUser(content)
	m.pipeline = m.pipeline.Clear()
	var cmd tea.Cmd
	m.pipeline, cmd = m.pipeline.StartElapsed()

	m.store.Put(store.KeyChat, m.chat.Messages())
	m.store.Put(store.KeyPipeline, m.pipeline.Steps())
	m.store.Put(store.KeySummary, m.pipeline.ActiveSummary())

	m.conn.Send(content)
	return m, cmd
}

// applyConfig takes over a re-read config's UI settings and re-arms the
// reload listener.
func (m Model) applyConfig(cfg config.Config) (tea.Model, tea.Cmd) {
	if err := cfg.Validate(); err != nil {
		log.ErrorErr(log.CatConfig, "Ignoring invalid config reload", err)
		return m, m.listenReload()
	}
	log.Info(log.CatConfig, "Config reloaded", "markdown_style", cfg.UI.MarkdownStyle)

	m.cfg.UI = cfg.UI
	m.chat = m.chat.SetMarkdownStyle(cfg.UI.MarkdownStyle)
	return m.layout(), m.listenReload()
}

func (m Model) listenReload() tea.Cmd {
	ch := m.reload
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configReloadedMsg{cfg: cfg}
	}
}

func (m Model) probeHealth() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		health, err := client.Health(ctx)
		if err != nil {
			log.ErrorErr(log.CatAPI, "Health probe failed", err)
			return healthResultMsg{reachable: false}
		}
		return healthResultMsg{reachable: health.McpReachable()}
	}
}

// refreshRoster re-fetches the available agent types on demand.
func (m Model) refreshRoster() tea.Cmd {
	client := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		agents, err := client.Agents(ctx)
		if err != nil {
			log.ErrorErr(log.CatAPI, "Roster refresh failed", err)
			return nil
		}
		names := make([]string, 0, len(agents))
		for _, a := range agents {
			names = append(names, a.Type)
		}
		return rosterMsg{agents: names}
	}
}

// Close releases the stream subscription and connection.
func (m *Model) Close() {
	m.cancel()
	m.conn.Close()
}
