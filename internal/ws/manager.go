// Package ws owns the persistent WebSocket channel to the orchestrator.
// A single background goroutine dials, reads, and redials after a fixed
// delay; parsed envelopes and status changes are published to a broker
// consumed by the Bubble Tea update loop.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"agentdeck/internal/log"
	"agentdeck/internal/protocol"
	"agentdeck/internal/pubsub"
)

// Status is the connection state.
type Status int

const (
	Connecting Status = iota
	Open
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Payload is what the manager publishes: either a status change or a parsed
// envelope, distinguished by the pubsub event type.
type Payload struct {
	Status   Status
	Envelope protocol.Envelope
}

// Conn is the subset of *websocket.Conn the manager uses.
// Narrowed for test fakes.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a connection to the stream endpoint.
type Dialer func(ctx context.Context, url string) (Conn, error)

func gorillaDialer(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Manager owns the duplex channel and its reconnect policy: on any close it
// downgrades to Disconnected and retries after a fixed delay, forever. The
// single run loop makes a second pending reconnect impossible.
type Manager struct {
	url    string
	delay  time.Duration
	dial   Dialer
	broker *pubsub.Broker[Payload]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	conn   Conn
	status Status
}

// Config holds manager options.
type Config struct {
	URL            string
	ReconnectDelay time.Duration
	// Dial overrides the websocket dialer. Nil uses gorilla's default.
	Dial Dialer
}

// New creates a manager. Start must be called to begin connecting.
func New(cfg Config) *Manager {
	dial := cfg.Dial
	if dial == nil {
		dial = gorillaDialer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		url:    cfg.URL,
		delay:  cfg.ReconnectDelay,
		dial:   dial,
		broker: pubsub.NewBroker[Payload](),
		ctx:    ctx,
		cancel: cancel,
		status: Disconnected,
	}
}

// Subscribe returns a listener delivering status changes and envelopes in
// strict arrival order.
func (m *Manager) Subscribe(ctx context.Context) *pubsub.ContinuousListener[Payload] {
	return pubsub.NewContinuousListener(ctx, m.broker)
}

// Start launches the connect/read/reconnect loop.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.run()
}

// Close tears down the connection and stops reconnecting.
func (m *Manager) Close() {
	m.cancel()
	m.mu.Lock()
	if m.conn != nil {
		_ = m.conn.Close()
	}
	m.mu.Unlock()
	m.wg.Wait()
	m.broker.Close()
}

// Status returns the current connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Send marshals and writes the outbound chat request. When the socket is not
// open the send is dropped as a no-op; transport failures are logged, never
// raised to the caller.
func (m *Manager) Send(message string) {
	m.mu.Lock()
	conn := m.conn
	status := m.status
	m.mu.Unlock()

	if status != Open || conn == nil {
		log.Warn(log.CatWS, "Send dropped: not connected", "status", status)
		return
	}
	if err := conn.WriteJSON(protocol.ChatRequest{Message: message}); err != nil {
		log.ErrorErr(log.CatWS, "Send failed", err)
	}
}

func (m *Manager) run() {
	defer m.wg.Done()

	for {
		m.setStatus(Connecting)
		m.broker.Publish(pubsub.StatusEvent, Payload{Status: Connecting})

		conn, err := m.dial(m.ctx, m.url)
		if err != nil {
			log.ErrorErr(log.CatWS, "Dial failed", err, "url", m.url)
			m.setStatus(Disconnected)
			m.broker.Publish(pubsub.StatusEvent, Payload{Status: Disconnected})
			if !m.sleep() {
				return
			}
			continue
		}

		m.setConn(conn)
		m.setStatus(Open)
		m.broker.Publish(pubsub.StatusEvent, Payload{Status: Open})
		log.Info(log.CatWS, "Connected", "url", m.url)

		m.readLoop(conn)

		m.setConn(nil)
		_ = conn.Close()
		m.setStatus(Disconnected)
		m.broker.Publish(pubsub.StatusEvent, Payload{Status: Disconnected})

		select {
		case <-m.ctx.Done():
			return
		default:
		}
		log.Info(log.CatWS, "Disconnected, retrying", "delay", m.delay)
		if !m.sleep() {
			return
		}
	}
}

// readLoop reads frames until the connection fails. Malformed frames are
// logged and skipped; the stream itself stays up.
func (m *Manager) readLoop(conn Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.ErrorErr(log.CatWS, "Read failed", err)
			}
			return
		}

		env, err := protocol.ParseEnvelope(raw)
		if err != nil {
			log.ErrorErr(log.CatWS, "Skipping malformed frame", err)
			continue
		}
		m.broker.Publish(pubsub.EnvelopeEvent, Payload{Status: Open, Envelope: env})
	}
}

// sleep waits out the fixed reconnect delay. Returns false when the manager
// was closed during the wait.
func (m *Manager) sleep() bool {
	select {
	case <-m.ctx.Done():
		return false
	case <-time.After(m.delay):
		return true
	}
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *Manager) setConn(c Conn) {
	m.mu.Lock()
	m.conn = c
	m.mu.Unlock()
}
