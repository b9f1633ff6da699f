package ws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agentdeck/internal/pubsub"
)

// fakeConn is a scriptable Conn: frames pushed to the channel are delivered
// to ReadMessage, and closing the conn fails the next read.
type fakeConn struct {
	frames chan []byte

	mu     sync.Mutex
	writes []any
	closed bool
	done   chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 8),
		done:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-c.frames:
		return 1, frame, nil
	case <-c.done:
		return 0, nil, errors.New("connection reset")
	}
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

// scriptedDialer hands out one fakeConn per dial and counts dials.
type scriptedDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	dials int
}

func (d *scriptedDialer) dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *scriptedDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *scriptedDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func waitForStatus(t *testing.T, ch <-chan pubsub.Event[Payload], want Status) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == pubsub.StatusEvent && ev.Payload.Status == want {
				return
			}
		case <-deadline:
			require.Fail(t, "timeout waiting for status", "want %v", want)
		}
	}
}

func TestManager_ConnectPublishesOpen(t *testing.T) {
	dialer := &scriptedDialer{}
	m := New(Config{URL: "ws://test/ws", ReconnectDelay: 5 * time.Millisecond, Dial: dialer.dial})
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := m.Subscribe(ctx)
	ch := listenChannel(listener)

	m.Start()
	waitForStatus(t, ch, Connecting)
	waitForStatus(t, ch, Open)
	require.Equal(t, 1, dialer.dialCount())
}

func TestManager_OneReconnectPerDisconnect(t *testing.T) {
	dialer := &scriptedDialer{}
	m := New(Config{URL: "ws://test/ws", ReconnectDelay: 5 * time.Millisecond, Dial: dialer.dial})
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := listenChannel(m.Subscribe(ctx))

	m.Start()
	waitForStatus(t, ch, Open)

	// Kill the live connection; exactly one redial must follow.
	_ = dialer.conn(0).Close()
	waitForStatus(t, ch, Disconnected)
	waitForStatus(t, ch, Open)
	require.Equal(t, 2, dialer.dialCount())

	// And again for the second disconnect.
	_ = dialer.conn(1).Close()
	waitForStatus(t, ch, Disconnected)
	waitForStatus(t, ch, Open)
	require.Equal(t, 3, dialer.dialCount())
}

func TestManager_PublishesParsedEnvelopes(t *testing.T) {
	dialer := &scriptedDialer{}
	m := New(Config{URL: "ws://test/ws", ReconnectDelay: 5 * time.Millisecond, Dial: dialer.dial})
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := listenChannel(m.Subscribe(ctx))

	m.Start()
	waitForStatus(t, ch, Open)

	dialer.conn(0).frames <- []byte(`{"type":"chat_response","data":{"message":"hi"}}`)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == pubsub.EnvelopeEvent {
				require.Equal(t, "chat_response", ev.Payload.Envelope.Type)
				return
			}
		case <-deadline:
			require.Fail(t, "timeout waiting for envelope")
		}
	}
}

func TestManager_MalformedFrameSkipped(t *testing.T) {
	dialer := &scriptedDialer{}
	m := New(Config{URL: "ws://test/ws", ReconnectDelay: 5 * time.Millisecond, Dial: dialer.dial})
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := listenChannel(m.Subscribe(ctx))

	m.Start()
	waitForStatus(t, ch, Open)

	dialer.conn(0).frames <- []byte(`garbage`)
	dialer.conn(0).frames <- []byte(`{"type":"system","data":{"message":"hello"}}`)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == pubsub.EnvelopeEvent {
				// The bad frame was dropped, the good one survived the stream.
				require.Equal(t, "system", ev.Payload.Envelope.Type)
				return
			}
		case <-deadline:
			require.Fail(t, "timeout waiting for envelope")
		}
	}
}

func TestManager_SendWhileDisconnectedIsNoop(t *testing.T) {
	dialer := &scriptedDialer{}
	m := New(Config{URL: "ws://test/ws", ReconnectDelay: time.Hour, Dial: dialer.dial})
	defer m.Close()

	// Never started, so never connected; the send is silently dropped.
	m.Send("hello")
	require.Equal(t, 0, dialer.dialCount())
}

func TestManager_SendWritesChatRequest(t *testing.T) {
	dialer := &scriptedDialer{}
	m := New(Config{URL: "ws://test/ws", ReconnectDelay: 5 * time.Millisecond, Dial: dialer.dial})
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := listenChannel(m.Subscribe(ctx))

	m.Start()
	waitForStatus(t, ch, Open)

	m.Send("why is checkout slow?")

	conn := dialer.conn(0)
	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Len(t, conn.writes, 1)
}

// listenChannel drains a ContinuousListener into a plain channel so tests
// can select on it.
func listenChannel(l *pubsub.ContinuousListener[Payload]) <-chan pubsub.Event[Payload] {
	ch := make(chan pubsub.Event[Payload], 64)
	go func() {
		for {
			msg := l.Listen()()
			ev, ok := msg.(pubsub.Event[Payload])
			if !ok {
				close(ch)
				return
			}
			ch <- ev
		}
	}()
	return ch
}
