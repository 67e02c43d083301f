// Package conn owns the single persistent WebSocket connection between the
// client and the game server.
package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sidestacker/sidestacker/internal/game"
	"k8s.io/klog/v2"
)

var (
	ErrNotConnected      = errors.New("not connected to the game server")
	ErrDisconnected      = errors.New("disconnected from the game server")
	ErrMalformedMessage  = errors.New("malformed message from server")
	ErrDialFailed        = errors.New("cannot reach the game server")
	errConnectionClosing = errors.New("connection closed by client")
)

// State of the connection.
type State int

const (
	Closed State = iota
	Connecting
	Open
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return "closed"
	}
}

// DisconnectError is reported when the connection closes without the client
// asking for it.
type DisconnectError struct {
	Code   websocket.StatusCode // -1 if the connection dropped without a close frame.
	Reason string
}

func (e *DisconnectError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "connection closed"
	}
	if e.Code >= 0 {
		return fmt.Sprintf("%s: %s (code %d)", ErrDisconnected, reason, int(e.Code))
	}
	return fmt.Sprintf("%s: %s", ErrDisconnected, reason)
}

func (e *DisconnectError) Is(target error) bool {
	return target == ErrDisconnected
}

// Options tune the connection.
type Options struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	ReadLimit    int64 // Max bytes per inbound message.
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		DialTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Second,
		ReadLimit:    1 << 20,
	}
}

// Manager maintains at most one live connection for one client identity.
//
// All listener callbacks for inbound messages are made from a single
// goroutine, in the order the server sent them.
type Manager struct {
	baseURL  string
	clientID string
	opts     Options

	mu        sync.Mutex
	state     State
	ws        *websocket.Conn
	attempt   chan struct{} // Closed when the current dial attempt settles.
	closing   bool          // Close was requested by the client.
	listeners []Listener
}

// NewManager creates a manager for the given endpoint. The client identity
// is appended to baseURL as the last path segment.
func NewManager(baseURL, clientID string, opts Options) *Manager {
	def := DefaultOptions()
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = def.ReadLimit
	}
	return &Manager{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		opts:     opts,
		state:    Closed,
	}
}

// URL the manager dials.
func (m *Manager) URL() string {
	return m.baseURL + "/" + m.clientID
}

// ClientID returns the identity embedded in the connection URL.
func (m *Manager) ClientID() string {
	return m.clientID
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect registers the given listeners and, unless a connection is already
// open or being established, starts dialing in the background.
//
// Connect is idempotent: calling it while Connecting or Open never creates a
// second connection. It never retries on its own; see ConnectWithRetry.
func (m *Manager) Connect(listeners ...Listener) {
	m.mu.Lock()
	for _, l := range listeners {
		m.addListenerLocked(l)
	}
	if m.state != Closed {
		klog.V(1).Infof("conn: Connect called while %s, listeners updated", m.state)
		m.mu.Unlock()
		return
	}
	m.state = Connecting
	m.closing = false
	done := make(chan struct{})
	m.attempt = done
	m.mu.Unlock()

	klog.Infof("conn: connecting to %s", m.URL())
	m.emitState(Connecting)
	go m.dial(done)
}

// Subscribe registers l for connection events and returns a function that
// removes it.
func (m *Manager) Subscribe(l Listener) (unsubscribe func()) {
	m.mu.Lock()
	m.addListenerLocked(l)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, existing := range m.listeners {
			if existing == l {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) addListenerLocked(l Listener) {
	if l == nil {
		return
	}
	for _, existing := range m.listeners {
		if existing == l {
			return
		}
	}
	m.listeners = append(m.listeners, l)
}

// WaitOpen blocks until the current connection attempt settles. It returns
// nil if the connection is open.
func (m *Manager) WaitOpen(ctx context.Context) error {
	m.mu.Lock()
	state, done := m.state, m.attempt
	m.mu.Unlock()
	switch state {
	case Open:
		return nil
	case Closed:
		return ErrNotConnected
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}
	if m.State() != Open {
		return ErrNotConnected
	}
	return nil
}

func (m *Manager) dial(done chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.DialTimeout)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, m.URL(), nil)

	m.mu.Lock()
	if err == nil && m.closing {
		m.mu.Unlock()
		ws.Close(websocket.StatusNormalClosure, "client initiated disconnect")
		m.mu.Lock()
		err = errConnectionClosing
	}
	if err != nil {
		explicit := m.closing
		m.state = Closed
		m.ws = nil
		m.closing = false
		close(done)
		m.mu.Unlock()
		if !explicit {
			klog.Errorf("conn: dial %s failed: %v", m.URL(), err)
			m.emitError(fmt.Errorf("%w: %v", ErrDialFailed, err))
		}
		m.emitState(Closed)
		return
	}
	ws.SetReadLimit(m.opts.ReadLimit)
	m.ws = ws
	m.state = Open
	close(done)
	m.mu.Unlock()

	klog.Infof("conn: connected to %s", m.URL())
	m.emitState(Open)
	go m.readLoop(ws)
}

func (m *Manager) readLoop(ws *websocket.Conn) {
	ctx := context.Background()
	klog.V(1).Infof("conn: readLoop started")
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			m.handleClose(ws, err)
			return
		}

		var msg game.WsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			klog.Errorf("conn: dropping undecodable message: %v", err)
			m.emitError(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
			continue
		}
		if msg.Type == "" {
			klog.Errorf("conn: dropping message without type: %.200s", data)
			m.emitError(fmt.Errorf("%w: missing type", ErrMalformedMessage))
			continue
		}

		klog.V(2).Infof("conn: received %s", msg.Type)
		m.emitMessage(msg)
	}
}

func (m *Manager) handleClose(ws *websocket.Conn, err error) {
	m.mu.Lock()
	if m.ws != ws {
		// Superseded by a newer connection.
		m.mu.Unlock()
		return
	}
	explicit := m.closing
	m.ws = nil
	m.state = Closed
	m.closing = false
	m.mu.Unlock()

	if explicit {
		klog.Infof("conn: connection closed by client")
	} else {
		derr := disconnectError(err)
		klog.Errorf("conn: %v", derr)
		m.emitError(derr)
	}
	m.emitState(Closed)
}

func disconnectError(err error) *DisconnectError {
	var closeErr websocket.CloseError
	if errors.As(err, &closeErr) {
		return &DisconnectError{Code: closeErr.Code, Reason: closeErr.Reason}
	}
	return &DisconnectError{Code: -1, Reason: err.Error()}
}

// Send writes msg to the server. It never fails to the caller: if the
// connection is not open, or the write fails, the error goes to the
// registered listeners instead.
func (m *Manager) Send(msg game.WsMessage) {
	m.mu.Lock()
	ws, state := m.ws, m.state
	m.mu.Unlock()

	if state != Open || ws == nil {
		klog.Errorf("conn: cannot send %s, connection is %s", msg.Type, state)
		m.emitError(fmt.Errorf("%w: cannot send %s", ErrNotConnected, msg.Type))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.opts.WriteTimeout)
	defer cancel()
	klog.V(1).Infof("conn: sending %s", msg.Type)
	if err := wsjson.Write(ctx, ws, msg); err != nil {
		klog.Errorf("conn: failed to send %s: %v", msg.Type, err)
		m.emitError(fmt.Errorf("send %s: %w", msg.Type, err))
	}
}

// Close closes the connection on behalf of the user. No disconnect error is
// reported for it.
func (m *Manager) Close() error {
	m.mu.Lock()
	ws, state := m.ws, m.state
	if state != Closed {
		m.closing = true
	}
	m.mu.Unlock()
	if ws == nil {
		return nil
	}
	klog.Infof("conn: closing connection")
	return ws.Close(websocket.StatusNormalClosure, "client initiated disconnect")
}

func (m *Manager) snapshotListeners() []Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Listener(nil), m.listeners...)
}

func (m *Manager) emitMessage(msg game.WsMessage) {
	for _, l := range m.snapshotListeners() {
		l.OnMessage(msg)
	}
}

func (m *Manager) emitError(err error) {
	for _, l := range m.snapshotListeners() {
		l.OnError(err)
	}
}

func (m *Manager) emitState(s State) {
	for _, l := range m.snapshotListeners() {
		l.OnStateChange(s)
	}
}
