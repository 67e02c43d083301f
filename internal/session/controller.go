// Package session keeps the client side view of a Side-Stacker game in sync
// with the game server.
//
// The Controller is the root object: it owns the connection (through a
// Transport), encodes user intents into protocol messages and derives the
// local state from server events through a Reducer. Front ends read
// Snapshots and Notifications; they never change game state themselves.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sidestacker/sidestacker/internal/conn"
	"github.com/sidestacker/sidestacker/internal/game"
	"k8s.io/klog/v2"
)

// DefaultMoveTimeout is how long a submitted move may stay unanswered.
const DefaultMoveTimeout = 10 * time.Second

// Transport is the part of conn.Manager used by the Controller.
type Transport interface {
	Connect(listeners ...conn.Listener)
	Send(msg game.WsMessage)
	State() conn.State
	Close() error
}

var _ Transport = (*conn.Manager)(nil)

// Health is the connection health as seen by the user.
type Health struct {
	State conn.State
	Err   error // Last transport error, cleared when the connection opens.
}

// Unreachable reports whether the server cannot be reached. Front ends show
// a blocking error view in this case.
func (h Health) Unreachable() bool {
	return h.State == conn.Closed && h.Err != nil
}

// Observer is notified of every state, notification and health change.
// Calls may come from different goroutines but never concurrently, and
// always in the order the changes happened. Callbacks must not call
// Controller methods that change state.
type Observer interface {
	OnSnapshot(s Snapshot)
	OnNotification(n Notification)
	OnHealth(h Health)
}

// ObserverFuncs adapts plain functions to an Observer. Use it by pointer.
type ObserverFuncs struct {
	Snapshot     func(s Snapshot)
	Notification func(n Notification)
	Health       func(h Health)
}

func (f *ObserverFuncs) OnSnapshot(s Snapshot) {
	if f.Snapshot != nil {
		f.Snapshot(s)
	}
}

func (f *ObserverFuncs) OnNotification(n Notification) {
	if f.Notification != nil {
		f.Notification(n)
	}
}

func (f *ObserverFuncs) OnHealth(h Health) {
	if f.Health != nil {
		f.Health(h)
	}
}

// Options for a Controller.
type Options struct {
	BoardSize   int
	MoveTimeout time.Duration
	Username    string
}

type pendingMove struct {
	id    string
	timer *time.Timer
}

// Controller is the root session object of one client process.
type Controller struct {
	transport   Transport
	clientID    string
	enc         *Encoder
	dispatcher  *Dispatcher
	moveTimeout time.Duration

	// pubMu is held from a state change through its fan-out, so observers
	// never see an older state after a newer one. Lock before mu.
	pubMu sync.Mutex

	mu        sync.Mutex
	reducer   *Reducer
	health    Health
	pending   *pendingMove
	observers []Observer
}

// New creates a Controller for the given client identity. Call Start to
// connect.
func New(transport Transport, clientID string, opts Options) *Controller {
	if opts.MoveTimeout <= 0 {
		opts.MoveTimeout = DefaultMoveTimeout
	}
	c := &Controller{
		transport:   transport,
		clientID:    clientID,
		enc:         NewEncoder(clientID),
		moveTimeout: opts.MoveTimeout,
		reducer:     NewReducer(clientID, opts.BoardSize),
		health:      Health{State: transport.State()},
	}
	c.reducer.SetUsername(opts.Username)
	c.dispatcher = NewDispatcher(c, c, c)
	return c
}

// ClientID returns the identity of this client.
func (c *Controller) ClientID() string {
	return c.clientID
}

// Listener returns the conn.Listener feeding this controller, for callers
// that drive the connection themselves (e.g. with retries).
func (c *Controller) Listener() conn.Listener {
	return c.dispatcher
}

// Start connects the transport. It is safe to call again after a disconnect.
func (c *Controller) Start() {
	c.transport.Connect(c.dispatcher)
}

// Close closes the connection.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.clearPendingLocked()
	c.mu.Unlock()
	return c.transport.Close()
}

// Subscribe registers o and immediately sends it the current snapshot and
// health. The returned function unregisters it.
func (c *Controller) Subscribe(o Observer) (unsubscribe func()) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	c.observers = append(c.observers, o)
	snap, health := c.snapshotLocked(), c.health
	c.mu.Unlock()

	o.OnHealth(health)
	o.OnSnapshot(snap)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, existing := range c.observers {
			if existing == o {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Health returns the current connection health.
func (c *Controller) Health() Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health
}

// CanMove reports whether the move affordance should be enabled.
func (c *Controller) CanMove() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health.State == conn.Open && c.pending == nil && c.reducer.Snapshot().IsMyTurn()
}

// SetUsername sets the username attached to create and join requests.
func (c *Controller) SetUsername(name string) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	c.reducer.SetUsername(name)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.deliver(&snap, nil, nil)
}

// Reset discards the current session, returning to the setup state.
func (c *Controller) Reset() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	c.reducer.Reset()
	c.clearPendingLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	klog.Infof("session: reset")
	c.deliver(&snap, nil, nil)
}

// CreateGame asks the server for a new game. mode is one of PVP, PVE, AVA
// (case insensitive).
func (c *Controller) CreateGame(mode string, opts CreateOptions) error {
	c.mu.Lock()
	if c.reducer.HasSession() {
		c.mu.Unlock()
		return ErrSessionInProgress
	}
	if opts.Username == "" {
		opts.Username = c.reducer.Username()
	}
	c.mu.Unlock()

	msg, err := c.enc.CreateGame(mode, opts)
	if err != nil {
		return err
	}
	c.transport.Send(msg)
	return nil
}

// JoinGame asks the server to join the game with the given ID.
func (c *Controller) JoinGame(gameID string) error {
	c.mu.Lock()
	if c.reducer.HasSession() {
		c.mu.Unlock()
		return ErrSessionInProgress
	}
	username := c.reducer.Username()
	c.mu.Unlock()

	msg, err := c.enc.JoinGame(gameID, username)
	if err != nil {
		return err
	}
	c.transport.Send(msg)
	return nil
}

// MakeMove submits a move for the local player. Nothing changes locally
// until the server answers with an update.
func (c *Controller) MakeMove(row int, side string) error {
	msg, moveID, err := c.markMovePending(row, side)
	if err != nil {
		return err
	}
	// The answer may arrive before Send returns, so the pending state is
	// published first.
	klog.V(1).Infof("session: submitting move %s row=%d side=%s", moveID, row, side)
	c.transport.Send(msg)
	return nil
}

// markMovePending encodes a move and, if the connection is open, marks it
// pending and publishes that.
func (c *Controller) markMovePending(row int, side string) (game.WsMessage, string, error) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	snap := c.reducer.Snapshot()
	switch {
	case !snap.Active():
		c.mu.Unlock()
		return game.WsMessage{}, "", ErrNoActiveGame
	case snap.Session.Spectator:
		c.mu.Unlock()
		return game.WsMessage{}, "", ErrSpectator
	case c.pending != nil:
		c.mu.Unlock()
		return game.WsMessage{}, "", ErrMovePending
	case !snap.IsMyTurn():
		c.mu.Unlock()
		return game.WsMessage{}, "", ErrNotYourTurn
	}

	moveID := uuid.NewString()
	msg, err := c.enc.MakeMove(snap.Session.GameID, snap.Session.PlayerToken, row, side, moveID)
	if err != nil {
		c.mu.Unlock()
		return game.WsMessage{}, "", err
	}
	var pendingSnap *Snapshot
	if c.transport.State() == conn.Open {
		c.pending = &pendingMove{id: moveID}
		c.pending.timer = time.AfterFunc(c.moveTimeout, func() { c.moveTimedOut(moveID) })
		s := c.snapshotLocked()
		pendingSnap = &s
	}
	c.mu.Unlock()

	c.deliver(pendingSnap, nil, nil)
	return msg, moveID, nil
}

// MakeMoveText is MakeMove for text input.
func (c *Controller) MakeMoveText(rowText, sideText string) error {
	row, err := CoerceRow(rowText)
	if err != nil {
		return err
	}
	return c.MakeMove(row, sideText)
}

func (c *Controller) moveTimedOut(moveID string) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	if c.pending == nil || c.pending.id != moveID {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	klog.Warningf("session: no answer to move %s after %s", moveID, c.moveTimeout)
	c.deliver(&snap, []Notification{{
		Kind:        KindMoveTimeout,
		Level:       LevelError,
		Title:       "No response from server",
		Description: "Your move was not confirmed in time. Please try again.",
	}}, nil)
}

func (c *Controller) clearPendingLocked() {
	if c.pending == nil {
		return
	}
	c.pending.timer.Stop()
	c.pending = nil
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.reducer.Snapshot()
	s.MovePending = c.pending != nil
	return s
}

// apply runs a reducer step and publishes the result.
func (c *Controller) apply(step func() (Transition, bool), settlesMove bool) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	t, ok := step()
	if !ok {
		c.mu.Unlock()
		return
	}
	if settlesMove {
		c.clearPendingLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.deliver(&snap, Notifications(t), nil)
}

// deliver fans out to observers. Callers hold pubMu.
func (c *Controller) deliver(snap *Snapshot, notes []Notification, health *Health) {
	c.mu.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		if health != nil {
			o.OnHealth(*health)
		}
		if snap != nil {
			o.OnSnapshot(*snap)
		}
		for _, n := range notes {
			o.OnNotification(n)
		}
	}
}

// Target implementation.

func (c *Controller) SessionEstablished(event game.MessageType, p *game.GameCreatedMessage) {
	c.apply(func() (Transition, bool) { return c.reducer.ApplyEstablished(event, p) }, false)
}

func (c *Controller) WaitingForPlayer(p *game.WaitingForPlayerMessage) {
	c.apply(func() (Transition, bool) { return c.reducer.ApplyWaiting(p) }, false)
}

func (c *Controller) GameStarted(p *game.GameStartMessage) {
	c.apply(func() (Transition, bool) { return c.reducer.ApplyStart(p) }, true)
}

func (c *Controller) GameUpdated(p *game.GameUpdateMessage) {
	c.apply(func() (Transition, bool) { return c.reducer.ApplyUpdate(p) }, true)
}

func (c *Controller) GameOver(p *game.GameOverMessage) {
	c.apply(func() (Transition, bool) { return c.reducer.ApplyOver(p) }, true)
}

// ErrorSurface implementation.

func (c *Controller) ServerError(p *game.ErrorMessage) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	var snap *Snapshot
	if c.pending != nil && (p.MoveID == "" || p.MoveID == c.pending.id) {
		c.clearPendingLocked()
		s := c.snapshotLocked()
		snap = &s
	}
	c.mu.Unlock()

	msg := p.Message
	if msg == "" {
		msg = "Unknown server error message."
	}
	c.deliver(snap, []Notification{{Kind: KindServerError, Level: LevelError, Title: "Server error", Description: msg}}, nil)
}

// HealthObserver implementation.

func (c *Controller) ConnectionError(err error) {
	if errors.Is(err, conn.ErrMalformedMessage) {
		klog.Warningf("session: %v", err)
		return
	}
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	c.health.Err = err
	health := c.health
	c.mu.Unlock()

	// Failed dials show as the unreachable view once retries give up, not as
	// one notice per attempt.
	var notes []Notification
	if !errors.Is(err, conn.ErrDialFailed) {
		notes = []Notification{{Kind: KindConnection, Level: LevelError, Title: "Connection problem", Description: err.Error()}}
	}
	c.deliver(nil, notes, &health)
}

func (c *Controller) ConnectionState(state conn.State) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	c.health.State = state
	if state == conn.Open {
		c.health.Err = nil
	}
	var snap *Snapshot
	if state == conn.Closed && c.pending != nil {
		// The answer to a pending move can no longer arrive.
		c.clearPendingLocked()
		s := c.snapshotLocked()
		snap = &s
	}
	health := c.health
	c.mu.Unlock()

	c.deliver(snap, nil, &health)
}
