package session

import (
	"fmt"

	"github.com/sidestacker/sidestacker/internal/conn"
	"github.com/sidestacker/sidestacker/internal/game"
	"k8s.io/klog/v2"
)

// Target receives the session events routed by a Dispatcher.
type Target interface {
	SessionEstablished(event game.MessageType, p *game.GameCreatedMessage)
	WaitingForPlayer(p *game.WaitingForPlayerMessage)
	GameStarted(p *game.GameStartMessage)
	GameUpdated(p *game.GameUpdateMessage)
	GameOver(p *game.GameOverMessage)
}

// ErrorSurface receives server ERROR events. They never change session state.
type ErrorSurface interface {
	ServerError(p *game.ErrorMessage)
}

// HealthObserver receives connection level events.
type HealthObserver interface {
	ConnectionError(err error)
	ConnectionState(state conn.State)
}

// inbound is the closed set of event types the client understands.
var inbound = map[game.MessageType]bool{
	game.MsgTypeGameCreated:      true,
	game.MsgTypeGameJoined:       true,
	game.MsgTypeGameStart:        true,
	game.MsgTypeGameUpdate:       true,
	game.MsgTypeGameOver:         true,
	game.MsgTypeWaitingForPlayer: true,
	game.MsgTypeError:            true,
}

// Recognized reports whether t is an inbound event type.
func Recognized(t game.MessageType) bool {
	return inbound[t]
}

// Dispatcher routes inbound messages, in receipt order, to the session target
// and the error surface, and connection events to the health observer. It
// implements conn.Listener.
type Dispatcher struct {
	target Target
	errs   ErrorSurface
	health HealthObserver
}

var _ conn.Listener = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. errs and health may be nil.
func NewDispatcher(target Target, errs ErrorSurface, health HealthObserver) *Dispatcher {
	return &Dispatcher{target: target, errs: errs, health: health}
}

// Dispatch routes one message. It returns false if the message was dropped.
func (d *Dispatcher) Dispatch(msg game.WsMessage) bool {
	if !Recognized(msg.Type) {
		klog.Warningf("dispatcher: dropping unhandled message type %q", msg.Type)
		return false
	}
	p, err := msg.Parse()
	if err != nil {
		klog.Errorf("dispatcher: failed to parse %s message: %v", msg.Type, err)
		if d.health != nil {
			d.health.ConnectionError(fmt.Errorf("%w: %s: %v", conn.ErrMalformedMessage, msg.Type, err))
		}
		return false
	}

	switch payload := p.(type) {
	case *game.GameCreatedMessage:
		d.target.SessionEstablished(msg.Type, payload)
	case *game.WaitingForPlayerMessage:
		d.target.WaitingForPlayer(payload)
	case *game.GameStartMessage:
		d.target.GameStarted(payload)
	case *game.GameUpdateMessage:
		d.target.GameUpdated(payload)
	case *game.GameOverMessage:
		d.target.GameOver(payload)
	case *game.ErrorMessage:
		klog.Infof("dispatcher: server error: %s", payload.Message)
		if d.errs != nil {
			d.errs.ServerError(payload)
		}
	default:
		klog.Errorf("dispatcher: unexpected payload %T for %s", p, msg.Type)
		return false
	}
	return true
}

func (d *Dispatcher) OnMessage(msg game.WsMessage) {
	d.Dispatch(msg)
}

func (d *Dispatcher) OnError(err error) {
	if d.health != nil {
		d.health.ConnectionError(err)
	}
}

func (d *Dispatcher) OnStateChange(state conn.State) {
	if d.health != nil {
		d.health.ConnectionState(state)
	}
}
