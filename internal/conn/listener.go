package conn

import "github.com/sidestacker/sidestacker/internal/game"

// Listener observes a Manager. Implementations must be comparable (pointer
// receivers) so that registering the same listener twice is a no-op.
type Listener interface {
	// OnMessage is called for every decoded inbound message, in receipt order.
	OnMessage(msg game.WsMessage)
	// OnError reports transport errors, send failures and dropped messages.
	OnError(err error)
	// OnStateChange reports every connection state transition.
	OnStateChange(state State)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
// Use it by pointer: &conn.ListenerFuncs{...}.
type ListenerFuncs struct {
	Message     func(msg game.WsMessage)
	Error       func(err error)
	StateChange func(state State)
}

func (f *ListenerFuncs) OnMessage(msg game.WsMessage) {
	if f.Message != nil {
		f.Message(msg)
	}
}

func (f *ListenerFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

func (f *ListenerFuncs) OnStateChange(state State) {
	if f.StateChange != nil {
		f.StateChange(state)
	}
}
