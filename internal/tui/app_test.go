package tui

import (
	"errors"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidestacker/sidestacker/internal/conn"
	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/sidestacker/sidestacker/internal/session"
)

// loopback is an open transport that records what the controller sends.
type loopback struct {
	mu        sync.Mutex
	sent      []game.WsMessage
	listeners []conn.Listener
}

func (l *loopback) Connect(listeners ...conn.Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listeners...)
}

func (l *loopback) Send(msg game.WsMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, msg)
}

func (l *loopback) State() conn.State { return conn.Open }
func (l *loopback) Close() error      { return nil }

func (l *loopback) types() []game.MessageType {
	l.mu.Lock()
	defer l.mu.Unlock()
	var types []game.MessageType
	for _, m := range l.sent {
		types = append(types, m.Type)
	}
	return types
}

func (l *loopback) deliver(t *testing.T, mt game.MessageType, payload any) {
	t.Helper()
	msg, err := game.NewWsMessage(mt, payload)
	require.NoError(t, err)
	for _, lis := range l.listeners {
		lis.OnMessage(msg)
	}
}

func newTestApp(t *testing.T) (*App, *loopback, *session.Controller) {
	t.Helper()
	lb := &loopback{}
	ctrl := session.New(lb, "client-1", session.Options{BoardSize: 5})
	ctrl.Start()
	return New(ctrl, nil), lb, ctrl
}

func TestExecuteDrivesController(t *testing.T) {
	a, lb, ctrl := newTestApp(t)

	a.Execute("name alice")
	assert.Equal(t, "alice", ctrl.Snapshot().Username)

	a.Execute("create pve hard")
	assert.Equal(t, []game.MessageType{game.MsgTypeCreateGame}, lb.types())

	lb.deliver(t, game.MsgTypeGameCreated, &game.GameCreatedMessage{GameID: "g1", PlayerToken: "t1", PlayerPiece: game.PieceX, GameMode: "PVE_HARD"})
	lb.deliver(t, game.MsgTypeGameStart, &game.GameStartMessage{
		GameID: "g1", Board: game.NewBoard(5), CurrentPlayerToken: "t1",
		Players: map[string]game.Piece{"t1": game.PieceX, "AI": game.PieceO},
	})
	require.True(t, ctrl.CanMove())

	a.Execute("2r")
	assert.Equal(t, []game.MessageType{game.MsgTypeCreateGame, game.MsgTypeMakeMove}, lb.types())
	assert.True(t, ctrl.Snapshot().MovePending)

	a.Execute("new")
	assert.Nil(t, ctrl.Snapshot().Session)
}

func TestExecuteReportsErrorsLocally(t *testing.T) {
	a, lb, _ := newTestApp(t)

	a.Execute("")
	a.Execute("dance")
	a.Execute("join ''")
	a.Execute("move 1 L")
	a.Execute("create chess")

	assert.Empty(t, lb.types(), "nothing is sent for rejected commands")
	text := a.log.GetText(true)
	assert.Contains(t, text, "unknown command")
	assert.Contains(t, text, session.ErrEmptyGameID.Error())
	assert.Contains(t, text, session.ErrNoActiveGame.Error())
	assert.Contains(t, text, session.ErrUnknownMode.Error())
}

func TestUnreachablePageReconnects(t *testing.T) {
	a, _, ctrl := newTestApp(t)
	a.Execute("name alice")

	a.mu.Lock()
	a.health = session.Health{State: conn.Closed, Err: errors.New("connection refused")}
	a.mu.Unlock()
	a.render()
	name, _ := a.pages.GetFrontPage()
	require.Equal(t, session.ViewUnreachable.String(), name)
	assert.NotContains(t, a.errorView.GetText(true), "r to reconnect")

	calls := 0
	a.SetReconnect(func() { calls++ })
	a.render()
	assert.Contains(t, a.errorView.GetText(true), "r to reconnect")

	capture := a.errorView.GetInputCapture()
	assert.Nil(t, capture(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)))
	assert.Equal(t, 1, calls)
	other := tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)
	assert.Equal(t, other, capture(other))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "alice", ctrl.Snapshot().Username, "the local session is kept")
}

func TestInfoText(t *testing.T) {
	open := session.Health{State: conn.Open}

	text := infoText(session.Snapshot{}, open, false, "")
	assert.Contains(t, text, "No game.")
	assert.Contains(t, text, "anonymous")

	d := &session.Descriptor{GameID: "g-42", PlayerToken: "t1", Piece: game.PieceO, Mode: game.ModeHeadToHead}
	text = infoText(session.Snapshot{Session: d, Username: "bob"}, open, false, "bob: 3 played")
	assert.Contains(t, text, "Share Game ID: [::b]g-42")
	assert.Contains(t, text, "bob: 3 played")

	playing := session.Snapshot{
		Session: d,
		Players: map[string]game.Piece{"t1": game.PieceO, "t2": game.PieceX},
		Turn: session.Turn{
			Status:             session.StatusInProgress,
			CurrentPlayerToken: "t2",
			LastMove:           &game.LastMove{PlayerToken: "t1", PlayerPiece: game.PieceO, Row: 3, SidePlayed: game.SideLeft},
		},
	}
	text = infoText(playing, open, false, "")
	assert.Contains(t, text, "g-42 (PVP)")
	assert.Contains(t, text, "O row 3 from L")
	assert.Contains(t, text, "Waiting for X...")

	playing.Turn.CurrentPlayerToken = "t1"
	assert.Contains(t, infoText(playing, open, true, ""), "Your move")
	playing.MovePending = true
	assert.Contains(t, infoText(playing, open, false, ""), "Move sent")

	over := playing
	over.Turn = session.Turn{Status: session.StatusWonX, WinnerToken: "t2", WinnerPiece: game.PieceX, Reason: game.ReasonOpponentDisconnected}
	assert.Contains(t, infoText(over, open, false, ""), "Player X wins[-:-:-] by forfeit")
}
