package frontend

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/sidestacker/sidestacker/internal/session"
)

func TestStatusLine(t *testing.T) {
	d := &session.Descriptor{GameID: "g1", PlayerToken: "t1", Piece: game.PieceX}
	s := session.Snapshot{
		Session: d,
		Players: map[string]game.Piece{"t1": game.PieceX, "t2": game.PieceO},
		Turn:    session.Turn{Status: session.StatusInProgress, CurrentPlayerToken: "t1"},
	}
	assert.Equal(t, "Your turn: pick a row and a side.", statusLine(s, true))

	s.MovePending = true
	assert.Equal(t, "Move sent...", statusLine(s, false))

	s.MovePending = false
	s.Turn.CurrentPlayerToken = "t2"
	assert.Equal(t, "Waiting for O...", statusLine(s, false))

	s.Turn = session.Turn{Status: session.StatusWonO, WinnerToken: "t2", WinnerPiece: game.PieceO,
		Reason: game.ReasonOpponentDisconnected}
	assert.Equal(t, "Player O wins by forfeit!", statusLine(s, false))

	s.Turn = session.Turn{Status: session.StatusDraw}
	assert.Equal(t, "It's a draw!", statusLine(s, false))
}

func TestCellClass(t *testing.T) {
	last := &game.LastMove{Row: 2, Col: 0}
	assert.Equal(t, "cell", cellClass(game.PieceNone, last, 0, 0))
	assert.Equal(t, "cell piece-x", cellClass(game.PieceX, nil, 2, 0))
	assert.Equal(t, "cell piece-o last-move", cellClass(game.PieceO, last, 2, 0))
}

func TestEndpoints(t *testing.T) {
	noEnv := func(string) string { return "" }

	page, _ := url.Parse("https://play.example.com/")
	ws, api := endpoints(noEnv, page)
	assert.Equal(t, "wss://play.example.com/api/v1/ws-game/ws", ws)
	assert.Equal(t, "https://play.example.com/api/v1", api)

	page, _ = url.Parse("http://localhost:8080/")
	ws, _ = endpoints(noEnv, page)
	assert.Equal(t, "ws://localhost:8080/api/v1/ws-game/ws", ws)

	env := map[string]string{EnvServerURL: "ws://game:8000/ws", EnvAPIURL: "http://game:8000/api"}
	ws, api = endpoints(func(k string) string { return env[k] }, page)
	assert.Equal(t, "ws://game:8000/ws", ws)
	assert.Equal(t, "http://game:8000/api", api)
}
