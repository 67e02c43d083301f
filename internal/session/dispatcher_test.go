package session

import (
	"encoding/json"
	"testing"

	"github.com/sidestacker/sidestacker/internal/conn"
	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTarget records the routed events by name.
type recordingTarget struct {
	calls  []string
	errors []*game.ErrorMessage
	health []any
}

func (r *recordingTarget) SessionEstablished(event game.MessageType, _ *game.GameCreatedMessage) {
	r.calls = append(r.calls, "established:"+string(event))
}
func (r *recordingTarget) WaitingForPlayer(*game.WaitingForPlayerMessage) { r.calls = append(r.calls, "waiting") }
func (r *recordingTarget) GameStarted(*game.GameStartMessage)             { r.calls = append(r.calls, "start") }
func (r *recordingTarget) GameUpdated(*game.GameUpdateMessage)            { r.calls = append(r.calls, "update") }
func (r *recordingTarget) GameOver(*game.GameOverMessage)                 { r.calls = append(r.calls, "over") }
func (r *recordingTarget) ServerError(p *game.ErrorMessage)               { r.errors = append(r.errors, p) }
func (r *recordingTarget) ConnectionError(err error)                      { r.health = append(r.health, err) }
func (r *recordingTarget) ConnectionState(s conn.State)                   { r.health = append(r.health, s) }

func rawMessage(t game.MessageType, payload string) game.WsMessage {
	return game.WsMessage{Type: t, Payload: json.RawMessage(payload)}
}

func TestDispatchRoutesInOrder(t *testing.T) {
	rec := &recordingTarget{}
	d := NewDispatcher(rec, rec, rec)

	msgs := []game.WsMessage{
		rawMessage(game.MsgTypeGameCreated, `{"game_id":"g","player_token":"t"}`),
		rawMessage(game.MsgTypeWaitingForPlayer, `{"game_id":"g"}`),
		rawMessage(game.MsgTypeGameJoined, `{"game_id":"g","player_token":"t"}`),
		rawMessage(game.MsgTypeGameStart, `{"board":[[null]],"current_player_token":"t"}`),
		rawMessage(game.MsgTypeGameUpdate, `{"board":[["X"]],"current_player_token":"t"}`),
		rawMessage(game.MsgTypeGameOver, `{"status":"draw"}`),
	}
	for _, m := range msgs {
		assert.True(t, d.Dispatch(m), "type %s", m.Type)
	}
	assert.Equal(t, []string{
		"established:GAME_CREATED", "waiting", "established:GAME_JOINED", "start", "update", "over",
	}, rec.calls)
}

func TestDispatchDropsUnknownTypes(t *testing.T) {
	rec := &recordingTarget{}
	d := NewDispatcher(rec, rec, rec)

	assert.False(t, d.Dispatch(rawMessage("CHAT", `{"text":"hi"}`)))
	assert.False(t, d.Dispatch(rawMessage(game.MsgTypeMakeMove, `{}`)), "outbound types are not inbound")
	assert.False(t, d.Dispatch(rawMessage(game.MsgTypeGameUpdate, `{"board":"nope"}`)), "bad payload")
	assert.Empty(t, rec.calls)
	assert.Empty(t, rec.errors)
}

func TestDispatchReportsUndecodablePayloads(t *testing.T) {
	rec := &recordingTarget{}
	d := NewDispatcher(rec, rec, rec)

	assert.False(t, d.Dispatch(rawMessage(game.MsgTypeGameStart, `{"board":42}`)))
	assert.Empty(t, rec.calls)
	require.Len(t, rec.health, 1)
	err, ok := rec.health[0].(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, conn.ErrMalformedMessage)
	assert.Contains(t, err.Error(), string(game.MsgTypeGameStart))

	// Unknown types are dropped without a report.
	assert.False(t, d.Dispatch(rawMessage("CHAT", `{}`)))
	assert.Len(t, rec.health, 1)
}

func TestDispatchErrorGoesToErrorSurfaceOnly(t *testing.T) {
	rec := &recordingTarget{}
	d := NewDispatcher(rec, rec, rec)

	require.True(t, d.Dispatch(rawMessage(game.MsgTypeError, `{"message":"Not your turn","move_id":"m1"}`)))
	assert.Empty(t, rec.calls)
	require.Len(t, rec.errors, 1)
	assert.Equal(t, "Not your turn", rec.errors[0].Message)
	assert.Equal(t, "m1", rec.errors[0].MoveID)

	// Without an error surface the event is still consumed.
	d = NewDispatcher(rec, nil, nil)
	assert.True(t, d.Dispatch(rawMessage(game.MsgTypeError, `{"message":"x"}`)))
	d.OnStateChange(conn.Open)
	d.OnError(conn.ErrNotConnected)
}

func TestDispatcherForwardsConnectionEvents(t *testing.T) {
	rec := &recordingTarget{}
	d := NewDispatcher(rec, rec, rec)

	d.OnStateChange(conn.Connecting)
	d.OnError(conn.ErrDialFailed)
	d.OnStateChange(conn.Closed)
	d.OnMessage(rawMessage(game.MsgTypeGameOver, `{}`))

	assert.Equal(t, []any{conn.Connecting, conn.ErrDialFailed, conn.Closed}, rec.health)
	assert.Equal(t, []string{"over"}, rec.calls)
}

func TestRecognized(t *testing.T) {
	for _, mt := range []game.MessageType{
		game.MsgTypeGameCreated, game.MsgTypeGameJoined, game.MsgTypeGameStart, game.MsgTypeGameUpdate,
		game.MsgTypeGameOver, game.MsgTypeWaitingForPlayer, game.MsgTypeError,
	} {
		assert.True(t, Recognized(mt), "%s", mt)
	}
	for _, mt := range []game.MessageType{game.MsgTypeCreateGame, game.MsgTypeJoinGame, game.MsgTypeMakeMove, "", "PING"} {
		assert.False(t, Recognized(mt), "%s", mt)
	}
}
