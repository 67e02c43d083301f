package session

import (
	"strings"

	"github.com/sidestacker/sidestacker/internal/game"
	"k8s.io/klog/v2"
)

// Status of the local view of a game session.
type Status int

const (
	StatusSetup Status = iota
	StatusAwaitingOpponent
	StatusInProgress
	StatusWonX
	StatusWonO
	StatusDraw
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusSetup:
		return "setup"
	case StatusAwaitingOpponent:
		return "awaiting_opponent"
	case StatusInProgress:
		return "in_progress"
	case StatusWonX:
		return "won_x"
	case StatusWonO:
		return "won_o"
	case StatusDraw:
		return "draw"
	case StatusTerminated:
		return "terminated"
	}
	return "unknown"
}

// Concluded reports whether s is terminal for the session.
func (s Status) Concluded() bool {
	return s >= StatusWonX
}

// Descriptor identifies the session this client is part of.
type Descriptor struct {
	GameID      string
	PlayerToken string // ClientIdentity when Spectator is set.
	Piece       game.Piece
	Mode        game.Mode
	GameMode    string // As reported by the server, e.g. "PVE_HARD".
	Spectator   bool
}

// Turn is the turn and outcome part of the session state.
type Turn struct {
	CurrentPlayerToken string
	Status             Status
	LastMove           *game.LastMove
	WinnerToken        string // game.DrawWinnerToken on draws.
	WinnerPiece        game.Piece
	Reason             string // Why the game ended, e.g. game.ReasonOpponentDisconnected.
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Session     *Descriptor // Nil until the server confirms a create or join.
	Board       game.Board
	Turn        Turn
	Players     map[string]game.Piece
	Username    string
	MovePending bool // Set by the Controller while a move awaits the server.
}

// Active reports whether a game is being played.
func (s Snapshot) Active() bool {
	return s.Session != nil && s.Turn.Status == StatusInProgress
}

// IsMyTurn reports whether the local player holds the turn.
func (s Snapshot) IsMyTurn() bool {
	return s.Active() && !s.Session.Spectator &&
		s.Turn.CurrentPlayerToken != "" && s.Turn.CurrentPlayerToken == s.Session.PlayerToken
}

// PieceOf returns the piece of the given token, if known.
func (s Snapshot) PieceOf(token string) (game.Piece, bool) {
	p, ok := s.Players[token]
	return p, ok
}

// Transition is one applied server event with the state before and after it.
type Transition struct {
	Event   game.MessageType
	Before  Snapshot
	After   Snapshot
	Message string // Free text sent by the server along with the event.
}

// Reducer derives the session state from server events. It is not safe for
// concurrent use; the Controller serializes access.
type Reducer struct {
	clientID string
	size     int

	session  *Descriptor
	board    game.Board
	turn     Turn
	players  map[string]game.Piece
	username string
}

// NewReducer returns a reducer in the setup state with an empty board of
// the given size.
func NewReducer(clientID string, boardSize int) *Reducer {
	if boardSize <= 0 {
		boardSize = game.DefaultBoardSize
	}
	r := &Reducer{clientID: clientID, size: boardSize}
	r.Reset()
	return r
}

// Reset discards the session and its game state together. The username is kept.
func (r *Reducer) Reset() {
	r.session = nil
	r.board = game.NewBoard(r.size)
	r.turn = Turn{Status: StatusSetup}
	r.players = nil
}

// HasSession reports whether a session descriptor is held.
func (r *Reducer) HasSession() bool {
	return r.session != nil
}

// Username returns the local username.
func (r *Reducer) Username() string {
	return r.username
}

// SetUsername sets the local username.
func (r *Reducer) SetUsername(name string) {
	r.username = strings.TrimSpace(name)
}

// Snapshot returns a deep copy of the current state.
func (r *Reducer) Snapshot() Snapshot {
	s := Snapshot{
		Board:    r.board.Clone(),
		Turn:     r.turn,
		Username: r.username,
	}
	if r.session != nil {
		d := *r.session
		s.Session = &d
	}
	if r.turn.LastMove != nil {
		lm := *r.turn.LastMove
		s.Turn.LastMove = &lm
	}
	if r.players != nil {
		s.Players = make(map[string]game.Piece, len(r.players))
		for k, v := range r.players {
			s.Players[k] = v
		}
	}
	return s
}

// owns reports whether an event tagged with gameID belongs to the held session.
// Events without a game ID are attributed to the held session.
func (r *Reducer) owns(event game.MessageType, gameID string) bool {
	if r.session == nil {
		klog.Warningf("reducer: ignoring %s, no session", event)
		return false
	}
	if gameID != "" && gameID != r.session.GameID {
		klog.Warningf("reducer: ignoring %s for game %s, current game is %s", event, gameID, r.session.GameID)
		return false
	}
	if r.turn.Status.Concluded() {
		klog.Warningf("reducer: ignoring %s, game %s is over", event, r.session.GameID)
		return false
	}
	return true
}

// knownPlayer reports whether token is consistent with the players map.
func knownPlayer(players map[string]game.Piece, token string) bool {
	if token == "" || len(players) == 0 {
		return true
	}
	_, ok := players[token]
	return ok
}

func (r *Reducer) localToken(token string) (string, bool) {
	if token == game.SpectatorToken {
		return r.clientID, true
	}
	return token, false
}

// ApplyEstablished handles GAME_CREATED and GAME_JOINED.
func (r *Reducer) ApplyEstablished(event game.MessageType, p *game.GameCreatedMessage) (Transition, bool) {
	if p.GameID == "" {
		klog.Warningf("reducer: ignoring %s without game ID", event)
		return Transition{}, false
	}
	if r.session != nil && r.session.GameID != p.GameID {
		klog.Warningf("reducer: ignoring %s for game %s, current game is %s", event, p.GameID, r.session.GameID)
		return Transition{}, false
	}
	before := r.Snapshot()

	if r.session == nil {
		r.board = game.NewBoard(r.size)
		r.turn = Turn{Status: StatusSetup}
		r.players = nil
	}
	token, spectator := r.localToken(p.PlayerToken)
	mode, ok := game.ParseMode(p.GameMode)
	if !ok && r.session != nil {
		mode = r.session.Mode
	}
	r.session = &Descriptor{
		GameID:      p.GameID,
		PlayerToken: token,
		Piece:       p.PlayerPiece,
		Mode:        mode,
		GameMode:    p.GameMode,
		Spectator:   spectator,
	}
	if name := strings.TrimSpace(p.Username); name != "" && name != r.username {
		klog.Infof("reducer: username set by server to %q", name)
		r.username = name
	}
	klog.Infof("reducer: %s game=%s token=%s piece=%q mode=%s", event, p.GameID, token, p.PlayerPiece, p.GameMode)
	return Transition{Event: event, Before: before, After: r.Snapshot(), Message: p.Message}, true
}

// ApplyWaiting handles WAITING_FOR_PLAYER.
func (r *Reducer) ApplyWaiting(p *game.WaitingForPlayerMessage) (Transition, bool) {
	if !r.owns(game.MsgTypeWaitingForPlayer, p.GameID) {
		return Transition{}, false
	}
	before := r.Snapshot()
	r.turn.Status = StatusAwaitingOpponent
	return Transition{Event: game.MsgTypeWaitingForPlayer, Before: before, After: r.Snapshot(), Message: p.Message}, true
}

// ApplyStart handles GAME_START: board, turn holder and players are replaced
// and any previous outcome is cleared.
func (r *Reducer) ApplyStart(p *game.GameStartMessage) (Transition, bool) {
	if !r.owns(game.MsgTypeGameStart, p.GameID) {
		return Transition{}, false
	}
	if p.Board.Size() == 0 {
		klog.Errorf("reducer: ignoring %s without board", game.MsgTypeGameStart)
		return Transition{}, false
	}
	if !knownPlayer(p.Players, p.CurrentPlayerToken) {
		klog.Warningf("reducer: ignoring %s, turn holder %s is not a player", game.MsgTypeGameStart, p.CurrentPlayerToken)
		return Transition{}, false
	}
	before := r.Snapshot()

	r.board = p.Board.Clone()
	r.players = make(map[string]game.Piece, len(p.Players))
	for k, v := range p.Players {
		r.players[k] = v
	}
	r.turn = Turn{CurrentPlayerToken: p.CurrentPlayerToken, Status: StatusInProgress}

	if p.YourToken != "" {
		token, spectator := r.localToken(p.YourToken)
		if token != r.session.PlayerToken || p.YourPiece != r.session.Piece || spectator != r.session.Spectator {
			klog.Infof("reducer: server corrected local seat to token=%s piece=%q", token, p.YourPiece)
			r.session.PlayerToken = token
			r.session.Piece = p.YourPiece
			r.session.Spectator = spectator
		}
	}
	if p.GameMode != "" {
		if mode, ok := game.ParseMode(p.GameMode); ok {
			r.session.Mode = mode
		}
		r.session.GameMode = p.GameMode
	}
	return Transition{Event: game.MsgTypeGameStart, Before: before, After: r.Snapshot()}, true
}

// ApplyUpdate handles GAME_UPDATE: board, turn holder and last move are replaced.
func (r *Reducer) ApplyUpdate(p *game.GameUpdateMessage) (Transition, bool) {
	if !r.owns(game.MsgTypeGameUpdate, p.GameID) {
		return Transition{}, false
	}
	if p.Board.Size() == 0 {
		klog.Errorf("reducer: ignoring %s without board", game.MsgTypeGameUpdate)
		return Transition{}, false
	}
	if !knownPlayer(r.players, p.CurrentPlayerToken) {
		klog.Warningf("reducer: ignoring %s, turn holder %s is not a player", game.MsgTypeGameUpdate, p.CurrentPlayerToken)
		return Transition{}, false
	}
	if p.LastMove != nil && !knownPlayer(r.players, p.LastMove.PlayerToken) {
		klog.Warningf("reducer: ignoring %s, last move by unknown player %s", game.MsgTypeGameUpdate, p.LastMove.PlayerToken)
		return Transition{}, false
	}
	before := r.Snapshot()

	r.board = p.Board.Clone()
	r.turn.CurrentPlayerToken = p.CurrentPlayerToken
	r.turn.Status = StatusInProgress
	r.turn.LastMove = nil
	if p.LastMove != nil {
		lm := *p.LastMove
		r.turn.LastMove = &lm
	}
	return Transition{Event: game.MsgTypeGameUpdate, Before: before, After: r.Snapshot()}, true
}

// ApplyOver handles GAME_OVER. Nobody holds the turn afterwards.
func (r *Reducer) ApplyOver(p *game.GameOverMessage) (Transition, bool) {
	if !r.owns(game.MsgTypeGameOver, p.GameID) {
		return Transition{}, false
	}
	before := r.Snapshot()

	if p.Board.Size() > 0 {
		r.board = p.Board.Clone()
	}
	winnerPiece := p.WinningPlayerPiece
	if piece, ok := r.players[p.WinnerToken]; ok {
		winnerPiece = piece
	}
	status := outcome(p.Status, p.WinnerToken, winnerPiece)
	reason := p.Reason
	if status == StatusTerminated && reason == "" {
		reason = p.Status
	}
	r.turn.CurrentPlayerToken = ""
	r.turn.Status = status
	r.turn.WinnerToken = p.WinnerToken
	r.turn.WinnerPiece = winnerPiece
	r.turn.Reason = reason

	klog.Infof("reducer: game %s over: status=%s winner=%s reason=%s", r.session.GameID, status, p.WinnerToken, reason)
	return Transition{Event: game.MsgTypeGameOver, Before: before, After: r.Snapshot()}, true
}

func outcome(code, winnerToken string, winnerPiece game.Piece) Status {
	switch {
	case code == game.StatusDraw || winnerToken == game.DrawWinnerToken:
		return StatusDraw
	case code == game.StatusPlayerXWins:
		return StatusWonX
	case code == game.StatusPlayerOWins:
		return StatusWonO
	case winnerToken != "" && winnerPiece == game.PieceX:
		return StatusWonX
	case winnerToken != "" && winnerPiece == game.PieceO:
		return StatusWonO
	}
	return StatusTerminated
}
