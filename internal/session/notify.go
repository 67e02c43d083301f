package session

import (
	"fmt"

	"github.com/sidestacker/sidestacker/internal/game"
)

// Level of a notification, for styling.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Kind classifies a notification.
type Kind string

const (
	KindSessionReady        Kind = "session_ready"
	KindWaiting             Kind = "waiting"
	KindGameStarted         Kind = "game_started"
	KindYourTurn            Kind = "your_turn"
	KindWin                 Kind = "win"
	KindWinByForfeit        Kind = "win_by_forfeit"
	KindLoss                Kind = "loss"
	KindPlayerWins          Kind = "player_wins"
	KindPlayerWinsByForfeit Kind = "player_wins_by_forfeit"
	KindOpponentLeft        Kind = "opponent_left"
	KindDraw                Kind = "draw"
	KindTerminated          Kind = "terminated"
	KindServerError         Kind = "server_error"
	KindMoveTimeout         Kind = "move_timeout"
	KindConnection          Kind = "connection"
)

// Notification is a transient, user facing message.
type Notification struct {
	Kind        Kind
	Level       Level
	Title       string
	Description string
	// Sticky notifications stay until replaced by one with the same Kind.
	Sticky bool
}

// Notifications returns the notifications for a transition. It only looks
// at the transition, so it can be called after the state was updated.
func Notifications(t Transition) []Notification {
	switch t.Event {
	case game.MsgTypeGameCreated, game.MsgTypeGameJoined:
		if t.Message == "" {
			return nil
		}
		level := LevelSuccess
		if s := t.After.Session; s != nil && t.Event == game.MsgTypeGameCreated &&
			s.Mode == game.ModeHeadToHead && s.Piece == game.PieceX {
			level = LevelInfo
		}
		return []Notification{{Kind: KindSessionReady, Level: level, Title: t.Message}}

	case game.MsgTypeWaitingForPlayer:
		return []Notification{{
			Kind:        KindWaiting,
			Level:       LevelInfo,
			Title:       "Waiting for opponent...",
			Description: fmt.Sprintf("Share Game ID: %s", t.After.Session.GameID),
			Sticky:      true,
		}}

	case game.MsgTypeGameStart:
		return []Notification{{
			Kind:  KindGameStarted,
			Level: LevelSuccess,
			Title: fmt.Sprintf("Game Started! It's %s's turn.", pieceName(t.After, t.After.Turn.CurrentPlayerToken, "", "Unknown")),
		}}

	case game.MsgTypeGameUpdate:
		if t.After.IsMyTurn() {
			return []Notification{{Kind: KindYourTurn, Level: LevelInfo, Title: "Your turn"}}
		}
		return nil

	case game.MsgTypeGameOver:
		return []Notification{gameOverNotification(t.After)}
	}
	return nil
}

func gameOverNotification(s Snapshot) Notification {
	turn := s.Turn
	mine := s.Session != nil && !s.Session.Spectator && turn.WinnerToken != "" &&
		turn.WinnerToken == s.Session.PlayerToken
	hasWinner := turn.WinnerToken != "" && turn.WinnerToken != game.DrawWinnerToken
	winner := pieceName(s, turn.WinnerToken, turn.WinnerPiece, "?")

	if turn.Reason == game.ReasonOpponentDisconnected {
		switch {
		case mine:
			return Notification{Kind: KindWinByForfeit, Level: LevelSuccess,
				Title: "You Win by Forfeit!", Description: "Your opponent disconnected from the game."}
		case hasWinner:
			return Notification{Kind: KindPlayerWinsByForfeit, Level: LevelWarning,
				Title: fmt.Sprintf("Player %s Wins by Forfeit!", winner), Description: "The other player disconnected."}
		default:
			return Notification{Kind: KindOpponentLeft, Level: LevelWarning, Title: "Game Ended: Opponent Disconnected"}
		}
	}

	switch turn.Status {
	case StatusDraw:
		return Notification{Kind: KindDraw, Level: LevelWarning, Title: "It's a Draw!"}
	case StatusWonX, StatusWonO:
		title := fmt.Sprintf("Player %s Wins!", winner)
		switch {
		case mine:
			return Notification{Kind: KindWin, Level: LevelSuccess, Title: title}
		case s.Session != nil && !s.Session.Spectator:
			return Notification{Kind: KindLoss, Level: LevelError, Title: title}
		default:
			return Notification{Kind: KindPlayerWins, Level: LevelInfo, Title: title}
		}
	}
	desc := turn.Reason
	return Notification{Kind: KindTerminated, Level: LevelWarning, Title: "Game Over!", Description: desc}
}

// pieceName names a player by piece: players map first, then fallback.
func pieceName(s Snapshot, token string, fallback game.Piece, unknown string) string {
	if p, ok := s.Players[token]; ok && p != game.PieceNone {
		return string(p)
	}
	if fallback != game.PieceNone {
		return string(fallback)
	}
	return unknown
}
