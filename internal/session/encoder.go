package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sidestacker/sidestacker/internal/game"
	"k8s.io/klog/v2"
)

// CreateOptions carries the mode specific parts of a create game intent.
type CreateOptions struct {
	Difficulty    string // PVE
	AI1Difficulty string // AVA, first seat
	AI2Difficulty string // AVA, second seat
	Username      string // Attached for PVP and PVE only
}

// Encoder builds outbound protocol messages for one client identity.
type Encoder struct {
	clientID string
}

// NewEncoder returns an encoder stamping messages with clientID.
func NewEncoder(clientID string) *Encoder {
	return &Encoder{clientID: clientID}
}

// CreateGame encodes a CREATE_GAME message. Missing or invalid difficulties
// default to EASY with a warning.
func (e *Encoder) CreateGame(mode string, opts CreateOptions) (game.WsMessage, error) {
	m := game.Mode(strings.ToUpper(strings.TrimSpace(mode)))
	payload := game.CreateGameMessage{
		PlayerTempID: e.clientID,
		Mode:         m,
	}

	switch m {
	case game.ModeHeadToHead:
	case game.ModeHumanVsAI:
		payload.Difficulty = difficultyOrEasy(opts.Difficulty, "difficulty")
	case game.ModeAIVsAI:
		payload.AI1Difficulty = difficultyOrEasy(opts.AI1Difficulty, "ai1_difficulty")
		payload.AI2Difficulty = difficultyOrEasy(opts.AI2Difficulty, "ai2_difficulty")
	default:
		klog.Errorf("encoder: unknown game mode %q", mode)
		return game.WsMessage{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if name := strings.TrimSpace(opts.Username); name != "" && m != game.ModeAIVsAI {
		payload.Username = name
	}
	return game.NewWsMessage(game.MsgTypeCreateGame, payload)
}

func difficultyOrEasy(value, field string) game.Difficulty {
	if d, ok := game.ParseDifficulty(value); ok {
		return d
	}
	klog.Warningf("encoder: %s %q missing or invalid, defaulting to %s", field, value, game.DifficultyEasy)
	return game.DifficultyEasy
}

// JoinGame encodes a JOIN_GAME message. The game ID is trimmed and must not
// be empty.
func (e *Encoder) JoinGame(gameID, username string) (game.WsMessage, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		klog.Errorf("encoder: join requested without a game ID")
		return game.WsMessage{}, ErrEmptyGameID
	}
	return game.NewWsMessage(game.MsgTypeJoinGame, game.JoinGameMessage{
		PlayerTempID: e.clientID,
		GameID:       gameID,
		Username:     strings.TrimSpace(username),
	})
}

// MakeMove encodes a MAKE_MOVE message. moveID is optional.
func (e *Encoder) MakeMove(gameID, playerToken string, row int, side string, moveID string) (game.WsMessage, error) {
	if gameID == "" {
		klog.Errorf("encoder: move requested without a game ID")
		return game.WsMessage{}, ErrMissingGameID
	}
	if playerToken == "" {
		klog.Errorf("encoder: move requested without a player token")
		return game.WsMessage{}, ErrMissingPlayerToken
	}
	s, err := game.ParseSide(side)
	if err != nil {
		klog.Errorf("encoder: move rejected: %v", err)
		return game.WsMessage{}, fmt.Errorf("%w: %v", ErrInvalidSide, err)
	}
	return game.NewWsMessage(game.MsgTypeMakeMove, game.MakeMoveMessage{
		GameID:      gameID,
		PlayerToken: playerToken,
		Row:         row,
		Side:        s,
		MoveID:      moveID,
	})
}

// CoerceRow converts user supplied row text to an integer.
func CoerceRow(text string) (int, error) {
	row, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRow, text)
	}
	return row, nil
}
