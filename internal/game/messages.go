package game

import (
	"encoding/json"
	"fmt"
)

// Message type for WebSocket communication between client and server.
type MessageType string

const (
	// Client to server.
	MsgTypeCreateGame MessageType = "CREATE_GAME" // Client wants a new game
	MsgTypeJoinGame   MessageType = "JOIN_GAME"   // Client wants to join an existing game
	MsgTypeMakeMove   MessageType = "MAKE_MOVE"   // Client pushes a piece into a row

	// Server to client.
	MsgTypeGameCreated      MessageType = "GAME_CREATED"       // Session established by creation
	MsgTypeGameJoined       MessageType = "GAME_JOINED"        // Session established by joining
	MsgTypeGameStart        MessageType = "GAME_START"         // Game becomes active
	MsgTypeGameUpdate       MessageType = "GAME_UPDATE"        // Turn advanced
	MsgTypeGameOver         MessageType = "GAME_OVER"          // Game concluded
	MsgTypeWaitingForPlayer MessageType = "WAITING_FOR_PLAYER" // Second participant pending
	MsgTypeError            MessageType = "ERROR"              // Server rejected something
)

// WsMessage represents a WebSocket message.
type WsMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewWsMessage creates a new WsMessage with a marshaled payload.
func NewWsMessage(msgType MessageType, payload interface{}) (WsMessage, error) {
	if payload == nil {
		return WsMessage{Type: msgType}, nil
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return WsMessage{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return WsMessage{
		Type:    msgType,
		Payload: payloadBytes,
	}, nil
}

// Parse unmarshals the message payload into one of the message types (CreateGameMessage, GameStartMessage, etc.)
func (m *WsMessage) Parse() (any, error) {
	var target any
	switch m.Type {
	case MsgTypeCreateGame:
		target = &CreateGameMessage{}
	case MsgTypeJoinGame:
		target = &JoinGameMessage{}
	case MsgTypeMakeMove:
		target = &MakeMoveMessage{}
	case MsgTypeGameCreated, MsgTypeGameJoined:
		target = &GameCreatedMessage{}
	case MsgTypeGameStart:
		target = &GameStartMessage{}
	case MsgTypeGameUpdate:
		target = &GameUpdateMessage{}
	case MsgTypeGameOver:
		target = &GameOverMessage{}
	case MsgTypeWaitingForPlayer:
		target = &WaitingForPlayerMessage{}
	case MsgTypeError:
		target = &ErrorMessage{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", m.Type)
	}

	if len(m.Payload) == 0 {
		return target, nil
	}

	err := json.Unmarshal(m.Payload, target)
	return target, err
}

// CreateGameMessage is the payload for MsgTypeCreateGame
type CreateGameMessage struct {
	PlayerTempID  string     `json:"player_temp_id"`
	Mode          Mode       `json:"mode"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`     // PVE only
	AI1Difficulty Difficulty `json:"ai1_difficulty,omitempty"` // AVA only
	AI2Difficulty Difficulty `json:"ai2_difficulty,omitempty"` // AVA only
	Username      string     `json:"username,omitempty"`
}

// JoinGameMessage is the payload for MsgTypeJoinGame
type JoinGameMessage struct {
	PlayerTempID string `json:"player_temp_id"`
	GameID       string `json:"game_id"`
	Username     string `json:"username,omitempty"`
}

// MakeMoveMessage is the payload for MsgTypeMakeMove
type MakeMoveMessage struct {
	GameID      string `json:"game_id"`
	PlayerToken string `json:"player_token"`
	Row         int    `json:"row"`
	Side        Side   `json:"side"`
	MoveID      string `json:"move_id,omitempty"` // Echoed back on the resulting update or error
}

// GameCreatedMessage is the payload for MsgTypeGameCreated and MsgTypeGameJoined
type GameCreatedMessage struct {
	GameID      string `json:"game_id"`
	PlayerToken string `json:"player_token"` // SpectatorToken for spectators
	PlayerPiece Piece  `json:"player_piece"`
	GameMode    string `json:"game_mode"` // e.g. "PVP", "PVE_EASY"
	Message     string `json:"message,omitempty"`
	Username    string `json:"username,omitempty"` // Canonical username, if the server has one
}

// GameStartMessage is the payload for MsgTypeGameStart
type GameStartMessage struct {
	GameID             string           `json:"game_id,omitempty"`
	Board              Board            `json:"board"`
	CurrentPlayerToken string           `json:"current_player_token"`
	Players            map[string]Piece `json:"players"` // token -> piece
	YourToken          string           `json:"your_token,omitempty"`
	YourPiece          Piece            `json:"your_piece,omitempty"`
	GameMode           string           `json:"game_mode,omitempty"`
}

// GameUpdateMessage is the payload for MsgTypeGameUpdate
type GameUpdateMessage struct {
	GameID             string    `json:"game_id,omitempty"`
	Board              Board     `json:"board"`
	CurrentPlayerToken string    `json:"current_player_token"`
	LastMove           *LastMove `json:"last_move"`
	MoveID             string    `json:"move_id,omitempty"`
}

// GameOverMessage is the payload for MsgTypeGameOver
type GameOverMessage struct {
	GameID             string `json:"game_id,omitempty"`
	Board              Board  `json:"board"`
	Status             string `json:"status"`
	WinnerToken        string `json:"winner_token"` // DrawWinnerToken on draws
	WinningPlayerPiece Piece  `json:"winning_player_piece,omitempty"`
	Reason             string `json:"reason,omitempty"`
	MoveID             string `json:"move_id,omitempty"`
}

// WaitingForPlayerMessage is the payload for MsgTypeWaitingForPlayer
type WaitingForPlayerMessage struct {
	GameID  string `json:"game_id"`
	Message string `json:"message,omitempty"`
}

// ErrorMessage is the payload for MsgTypeError
type ErrorMessage struct {
	Message string `json:"message"`
	MoveID  string `json:"move_id,omitempty"`
}
