package game

import (
	"fmt"
	"strings"
)

// Piece is the mark assigned to a seat. Cells hold a Piece, with PieceNone
// for empty cells (JSON null on the wire).
type Piece string

const (
	PieceNone Piece = ""
	PieceX    Piece = "X" // First seat.
	PieceO    Piece = "O" // Second seat.
)

// Side is the edge from which a piece is pushed into a row.
type Side string

const (
	SideLeft  Side = "L"
	SideRight Side = "R"
)

// ParseSide normalizes user input ("l", " Left ", "R", ...) to a canonical Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LEFT":
		return SideLeft, nil
	case "R", "RIGHT":
		return SideRight, nil
	case "":
		return "", fmt.Errorf("side is empty")
	default:
		return "", fmt.Errorf("invalid side %q, expected L or R", s)
	}
}

// Mode is the kind of game requested in CREATE_GAME.
type Mode string

const (
	ModeHeadToHead Mode = "PVP" // Two humans.
	ModeHumanVsAI  Mode = "PVE" // Human against the server AI.
	ModeAIVsAI     Mode = "AVA" // Two AIs, the client spectates.
)

// ParseMode accepts both the client tags (PVP, PVE, AVA) and the server's
// decorated game_mode strings (e.g. "PVE_EASY", "AVA_EASY_HARD").
func ParseMode(s string) (Mode, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, m := range []Mode{ModeHeadToHead, ModeHumanVsAI, ModeAIVsAI} {
		if upper == string(m) || strings.HasPrefix(upper, string(m)+"_") {
			return m, true
		}
	}
	return "", false
}

// Difficulty of a server AI seat.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty normalizes a difficulty name. It returns false for empty or
// unknown values.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}

// Board is a square grid of cells indexed [row][col].
type Board [][]Piece

// NewBoard returns an all-empty board of the given size.
func NewBoard(size int) Board {
	b := make(Board, size)
	for i := range b {
		b[i] = make([]Piece, size)
	}
	return b
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	c := make(Board, len(b))
	for i, row := range b {
		c[i] = append([]Piece(nil), row...)
	}
	return c
}

// Size returns the number of rows.
func (b Board) Size() int {
	return len(b)
}

// Empty reports whether no cell holds a piece.
func (b Board) Empty() bool {
	for _, row := range b {
		for _, p := range row {
			if p != PieceNone {
				return false
			}
		}
	}
	return true
}

func (b Board) String() string {
	var sb strings.Builder
	for _, row := range b {
		for _, p := range row {
			if p == PieceNone {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(p))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// LastMove describes the move that produced the current board.
type LastMove struct {
	PlayerToken string `json:"player_token,omitempty"`
	PlayerPiece Piece  `json:"player_piece,omitempty"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	SidePlayed  Side   `json:"side_played,omitempty"`
}
