package session

import "errors"

// Local validation errors. Nothing is sent to the server when one of these
// is returned.
var (
	ErrUnknownMode        = errors.New("unknown game mode")
	ErrEmptyGameID        = errors.New("game ID is required to join")
	ErrMissingGameID      = errors.New("game ID is required to make a move")
	ErrMissingPlayerToken = errors.New("player token is required to make a move")
	ErrInvalidRow         = errors.New("row must be an integer")
	ErrInvalidSide        = errors.New("side must be L or R")
	ErrNoActiveGame       = errors.New("no active game")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrMovePending        = errors.New("a move is already waiting for the server")
	ErrSpectator          = errors.New("spectators cannot make moves")
	ErrSessionInProgress  = errors.New("a game session is already in progress, start a new game first")
)
