package game

// Version of the client.
// Bumping this number will eventually make browsers reload the WASM.
//
// If you set this to an empty string, a random version number will be
// used, and force the reload of the WASM on every restart. This is useful
// during development.
var Version = "v0.1.0"

// DefaultBoardSize is the side of the square board served by the game
// server in its standard configuration.
const DefaultBoardSize = 7

// SpectatorToken is the player token the server hands out to clients that
// only watch a game (AI vs AI).
const SpectatorToken = "SPECTATOR"

// DrawWinnerToken is the winner_token value used by the server for a draw.
const DrawWinnerToken = "draw"

// ReasonOpponentDisconnected is the GAME_OVER reason sent when the other
// seat left the game.
const ReasonOpponentDisconnected = "opponent_disconnected"

// Game over status codes, as sent in GAME_OVER.status.
const (
	StatusPlayerXWins = "player_x_wins"
	StatusPlayerOWins = "player_o_wins"
	StatusDraw        = "draw"
)
