// Package identity generates the client identity sent to the game server.
//
// The identity correlates one running client across reconnects and is
// distinct from any player token the server assigns. Browsers keep it in
// local storage; other clients may persist it with LoadOrCreate.
package identity

import "github.com/google/uuid"

// New returns a fresh random (v4) identity.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id looks like an identity produced by New.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
