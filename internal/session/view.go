package session

import "github.com/sidestacker/sidestacker/internal/conn"

// View is the screen a front end should show.
type View int

const (
	ViewConnecting  View = iota
	ViewUnreachable      // Blocking; supersedes everything else.
	ViewSetup
	ViewWaiting
	ViewGame // In progress or concluded.
)

func (v View) String() string {
	switch v {
	case ViewConnecting:
		return "connecting"
	case ViewUnreachable:
		return "unreachable"
	case ViewSetup:
		return "setup"
	case ViewWaiting:
		return "waiting"
	case ViewGame:
		return "game"
	}
	return "unknown"
}

// ViewFor selects the view for the given health and state.
func ViewFor(h Health, s Snapshot) View {
	switch {
	case h.Unreachable():
		return ViewUnreachable
	case h.State != conn.Open:
		return ViewConnecting
	case s.Session == nil:
		return ViewSetup
	case s.Turn.Status == StatusSetup || s.Turn.Status == StatusAwaitingOpponent:
		return ViewWaiting
	}
	return ViewGame
}

// StatsStale reports whether player statistics shown next to the game are
// out of date after prev became next: the username changed, a game
// concluded, or the session was reset.
func StatsStale(prev, next Snapshot) bool {
	switch {
	case next.Username != prev.Username:
		return true
	case next.Turn.Status.Concluded() && !prev.Turn.Status.Concluded():
		return true
	case prev.Session != nil && next.Session == nil:
		return true
	}
	return false
}
