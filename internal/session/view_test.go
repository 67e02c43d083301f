package session

import (
	"errors"
	"testing"

	"github.com/sidestacker/sidestacker/internal/conn"
	"github.com/stretchr/testify/assert"
)

func TestViewFor(t *testing.T) {
	open := Health{State: conn.Open}
	session := &Descriptor{GameID: "g1", PlayerToken: "t1"}

	tests := []struct {
		name   string
		health Health
		snap   Snapshot
		want   View
	}{
		{"not started", Health{}, Snapshot{}, ViewConnecting},
		{"dialing", Health{State: conn.Connecting}, Snapshot{}, ViewConnecting},
		{"retrying after failure", Health{State: conn.Connecting, Err: conn.ErrDialFailed}, Snapshot{}, ViewConnecting},
		{"unreachable", Health{State: conn.Closed, Err: conn.ErrDialFailed}, Snapshot{}, ViewUnreachable},
		{"unreachable during a game", Health{State: conn.Closed, Err: errors.New("x")},
			Snapshot{Session: session, Turn: Turn{Status: StatusInProgress}}, ViewUnreachable},
		{"setup", open, Snapshot{}, ViewSetup},
		{"created", open, Snapshot{Session: session}, ViewWaiting},
		{"waiting", open, Snapshot{Session: session, Turn: Turn{Status: StatusAwaitingOpponent}}, ViewWaiting},
		{"playing", open, Snapshot{Session: session, Turn: Turn{Status: StatusInProgress}}, ViewGame},
		{"over", open, Snapshot{Session: session, Turn: Turn{Status: StatusDraw}}, ViewGame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewFor(tt.health, tt.snap))
		})
	}
}

func TestStatsStale(t *testing.T) {
	d := &Descriptor{GameID: "g"}
	playing := Snapshot{Session: d, Username: "a", Turn: Turn{Status: StatusInProgress}}

	assert.True(t, StatsStale(Snapshot{}, Snapshot{Username: "a"}), "username set")
	assert.False(t, StatsStale(playing, playing))

	over := playing
	over.Turn.Status = StatusDraw
	assert.True(t, StatsStale(playing, over), "game concluded")
	assert.False(t, StatsStale(over, over))

	assert.True(t, StatsStale(over, Snapshot{Username: "a"}), "reset")
}
