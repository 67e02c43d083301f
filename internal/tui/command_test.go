package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"create pvp", Command{Action: ActionCreate, Mode: "PVP"}},
		{"C PvE hard", Command{Action: ActionCreate, Mode: "PVE", Difficulty: "hard"}},
		{"create pve", Command{Action: ActionCreate, Mode: "PVE"}},
		{"create ava easy", Command{Action: ActionCreate, Mode: "AVA", AI1: "easy"}},
		{"create ava easy medium", Command{Action: ActionCreate, Mode: "AVA", AI1: "easy", AI2: "medium"}},
		{"create solo", Command{Action: ActionCreate, Mode: "SOLO"}},
		{"join 3f2a-77", Command{Action: ActionJoin, GameID: "3f2a-77"}},
		{"  j   abc  ", Command{Action: ActionJoin, GameID: "abc"}},
		{"move 3 L", Command{Action: ActionMove, Row: "3", Side: "L"}},
		{"m 0 right", Command{Action: ActionMove, Row: "0", Side: "right"}},
		{"move 12r", Command{Action: ActionMove, Row: "12", Side: "r"}},
		{"move x L", Command{Action: ActionMove, Row: "x", Side: "L"}},
		{"4 R", Command{Action: ActionMove, Row: "4", Side: "R"}},
		{"4l", Command{Action: ActionMove, Row: "4", Side: "l"}},
		{"new", Command{Action: ActionNew}},
		{"reset", Command{Action: ActionNew}},
		{`name "Ada Lovelace"`, Command{Action: ActionName, Username: "Ada Lovelace"}},
		{"stats", Command{Action: ActionStats}},
		{"stats bob", Command{Action: ActionStats, Username: "bob"}},
		{"help", Command{Action: ActionHelp}},
		{"?", Command{Action: ActionHelp}},
		{"QUIT", Command{Action: ActionQuit}},
		{"q", Command{Action: ActionQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	_, err := ParseCommand("   ")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = ParseCommand("dance")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	for _, line := range []string{
		"create",
		"create pvp hard",
		"create pve easy hard",
		"create ava a b c",
		"join",
		"join a b",
		"move",
		"move 3",
		"move L",
		"move 1 2 3",
		"new now",
		"name",
		"stats a b",
		`name "unterminated`,
	} {
		_, err := ParseCommand(line)
		assert.ErrorIs(t, err, ErrUsage, "line %q", line)
	}
}
