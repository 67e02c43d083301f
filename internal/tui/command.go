package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/shlex"
)

// Action of a parsed command line.
type Action int

const (
	ActionCreate Action = iota + 1
	ActionJoin
	ActionMove
	ActionNew
	ActionName
	ActionStats
	ActionHelp
	ActionQuit
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Command is a user intent typed on the command line. Values are passed on
// as typed; the session layer validates them.
type Command struct {
	Action     Action
	Mode       string
	Difficulty string // create pve
	AI1, AI2   string // create ava
	GameID     string
	Row, Side  string
	Username   string
}

const helpText = `create pvp                 start a game against another player
create pve [easy|medium|hard]  play against the server AI
create ava [ai1] [ai2]     watch two AIs play
join GAME_ID               join a game shared with you
move ROW L|R  (or 3L)      push a piece into ROW from the left or right
new                        leave the current game
name USERNAME              set your username
stats [USERNAME]           show game statistics
quit                       exit`

// ParseCommand parses one command line. Arguments may be quoted.
func ParseCommand(line string) (Command, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(args) == 0 {
		return Command{}, ErrEmptyCommand
	}
	name, args := strings.ToLower(args[0]), args[1:]

	switch name {
	case "create", "c":
		return parseCreate(args)
	case "join", "j":
		if len(args) != 1 {
			return Command{}, usage("join GAME_ID")
		}
		return Command{Action: ActionJoin, GameID: args[0]}, nil
	case "move", "m":
		return parseMove(args)
	case "new", "reset":
		if len(args) != 0 {
			return Command{}, usage("new")
		}
		return Command{Action: ActionNew}, nil
	case "name":
		if len(args) != 1 {
			return Command{}, usage("name USERNAME")
		}
		return Command{Action: ActionName, Username: args[0]}, nil
	case "stats":
		if len(args) > 1 {
			return Command{}, usage("stats [USERNAME]")
		}
		cmd := Command{Action: ActionStats}
		if len(args) == 1 {
			cmd.Username = args[0]
		}
		return cmd, nil
	case "help", "h", "?":
		return Command{Action: ActionHelp}, nil
	case "quit", "q", "exit":
		return Command{Action: ActionQuit}, nil
	}

	// A bare "3 L" or "3L" is a move.
	if startsWithDigit(name) {
		return parseMove(append([]string{name}, args...))
	}
	return Command{}, fmt.Errorf("%w %q, type help", ErrUnknownCommand, name)
}

func parseCreate(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, usage("create pvp|pve|ava ...")
	}
	cmd := Command{Action: ActionCreate, Mode: strings.ToUpper(args[0])}
	rest := args[1:]
	switch cmd.Mode {
	case "PVE":
		if len(rest) > 1 {
			return Command{}, usage("create pve [easy|medium|hard]")
		}
		if len(rest) == 1 {
			cmd.Difficulty = rest[0]
		}
	case "AVA":
		if len(rest) > 2 {
			return Command{}, usage("create ava [ai1] [ai2]")
		}
		if len(rest) > 0 {
			cmd.AI1 = rest[0]
		}
		if len(rest) > 1 {
			cmd.AI2 = rest[1]
		}
	default:
		if len(rest) != 0 {
			return Command{}, usage("create " + strings.ToLower(cmd.Mode))
		}
	}
	return cmd, nil
}

func parseMove(args []string) (Command, error) {
	switch len(args) {
	case 1:
		// Compact form, e.g. "3L".
		s := args[0]
		i := strings.LastIndexFunc(s, unicode.IsDigit)
		if i < 0 || i == len(s)-1 {
			return Command{}, usage("move ROW L|R")
		}
		return Command{Action: ActionMove, Row: s[:i+1], Side: s[i+1:]}, nil
	case 2:
		return Command{Action: ActionMove, Row: args[0], Side: args[1]}, nil
	}
	return Command{}, usage("move ROW L|R")
}

func usage(s string) error {
	return fmt.Errorf("%w: %s", ErrUsage, s)
}

func startsWithDigit(s string) bool {
	return s != "" && unicode.IsDigit(rune(s[0]))
}
