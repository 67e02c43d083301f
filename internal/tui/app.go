package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/sidestacker/sidestacker/internal/session"
	"github.com/sidestacker/sidestacker/internal/stats"
)

const statsTimeout = 5 * time.Second

// App is the terminal front end. It renders the controller's state and turns
// command lines into controller calls; it never changes game state itself.
type App struct {
	ctrl  *session.Controller
	stats *stats.Client // May be nil.

	app        *tview.Application
	pages      *tview.Pages
	board      *BoardView
	info       *tview.TextView
	log        *tview.TextView
	input      *tview.InputField
	connecting *tview.TextView
	errorView  *tview.TextView

	mu        sync.Mutex
	reconnect func()
	ctx       context.Context
	snap      session.Snapshot
	health    session.Health
	notes     []session.Notification
	statsLine string
}

var _ session.Observer = (*App)(nil)

// New builds the UI for ctrl. statsClient may be nil.
func New(ctrl *session.Controller, statsClient *stats.Client) *App {
	a := &App{
		ctrl:  ctrl,
		stats: statsClient,
		app:   tview.NewApplication(),
		ctx:   context.Background(),
	}

	a.board = NewBoardView()

	a.info = tview.NewTextView()
	a.info.SetDynamicColors(true)
	a.info.SetBorder(true)
	a.info.SetBorderPadding(0, 0, 1, 1)
	a.info.SetTitle(" Game ")
	a.info.SetTitleAlign(tview.AlignLeft)

	a.log = tview.NewTextView()
	a.log.SetDynamicColors(true)
	a.log.SetScrollable(true)
	a.log.SetBorder(true)
	a.log.SetTitle(" Messages ")
	a.log.SetTitleAlign(tview.AlignLeft)
	a.log.SetChangedFunc(func() { a.log.ScrollToEnd() })

	a.input = tview.NewInputField()
	a.input.SetLabel("> ")
	a.input.SetFieldBackgroundColor(tcell.ColorDefault)
	a.input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			line := a.input.GetText()
			a.input.SetText("")
			a.Execute(line)
		case tcell.KeyEsc:
			a.input.SetText("")
		}
	})

	top := tview.NewFlex().
		AddItem(a.board.Box, 0, 1, false).
		AddItem(a.info, 0, 1, false)
	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 3, false).
		AddItem(a.log, 0, 2, false).
		AddItem(a.input, 1, 0, true)

	a.connecting = modalText("Connecting to the game server...")
	a.errorView = modalText("")
	quit := func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			a.app.Stop()
			return nil
		}
		return event
	}
	a.connecting.SetInputCapture(quit)
	a.errorView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && event.Rune() == 'r' {
			a.Reconnect()
			return nil
		}
		return quit(event)
	})

	a.pages = tview.NewPages()
	a.pages.SetBorder(true).SetTitle(" Side-Stacker ")
	a.pages.AddPage("main", main, true, false)
	a.pages.AddPage(session.ViewConnecting.String(), a.connecting, true, true)
	a.pages.AddPage(session.ViewUnreachable.String(), a.errorView, true, false)

	a.logf("[white::b]Side-Stacker[-:-:-] type [yellow]help[-] for commands")
	return a
}

func modalText(text string) *tview.TextView {
	t := tview.NewTextView()
	t.SetDynamicColors(true)
	t.SetTextAlign(tview.AlignCenter)
	t.SetText("\n\n" + text)
	return t
}

// Run shows the UI until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	unsubscribe := a.ctrl.Subscribe(a)
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.app.Stop()
		case <-done:
		}
	}()
	return a.app.SetRoot(a.pages, true).Run()
}

// SetReconnect sets the function run when the user asks to reconnect from
// the unreachable page. It must not block.
func (a *App) SetReconnect(f func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reconnect = f
}

// Reconnect runs the reconnect function, if any. The session is kept.
func (a *App) Reconnect() {
	a.mu.Lock()
	f := a.reconnect
	a.mu.Unlock()
	if f == nil {
		return
	}
	klog.Infof("tui: reconnecting")
	f()
}

// Stop stops the UI.
func (a *App) Stop() {
	a.app.Stop()
}

// Observer implementation. Callbacks only record the change and schedule a
// redraw; render runs on the UI goroutine.

func (a *App) OnSnapshot(s session.Snapshot) {
	a.mu.Lock()
	prev := a.snap
	a.snap = s
	a.mu.Unlock()

	if session.StatsStale(prev, s) {
		go a.fetchStats(s.Username)
	}
	a.redraw()
}

func (a *App) OnNotification(n session.Notification) {
	a.mu.Lock()
	a.notes = append(a.notes, n)
	a.mu.Unlock()
	a.redraw()
}

func (a *App) OnHealth(h session.Health) {
	a.mu.Lock()
	a.health = h
	a.mu.Unlock()
	a.redraw()
}

func (a *App) redraw() {
	// QueueUpdateDraw blocks until the UI goroutine picks it up, and callbacks
	// may come from the UI goroutine itself.
	go a.app.QueueUpdateDraw(a.render)
}

func (a *App) render() {
	a.mu.Lock()
	snap, health, notes, statsLine := a.snap, a.health, a.notes, a.statsLine
	canReconnect := a.reconnect != nil
	a.notes = nil
	a.mu.Unlock()

	for _, n := range notes {
		a.logNotification(n)
	}

	view := session.ViewFor(health, snap)
	switch view {
	case session.ViewConnecting:
		a.pages.SwitchToPage(view.String())
	case session.ViewUnreachable:
		msg := "[red::b]Cannot reach the game server[-:-:-]"
		if health.Err != nil {
			msg += "\n\n" + tview.Escape(health.Err.Error())
		}
		keys := "q to quit"
		if canReconnect {
			keys = "r to reconnect, " + keys
		}
		a.errorView.SetText("\n\n" + msg + "\n\n[gray]" + keys + "[-]")
		a.pages.SwitchToPage(view.String())
	default:
		if name, _ := a.pages.GetFrontPage(); name != "main" {
			a.pages.SwitchToPage("main")
			a.app.SetFocus(a.input)
		}
	}

	a.board.SetState(snap.Board, snap.Turn.LastMove)
	a.info.SetText(infoText(snap, health, a.ctrl.CanMove(), statsLine))
}

// Execute runs one command line.
func (a *App) Execute(line string) {
	cmd, err := ParseCommand(line)
	if errors.Is(err, ErrEmptyCommand) {
		return
	}
	if err != nil {
		a.logf("[red]%s[-]", tview.Escape(err.Error()))
		return
	}

	switch cmd.Action {
	case ActionCreate:
		err = a.ctrl.CreateGame(cmd.Mode, session.CreateOptions{
			Difficulty:    cmd.Difficulty,
			AI1Difficulty: cmd.AI1,
			AI2Difficulty: cmd.AI2,
		})
	case ActionJoin:
		err = a.ctrl.JoinGame(cmd.GameID)
	case ActionMove:
		err = a.ctrl.MakeMoveText(cmd.Row, cmd.Side)
	case ActionNew:
		a.ctrl.Reset()
	case ActionName:
		a.ctrl.SetUsername(cmd.Username)
	case ActionStats:
		user := cmd.Username
		if user == "" {
			user = a.ctrl.Snapshot().Username
		}
		go a.fetchStats(user)
	case ActionHelp:
		a.logf("%s", tview.Escape(helpText))
	case ActionQuit:
		a.app.Stop()
	}
	if err != nil {
		a.logf("[red]%s[-]", tview.Escape(err.Error()))
	}
}

func (a *App) fetchStats(username string) {
	if a.stats == nil {
		return
	}
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	line := ""
	s, err := a.stats.Fetch(ctx, username)
	switch {
	case errors.Is(err, stats.ErrInvalidUsername):
	case err != nil:
		klog.Warningf("tui: %v", err)
		line = "[gray]stats unavailable[-]"
	default:
		line = fmt.Sprintf("%s: %d played, [green]%d won[-], [red]%d lost[-], [yellow]%d drawn[-], %d abandoned",
			tview.Escape(s.Username), s.GamesPlayed, s.Wins, s.Losses, s.Draws, s.AbandonedByUser)
	}

	a.mu.Lock()
	a.statsLine = line
	a.mu.Unlock()
	a.redraw()
}

func (a *App) logf(format string, args ...any) {
	fmt.Fprintf(a.log, format+"\n", args...)
}

var levelColor = map[session.Level]string{
	session.LevelInfo:    "white",
	session.LevelSuccess: "green",
	session.LevelWarning: "yellow",
	session.LevelError:   "red",
}

func (a *App) logNotification(n session.Notification) {
	text := fmt.Sprintf("[%s::b]%s[-:-:-]", levelColor[n.Level], tview.Escape(n.Title))
	if n.Description != "" {
		text += " " + tview.Escape(n.Description)
	}
	a.logf("%s", text)
}

// infoText is the content of the game panel.
func infoText(s session.Snapshot, h session.Health, canMove bool, statsLine string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[white::b]Connection:[-:-:-] %s\n", h.State)
	name := s.Username
	if name == "" {
		name = "[gray](anonymous, use name USERNAME)[-]"
	} else {
		name = tview.Escape(name)
	}
	fmt.Fprintf(&b, "[white::b]Player:[-:-:-] %s\n", name)
	if statsLine != "" {
		fmt.Fprintf(&b, "[white::b]Stats:[-:-:-] %s\n", statsLine)
	}
	b.WriteString("[dimgray]──────────────────────[-:-:-]\n")

	switch session.ViewFor(h, s) {
	case session.ViewSetup:
		b.WriteString("No game.\n\n")
		b.WriteString(tview.Escape("  create pvp | create pve [difficulty]\n  create ava [ai1] [ai2] | join GAME_ID\n"))
		return b.String()
	case session.ViewWaiting:
		fmt.Fprintf(&b, "[yellow]Waiting for opponent...[-]\nShare Game ID: [::b]%s[::-]\n", s.Session.GameID)
		return b.String()
	case session.ViewConnecting, session.ViewUnreachable:
		return b.String()
	}

	d := s.Session
	fmt.Fprintf(&b, "[white::b]Game:[-:-:-] %s (%s)\n", d.GameID, modeName(d))
	if d.Spectator {
		b.WriteString("[white::b]You:[-:-:-] spectating\n")
	} else {
		fmt.Fprintf(&b, "[white::b]You:[-:-:-] %s\n", pieceOrUnknown(d.Piece))
	}
	if lm := s.Turn.LastMove; lm != nil {
		fmt.Fprintf(&b, "[white::b]Last move:[-:-:-] %s row %d from %s\n", pieceOrUnknown(lm.PlayerPiece), lm.Row, lm.SidePlayed)
	}
	b.WriteString("\n")
	b.WriteString(turnLine(s, canMove))
	b.WriteString("\n")
	return b.String()
}

func turnLine(s session.Snapshot, canMove bool) string {
	t := s.Turn
	switch t.Status {
	case session.StatusWonX, session.StatusWonO:
		winner := pieceOrUnknown(t.WinnerPiece)
		line := fmt.Sprintf("[green::b]Player %s wins[-:-:-]", winner)
		if t.Reason == game.ReasonOpponentDisconnected {
			line += " by forfeit"
		}
		return line + "\n[gray]new to play again[-]"
	case session.StatusDraw:
		return "[yellow::b]Draw[-:-:-]\n[gray]new to play again[-]"
	case session.StatusTerminated:
		return fmt.Sprintf("[yellow::b]Game over[-:-:-] %s\n[gray]new to play again[-]", tview.Escape(t.Reason))
	}

	holder := "?"
	if p, ok := s.PieceOf(t.CurrentPlayerToken); ok {
		holder = pieceOrUnknown(p)
	}
	switch {
	case s.Session.Spectator:
		return fmt.Sprintf("%s to move", holder)
	case s.MovePending:
		return "[gray]Move sent, waiting for the server...[-]"
	case canMove:
		return "[green::b]Your move[-:-:-]  move ROW L|R"
	case s.IsMyTurn():
		return "Your move (not connected)"
	}
	return fmt.Sprintf("Waiting for %s...", holder)
}

func modeName(d *session.Descriptor) string {
	if d.GameMode != "" {
		return d.GameMode
	}
	return string(d.Mode)
}

func pieceOrUnknown(p game.Piece) string {
	if p == game.PieceNone {
		return "?"
	}
	return string(p)
}
