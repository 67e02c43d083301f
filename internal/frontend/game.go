package frontend

import (
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/sidestacker/sidestacker/internal/session"
)

// Board renders the game board. Each row has an L and an R button that push
// a piece from that side; they are disabled unless a move is allowed.
type Board struct {
	app.Compo
}

func (b *Board) onMove(row int, side game.Side) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if State.Ctrl == nil {
			return
		}
		if err := State.Ctrl.MakeMove(row, string(side)); err != nil {
			klog.Warningf("Board: move %d%s rejected: %v", row, side, err)
			State.OnNotification(session.Notification{
				Kind:  session.KindServerError,
				Level: session.LevelError,
				Title: err.Error(),
			})
		}
	}
}

func (b *Board) onNewGame(ctx app.Context, e app.Event) {
	State.NewGame()
}

// cellClass is the CSS class of a board cell.
func cellClass(p game.Piece, last *game.LastMove, row, col int) string {
	class := "cell"
	switch p {
	case game.PieceX:
		class += " piece-x"
	case game.PieceO:
		class += " piece-o"
	}
	if last != nil && last.Row == row && last.Col == col {
		class += " last-move"
	}
	return class
}

// statusLine is the text shown above the board.
func statusLine(s session.Snapshot, canMove bool) string {
	t := s.Turn
	switch t.Status {
	case session.StatusWonX, session.StatusWonO:
		line := fmt.Sprintf("Player %s wins", pieceLabel(t.WinnerPiece))
		if t.Reason == game.ReasonOpponentDisconnected {
			line += " by forfeit"
		}
		return line + "!"
	case session.StatusDraw:
		return "It's a draw!"
	case session.StatusTerminated:
		if t.Reason != "" {
			return "Game over: " + t.Reason
		}
		return "Game over."
	}

	holder := "?"
	if p, ok := s.PieceOf(t.CurrentPlayerToken); ok {
		holder = pieceLabel(p)
	}
	switch {
	case s.Session != nil && s.Session.Spectator:
		return fmt.Sprintf("%s to move.", holder)
	case s.MovePending:
		return "Move sent..."
	case canMove:
		return "Your turn: pick a row and a side."
	}
	return fmt.Sprintf("Waiting for %s...", holder)
}

func pieceLabel(p game.Piece) string {
	if p == game.PieceNone {
		return "?"
	}
	return string(p)
}

func (b *Board) sideButton(row int, side game.Side, enabled bool) app.UI {
	return app.Td().Body(
		app.Button().
			Class("side").
			Title(fmt.Sprintf("Row %d from the %s", row, side)).
			Disabled(!enabled).
			OnClick(b.onMove(row, side)).
			Text(string(side)),
	)
}

func (b *Board) Render() app.UI {
	snap := State.Snapshot()
	if snap.Session == nil {
		return app.Text("")
	}
	canMove := State.CanMove()
	d := snap.Session

	you := "You are " + pieceLabel(d.Piece)
	if d.Spectator {
		you = "You are watching"
	}

	var rows []app.UI
	for r, cells := range snap.Board {
		tds := []app.UI{b.sideButton(r, game.SideLeft, canMove)}
		for c, p := range cells {
			tds = append(tds, app.Td().Class(cellClass(p, snap.Turn.LastMove, r, c)).Text(pieceLabel(p)))
		}
		tds = append(tds, b.sideButton(r, game.SideRight, canMove))
		rows = append(rows, app.Tr().Body(tds...))
	}

	var footer app.UI = app.Text("")
	if snap.Turn.Status.Concluded() {
		footer = app.Footer().Body(
			app.Button().Text("New game").OnClick(b.onNewGame),
		)
	}

	return app.Article().Body(
		app.Header().Body(
			app.Strong().Text(fmt.Sprintf("Game %s", d.GameID)),
			app.Small().Text(fmt.Sprintf(" (%s) %s", modeLabel(d), you)),
		),
		app.P().Aria("live", "polite").Text(statusLine(snap, canMove)),
		app.Table().Class("board").Body(app.TBody().Body(rows...)),
		footer,
	)
}

func modeLabel(d *session.Descriptor) string {
	if d.GameMode != "" {
		return d.GameMode
	}
	return string(d.Mode)
}
