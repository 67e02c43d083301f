// Package tui is a terminal front end for Side-Stacker built on tview.
package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/sidestacker/sidestacker/internal/game"
)

const (
	boardLeft = 4 // Columns used by the row labels.
	boardTop  = 1 // Lines used by the column labels.
)

var (
	emptyRune  = '·'
	pieceRune  = map[game.Piece]rune{game.PieceX: 'X', game.PieceO: 'O'}
	pieceColor = map[game.Piece]tcell.Color{
		game.PieceX: tcell.ColorOrangeRed,
		game.PieceO: tcell.ColorDodgerBlue,
	}
	lastMoveBG = tcell.ColorDarkSlateGray
	labelColor = tcell.ColorGray
)

// BoardView draws a Side-Stacker board. Rows are numbered on the left and
// marked L and R on the sides pieces are pushed from.
type BoardView struct {
	Box   *tview.Box
	board game.Board
	last  *game.LastMove
}

// NewBoardView returns an empty board view.
func NewBoardView() *BoardView {
	b := &BoardView{Box: tview.NewBox()}
	b.Box.SetDrawFunc(b.draw)
	return b
}

// SetState replaces the board and the last move shown. The view keeps its
// own copy.
func (b *BoardView) SetState(board game.Board, last *game.LastMove) {
	b.board = board.Clone()
	b.last = nil
	if last != nil {
		lm := *last
		b.last = &lm
	}
}

func (b *BoardView) isLastMove(row, col int) bool {
	return b.last != nil && b.last.Row == row && b.last.Col == col
}

func (b *BoardView) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	size := b.board.Size()
	if size == 0 {
		return x, y, width, height
	}
	label := tcell.StyleDefault.Foreground(labelColor)

	// Column labels, 2 characters per cell.
	for col := 0; col < size; col++ {
		screen.SetContent(x+boardLeft+col*2, y, rune('0'+col%10), nil, label)
	}
	for row := 0; row < size; row++ {
		ry := y + boardTop + row
		if row >= 10 {
			screen.SetContent(x, ry, rune('0'+row/10), nil, label)
		}
		screen.SetContent(x+1, ry, rune('0'+row%10), nil, label)
		screen.SetContent(x+2, ry, 'L', nil, label)
		for col, p := range b.board[row] {
			style := tcell.StyleDefault
			r := emptyRune
			if pr, ok := pieceRune[p]; ok {
				r = pr
				style = style.Foreground(pieceColor[p]).Bold(true)
			} else {
				style = style.Foreground(labelColor)
			}
			if b.isLastMove(row, col) {
				style = style.Background(lastMoveBG)
			}
			screen.SetContent(x+boardLeft+col*2, ry, r, nil, style)
		}
		screen.SetContent(x+boardLeft+size*2, ry, 'R', nil, label)
	}
	return x, y, boardLeft + size*2 + 1, boardTop + size
}
