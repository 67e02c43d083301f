package frontend

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/session"
)

var copiedNotification = session.Notification{
	Kind:  "copied",
	Level: session.LevelSuccess,
	Title: "Game ID copied to clipboard",
}

// WaitingRoom is shown after creating a game, until an opponent joins.
type WaitingRoom struct {
	app.Compo
}

func (w *WaitingRoom) onCopyID(ctx app.Context, e app.Event) {
	snap := State.Snapshot()
	if snap.Session == nil {
		return
	}
	clipboard := app.Window().Get("navigator").Get("clipboard")
	if !clipboard.Truthy() {
		klog.Warningf("WaitingRoom: clipboard not available")
		return
	}
	clipboard.Call("writeText", snap.Session.GameID)
	State.OnNotification(copiedNotification)
}

func (w *WaitingRoom) onLeave(ctx app.Context, e app.Event) {
	State.NewGame()
}

func (w *WaitingRoom) Render() app.UI {
	snap := State.Snapshot()
	if snap.Session == nil {
		return app.Text("")
	}
	return app.Article().Body(
		app.Header().Body(app.H3().Text("Waiting for opponent...")),
		app.P().Text("Share this Game ID with the other player:"),
		app.Fieldset().Role("group").Body(
			app.Input().
				Type("text").
				ReadOnly(true).
				Value(snap.Session.GameID),
			app.Button().
				Class("secondary").
				Text("Copy").
				OnClick(w.onCopyID),
		),
		app.Div().Aria("busy", "true"),
		app.Footer().Body(
			app.Button().
				Class("outline contrast").
				Text("Leave").
				OnClick(w.onLeave),
		),
	)
}
