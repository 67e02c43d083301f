package frontend

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/session"
)

// Home is the only page: it shows the view matching the session state.
type Home struct {
	app.Compo
}

func (h *Home) OnMount(ctx app.Context) {
	klog.V(1).Infof("Home: OnMount called")
	State.Listen("home", func() {
		ctx.Dispatch(func(ctx app.Context) {})
	})
}

func (h *Home) OnDismount() {
	State.Unlisten("home")
}

func (h *Home) OnAppUpdate(ctx app.Context) {
	// A reload drops the session, so only reload when not in a game.
	if State.View() == session.ViewGame && State.Snapshot().Active() {
		klog.Infof("Home component: App update available, not reloading not to interrupt the game...")
		return
	}
	klog.Infof("Home component: App update available, reloading...")
	ctx.Reload()
}

func (h *Home) onRetry(ctx app.Context, e app.Event) {
	e.PreventDefault()
	klog.Infof("Home: retrying connection")
	State.Reconnect()
}

func (h *Home) Render() app.UI {
	var content app.UI
	switch view := State.View(); view {
	case session.ViewConnecting:
		content = app.Article().Aria("busy", "true").Text("Connecting to the game server...")
	case session.ViewUnreachable:
		msg := "The connection was lost."
		if err := State.Health().Err; err != nil {
			msg = err.Error()
		}
		content = app.Article().Body(
			app.H2().Text("Cannot reach the game server"),
			app.P().Style("color", "red").Text(msg),
			app.Button().Text("Try again").OnClick(h.onRetry),
		)
	case session.ViewSetup:
		content = &Setup{}
	case session.ViewWaiting:
		content = &WaitingRoom{}
	default:
		content = &Board{}
	}

	return app.Main().Class("container").Body(
		&TopBar{},
		&Toasts{},
		content,
		&StatsPanel{},
	)
}
