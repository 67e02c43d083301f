package frontend

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sidestacker/sidestacker/internal/conn"
)

// TopBar shows the connection status and the player's username.
type TopBar struct {
	app.Compo
}

var connectionBadge = map[conn.State]string{
	conn.Closed:     "🔴 offline",
	conn.Connecting: "🟡 connecting",
	conn.Open:       "🟢 online",
}

func (t *TopBar) onNewGame(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.NewGame()
}

func (t *TopBar) Render() app.UI {
	snap := State.Snapshot()
	name := snap.Username
	if name == "" {
		name = "anonymous"
	}

	actions := []app.UI{
		app.Li().Body(
			app.Small().
				Aria("label", "connection status").
				Text(connectionBadge[State.Health().State]),
		),
		app.Li().Body(app.Span().Text(name)),
	}
	if snap.Session != nil {
		actions = append(actions, app.Li().Body(
			app.A().Href("#").OnClick(t.onNewGame).Text("New game"),
		))
	}

	return app.Nav().Body(
		app.Ul().Body(
			app.Li().Body(app.Strong().Text("Side-Stacker")),
		),
		app.Ul().Body(actions...),
	)
}
