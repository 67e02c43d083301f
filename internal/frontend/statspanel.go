package frontend

import (
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// StatsPanel shows the statistics of the current username.
type StatsPanel struct {
	app.Compo
}

func (p *StatsPanel) Render() app.UI {
	st, reason := State.PlayerStats()
	switch {
	case reason != "":
		return app.Details().Body(
			app.Summary().Text("Statistics"),
			app.P().Class("secondary").Text(reason),
		)
	case st == nil:
		return app.Text("")
	}

	row := func(label string, v int) app.UI {
		return app.Tr().Body(app.Th().Scope("row").Text(label), app.Td().Text(fmt.Sprint(v)))
	}
	return app.Details().Body(
		app.Summary().Text(fmt.Sprintf("Statistics for %s", st.Username)),
		app.Table().Body(app.TBody().Body(
			row("Played", st.GamesPlayed),
			row("Won", st.Wins),
			row("Lost", st.Losses),
			row("Drawn", st.Draws),
			row("Abandoned", st.AbandonedByUser),
		)),
	)
}
