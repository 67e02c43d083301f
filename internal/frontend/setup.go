package frontend

import (
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/sidestacker/sidestacker/internal/session"
)

// SetupForm is the content of the game setup form.
type SetupForm struct {
	Username   string
	Mode       string
	Difficulty string
	AI1, AI2   string
	GameID     string
	Error      string
}

func defaultForm() SetupForm {
	d := string(game.DifficultyEasy)
	return SetupForm{Mode: string(game.ModeHumanVsAI), Difficulty: d, AI1: d, AI2: d}
}

// createOptions returns the options for a CREATE_GAME from the form.
func (f *SetupForm) createOptions() session.CreateOptions {
	return session.CreateOptions{
		Difficulty:    f.Difficulty,
		AI1Difficulty: f.AI1,
		AI2Difficulty: f.AI2,
		Username:      f.Username,
	}
}

// gameController is the part of session.Controller used by the form.
type gameController interface {
	SetUsername(name string)
	CreateGame(mode string, opts session.CreateOptions) error
	JoinGame(gameID string) error
}

// create sends a create request. Errors are kept in the form.
func (f *SetupForm) create(ctrl gameController) {
	f.Error = ""
	ctrl.SetUsername(f.Username)
	if err := ctrl.CreateGame(f.Mode, f.createOptions()); err != nil {
		f.Error = err.Error()
	}
}

// join sends a join request. Errors are kept in the form.
func (f *SetupForm) join(ctrl gameController) {
	f.Error = ""
	ctrl.SetUsername(f.Username)
	if err := ctrl.JoinGame(f.GameID); err != nil {
		f.Error = err.Error()
	}
}

// Setup is the form to create or join a game.
type Setup struct {
	app.Compo
}

func (s *Setup) onUsername(ctx app.Context, e app.Event) {
	State.Form.Username = strings.TrimSpace(ctx.JSSrc().Get("value").String())
	storageSet(usernameKey, State.Form.Username)
}

func (s *Setup) onMode(ctx app.Context, e app.Event) {
	State.Form.Mode = ctx.JSSrc().Get("value").String()
	State.Form.Error = ""
}

func (s *Setup) onCreate(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if State.Ctrl == nil {
		return
	}
	klog.Infof("Setup: creating a %s game", State.Form.Mode)
	State.Form.create(State.Ctrl)
}

func (s *Setup) onJoin(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if State.Ctrl == nil {
		return
	}
	klog.Infof("Setup: joining game %q", State.Form.GameID)
	State.Form.join(State.Ctrl)
}

func difficultySelect(label, value string, set func(string)) app.UI {
	var options []app.UI
	for _, d := range []game.Difficulty{game.DifficultyEasy, game.DifficultyMedium, game.DifficultyHard} {
		options = append(options, app.Option().
			Value(string(d)).
			Selected(string(d) == value).
			Text(strings.ToLower(string(d))))
	}
	return app.Label().Body(
		app.Text(label),
		app.Select().
			OnChange(func(ctx app.Context, e app.Event) {
				set(ctx.JSSrc().Get("value").String())
			}).
			Body(options...),
	)
}

func (s *Setup) Render() app.UI {
	f := &State.Form

	modes := []struct {
		mode  game.Mode
		label string
	}{
		{game.ModeHeadToHead, "Player vs Player"},
		{game.ModeHumanVsAI, "Player vs AI"},
		{game.ModeAIVsAI, "AI vs AI (watch)"},
	}
	var modeOptions []app.UI
	for _, m := range modes {
		modeOptions = append(modeOptions, app.Option().
			Value(string(m.mode)).
			Selected(string(m.mode) == f.Mode).
			Text(m.label))
	}

	var difficulty app.UI = app.Text("")
	switch game.Mode(f.Mode) {
	case game.ModeHumanVsAI:
		difficulty = difficultySelect("AI difficulty", f.Difficulty, func(v string) { f.Difficulty = v })
	case game.ModeAIVsAI:
		difficulty = app.Div().Class("grid").Body(
			difficultySelect("First AI", f.AI1, func(v string) { f.AI1 = v }),
			difficultySelect("Second AI", f.AI2, func(v string) { f.AI2 = v }),
		)
	}

	var errorUI app.UI = app.Text("")
	if f.Error != "" {
		errorUI = app.P().Class("error").Style("color", "red").Text(f.Error)
	}

	return app.Article().Body(
		app.Header().Body(app.H2().Text("New game")),
		errorUI,
		app.Label().Body(
			app.Text("Username"),
			app.Input().
				Type("text").
				Name("username").
				Placeholder("Optional, used for statistics").
				Value(f.Username).
				AutoComplete(false).
				OnChange(s.onUsername),
		),
		app.Form().OnSubmit(s.onCreate).Body(
			app.Label().Body(
				app.Text("Mode"),
				app.Select().OnChange(s.onMode).Body(modeOptions...),
			),
			difficulty,
			app.Button().Type("submit").Text("Create game"),
		),
		app.Hr(),
		app.Form().OnSubmit(s.onJoin).Body(
			app.Fieldset().Role("group").Body(
				app.Input().
					Type("text").
					Name("game_id").
					Placeholder("Game ID shared with you").
					Value(f.GameID).
					AutoComplete(false).
					OnInput(func(ctx app.Context, e app.Event) {
						f.GameID = ctx.JSSrc().Get("value").String()
					}),
				app.Button().Type("submit").Class("secondary").Text("Join"),
			),
		),
	)
}
