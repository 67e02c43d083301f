// Package frontend is the browser front end of Side-Stacker, built with
// go-app and compiled to WASM. Components render the session.Controller
// state held in State and forward user intents to it.
package frontend

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/conn"
	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/sidestacker/sidestacker/internal/identity"
	"github.com/sidestacker/sidestacker/internal/session"
	"github.com/sidestacker/sidestacker/internal/stats"
)

// Environment variables set by the server in the app.Handler.
const (
	EnvServerURL = "SIDESTACKER_SERVER_URL"
	EnvAPIURL    = "SIDESTACKER_API_URL"
)

const (
	clientIDKey = "sidestacker_client_id"
	usernameKey = "sidestacker_username"

	// Default paths, relative to the page's host.
	wsPath  = "/api/v1/ws-game/ws"
	apiPath = "/api/v1"

	toastTimeout  = 5 * time.Second
	statsTimeout  = 5 * time.Second
	reconnectWait = 30 * time.Second
)

// GlobalClientState bridges the session.Controller and the components.
type GlobalClientState struct {
	Ctrl   *session.Controller
	Conn   *conn.Manager
	Stats  *stats.Client
	Toasts ToastList

	mu          sync.Mutex
	snap        session.Snapshot
	health      session.Health
	playerStats *stats.Stats
	statsErr    string

	// Form state, kept across re-renders.
	Form SetupForm

	// Listeners for state updates, keyed by component.
	Listeners map[string]func()
}

var State *GlobalClientState

var _ session.Observer = (*GlobalClientState)(nil)

// InitState creates State and, in the browser, connects to the game server.
func InitState() {
	State = &GlobalClientState{
		Listeners: make(map[string]func()),
		Form:      defaultForm(),
	}
	if app.IsServer {
		return
	}

	wsURL, apiURL := endpoints(app.Getenv, app.Window().URL())
	clientID := loadClientID()
	username := storageGet(usernameKey)
	klog.Infof("InitState: client %s, server %s", clientID, wsURL)

	s := State
	s.Conn = conn.NewManager(wsURL, clientID, conn.Options{})
	s.Ctrl = session.New(s.Conn, clientID, session.Options{
		BoardSize: game.DefaultBoardSize,
		Username:  username,
	})
	s.Stats = stats.NewClient(apiURL)
	s.Form.Username = username
	s.Ctrl.Subscribe(s)
	s.Reconnect()
}

// Reconnect dials the game server, retrying for a while before giving up.
func (s *GlobalClientState) Reconnect() {
	if s.Conn == nil {
		return
	}
	go func() {
		err := s.Conn.ConnectWithRetry(context.Background(), conn.DefaultBackOff(reconnectWait), s.Ctrl.Listener())
		if err != nil {
			klog.Errorf("Reconnect: giving up: %v", err)
		}
	}()
}

// endpoints returns the WebSocket and REST base URLs: from the environment
// if set, otherwise on the page's own host.
func endpoints(getenv func(string) string, page *url.URL) (wsURL, apiURL string) {
	wsURL, apiURL = getenv(EnvServerURL), getenv(EnvAPIURL)
	if page == nil {
		return wsURL, apiURL
	}
	if wsURL == "" {
		scheme := "ws"
		if page.Scheme == "https" {
			scheme = "wss"
		}
		wsURL = (&url.URL{Scheme: scheme, Host: page.Host, Path: wsPath}).String()
	}
	if apiURL == "" {
		apiURL = (&url.URL{Scheme: page.Scheme, Host: page.Host, Path: apiPath}).String()
	}
	return wsURL, apiURL
}

// loadClientID returns the identity kept in local storage, creating one on
// first use. Each browser gets a stable identity across reloads.
func loadClientID() string {
	return storedClientID(storageGet(clientIDKey), func(id string) { storageSet(clientIDKey, id) })
}

// storedClientID returns stored if it is a valid identity, otherwise a new one
// passed to save.
func storedClientID(stored string, save func(id string)) string {
	if identity.Valid(stored) {
		return stored
	}
	id := identity.New()
	save(id)
	return id
}

func storageGet(key string) string {
	storage := app.Window().Get("localStorage")
	if !storage.Truthy() {
		return ""
	}
	v := storage.Call("getItem", key)
	if !v.Truthy() {
		return ""
	}
	return v.String()
}

func storageSet(key, value string) {
	storage := app.Window().Get("localStorage")
	if !storage.Truthy() {
		return
	}
	storage.Call("setItem", key, value)
}

// Snapshot returns the last session state received.
func (s *GlobalClientState) Snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Health returns the last connection health received.
func (s *GlobalClientState) Health() session.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health
}

// View returns the view to show.
func (s *GlobalClientState) View() session.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.ViewFor(s.health, s.snap)
}

// CanMove reports whether the board accepts a move.
func (s *GlobalClientState) CanMove() bool {
	return s.Ctrl != nil && s.Ctrl.CanMove()
}

// PlayerStats returns the statistics of the current username, if loaded,
// or a short reason why they are not.
func (s *GlobalClientState) PlayerStats() (*stats.Stats, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerStats, s.statsErr
}

func (s *GlobalClientState) OnSnapshot(snap session.Snapshot) {
	s.mu.Lock()
	prev := s.snap
	s.snap = snap
	s.mu.Unlock()

	if session.ViewFor(s.Health(), snap) != session.ViewWaiting {
		s.Toasts.ClearSticky()
	}
	if session.StatsStale(prev, snap) {
		go s.fetchStats(snap.Username)
	}
	s.Notify()
}

func (s *GlobalClientState) OnNotification(n session.Notification) {
	id := s.Toasts.Push(n)
	if !n.Sticky {
		time.AfterFunc(toastTimeout, func() {
			if s.Toasts.Remove(id) {
				s.Notify()
			}
		})
	}
	s.Notify()
}

func (s *GlobalClientState) OnHealth(h session.Health) {
	s.mu.Lock()
	s.health = h
	s.mu.Unlock()
	s.Notify()
}

func (s *GlobalClientState) fetchStats(username string) {
	if s.Stats == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	st, err := s.Stats.Fetch(ctx, username)
	s.mu.Lock()
	switch {
	case errors.Is(err, stats.ErrInvalidUsername):
		s.playerStats, s.statsErr = nil, ""
	case err != nil:
		klog.Warningf("fetchStats: %v", err)
		s.playerStats, s.statsErr = nil, "Statistics unavailable."
	default:
		s.playerStats, s.statsErr = &st, ""
	}
	s.mu.Unlock()
	s.Notify()
}

// SetUsername changes the username used for new games and remembers it.
func (s *GlobalClientState) SetUsername(name string) {
	storageSet(usernameKey, name)
	if s.Ctrl != nil {
		s.Ctrl.SetUsername(name)
	}
}

// NewGame leaves the current session.
func (s *GlobalClientState) NewGame() {
	if s.Ctrl != nil {
		s.Ctrl.Reset()
	}
}

// Notify calls all registered listeners.
func (s *GlobalClientState) Notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.Listeners))
	for _, l := range s.Listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}

// Listen registers fn under name, replacing any previous one.
func (s *GlobalClientState) Listen(name string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Listeners[name] = fn
}

// Unlisten removes the listener registered under name.
func (s *GlobalClientState) Unlisten(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Listeners, name)
}
