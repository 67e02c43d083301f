// Package server serves the Side-Stacker web client: the go-app page and the
// compiled WASM under /web/. Game traffic goes straight from the browser to
// the game server.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/frontend"
	"github.com/sidestacker/sidestacker/internal/game"
)

const shutdownTimeout = 5 * time.Second

// Options for Run.
type Options struct {
	// Addr to listen on. Empty means an automatic port on localhost.
	Addr string
	// ServerURL and APIURL are handed to the client. Empty values make the
	// client use its page's own host.
	ServerURL string
	APIURL    string
	// WebDir holds app.wasm and the static assets served under /web/.
	WebDir string
}

// ServerState describes a running server.
type ServerState struct {
	Address string
}

// Handler returns the HTTP handler of the web client.
func Handler(opts Options) http.Handler {
	// Register go-app routes so the server knows how to prerender them.
	frontend.InitState()
	app.Route("/", func() app.Composer { return &frontend.Home{} })

	env := app.Environment{}
	if opts.ServerURL != "" {
		env[frontend.EnvServerURL] = opts.ServerURL
	}
	if opts.APIURL != "" {
		env[frontend.EnvAPIURL] = opts.APIURL
	}
	h := &app.Handler{
		Name:        "Side-Stacker",
		ShortName:   "Side-Stacker",
		Description: "Connect four, played from the sides",
		Version:     game.Version,
		Env:         env,
		Styles: []string{
			"https://cdn.jsdelivr.net/npm/@picocss/pico@2/css/pico.min.css",
			"/web/css/main.css",
		},
	}

	webDir := opts.WebDir
	if webDir == "" {
		webDir = "web"
	}
	mux := http.NewServeMux()
	mux.Handle("/web/", http.StripPrefix("/web/", http.FileServer(http.Dir(webDir))))
	mux.Handle("/", h)
	return mux
}

// Run serves the web client until ctx is canceled. Once listening, the
// server state is sent on started, if not nil.
func Run(ctx context.Context, opts Options, started chan<- *ServerState) error {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           Handler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	state := &ServerState{Address: listener.Addr().String()}

	errCh := make(chan error, 1)
	go func() {
		klog.Infof("Server started on %s", state.Address)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Errorf("Server error: %v", err)
			errCh <- err
		}
		close(errCh)
	}()
	if started != nil {
		started <- state
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	klog.Infof("Shutting down server...")
	return srv.Shutdown(shutdownCtx)
}
