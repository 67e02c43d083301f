package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan *ServerState, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Options{Addr: "127.0.0.1:0"}, started)
	}()

	var state *ServerState
	select {
	case state = <-started:
	case err := <-errCh:
		t.Fatalf("Server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Server took too long to start")
	}

	resp, err := http.Get("http://" + state.Address + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Side-Stacker")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err, "clean shutdown")
	case <-time.After(2 * time.Second):
		t.Error("Server took too long to shut down")
	}
}

func TestHandlerServesWebDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "main.css"), []byte(".board{}"), 0o644))

	srv := httptest.NewServer(Handler(Options{WebDir: dir, ServerURL: "ws://game.test/ws"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/web/css/main.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, ".board{}", string(body))
}

func TestRunFailsOnBadAddress(t *testing.T) {
	err := Run(context.Background(), Options{Addr: "not-an-address"}, nil)
	assert.Error(t, err)
}
