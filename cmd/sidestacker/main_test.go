package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidestacker/sidestacker/internal/game"
	"github.com/sidestacker/sidestacker/internal/identity"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(nil)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "config.yaml")))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sidestacker "+game.Version+"\n", out)
}

func TestIDCmd(t *testing.T) {
	out, err := execute(t, "id")
	require.NoError(t, err)
	assert.True(t, identity.Valid(out[:len(out)-1]), "got %q", out)
}

func TestStatsCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/bob/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"username":"bob","games_played":4,"wins":2,"losses":1,"draws":1}`))
	}))
	defer srv.Close()

	out, err := execute(t, "stats", "bob", "--api-url", srv.URL+"/api/v1")
	require.NoError(t, err)
	assert.Contains(t, out, "Player     bob")
	assert.Contains(t, out, "Played     4")
	assert.Contains(t, out, "Abandoned  0")
}

func TestStatsCmdNeedsUsername(t *testing.T) {
	_, err := execute(t, "stats")
	assert.Error(t, err)
}

func TestPlayIntent(t *testing.T) {
	intent, err := (&playOptions{}).intent()
	require.NoError(t, err)
	assert.Nil(t, intent)

	intent, err = (&playOptions{create: "pve", difficulty: "hard"}).intent()
	require.NoError(t, err)
	assert.NotNil(t, intent)

	_, err = (&playOptions{create: "pvp", join: "g1"}).intent()
	assert.ErrorIs(t, err, errCreateAndJoin)
}
