package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, got, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server_url: ws://localhost:8000/api/v1/ws-game/ws")
	assert.Contains(t, string(data), "move_timeout: 10s")

	// The written file loads back to the same values.
	again, _, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_url: wss://game.example.com/ws
board_size: 8
username: from-file
move_timeout: 5s
reconnect: false
`), 0o600))

	t.Setenv("SIDESTACKER_BOARD_SIZE", "9")
	t.Setenv("SIDESTACKER_USERNAME", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("username", "", "")
	flags.String("api-url", "", "")
	require.NoError(t, flags.Parse([]string{"--username", "  from-flag "}))

	cfg, _, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "wss://game.example.com/ws", cfg.ServerURL, "file")
	assert.Equal(t, 9, cfg.BoardSize, "env beats file")
	assert.Equal(t, "from-flag", cfg.Username, "flag beats env")
	assert.Equal(t, Default().APIURL, cfg.APIURL, "unchanged flags do not override")
	assert.Equal(t, 5*time.Second, cfg.MoveTimeout)
	assert.False(t, cfg.Reconnect)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board_size: 2\n"), 0o600))

	_, _, err := Load(path, nil)
	var invalid *InvalidConfig
	require.ErrorAs(t, err, &invalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"wss server", func(c *Config) { c.ServerURL = "wss://example.com/ws" }, false},
		{"small board", func(c *Config) { c.BoardSize = 2 }, true},
		{"http server url", func(c *Config) { c.ServerURL = "http://example.com/ws" }, true},
		{"ws api url", func(c *Config) { c.APIURL = "ws://example.com/api" }, true},
		{"no host", func(c *Config) { c.APIURL = "http:///api" }, true},
		{"zero move timeout", func(c *Config) { c.MoveTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SIDESTACKER_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("SIDESTACKER_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("SIDESTACKER_TEST_DOTENV"))

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "loaded", os.Getenv("SIDESTACKER_TEST_DOTENV"))
}
