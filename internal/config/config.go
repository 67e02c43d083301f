package config

import (
	"fmt"
	"net/url"
	"time"
)

// InvalidConfig is returned by Validate.
type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

// Config holds client configuration values.
type Config struct {
	ServerURL           string        `mapstructure:"server_url" yaml:"server_url"`
	APIURL              string        `mapstructure:"api_url" yaml:"api_url"`
	BoardSize           int           `mapstructure:"board_size" yaml:"board_size"`
	Username            string        `mapstructure:"username" yaml:"username"`
	DialTimeout         time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MoveTimeout         time.Duration `mapstructure:"move_timeout" yaml:"move_timeout"`
	Reconnect           bool          `mapstructure:"reconnect" yaml:"reconnect"`
	ReconnectMaxElapsed time.Duration `mapstructure:"reconnect_max_elapsed" yaml:"reconnect_max_elapsed"`
	PersistIdentity     bool          `mapstructure:"persist_identity" yaml:"persist_identity"`
}

// Default returns configuration pointing at a game server on localhost.
func Default() Config {
	return Config{
		ServerURL:           "ws://localhost:8000/api/v1/ws-game/ws",
		APIURL:              "http://localhost:8000/api/v1",
		BoardSize:           7,
		DialTimeout:         10 * time.Second,
		WriteTimeout:        2 * time.Second,
		MoveTimeout:         10 * time.Second,
		Reconnect:           true,
		ReconnectMaxElapsed: 30 * time.Second,
	}
}

// Validate checks the values that cannot be fixed up later.
func (c *Config) Validate() error {
	if c.BoardSize < 3 {
		return &InvalidConfig{fmt.Sprintf("board_size must be at least 3, got %d", c.BoardSize)}
	}
	if err := checkURL("server_url", c.ServerURL, "ws", "wss"); err != nil {
		return err
	}
	if err := checkURL("api_url", c.APIURL, "http", "https"); err != nil {
		return err
	}
	for name, d := range map[string]time.Duration{
		"dial_timeout":  c.DialTimeout,
		"write_timeout": c.WriteTimeout,
		"move_timeout":  c.MoveTimeout,
	} {
		if d <= 0 {
			return &InvalidConfig{fmt.Sprintf("%s must be positive, got %s", name, d)}
		}
	}
	return nil
}

func checkURL(key, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return &InvalidConfig{fmt.Sprintf("%s %q is not a valid URL", key, raw)}
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return &InvalidConfig{fmt.Sprintf("%s %q must use one of the schemes %v", key, raw, schemes)}
}
