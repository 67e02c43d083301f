package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

const (
	envPrefix      = "SIDESTACKER"
	defaultCfgFile = "sidestacker/config.yaml"
)

// LoadDotEnv loads the given .env files (".env" if none) into the
// environment. Missing files are not an error; variables already set win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				klog.Warningf("config: failed to load %s: %v", f, err)
			}
			continue
		}
		klog.V(1).Infof("config: loaded environment from %s", f)
	}
}

// Load builds configuration from defaults, the config file, SIDESTACKER_*
// env vars and flags, and returns the resolved config file path.
// Precedence: defaults < config file < env vars < changed flags.
//
// Flags are matched to keys by name with dashes for underscores, e.g. the
// flag "server-url" sets "server_url". flags may be nil.
func Load(explicitPath string, flags *pflag.FlagSet) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	defaults := map[string]any{
		"server_url":            cfg.ServerURL,
		"api_url":               cfg.APIURL,
		"board_size":            cfg.BoardSize,
		"username":              cfg.Username,
		"dial_timeout":          cfg.DialTimeout,
		"write_timeout":         cfg.WriteTimeout,
		"move_timeout":          cfg.MoveTimeout,
		"reconnect":             cfg.Reconnect,
		"reconnect_max_elapsed": cfg.ReconnectMaxElapsed,
		"persist_identity":      cfg.PersistIdentity,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
		if flags == nil {
			continue
		}
		if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return cfg, "", fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := resolveConfigPath(explicitPath)
	if err != nil {
		return cfg, "", err
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
		if err := writeDefaultConfig(configPath, cfg); err != nil {
			klog.Warningf("config: failed to write default config to %s: %v", configPath, err)
		} else {
			klog.Infof("config: created default config at %s", configPath)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Username = strings.TrimSpace(cfg.Username)
	if err := cfg.Validate(); err != nil {
		return cfg, configPath, err
	}
	return cfg, configPath, nil
}

// resolveConfigPath returns explicitPath, or the config file under the XDG
// config directory.
func resolveConfigPath(explicitPath string) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}
	p, err := xdg.ConfigFile(defaultCfgFile)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return p, nil
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
