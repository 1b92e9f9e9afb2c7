// Package config loads sdbg settings from config files and environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// Prompt shown before the input line.
	Prompt string `mapstructure:"prompt"`
	// TickInterval drives the periodic refresh event.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// HistoryLimit bounds stored command history; 0 keeps everything.
	HistoryLimit int `mapstructure:"history_limit"`
	// LogDir, when set, receives timestamped debug log files.
	LogDir  string `mapstructure:"log_dir"`
	Verbose bool   `mapstructure:"verbose"`

	Tmux TmuxConfig `mapstructure:"tmux"`
}

// TmuxConfig holds defaults for the optional tmux output mirror.
type TmuxConfig struct {
	Session string `mapstructure:"session"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Prompt:       "sdbg> ",
		TickInterval: 250 * time.Millisecond,
		HistoryLimit: 0,
		Verbose:      false,
		Tmux: TmuxConfig{
			Session: "sdbg",
		},
	}
}

// Load loads configuration from files and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("sdbg")
	v.SetConfigType("yaml")

	// Config paths, lowest precedence first.
	v.AddConfigPath("/etc/sdbg/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "sdbg"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".sdbg")
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("SDBG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("prompt", "SDBG_PROMPT")
	v.BindEnv("tick_interval", "SDBG_TICK_INTERVAL")
	v.BindEnv("log_dir", "SDBG_LOG_DIR")
	v.BindEnv("verbose", "SDBG_VERBOSE")
	v.BindEnv("tmux.session", "SDBG_TMUX_SESSION")

	cfg := Default()
	v.SetDefault("prompt", cfg.Prompt)
	v.SetDefault("tick_interval", cfg.TickInterval)
	v.SetDefault("history_limit", cfg.HistoryLimit)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("tmux.session", cfg.Tmux.Session)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file; defaults and environment apply.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
