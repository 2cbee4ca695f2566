package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/seafall/tradewind/internal/sim"
)

// appConfig is everything the binary needs: process-level settings plus the
// session run config.
type appConfig struct {
	ContentDir string        `mapstructure:"content_dir"`
	DBPath     string        `mapstructure:"db_path"`
	APIPort    int           `mapstructure:"api_port"`
	LogLevel   string        `mapstructure:"log_level"`
	Speed      float64       `mapstructure:"speed"`    // real-time multiplier
	RunDays    int           `mapstructure:"run_days"` // >0 runs n days scripted and exits
	Run        sim.RunConfig `mapstructure:"run"`
}

// loadConfig reads config.yaml (working dir or /etc/tradewind), layered
// under TRADEWIND_* environment overrides. A missing file just means
// defaults.
func loadConfig() (appConfig, error) {
	v := viper.New()

	v.SetDefault("content_dir", "content")
	v.SetDefault("db_path", "data/tradewind.db")
	v.SetDefault("api_port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("speed", 1.0)
	v.SetDefault("run_days", 0)
	v.SetDefault("run.difficulty", "normal")
	v.SetDefault("run.seed", 1)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/tradewind")

	v.SetEnvPrefix("TRADEWIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return appConfig{}, fmt.Errorf("read config: %w", err)
		}
		slog.Info("no config file found, using defaults")
	} else {
		slog.Info("config loaded", "file", v.ConfigFileUsed())
	}

	var cfg appConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return appConfig{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Run.Normalize()
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	return cfg, nil
}

// logLevel maps the configured name onto a slog level.
func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
