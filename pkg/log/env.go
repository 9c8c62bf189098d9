// Environment configuration for loggers
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds the logger settings read from the environment.
//   - LIMITXY_LOG_LEVEL: DEBUG, INFO, WARN, ERROR
//   - LIMITXY_LOG_FORMAT: text, json
//   - LIMITXY_LOG_CALLER: any non-empty value enables caller info
//   - NO_COLOR: any non-empty value disables colors
type EnvConfig struct {
	Level   string `env:"LIMITXY_LOG_LEVEL"`
	Format  string `env:"LIMITXY_LOG_FORMAT"`
	Caller  string `env:"LIMITXY_LOG_CALLER"`
	NoColor string `env:"NO_COLOR"`
}

// LoadEnvConfig parses EnvConfig from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse log env: %w", err)
	}
	return cfg, nil
}

// Apply sets every option present in cfg on l. Unset variables leave
// the logger untouched.
func (cfg EnvConfig) Apply(l *Logger) {
	if cfg.Level != "" {
		l.SetLevel(ParseLevel(cfg.Level))
	}
	if cfg.Format != "" {
		l.SetFormat(ParseFormat(cfg.Format))
	}
	if cfg.Caller != "" {
		l.SetCaller(true)
	}
	if cfg.NoColor != "" {
		l.SetColorize(false)
	}
}

// ConfigureFromEnv applies environment-based configuration to the logger.
func ConfigureFromEnv(l *Logger) error {
	cfg, err := LoadEnvConfig()
	if err != nil {
		return err
	}
	cfg.Apply(l)
	return nil
}
