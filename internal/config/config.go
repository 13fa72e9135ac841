package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	MaiaBaseURL string
	BoardWSURL  string

	RedisURL    string
	DatabaseURL string

	ProfileDir string

	DebounceMS     int
	DefaultElo     int
	RequestTimeout time.Duration
	ReconnectDelay time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DebounceMS:     80,
		DefaultElo:     1500,
		RequestTimeout: 15 * time.Second,
		ReconnectDelay: 2 * time.Second,
	}

	cfg.MaiaBaseURL = strings.TrimSpace(os.Getenv("MAIA_BASE_URL"))
	cfg.BoardWSURL = strings.TrimSpace(os.Getenv("BOARD_WS_URL"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.ProfileDir = strings.TrimSpace(os.Getenv("PROFILE_DIR"))

	if v := strings.TrimSpace(os.Getenv("DEBOUNCE_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DebounceMS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_ELO")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultElo = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("RECONNECT_DELAY")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReconnectDelay = d
		}
	}

	if cfg.MaiaBaseURL == "" {
		return nil, errors.New("MAIA_BASE_URL is required")
	}
	if cfg.BoardWSURL == "" {
		return nil, errors.New("BOARD_WS_URL is required")
	}

	return cfg, nil
}
