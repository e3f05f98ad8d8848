package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

type FrontendMode string

const (
	ModeTerminal FrontendMode = "terminal"
	ModeWindow   FrontendMode = "window"
	ModeSelfPlay FrontendMode = "selfplay"
)

type Config struct {
	Mode               FrontendMode `json:"mode"`
	Width              int          `json:"width"`
	Height             int          `json:"height"`
	Addr               string       `json:"addr"`
	LogLevel           string       `json:"log_level"`
	CachePath          string       `json:"cache_path"`
	SelfPlayGames      int          `json:"selfplay_games"`
	SelfPlayWorkers    int          `json:"selfplay_workers"`
	SelfPlayOpeningPly int          `json:"selfplay_opening_plies"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		Width:    3,
		Height:   3,
		Addr:     ":8080",
		LogLevel: "info",

		// Cache persistence is off unless a path is given.
		CachePath: "",

		SelfPlayGames:      100,
		SelfPlayWorkers:    4,
		SelfPlayOpeningPly: 2,
	}
}

// ConfigFromEnv overlays TTT_* environment variables on base.
func ConfigFromEnv(base Config) Config {
	cfg := base
	cfg.Width = getenvInt("TTT_WIDTH", cfg.Width)
	cfg.Height = getenvInt("TTT_HEIGHT", cfg.Height)
	cfg.Addr = getenv("TTT_ADDR", cfg.Addr)
	cfg.LogLevel = getenv("TTT_LOG_LEVEL", cfg.LogLevel)
	cfg.CachePath = getenv("TTT_CACHE_PATH", cfg.CachePath)
	cfg.SelfPlayGames = getenvInt("TTT_SELFPLAY_GAMES", cfg.SelfPlayGames)
	cfg.SelfPlayWorkers = getenvInt("TTT_SELFPLAY_WORKERS", cfg.SelfPlayWorkers)
	cfg.SelfPlayOpeningPly = getenvInt("TTT_SELFPLAY_OPENING_PLIES", cfg.SelfPlayOpeningPly)
	return cfg
}

func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeTerminal, ModeWindow, ModeSelfPlay:
	case "":
		errs = append(errs, errors.New("no execution mode selected"))
	default:
		errs = append(errs, fmt.Errorf("invalid execution mode %q", c.Mode))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height))
	}
	if c.Mode == ModeSelfPlay {
		if c.SelfPlayGames <= 0 {
			errs = append(errs, fmt.Errorf("selfplay games must be positive, got %d", c.SelfPlayGames))
		}
		if c.SelfPlayWorkers <= 0 {
			errs = append(errs, fmt.Errorf("selfplay workers must be positive, got %d", c.SelfPlayWorkers))
		}
		if c.SelfPlayOpeningPly < 0 {
			errs = append(errs, fmt.Errorf("selfplay opening plies must not be negative, got %d", c.SelfPlayOpeningPly))
		}
	}
	return errors.Join(errs...)
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
