// Package config loads process configuration. Environment variables win;
// an optional YAML file supplies the parts that are awkward as env vars
// (the hardware endpoint list, engine tuning).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// EndpointConfig names one side of the board's controller endpoint.
type EndpointConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// AppConfig is the resolved configuration for one coordinator process.
type AppConfig struct {
	RecoveryFile string

	EnginePath    string
	EngineDepth   int
	EngineTimeout time.Duration

	RedisURL    string
	DatabaseURL string

	WatchdogInterval time.Duration
	Endpoints        []EndpointConfig
}

// fileConfig is the YAML overlay shape.
type fileConfig struct {
	RecoveryFile string           `yaml:"recovery_file"`
	Engine       *engineConfig    `yaml:"engine"`
	Watchdog     *watchdogConfig  `yaml:"watchdog"`
	Endpoints    []EndpointConfig `yaml:"endpoints"`
}

type engineConfig struct {
	Path       string `yaml:"path"`
	Depth      int    `yaml:"depth"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type watchdogConfig struct {
	IntervalSec int `yaml:"interval_sec"`
}

// Load resolves configuration from ROBOCHESS_CONFIG (YAML, optional) and
// the environment. The engine binary is optional — evaluation is advisory —
// but a recovery file path must resolve to something usable.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		RecoveryFile:     "recovery.json",
		EngineDepth:      12,
		EngineTimeout:    10 * time.Second,
		WatchdogInterval: 5 * time.Second,
	}

	if path := strings.TrimSpace(os.Getenv("ROBOCHESS_CONFIG")); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("ROBOCHESS_RECOVERY_FILE")); v != "" {
		cfg.RecoveryFile = v
	}
	if v := strings.TrimSpace(os.Getenv("ROBOCHESS_ENGINE_PATH")); v != "" {
		cfg.EnginePath = v
	}
	if v := strings.TrimSpace(os.Getenv("ROBOCHESS_ENGINE_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROBOCHESS_ENGINE_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineTimeout = time.Duration(n) * time.Second
		}
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("ROBOCHESS_REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("ROBOCHESS_DATABASE_URL"))
	if v := strings.TrimSpace(os.Getenv("ROBOCHESS_WATCHDOG_INTERVAL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WatchdogInterval = time.Duration(n) * time.Second
		}
	}

	if strings.TrimSpace(cfg.RecoveryFile) == "" {
		return nil, errors.New("recovery file path is required")
	}
	for _, ep := range cfg.Endpoints {
		if strings.TrimSpace(ep.Name) == "" || strings.TrimSpace(ep.BaseURL) == "" {
			return nil, fmt.Errorf("endpoint entries need both name and base_url (got %+v)", ep)
		}
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if strings.TrimSpace(fc.RecoveryFile) != "" {
		cfg.RecoveryFile = strings.TrimSpace(fc.RecoveryFile)
	}
	if fc.Engine != nil {
		if strings.TrimSpace(fc.Engine.Path) != "" {
			cfg.EnginePath = strings.TrimSpace(fc.Engine.Path)
		}
		if fc.Engine.Depth > 0 {
			cfg.EngineDepth = fc.Engine.Depth
		}
		if fc.Engine.TimeoutSec > 0 {
			cfg.EngineTimeout = time.Duration(fc.Engine.TimeoutSec) * time.Second
		}
	}
	if fc.Watchdog != nil && fc.Watchdog.IntervalSec > 0 {
		cfg.WatchdogInterval = time.Duration(fc.Watchdog.IntervalSec) * time.Second
	}
	if len(fc.Endpoints) > 0 {
		cfg.Endpoints = fc.Endpoints
	}
	return nil
}
