package app

import (
	"errors"
	"fmt"
	"time"
)

// DefaultRootKind is the kind every palette entry descends from.
const DefaultRootKind = "MissionNode"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	AssetsPath string // directory of kind, record and mission files
	Pattern    string // glob below AssetsPath, empty for every .hcl file
	RootKind   string

	// NativeOnly keeps asset-declared kinds out of the palette.
	NativeOnly   bool
	ForcedHidden []string
	MaxDepth     int
	CacheSize    int

	WatchDebounce time.Duration
	StatusPort    int

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.AssetsPath == "" {
		return nil, errors.New("AssetsPath is a required configuration field and cannot be empty")
	}
	if cfg.RootKind == "" {
		cfg.RootKind = DefaultRootKind
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format '%s', expected text or json", cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("MaxDepth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("CacheSize must not be negative, got %d", cfg.CacheSize)
	}
	if cfg.StatusPort < 0 || cfg.StatusPort > 65535 {
		return nil, fmt.Errorf("StatusPort %d is out of range", cfg.StatusPort)
	}
	return &cfg, nil
}
