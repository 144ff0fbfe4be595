package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the optional configuration file looked up in a directory.
const FileName = "viewbridge.yaml"

// Config represents the optional viewbridge.yaml configuration.
type Config struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Display     DisplayConfig     `yaml:"display"`
	Debug       DebugConfig       `yaml:"debug"`
	Log         LogConfig         `yaml:"log"`
	Controllers ControllersConfig `yaml:"controllers"`
	Bridge      BridgeConfig      `yaml:"bridge"`
}

// InstanceConfig identifies the manager.
type InstanceConfig struct {
	ID string `yaml:"id,omitempty"`
}

// DisplayConfig describes the headless display.
type DisplayConfig struct {
	Density         float64 `yaml:"density,omitempty"`
	StatusBarHeight int     `yaml:"statusBarHeight,omitempty"`
}

// DebugConfig controls the debug server.
type DebugConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	Port    int  `yaml:"port,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ControllersConfig controls controller registration.
type ControllersConfig struct {
	ReportOverrides bool `yaml:"reportOverrides,omitempty"`
}

// BridgeConfig controls the command bridge.
type BridgeConfig struct {
	TracerName string `yaml:"tracerName,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root            string
	InstanceID      string
	Density         float64
	StatusBarHeight int
	DebugEnabled    bool
	DebugPort       int
	LogLevel        slog.Level
	LogFormat       string
	ReportOverrides bool
	TracerName      string
}

// Defaults applied by Resolve.
const (
	DefaultDebugPort  = 9091
	DefaultTracerName = "viewbridge"
)

// LoadOptional reads viewbridge.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads viewbridge.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// Resolve validates cfg and fills in defaults.
func (cfg *Config) Resolve(dir string) (*Resolved, error) {
	density := cfg.Display.Density
	if density == 0 {
		density = 1
	}
	if density < 0 {
		return nil, fmt.Errorf("display.density must be positive, got %v", density)
	}
	if cfg.Display.StatusBarHeight < 0 {
		return nil, fmt.Errorf("display.statusBarHeight must not be negative, got %d", cfg.Display.StatusBarHeight)
	}

	port := cfg.Debug.Port
	if port == 0 {
		port = DefaultDebugPort
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("debug.port out of range: %d", port)
	}

	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	switch format {
	case "":
		format = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}

	tracer := strings.TrimSpace(cfg.Bridge.TracerName)
	if tracer == "" {
		tracer = DefaultTracerName
	}

	return &Resolved{
		Root:            dir,
		InstanceID:      strings.TrimSpace(cfg.Instance.ID),
		Density:         density,
		StatusBarHeight: cfg.Display.StatusBarHeight,
		DebugEnabled:    cfg.Debug.Enabled,
		DebugPort:       port,
		LogLevel:        level,
		LogFormat:       format,
		ReportOverrides: cfg.Controllers.ReportOverrides,
		TracerName:      tracer,
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
