// Package config loads pathviz settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
)

type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Search SearchConfig `yaml:"search"`
	Server ServerConfig `yaml:"server"`
	Viewer ViewerConfig `yaml:"viewer"`
	Log    LogConfig    `yaml:"log"`
}

type GridConfig struct {
	Scale int `yaml:"scale"`
}

type SearchConfig struct {
	StepDelay time.Duration `yaml:"step_delay"`
	TieBreak  float64       `yaml:"tie_break"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	PushInterval time.Duration `yaml:"push_interval"`
	// Layout optionally seeds the shared board from a text layout file.
	Layout string `yaml:"layout"`
}

// ViewerConfig is the window size of the desktop viewer. It must have the
// aspect ratio of the base grid.
type ViewerConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Grid: GridConfig{Scale: 1},
		Search: SearchConfig{
			StepDelay: 50 * time.Millisecond,
			TieBreak:  search.DefaultTieBreak,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			PushInterval: 50 * time.Millisecond,
		},
		Viewer: ViewerConfig{Width: 1280, Height: 720},
		Log:    LogConfig{Level: "info"},
	}
}

// Load starts from Default, overlays the file at path when it exists and
// then the environment, and validates the result. An empty path skips the
// file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	loadEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("no config at %s, using defaults", path)
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if level := os.Getenv("PATHVIZ_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

func (c Config) Validate() error {
	if err := model.CheckScale(c.Grid.Scale); err != nil {
		return fmt.Errorf("grid.scale: %w", err)
	}
	if c.Search.StepDelay < 0 {
		return fmt.Errorf("search.step_delay must be >= 0, got %v", c.Search.StepDelay)
	}
	if c.Search.TieBreak < 0 {
		return fmt.Errorf("search.tie_break must be >= 0, got %v", c.Search.TieBreak)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty")
	}
	if c.Server.PushInterval <= 0 {
		return fmt.Errorf("server.push_interval must be > 0, got %v", c.Server.PushInterval)
	}
	w, h := c.Viewer.Width, c.Viewer.Height
	if w <= 0 || h <= 0 || w*model.BaseHeight != h*model.BaseWidth {
		return fmt.Errorf("viewer %dx%d is not %d:%d: %w", w, h, model.BaseWidth, model.BaseHeight, model.ErrDimensionMismatch)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// SetupLogging applies the configured level to the standard logger.
func (c Config) SetupLogging() {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
