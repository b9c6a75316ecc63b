// Package config loads simulation tuning from embedded defaults and an optional YAML file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all imagepet configuration
type Config struct {
	Viewport    ViewportConfig    `yaml:"viewport"`
	Pet         PetConfig         `yaml:"pet"`
	Motion      MotionConfig      `yaml:"motion"`
	Interaction InteractionConfig `yaml:"interaction"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Session     SessionConfig     `yaml:"session"`
	Store       StoreConfig       `yaml:"store"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// ViewportConfig holds the headless viewport and the terminal cell scale.
// One terminal cell covers CellWidth x CellHeight viewport units.
type ViewportConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
}

// PetConfig holds pet creation parameters
type PetConfig struct {
	MaxSize          float64 `yaml:"max_size"`
	InitialHappiness float64 `yaml:"initial_happiness"`
	DefaultWidth     float64 `yaml:"default_width"` // Natural size for pets without an image
	DefaultHeight    float64 `yaml:"default_height"`
}

// MotionConfig holds motion simulator parameters. Speeds are in units per nominal frame.
type MotionConfig struct {
	NominalFrame   time.Duration `yaml:"nominal_frame"`
	MaxDelta       float64       `yaml:"max_delta"`
	MinSpeed       float64       `yaml:"min_speed"`
	SpawnSpeedMin  float64       `yaml:"spawn_speed_min"`
	SpawnSpeedMax  float64       `yaml:"spawn_speed_max"`
	MaxSpeed       float64       `yaml:"max_speed"`
	Restitution    float64       `yaml:"restitution"`
	BounceRotation float64       `yaml:"bounce_rotation"` // Degrees, symmetric range
	StuckEpsilon   float64       `yaml:"stuck_epsilon"`
	StuckTicks     int           `yaml:"stuck_ticks"`
	PerturbChance  float64       `yaml:"perturb_chance"`
	PerturbDelta   float64       `yaml:"perturb_delta"`
	DecayChance    float64       `yaml:"decay_chance"`
	DecayAmount    float64       `yaml:"decay_amount"`
	MinSpeedFactor float64       `yaml:"min_speed_factor"`
}

// InteractionConfig holds proximity detection parameters
type InteractionConfig struct {
	RingInner       float64       `yaml:"ring_inner"`
	RingOuter       float64       `yaml:"ring_outer"`
	Gate            time.Duration `yaml:"gate"`
	HappinessBoost  float64       `yaml:"happiness_boost"`
	SelfWeight      float64       `yaml:"self_weight"`
	ExcitedDuration time.Duration `yaml:"excited_duration"`
	ExcitedRotation float64       `yaml:"excited_rotation"`
}

// LedgerConfig holds score deduplication and effect lifetimes
type LedgerConfig struct {
	Window         time.Duration `yaml:"window"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	EffectDuration time.Duration `yaml:"effect_duration"`
}

// SessionConfig holds session controller parameters
type SessionConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	CoarseInterval time.Duration `yaml:"coarse_interval"` // Fallback clock cadence
	DragHappiness  float64       `yaml:"drag_happiness"`
}

// StoreConfig holds persisted state locations
type StoreConfig struct {
	StateDir      string `yaml:"state_dir"`
	HighScoreFile string `yaml:"highscore_file"`
}

// TelemetryConfig holds telemetry output parameters
type TelemetryConfig struct {
	OutputDir   string `yaml:"output_dir"`
	WindowTicks int    `yaml:"window_ticks"`
}

// Default returns the embedded defaults
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if env := os.Getenv("IMAGEPET_STATE_DIR"); env != "" {
		cfg.Store.StateDir = env
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Motion.NominalFrame <= 0:
		return fmt.Errorf("motion.nominal_frame must be positive")
	case c.Motion.MaxDelta <= 0:
		return fmt.Errorf("motion.max_delta must be positive")
	case c.Motion.SpawnSpeedMin < c.Motion.MinSpeed:
		return fmt.Errorf("motion.spawn_speed_min (%v) must be >= motion.min_speed (%v)", c.Motion.SpawnSpeedMin, c.Motion.MinSpeed)
	case c.Motion.SpawnSpeedMax < c.Motion.SpawnSpeedMin:
		return fmt.Errorf("motion.spawn_speed_max must be >= motion.spawn_speed_min")
	case c.Motion.MaxSpeed < c.Motion.SpawnSpeedMax:
		return fmt.Errorf("motion.max_speed must be >= motion.spawn_speed_max")
	case c.Interaction.RingInner >= c.Interaction.RingOuter:
		return fmt.Errorf("interaction.ring_inner must be below interaction.ring_outer")
	case c.Interaction.SelfWeight < 0 || c.Interaction.SelfWeight > 1:
		return fmt.Errorf("interaction.self_weight must be within [0,1]")
	case c.Ledger.SweepInterval <= 0:
		return fmt.Errorf("ledger.sweep_interval must be positive")
	case c.Session.TickInterval <= 0 || c.Session.CoarseInterval <= 0:
		return fmt.Errorf("session intervals must be positive")
	case c.Pet.MaxSize <= 0:
		return fmt.Errorf("pet.max_size must be positive")
	case c.Viewport.CellWidth <= 0 || c.Viewport.CellHeight <= 0:
		return fmt.Errorf("viewport cell size must be positive")
	}
	return nil
}

// StateDir returns the directory holding persisted state, defaulting to ~/.config/imagepet
func (c *Config) StateDir() (string, error) {
	if c.Store.StateDir != "" {
		return c.Store.StateDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "imagepet"), nil
}

// HighScorePath returns the high-score file location
func (c *Config) HighScorePath() (string, error) {
	dir, err := c.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Store.HighScoreFile), nil
}

// WriteYAML writes the configuration to a YAML file
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
