// Package config loads the campaign configuration from YAML. A missing file
// yields the defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/engine"
	"github.com/talgya/marshals/internal/world"
)

// Config is the root of the configuration file.
type Config struct {
	Game          GameConfig                 `yaml:"game"`
	Scenario      ScenarioConfig             `yaml:"scenario"`
	Logging       LoggingConfig              `yaml:"logging"`
	Database      DatabaseConfig             `yaml:"database"`
	Personalities map[string]ProfileOverride `yaml:"personalities,omitempty"`
}

// GameConfig tunes the turn loop.
type GameConfig struct {
	Seed                 int64  `yaml:"seed"` // 0 draws a random seed
	PlayerFaction        string `yaml:"player_faction"`
	Turns                int    `yaml:"turns"` // Turns the run command plays
	TurnLimit            int    `yaml:"turn_limit"`
	PlayerActionsPerTurn int    `yaml:"player_actions_per_turn"`
	FactionActionBudget  int    `yaml:"faction_action_budget"`
	ActionsPerMarshal    int    `yaml:"actions_per_marshal"`
	AutonomousSafetyCap  int    `yaml:"autonomous_safety_cap"`
}

// ScenarioConfig shapes the generated campaign.
type ScenarioConfig struct {
	Radius             int `yaml:"radius"`
	Factions           int `yaml:"factions"`
	MarshalsPerFaction int `yaml:"marshals_per_faction"`
	BaseStrength       int `yaml:"base_strength"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DatabaseConfig locates the save file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProfileOverride replaces personality tuning. Zero fields keep the built-in
// value.
type ProfileOverride struct {
	BaseAttack      float64 `yaml:"base_attack"`
	BaseDefense     float64 `yaml:"base_defense"`
	FortifyMax      float64 `yaml:"fortify_max"`
	AttackThreshold float64 `yaml:"attack_threshold"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	opts := engine.DefaultOptions()
	sc := engine.DefaultScenario()
	return &Config{
		Game: GameConfig{
			Turns:                20,
			PlayerActionsPerTurn: opts.PlayerActions,
			FactionActionBudget:  opts.FactionBudget,
			ActionsPerMarshal:    opts.ActionsPerMarshal,
			AutonomousSafetyCap:  opts.SafetyCap,
		},
		Scenario: ScenarioConfig{
			Radius:             sc.Radius,
			Factions:           sc.Factions,
			MarshalsPerFaction: sc.MarshalsPerFaction,
			BaseStrength:       sc.BaseStrength,
		},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Path: filepath.Join("data", "marshals.db")},
	}
}

// Load reads the configuration at path over the defaults, applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		slog.Debug("no config file, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MARSHALS_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MARSHALS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MARSHALS_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Game.Seed = seed
		} else {
			slog.Warn("ignoring MARSHALS_SEED", "value", v, "error", err)
		}
	}
}

// Validate clamps out-of-range numbers to their bounds and rejects values
// that cannot be repaired.
func (c *Config) Validate() error {
	def := Default()

	g := &c.Game
	g.Turns = clampInt(g.Turns, 1, 10000)
	g.TurnLimit = max(0, g.TurnLimit)
	g.PlayerActionsPerTurn = clampInt(g.PlayerActionsPerTurn, 1, 20)
	g.FactionActionBudget = clampInt(g.FactionActionBudget, 1, 100)
	g.ActionsPerMarshal = clampInt(g.ActionsPerMarshal, 1, 10)
	g.AutonomousSafetyCap = clampInt(g.AutonomousSafetyCap, 1, 10000)

	s := &c.Scenario
	s.Radius = clampInt(s.Radius, 1, 12)
	s.Factions = clampInt(s.Factions, 2, 6)
	s.MarshalsPerFaction = clampInt(s.MarshalsPerFaction, 1, 10)
	if s.BaseStrength <= 0 {
		s.BaseStrength = def.Scenario.BaseStrength
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format = strings.ToLower(c.Logging.Format); c.Logging.Format {
	case "":
		c.Logging.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("validate config: logging format %q (want text or json)", c.Logging.Format)
	}

	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}

	for name, o := range c.Personalities {
		if _, ok := agents.ParsePersonality(name); !ok {
			return fmt.Errorf("validate config: unknown personality %q", name)
		}
		o.BaseAttack = clampFloat(o.BaseAttack, 0, 3)
		o.BaseDefense = clampFloat(o.BaseDefense, 0, 3)
		o.FortifyMax = clampFloat(o.FortifyMax, 0, 1)
		o.AttackThreshold = clampFloat(o.AttackThreshold, 0, 5)
		c.Personalities[name] = o
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("validate config: logging level %q", c.Logging.Level)
}

// ApplyPersonalities installs the personality overrides. Call once at
// startup, before a game is created.
func (c *Config) ApplyPersonalities() {
	for name, o := range c.Personalities {
		p, ok := agents.ParsePersonality(name)
		if !ok {
			continue
		}
		agents.OverrideProfile(p, agents.ProfileOverride{
			BaseAttack:      o.BaseAttack,
			BaseDefense:     o.BaseDefense,
			FortifyMax:      o.FortifyMax,
			AttackThreshold: o.AttackThreshold,
		})
		slog.Info("personality tuning overridden", "personality", p)
	}
}

// Options converts the game section to engine options.
func (c *Config) Options() engine.Options {
	return engine.Options{
		Seed:              c.Game.Seed,
		PlayerActions:     c.Game.PlayerActionsPerTurn,
		FactionBudget:     c.Game.FactionActionBudget,
		ActionsPerMarshal: c.Game.ActionsPerMarshal,
		SafetyCap:         c.Game.AutonomousSafetyCap,
		TurnLimit:         c.Game.TurnLimit,
	}
}

// ScenarioSpec converts the scenario section to an engine scenario.
func (c *Config) ScenarioSpec() engine.Scenario {
	return engine.Scenario{
		Radius:             c.Scenario.Radius,
		Factions:           c.Scenario.Factions,
		MarshalsPerFaction: c.Scenario.MarshalsPerFaction,
		BaseStrength:       c.Scenario.BaseStrength,
		PlayerFaction:      world.FactionID(c.Game.PlayerFaction),
	}
}

func clampInt(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return min(hi, max(lo, v))
}
