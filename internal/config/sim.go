package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/stratagem/internal/world"
)

// Sim configures a headless turnsim run.
type Sim struct {
	Seed          int64      `env:"TURNSIM_SEED"` // 0 draws a fresh seed
	Turns         int        `env:"TURNSIM_TURNS" envDefault:"40"`
	Players       []string   `env:"TURNSIM_PLAYERS" envDefault:"crimson,azure,verdant" envSeparator:","`
	DisasterEvery int        `env:"TURNSIM_DISASTER_EVERY" envDefault:"5"` // 0 disables disasters
	Radius        int        `env:"TURNSIM_RADIUS" envDefault:"14"`
	Enclaves      int        `env:"TURNSIM_ENCLAVES" envDefault:"24"`
	Domains       int        `env:"TURNSIM_DOMAINS" envDefault:"6"`
	StartForces   int        `env:"TURNSIM_START_FORCES" envDefault:"12"`
	NeutralForces int        `env:"TURNSIM_NEUTRAL_FORCES" envDefault:"4"`
	Profiles      string     `env:"TURNSIM_PROFILES"`                             // JSON profile file; empty uses the built-in set
	Journal       string     `env:"TURNSIM_JOURNAL" envDefault:"data/turnsim.db"` // empty disables the journal
	LogLevel      slog.Level `env:"TURNSIM_LOG_LEVEL" envDefault:"INFO"`
}

// LoadSim parses and validates the turnsim environment.
func LoadSim() (Sim, error) {
	var cfg Sim
	if err := ParseEnv(&cfg); err != nil {
		return Sim{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Sim{}, err
	}
	return cfg, nil
}

// Validate checks that the run can be set up.
func (c Sim) Validate() error {
	var errs []error
	if c.Turns < 1 {
		errs = append(errs, fmt.Errorf("TURNSIM_TURNS must be positive, got %d", c.Turns))
	}
	if len(c.Players) == 0 {
		errs = append(errs, errors.New("TURNSIM_PLAYERS must name at least one player"))
	}
	seen := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if p == "" || seen[p] {
			errs = append(errs, fmt.Errorf("TURNSIM_PLAYERS has an empty or repeated name %q", p))
		}
		seen[p] = true
	}
	if c.DisasterEvery < 0 {
		errs = append(errs, fmt.Errorf("TURNSIM_DISASTER_EVERY must not be negative, got %d", c.DisasterEvery))
	}
	if c.Radius < 3 {
		errs = append(errs, fmt.Errorf("TURNSIM_RADIUS must be at least 3, got %d", c.Radius))
	}
	if c.Domains < 1 || c.Enclaves < c.Domains {
		errs = append(errs, fmt.Errorf("need at least one domain and as many enclaves as domains, got %d/%d", c.Enclaves, c.Domains))
	}
	if len(c.Players) > c.Enclaves {
		errs = append(errs, fmt.Errorf("%d players but only %d enclaves", len(c.Players), c.Enclaves))
	}
	if c.StartForces < 1 || c.NeutralForces < 0 {
		errs = append(errs, fmt.Errorf("invalid forces: start %d, neutral %d", c.StartForces, c.NeutralForces))
	}
	return errors.Join(errs...)
}

// GenConfig returns the world generation settings for the run.
func (c Sim) GenConfig(seed int64) world.GenConfig {
	g := world.DefaultGenConfig()
	g.Seed = seed
	g.Radius = c.Radius
	g.Enclaves = c.Enclaves
	g.Domains = c.Domains
	return g
}
