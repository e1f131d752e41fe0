// Package config provides configuration loading and validation for the
// outreach engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/types"
)

// Config is the engine configuration, loadable from a JSON file with
// environment overrides. The response-rate table and slack tolerance are
// inherited business assumptions kept tunable on purpose.
type Config struct {
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
	JWTSecret   string `json:"jwt_secret,omitempty"`

	// ResponseRates maps tier name to expected response rate (0,1].
	ResponseRates map[string]float64 `json:"response_rates,omitempty"`
	// CheckpointPercents is the checkpoint schedule as percentages of
	// the deadline window, ascending and ending at 100.
	CheckpointPercents []int `json:"checkpoint_percents,omitempty"`
	// SlackTolerance is the on-track factor: actual >= expected * slack.
	SlackTolerance float64 `json:"slack_tolerance,omitempty"`

	// Follow-up policy.
	FollowUpMaxAgeHours int `json:"follow_up_max_age_hours,omitempty"`
	MaxFollowUps        int `json:"max_follow_ups,omitempty"`

	// TickSeconds is the escalation runner interval.
	TickSeconds int `json:"tick_seconds,omitempty"`
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Port: 8080,
		ResponseRates: map[string]float64{
			types.TierTrusted.String(): 0.90,
			types.TierWarm.String():    0.50,
			types.TierCold.String():    0.33,
		},
		CheckpointPercents:  []int{25, 50, 75, 100},
		SlackTolerance:      0.75,
		FollowUpMaxAgeHours: 24,
		MaxFollowUps:        2,
		TickSeconds:         60,
	}
}

// Load reads configuration from an optional JSON file, fills defaults,
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	for name, rate := range c.ResponseRates {
		if _, err := types.ParseTier(name); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if rate <= 0 || rate > 1 {
			return fmt.Errorf("config error: response rate for %s must be in (0,1], got %v", name, rate)
		}
	}
	if len(c.CheckpointPercents) == 0 {
		return fmt.Errorf("config error: checkpoint_percents is empty")
	}
	if !sort.IntsAreSorted(c.CheckpointPercents) {
		return fmt.Errorf("config error: checkpoint_percents must be ascending")
	}
	last := c.CheckpointPercents[len(c.CheckpointPercents)-1]
	if last != 100 {
		return fmt.Errorf("config error: checkpoint schedule must end at 100, got %d", last)
	}
	for _, pct := range c.CheckpointPercents {
		if pct <= 0 || pct > 100 {
			return fmt.Errorf("config error: checkpoint percent %d out of range", pct)
		}
	}
	if c.SlackTolerance <= 0 || c.SlackTolerance > 1 {
		return fmt.Errorf("config error: slack_tolerance must be in (0,1], got %v", c.SlackTolerance)
	}
	if c.MaxFollowUps < 0 {
		return fmt.Errorf("config error: max_follow_ups must be non-negative")
	}
	return nil
}

// Rates converts the configured table into the planner's form.
func (c *Config) Rates() planning.RateTable {
	out := make(planning.RateTable, len(c.ResponseRates))
	for name, rate := range c.ResponseRates {
		t, err := types.ParseTier(name)
		if err != nil {
			continue // Validate already rejected unknown names
		}
		out[t] = rate
	}
	return out
}
