// Package config provides YAML/TOML configuration loading for Space Dodge.
package config

import (
	"errors"
	"fmt"
	"time"
)

// DodgeConfig contains all configuration for the game, its backend client and
// the backend server.
type DodgeConfig struct {
	Field     FieldConfig     `yaml:"field" toml:"field"`
	Motion    MotionConfig    `yaml:"motion" toml:"motion"`
	Collision CollisionConfig `yaml:"collision" toml:"collision"`
	Rules     RulesConfig     `yaml:"rules" toml:"rules"`
	Backend   BackendConfig   `yaml:"backend" toml:"backend"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
}

// FieldConfig defines the geometry of the playfield.
type FieldConfig struct {
	SpawnBand   float64 `yaml:"spawn_band" toml:"spawn_band"`
	SpawnY      float64 `yaml:"spawn_y" toml:"spawn_y"`
	PassY       float64 `yaml:"pass_y" toml:"pass_y"`
	PlayerY     float64 `yaml:"player_y" toml:"player_y"`
	TravelBound float64 `yaml:"travel_bound" toml:"travel_bound"`
	EaseMargin  float64 `yaml:"ease_margin" toml:"ease_margin"`
}

// MotionConfig defines timer periods and movement steps.
type MotionConfig struct {
	Step          float64 `yaml:"step" toml:"step"`
	SpawnEveryMS  int     `yaml:"spawn_every_ms" toml:"spawn_every_ms"`
	MotionEveryMS int     `yaml:"motion_every_ms" toml:"motion_every_ms"`
	EaseMS        int     `yaml:"ease_ms" toml:"ease_ms"`
	KeyStep       float64 `yaml:"key_step" toml:"key_step"`
}

// CollisionConfig defines the collision window and effect timing.
type CollisionConfig struct {
	HitRadiusX float64 `yaml:"hit_radius_x" toml:"hit_radius_x"`
	HitRadiusY float64 `yaml:"hit_radius_y" toml:"hit_radius_y"`
	EffectMS   int     `yaml:"effect_ms" toml:"effect_ms"`
}

// RulesConfig defines lives and scoring.
type RulesConfig struct {
	Lives         int `yaml:"lives" toml:"lives"`
	Multiplier    int `yaml:"multiplier" toml:"multiplier"`
	PointsPerPass int `yaml:"points_per_pass" toml:"points_per_pass"`
}

// BackendConfig tells the game where to submit scores.
type BackendConfig struct {
	URL       string `yaml:"url" toml:"url"`
	UserID    int    `yaml:"user_id" toml:"user_id"`
	Hood      string `yaml:"hood" toml:"hood"`
	TimeoutMS int    `yaml:"timeout_ms" toml:"timeout_ms"`
	Offline   bool   `yaml:"offline" toml:"offline"` // Save to the local database instead
}

// ServerConfig configures the HTTP backend and the SSH server.
type ServerConfig struct {
	Addr           string `yaml:"addr" toml:"addr"`
	DBPath         string `yaml:"db_path" toml:"db_path"`
	CoinDivisor    int    `yaml:"coin_divisor" toml:"coin_divisor"` // coins = score / divisor
	HeartPrice     int    `yaml:"heart_price" toml:"heart_price"`   // coins per extra heart
	SSHAddr        string `yaml:"ssh_addr" toml:"ssh_addr"`
	HostKeyPath    string `yaml:"host_key_path" toml:"host_key_path"`
	IdleTimeoutMin int    `yaml:"idle_timeout_min" toml:"idle_timeout_min"`
}

// SpawnEvery returns the spawn timer period.
func (m MotionConfig) SpawnEvery() time.Duration {
	return time.Duration(m.SpawnEveryMS) * time.Millisecond
}

// MotionEvery returns the motion timer period.
func (m MotionConfig) MotionEvery() time.Duration {
	return time.Duration(m.MotionEveryMS) * time.Millisecond
}

// EaseDuration returns how long the ease back to the travel bound takes.
func (m MotionConfig) EaseDuration() time.Duration {
	return time.Duration(m.EaseMS) * time.Millisecond
}

// EffectDuration returns how long a collision effect stays on screen.
func (c CollisionConfig) EffectDuration() time.Duration {
	return time.Duration(c.EffectMS) * time.Millisecond
}

// Timeout returns the score submission timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// IdleTimeout returns the SSH idle timeout.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMin) * time.Minute
}

// Validate reports every value that would make the game unplayable.
func (c DodgeConfig) Validate() error {
	var errs []error
	if c.Motion.Step <= 0 {
		errs = append(errs, fmt.Errorf("motion.step must be positive, got %v", c.Motion.Step))
	}
	if c.Motion.SpawnEveryMS <= 0 {
		errs = append(errs, fmt.Errorf("motion.spawn_every_ms must be positive, got %d", c.Motion.SpawnEveryMS))
	}
	if c.Motion.MotionEveryMS <= 0 {
		errs = append(errs, fmt.Errorf("motion.motion_every_ms must be positive, got %d", c.Motion.MotionEveryMS))
	}
	if c.Field.PassY <= c.Field.SpawnY {
		errs = append(errs, fmt.Errorf("field.pass_y (%v) must be below field.spawn_y (%v)", c.Field.PassY, c.Field.SpawnY))
	}
	if c.Field.SpawnBand < 0 {
		errs = append(errs, fmt.Errorf("field.spawn_band must not be negative, got %v", c.Field.SpawnBand))
	}
	if c.Rules.Lives < 1 {
		errs = append(errs, fmt.Errorf("rules.lives must be at least 1, got %d", c.Rules.Lives))
	}
	if c.Rules.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("rules.multiplier must be at least 1, got %d", c.Rules.Multiplier))
	}
	if c.Server.CoinDivisor < 1 {
		errs = append(errs, fmt.Errorf("server.coin_divisor must be at least 1, got %d", c.Server.CoinDivisor))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
