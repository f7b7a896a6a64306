package config

import (
	_ "embed"
)

//go:embed defaults/dodge.yaml
var defaultDodgeYAML []byte

// DefaultDodgeConfig returns the built-in configuration.
// It mirrors defaults/dodge.yaml and is used when the embedded file cannot be parsed.
func DefaultDodgeConfig() DodgeConfig {
	return DodgeConfig{
		Field: FieldConfig{
			SpawnBand:   120,
			SpawnY:      -850,
			PassY:       100,
			PlayerY:     -200,
			TravelBound: 120,
			EaseMargin:  2,
		},
		Motion: MotionConfig{
			Step:          47.5,
			SpawnEveryMS:  3000,
			MotionEveryMS: 500,
			EaseMS:        100,
			KeyStep:       15,
		},
		Collision: CollisionConfig{
			HitRadiusX: 40,
			HitRadiusY: 20,
			EffectMS:   900,
		},
		Rules: RulesConfig{
			Lives:         3,
			Multiplier:    1,
			PointsPerPass: 100,
		},
		Backend: BackendConfig{
			URL:       "http://localhost:8080",
			UserID:    1,
			Hood:      "TheBronx",
			TimeoutMS: 5000,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			DBPath:         "~/.spacedodge/spacedodge.db",
			CoinDivisor:    100,
			HeartPrice:     50,
			SSHAddr:        ":23234",
			IdleTimeoutMin: 30,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultDodgeYAML
}
