// Package sim implements the Space Dodge run as a pure state machine.
//
// A Run is advanced by Apply(run, event), which returns the next Run and the
// side effects (Commands) the host must execute: arming or cancelling timers,
// scheduling the end of a collision effect, and submitting the final score.
// The package has no timers, goroutines or I/O of its own, so every rule of the
// game can be exercised by feeding events directly.
package sim

import "time"

// Rules holds the fixed parameters of a run.
// Coordinates use the field's own units: X grows to the right around a center
// line at 0, Y grows downward toward the player.
type Rules struct {
	SpawnBand   float64 // Enemies spawn with X in [-SpawnBand, +SpawnBand]
	SpawnY      float64 // Y where new enemies appear (far above the field)
	PassY       float64 // Enemies at or beyond this Y have passed the player
	PlayerY     float64 // Fixed vertical position of the player ship
	Step        float64 // Y advance per motion tick
	HitRadiusX  float64 // Horizontal collision window (strict)
	HitRadiusY  float64 // Vertical collision window around PlayerY (strict)
	TravelBound float64 // Player X beyond +-TravelBound is eased back
	EaseMargin  float64 // Eased position sits this far inside the bound

	StartLives    int // Lives at the start of a run
	Multiplier    int // Score multiplier (>= 1)
	PointsPerPass int // Base points for an enemy that passes the player

	EffectDuration time.Duration // How long a collision effect stays visible
	EaseDuration   time.Duration // How long the ease back to the bound takes

	UserID int    // Submitted with the final score
	Hood   string // Region tag submitted with the final score
}

// DefaultRules returns the classic tuning.
func DefaultRules() Rules {
	return Rules{
		SpawnBand:   120,
		SpawnY:      -850,
		PassY:       100,
		PlayerY:     -200,
		Step:        47.5,
		HitRadiusX:  40,
		HitRadiusY:  20,
		TravelBound: 120,
		EaseMargin:  2,

		StartLives:    3,
		Multiplier:    1,
		PointsPerPass: 100,

		EffectDuration: 900 * time.Millisecond,
		EaseDuration:   100 * time.Millisecond,

		UserID: 1,
		Hood:   "TheBronx",
	}
}

// normalized fills zero values that would make a run unplayable.
func (r Rules) normalized() Rules {
	if r.Multiplier < 1 {
		r.Multiplier = 1
	}
	if r.StartLives < 1 {
		r.StartLives = 1
	}
	if r.PointsPerPass <= 0 {
		r.PointsPerPass = 100
	}
	if r.Step <= 0 {
		r.Step = 47.5
	}
	return r
}
