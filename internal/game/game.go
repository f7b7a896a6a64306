// Package game hosts a Space Dodge run for a frontend.
// It owns the pure sim.Run, draws spawn positions from a seeded RNG, maps
// platform input frames to simulation events and renders the field into a
// core.Screen. Timers are left to the caller: every method returns the
// commands produced by the simulation so the host can arm, cancel or schedule
// whatever they ask for.
package game

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/sim"
)

// Visual characters for rendering
const (
	EnemyChar     = 'V'
	PlayerChar    = '▲'
	ExplosionChar = '*'
	PassLineChar  = '·'
)

// Timing holds the host-side periods that are not part of the rules.
type Timing struct {
	SpawnEvery  time.Duration // Spawn timer period
	MotionEvery time.Duration // Motion timer period
	KeyStep     float64       // X change per left/right key press
}

// DefaultTiming returns the classic timer periods.
func DefaultTiming() Timing {
	return Timing{
		SpawnEvery:  3 * time.Second,
		MotionEvery: 500 * time.Millisecond,
		KeyStep:     15,
	}
}

// RulesFromConfig builds simulation rules from a loaded configuration.
func RulesFromConfig(cfg config.DodgeConfig) sim.Rules {
	return sim.Rules{
		SpawnBand:   cfg.Field.SpawnBand,
		SpawnY:      cfg.Field.SpawnY,
		PassY:       cfg.Field.PassY,
		PlayerY:     cfg.Field.PlayerY,
		Step:        cfg.Motion.Step,
		HitRadiusX:  cfg.Collision.HitRadiusX,
		HitRadiusY:  cfg.Collision.HitRadiusY,
		TravelBound: cfg.Field.TravelBound,
		EaseMargin:  cfg.Field.EaseMargin,

		StartLives:    cfg.Rules.Lives,
		Multiplier:    cfg.Rules.Multiplier,
		PointsPerPass: cfg.Rules.PointsPerPass,

		EffectDuration: cfg.Collision.EffectDuration(),
		EaseDuration:   cfg.Motion.EaseDuration(),

		UserID: cfg.Backend.UserID,
		Hood:   cfg.Backend.Hood,
	}
}

// TimingFromConfig extracts the timer periods from a loaded configuration.
func TimingFromConfig(cfg config.DodgeConfig) Timing {
	return Timing{
		SpawnEvery:  cfg.Motion.SpawnEvery(),
		MotionEvery: cfg.Motion.MotionEvery(),
		KeyStep:     cfg.Motion.KeyStep,
	}
}

// Game wraps a run with the state a frontend needs to drive it.
type Game struct {
	rules  sim.Rules
	timing Timing
	run    sim.Run
	rng    *rand.Rand
	config core.RuntimeConfig
}

// New creates a game with the given rules. Call Reset before use.
func New(rules sim.Rules, timing Timing) *Game {
	return &Game{
		rules:  rules,
		timing: timing,
		run:    sim.New(rules),
	}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "spacedodge"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Space Dodge"
}

// Timing returns the host timer periods.
func (g *Game) Timing() Timing {
	return g.timing
}

// Reset starts a brand new run and reseeds the spawn RNG.
// A zero seed picks one from the current time.
func (g *Game) Reset(cfg core.RuntimeConfig) []sim.Command {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg.Seed = seed
	g.config = cfg
	g.rng = rand.New(rand.NewSource(seed))

	var cmds []sim.Command
	g.run, cmds = sim.Start(g.rules)
	return cmds
}

// Seed returns the seed the current RNG was started with.
func (g *Game) Seed() int64 {
	return g.config.Seed
}

// Apply feeds one event to the run.
func (g *Game) Apply(ev sim.Event) []sim.Command {
	var cmds []sim.Command
	g.run, cmds = sim.Apply(g.run, ev)
	return cmds
}

// Spawn draws a spawn position and applies a SpawnTick.
func (g *Game) Spawn() []sim.Command {
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(1))
	}
	return g.Apply(sim.SpawnTick{X: SpawnX(g.rng, g.run.Rules().SpawnBand)})
}

// SpawnX returns a uniformly distributed whole number in [-band, band].
func SpawnX(rng *rand.Rand, band float64) float64 {
	b := int(band)
	if b <= 0 {
		return 0
	}
	return float64(rng.Intn(2*b+1) - b)
}

// HandleInput maps one frame of platform actions to simulation events.
func (g *Game) HandleInput(in core.InputFrame) []sim.Command {
	var cmds []sim.Command

	if in.Has(core.ActionRestart) && g.run.Terminal() {
		cmds = append(cmds, g.Apply(sim.Reset{})...)
		return cmds
	}

	if in.Has(core.ActionPause) {
		if g.run.Paused() {
			cmds = append(cmds, g.Apply(sim.Resume{})...)
		} else {
			cmds = append(cmds, g.Apply(sim.Pause{})...)
		}
	}

	if g.run.Paused() || g.run.Terminal() {
		return cmds
	}

	dx := 0.0
	if in.Has(core.ActionLeft) {
		dx -= g.timing.KeyStep
	}
	if in.Has(core.ActionRight) {
		dx += g.timing.KeyStep
	}
	if dx != 0 {
		cmds = append(cmds, g.MoveTo(g.run.PlayerX()+dx)...)
	}
	return cmds
}

// MoveTo sets the player's horizontal offset.
func (g *Game) MoveTo(x float64) []sim.Command {
	if g.run.Paused() || g.run.Terminal() {
		return nil
	}
	return g.Apply(sim.InputMoved{X: x})
}

// MoveToColumn moves the player under a screen column, as a mouse drag does.
func (g *Game) MoveToColumn(col, width int) []sim.Command {
	lo, hi := g.viewX()
	return g.MoveTo(core.Unscale(col, 0, width-1, lo, hi))
}

// Run returns the current run.
func (g *Game) Run() sim.Run {
	return g.run
}

// State returns the summary the platform needs after each update.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.run.Score(),
		Lives:    g.run.Lives(),
		GameOver: g.run.Terminal(),
		Paused:   g.run.Paused(),
	}
}

// Snapshot returns a read-only copy of the run state.
func (g *Game) Snapshot() sim.Snapshot {
	return g.run.Snapshot()
}
