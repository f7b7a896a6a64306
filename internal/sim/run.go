package sim

import (
	"maps"
	"slices"
)

// Enemy is a falling obstacle. X is fixed for its lifetime.
type Enemy struct {
	ID int
	X  float64
	Y  float64
}

// Effect is a transient collision marker shown at the point of impact.
type Effect struct {
	Seq     int
	EnemyID int
	X       float64
	Y       float64
}

// Phase is the lifecycle phase of a run.
type Phase int

const (
	PhaseRunning Phase = iota
	PhasePaused
	PhaseGameOver
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

type idSet map[int]struct{}

func (s idSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

// Run is the complete state of one play session.
// Values are immutable from the caller's point of view: Apply never modifies
// the Run it is given.
type Run struct {
	rules Rules

	score      int
	lives      int
	paused     bool
	terminal   bool
	background bool
	playerX    float64

	nextID     int
	nextEffect int
	easeSeq    int // Bumped on every player movement
	ticks      int

	enemies  []Enemy
	passed   idSet
	collided idSet
	effects  []Effect
}

// New returns a fresh run in the running phase.
// The host should execute StartCommands() to arm the timers.
func New(rules Rules) Run {
	rules = rules.normalized()
	return Run{
		rules:    rules,
		lives:    rules.StartLives,
		passed:   make(idSet),
		collided: make(idSet),
	}
}

// Start returns a fresh run together with the commands that arm its timers.
func Start(rules Rules) (Run, []Command) {
	r := New(rules)
	return r, r.StartCommands()
}

// StartCommands returns the timer commands matching the run's current phase.
func (r Run) StartCommands() []Command {
	var cmds []Command
	if r.spawnerActive() {
		cmds = append(cmds, StartTimer{Timer: TimerSpawn})
	}
	if r.moverActive() {
		cmds = append(cmds, StartTimer{Timer: TimerMotion})
	}
	return cmds
}

// Rules returns the parameters this run was started with.
func (r Run) Rules() Rules { return r.rules }

// Score returns the current score.
func (r Run) Score() int { return r.score }

// Lives returns the remaining lives.
func (r Run) Lives() int { return r.lives }

// PlayerX returns the player's horizontal offset.
func (r Run) PlayerX() float64 { return r.playerX }

// Paused reports whether motion and spawning are suspended.
func (r Run) Paused() bool { return r.paused }

// Terminal reports whether the run has ended.
func (r Run) Terminal() bool { return r.terminal }

// Foreground reports whether the host application is active.
func (r Run) Foreground() bool { return !r.background }

// NextID returns the id the next spawned enemy will receive.
func (r Run) NextID() int { return r.nextID }

// Ticks returns the number of motion ticks applied in this run.
func (r Run) Ticks() int { return r.ticks }

// Phase returns the current lifecycle phase.
func (r Run) Phase() Phase {
	switch {
	case r.terminal:
		return PhaseGameOver
	case r.paused:
		return PhasePaused
	default:
		return PhaseRunning
	}
}

// Enemies returns a copy of the active enemies.
func (r Run) Enemies() []Enemy { return slices.Clone(r.enemies) }

// Effects returns a copy of the visible collision effects.
func (r Run) Effects() []Effect { return slices.Clone(r.effects) }

// HasPassed reports whether the enemy was scored for passing the player.
func (r Run) HasPassed(id int) bool { return r.passed.has(id) }

// HasCollided reports whether the enemy hit the player.
func (r Run) HasCollided(id int) bool { return r.collided.has(id) }

// PassedCount returns how many enemies were scored this run.
func (r Run) PassedCount() int { return len(r.passed) }

// CollidedCount returns how many enemies hit the player this run.
func (r Run) CollidedCount() int { return len(r.collided) }

// spawnerActive reports whether the spawn timer should be running.
func (r Run) spawnerActive() bool {
	return !r.background && !r.paused && !r.terminal
}

// moverActive reports whether the motion timer should be running.
func (r Run) moverActive() bool {
	return !r.paused && !r.terminal
}

// clone returns a deep copy so transitions never alias the caller's run.
func (r Run) clone() Run {
	c := r
	c.enemies = slices.Clone(r.enemies)
	c.effects = slices.Clone(r.effects)
	c.passed = maps.Clone(r.passed)
	c.collided = maps.Clone(r.collided)
	if c.passed == nil {
		c.passed = make(idSet)
	}
	if c.collided == nil {
		c.collided = make(idSet)
	}
	return c
}

// Snapshot is a read-only view of a run for rendering and transport.
type Snapshot struct {
	Phase      Phase    `json:"phase"`
	Score      int      `json:"score"`
	Lives      int      `json:"lives"`
	Multiplier int      `json:"multiplier"`
	PlayerX    float64  `json:"player_x"`
	Ticks      int      `json:"ticks"`
	NextID     int      `json:"next_id"`
	Enemies    []Enemy  `json:"enemies"`
	Effects    []Effect `json:"effects"`
	Foreground bool     `json:"foreground"`
}

// Snapshot returns the current state as a Snapshot.
func (r Run) Snapshot() Snapshot {
	return Snapshot{
		Phase:      r.Phase(),
		Score:      r.score,
		Lives:      r.lives,
		Multiplier: r.rules.Multiplier,
		PlayerX:    r.playerX,
		Ticks:      r.ticks,
		NextID:     r.nextID,
		Enemies:    r.Enemies(),
		Effects:    r.Effects(),
		Foreground: !r.background,
	}
}
