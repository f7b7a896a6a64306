package sim

import (
	"math"
	"slices"
)

// Apply advances the run by one event and returns the next run together with
// the commands the host must execute. The input run is never modified.
//
// Events that make no sense in the current phase are ignored: the returned run
// equals the input and no commands are produced.
func Apply(r Run, ev Event) (Run, []Command) {
	next := r.clone()

	var cmds []Command
	switch e := ev.(type) {
	case SpawnTick:
		cmds = next.spawn(e.X)
	case MotionTick:
		cmds = next.motion()
	case InputMoved:
		cmds = next.move(e.X)
	case EaseDue:
		cmds = next.ease(e.Seq)
	case AppLifecycle:
		next.lifecycle(e.State)
	case Pause:
		if !next.terminal {
			next.paused = true
		}
	case Resume:
		cmds = next.resume()
	case EffectExpired:
		next.effects = slices.DeleteFunc(next.effects, func(fx Effect) bool {
			return fx.Seq == e.Seq
		})
	case Reset:
		if !next.terminal {
			return r, nil
		}
		background, easeSeq := next.background, next.easeSeq
		next = New(next.rules)
		next.background = background
		next.paused = background
		next.easeSeq = easeSeq
	default:
		return r, nil
	}

	return next, append(timerCommands(r, next), cmds...)
}

// ApplyAll folds a sequence of events over a run, collecting every command.
func ApplyAll(r Run, events ...Event) (Run, []Command) {
	var all []Command
	for _, ev := range events {
		var cmds []Command
		r, cmds = Apply(r, ev)
		all = append(all, cmds...)
	}
	return r, all
}

// timerCommands emits start/stop commands for timers whose desired state
// changed between two runs.
func timerCommands(prev, next Run) []Command {
	var cmds []Command
	if prev.spawnerActive() != next.spawnerActive() {
		if next.spawnerActive() {
			cmds = append(cmds, StartTimer{Timer: TimerSpawn})
		} else {
			cmds = append(cmds, StopTimer{Timer: TimerSpawn})
		}
	}
	if prev.moverActive() != next.moverActive() {
		if next.moverActive() {
			cmds = append(cmds, StartTimer{Timer: TimerMotion})
		} else {
			cmds = append(cmds, StopTimer{Timer: TimerMotion})
		}
	}
	return cmds
}

// spawn adds one enemy at the spawn line.
func (r *Run) spawn(x float64) []Command {
	if !r.spawnerActive() {
		return nil
	}
	band := r.rules.SpawnBand
	x = math.Max(-band, math.Min(band, x))

	r.enemies = append(r.enemies, Enemy{ID: r.nextID, X: x, Y: r.rules.SpawnY})
	r.nextID++
	return r.detect()
}

// motion applies one motion tick: retired enemies from earlier ticks are
// dropped, the rest advance, then passes are scored and collisions detected.
func (r *Run) motion() []Command {
	if !r.moverActive() {
		return nil
	}
	r.ticks++
	r.evictRetired()
	r.enemies = advance(r.enemies, r.rules.PassY, r.rules.Step)
	r.scorePasses()
	return r.detect()
}

// advance moves every enemy above the pass line down by one step.
// Enemies at or past the line are returned unchanged.
func advance(enemies []Enemy, passY, step float64) []Enemy {
	out := make([]Enemy, len(enemies))
	for i, e := range enemies {
		if e.Y < passY {
			e.Y += step
		}
		out[i] = e
	}
	return out
}

// scorePasses awards points for enemies that crossed the pass line untouched.
func (r *Run) scorePasses() {
	if r.terminal {
		return
	}
	for _, e := range r.enemies {
		if e.Y < r.rules.PassY || r.passed.has(e.ID) || r.collided.has(e.ID) {
			continue
		}
		r.score += r.rules.PointsPerPass * r.rules.Multiplier
		r.passed[e.ID] = struct{}{}
	}
}

// detect checks every live enemy against the player's collision window.
// Each hit costs one life; the hit that takes the last life ends the run.
func (r *Run) detect() []Command {
	if r.paused || r.terminal {
		return nil
	}

	var cmds []Command
	for _, e := range r.enemies {
		if r.terminal {
			break
		}
		if r.passed.has(e.ID) || r.collided.has(e.ID) {
			continue
		}
		if math.Abs(e.X-r.playerX) >= r.rules.HitRadiusX {
			continue
		}
		if math.Abs(e.Y-r.rules.PlayerY) >= r.rules.HitRadiusY {
			continue
		}

		r.lives--
		r.collided[e.ID] = struct{}{}

		seq := r.nextEffect
		r.nextEffect++
		r.effects = append(r.effects, Effect{Seq: seq, EnemyID: e.ID, X: e.X, Y: e.Y})
		cmds = append(cmds, ScheduleEffectExpiry{Seq: seq, After: r.rules.EffectDuration})

		if r.lives <= 0 {
			r.lives = 0
			r.terminal = true
			cmds = append(cmds, SubmitScore{
				UserID: r.rules.UserID,
				Score:  r.score,
				Hood:   r.rules.Hood,
			})
		}
	}
	return cmds
}

// evictRetired drops enemies that were scored or hit. Their ids stay in the
// passed/collided sets so they can never be counted again.
func (r *Run) evictRetired() {
	r.enemies = slices.DeleteFunc(r.enemies, func(e Enemy) bool {
		return r.passed.has(e.ID) || r.collided.has(e.ID)
	})
}

// move updates the player position, easing back inside the travel bound.
func (r *Run) move(x float64) []Command {
	if r.terminal {
		return nil
	}
	r.playerX = x
	r.easeSeq++
	return append(r.scheduleEase(), r.detect()...)
}

// scheduleEase asks for the player to be brought back inside the travel bound
// when it is outside. The ease is tied to the current movement sequence.
func (r *Run) scheduleEase() []Command {
	target, ok := EaseTarget(r.playerX, r.rules.TravelBound, r.rules.EaseMargin)
	if !ok {
		return nil
	}
	return []Command{ScheduleEase{Seq: r.easeSeq, Target: target, After: r.rules.EaseDuration}}
}

// ease applies a due ease. Stale eases are ignored; an ease that falls due
// while paused is re-issued on resume.
func (r *Run) ease(seq int) []Command {
	if seq != r.easeSeq || r.paused || r.terminal {
		return nil
	}
	target, ok := EaseTarget(r.playerX, r.rules.TravelBound, r.rules.EaseMargin)
	if !ok {
		return nil
	}
	r.playerX = target
	r.easeSeq++
	return r.detect()
}

// EaseTarget returns where a player at x should settle when it overshoots the
// travel bound. ok is false when x is within the bound.
func EaseTarget(x, bound, margin float64) (target float64, ok bool) {
	switch {
	case x > bound:
		return bound - margin, true
	case x < -bound:
		return -bound + margin, true
	default:
		return x, false
	}
}

// lifecycle handles the host going to the background and back.
// Leaving the foreground pauses the run; returning does not resume it.
func (r *Run) lifecycle(state AppState) {
	switch state {
	case AppActive:
		r.background = false
	case AppInactive, AppBackground:
		r.background = true
		if !r.terminal {
			r.paused = true
		}
	}
}

// resume lifts a pause and re-checks collisions at the frozen positions.
// A player left outside the travel bound gets a fresh ease.
func (r *Run) resume() []Command {
	if r.terminal || !r.paused || r.background {
		return nil
	}
	r.paused = false

	var cmds []Command
	if _, ok := EaseTarget(r.playerX, r.rules.TravelBound, r.rules.EaseMargin); ok {
		r.easeSeq++
		cmds = r.scheduleEase()
	}
	return append(cmds, r.detect()...)
}
