package game

import (
	"math"
	"time"

	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/sim"
)

// Pilot decides where the player should be after each motion tick.
// ok is false when the player should stay where it is.
type Pilot func(run sim.Run) (x float64, ok bool)

// HoldAt returns a pilot that parks the player at x and never moves again.
func HoldAt(x float64) Pilot {
	return func(run sim.Run) (float64, bool) {
		return x, run.PlayerX() != x
	}
}

// Dodger returns a pilot that sidesteps any enemy about to enter the
// collision window, choosing the nearest clear position inside the bound.
func Dodger() Pilot {
	return func(run sim.Run) (float64, bool) {
		r := run.Rules()
		if !threatened(run, run.PlayerX()) {
			return 0, false
		}
		for d := r.HitRadiusX; d <= 2*r.TravelBound; d += r.HitRadiusX / 2 {
			for _, x := range []float64{run.PlayerX() - d, run.PlayerX() + d} {
				if math.Abs(x) <= r.TravelBound && !threatened(run, x) {
					return x, true
				}
			}
		}
		return 0, false
	}
}

// threatened reports whether an enemy will be inside the collision window
// around x within the next motion tick.
func threatened(run sim.Run, x float64) bool {
	r := run.Rules()
	for _, e := range run.Enemies() {
		if run.HasPassed(e.ID) || run.HasCollided(e.ID) {
			continue
		}
		if math.Abs(e.X-x) >= r.HitRadiusX {
			continue
		}
		if e.Y+r.Step > r.PlayerY-r.HitRadiusY && e.Y < r.PlayerY+r.HitRadiusY {
			return true
		}
	}
	return false
}

// SimulateOptions bounds a headless run.
type SimulateOptions struct {
	MaxTicks int           // Stop after this many motion ticks (0 = no limit)
	MaxTime  time.Duration // Stop when the virtual clock passes this (0 = 1h)
	Pilot    Pilot         // Moves the player after motion ticks (nil = stand still)
}

// SimulateResult summarizes a headless run.
type SimulateResult struct {
	Seed        int64
	Score       int
	Lives       int
	Ticks       int
	Spawned     int
	Passed      int
	Collided    int
	GameOver    bool
	Elapsed     time.Duration
	Submissions []sim.SubmitScore
	Final       sim.Snapshot
}

// pending is a scheduled delivery on the virtual clock.
type pending struct {
	at    time.Duration
	order int
	timer sim.Timer
	gen   int
	tick  bool      // periodic timer tick
	event sim.Event // one-shot event when tick is false
}

// clock is a virtual timer queue. Timers are cancelled by bumping their
// generation; deliveries carrying an older generation are dropped.
type clock struct {
	now   time.Duration
	order int
	queue []pending
	gens  map[sim.Timer]int
}

func (c *clock) push(p pending) {
	p.order = c.order
	c.order++
	c.queue = append(c.queue, p)
}

func (c *clock) pop() (pending, bool) {
	if len(c.queue) == 0 {
		return pending{}, false
	}
	best := 0
	for i, p := range c.queue[1:] {
		q := c.queue[best]
		if p.at < q.at || (p.at == q.at && p.order < q.order) {
			best = i + 1
		}
	}
	p := c.queue[best]
	c.queue = append(c.queue[:best], c.queue[best+1:]...)
	return p, true
}

// Simulate drives a fresh run from a virtual clock until it ends or a limit is
// hit. The same seed, options and rules always produce the same result.
func Simulate(g *Game, cfg core.RuntimeConfig, opts SimulateOptions) SimulateResult {
	if opts.MaxTime <= 0 {
		opts.MaxTime = time.Hour
	}
	timing := g.Timing()
	period := map[sim.Timer]time.Duration{
		sim.TimerSpawn:  timing.SpawnEvery,
		sim.TimerMotion: timing.MotionEvery,
	}

	c := &clock{gens: make(map[sim.Timer]int)}
	var res SimulateResult

	execute := func(cmds []sim.Command) {
		for _, cmd := range cmds {
			switch cmd := cmd.(type) {
			case sim.StartTimer:
				c.gens[cmd.Timer]++
				c.push(pending{at: c.now + period[cmd.Timer], timer: cmd.Timer, gen: c.gens[cmd.Timer], tick: true})
			case sim.StopTimer:
				c.gens[cmd.Timer]++
			case sim.ScheduleEffectExpiry:
				c.push(pending{at: c.now + cmd.After, event: sim.EffectExpired{Seq: cmd.Seq}})
			case sim.ScheduleEase:
				c.push(pending{at: c.now + cmd.After, event: sim.EaseDue{Seq: cmd.Seq}})
			case sim.SubmitScore:
				res.Submissions = append(res.Submissions, cmd)
			}
		}
	}

	execute(g.Reset(cfg))
	res.Seed = g.Seed()

	for {
		run := g.Run()
		if run.Terminal() || (opts.MaxTicks > 0 && run.Ticks() >= opts.MaxTicks) {
			break
		}
		p, ok := c.pop()
		if !ok || p.at > opts.MaxTime {
			break
		}
		if p.tick && p.gen != c.gens[p.timer] {
			continue
		}
		c.now = p.at

		if !p.tick {
			execute(g.Apply(p.event))
			continue
		}

		switch p.timer {
		case sim.TimerSpawn:
			execute(g.Spawn())
		case sim.TimerMotion:
			execute(g.Apply(sim.MotionTick{}))
			if opts.Pilot != nil {
				if x, move := opts.Pilot(g.Run()); move {
					execute(g.MoveTo(x))
				}
			}
		}
		// Re-arm only after the tick was handled and nothing cancelled it.
		if p.gen == c.gens[p.timer] {
			c.push(pending{at: c.now + period[p.timer], timer: p.timer, gen: p.gen, tick: true})
		}
	}

	run := g.Run()
	res.Score = run.Score()
	res.Lives = run.Lives()
	res.Ticks = run.Ticks()
	res.Spawned = run.NextID()
	res.Passed = run.PassedCount()
	res.Collided = run.CollidedCount()
	res.GameOver = run.Terminal()
	res.Elapsed = c.now
	res.Final = run.Snapshot()
	return res
}
