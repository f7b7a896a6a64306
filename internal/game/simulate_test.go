package game

import (
	"testing"
	"time"

	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/sim"
)

func TestSimulateDeterminism(t *testing.T) {
	cfg := core.RuntimeConfig{Seed: 12345}
	opts := SimulateOptions{MaxTicks: 400, Pilot: Dodger()}

	r1 := Simulate(New(sim.DefaultRules(), DefaultTiming()), cfg, opts)
	r2 := Simulate(New(sim.DefaultRules(), DefaultTiming()), cfg, opts)

	if r1.Score != r2.Score {
		t.Errorf("Determinism failed: scores differ. Run1=%d, Run2=%d", r1.Score, r2.Score)
	}
	if r1.Ticks != r2.Ticks || r1.Spawned != r2.Spawned || r1.Collided != r2.Collided {
		t.Errorf("Determinism failed: %+v vs %+v", r1, r2)
	}
	if r1.Elapsed != r2.Elapsed {
		t.Errorf("Determinism failed: elapsed %v vs %v", r1.Elapsed, r2.Elapsed)
	}
}

func TestSimulateVirtualClock(t *testing.T) {
	res := Simulate(New(sim.DefaultRules(), DefaultTiming()), core.RuntimeConfig{Seed: 1}, SimulateOptions{MaxTicks: 10})

	if res.Ticks != 10 {
		t.Errorf("Ticks = %d, expected 10", res.Ticks)
	}
	if res.Elapsed != 5*time.Second {
		t.Errorf("Elapsed = %v, expected 5s", res.Elapsed)
	}
	if res.Spawned != 1 {
		t.Errorf("Spawned = %d, expected 1 (first spawn at 3s)", res.Spawned)
	}
	if res.GameOver {
		t.Error("no enemy can reach the player within 10 ticks")
	}
}

func TestSimulateSubmitsOnce(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		res := Simulate(New(sim.DefaultRules(), DefaultTiming()), core.RuntimeConfig{Seed: seed}, SimulateOptions{MaxTime: 30 * time.Minute})

		if res.Passed+res.Collided > res.Spawned {
			t.Errorf("seed %d: passed %d + collided %d exceeds spawned %d", seed, res.Passed, res.Collided, res.Spawned)
		}
		if res.GameOver {
			if len(res.Submissions) != 1 {
				t.Errorf("seed %d: got %d submissions, expected 1", seed, len(res.Submissions))
				continue
			}
			if res.Submissions[0].Score != res.Score || res.Lives != 0 {
				t.Errorf("seed %d: submission %+v, final score %d lives %d", seed, res.Submissions[0], res.Score, res.Lives)
			}
		} else if len(res.Submissions) != 0 {
			t.Errorf("seed %d: run still going but submitted %v", seed, res.Submissions)
		}
	}
}

func TestSimulateHoldAt(t *testing.T) {
	res := Simulate(New(sim.DefaultRules(), DefaultTiming()), core.RuntimeConfig{Seed: 1}, SimulateOptions{MaxTicks: 1, Pilot: HoldAt(60)})
	if res.Final.PlayerX != 60 {
		t.Errorf("PlayerX = %v, expected 60", res.Final.PlayerX)
	}
}

func TestSimulateEasesBackInsideBound(t *testing.T) {
	once := func(run sim.Run) (float64, bool) {
		return 160, run.Ticks() == 1
	}
	res := Simulate(New(sim.DefaultRules(), DefaultTiming()), core.RuntimeConfig{Seed: 1}, SimulateOptions{MaxTicks: 3, Pilot: once})
	if res.Final.PlayerX != 118 {
		t.Errorf("PlayerX = %v, expected the ease to settle at 118", res.Final.PlayerX)
	}
}

func TestDodgerSidesteps(t *testing.T) {
	events := []sim.Event{sim.SpawnTick{X: 0}}
	for i := 0; i < 13; i++ {
		events = append(events, sim.MotionTick{})
	}
	run, _ := sim.ApplyAll(sim.New(sim.DefaultRules()), events...)

	x, ok := Dodger()(run)
	if !ok {
		t.Fatal("Dodger should move away from an enemy one step above the player")
	}
	if x != -40 {
		t.Errorf("Dodger moved to %v, expected -40", x)
	}

	run, _ = sim.Apply(run, sim.InputMoved{X: x})
	run, _ = sim.Apply(run, sim.MotionTick{})
	if run.Lives() != 3 {
		t.Errorf("lives = %d after dodging, expected 3", run.Lives())
	}
}
