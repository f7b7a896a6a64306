package sim

import "time"

// Event is an input to the state machine.
type Event interface {
	simEvent()
}

// SpawnTick is sent by the spawn timer. X is drawn by the host so the machine
// stays deterministic.
type SpawnTick struct {
	X float64
}

func (SpawnTick) simEvent() {}

// MotionTick is sent by the motion timer.
type MotionTick struct{}

func (MotionTick) simEvent() {}

// InputMoved carries the player's new horizontal offset.
type InputMoved struct {
	X float64
}

func (InputMoved) simEvent() {}

// EaseDue is delivered when a scheduled ease falls due. It only applies while
// Seq matches the run's latest player movement.
type EaseDue struct {
	Seq int
}

func (EaseDue) simEvent() {}

// AppState is the foreground state of the host application.
type AppState int

const (
	AppActive AppState = iota
	AppInactive
	AppBackground
)

// String returns a human-readable name for the app state.
func (s AppState) String() string {
	switch s {
	case AppActive:
		return "active"
	case AppInactive:
		return "inactive"
	case AppBackground:
		return "background"
	default:
		return "unknown"
	}
}

// AppLifecycle reports a foreground/background transition of the host.
type AppLifecycle struct {
	State AppState
}

func (AppLifecycle) simEvent() {}

// Pause suspends spawning and motion.
type Pause struct{}

func (Pause) simEvent() {}

// Resume lifts a pause. Ignored while the host is not in the foreground.
type Resume struct{}

func (Resume) simEvent() {}

// EffectExpired removes the collision effect with the given sequence number.
type EffectExpired struct {
	Seq int
}

func (EffectExpired) simEvent() {}

// Reset starts a new run. Only accepted after game over.
type Reset struct{}

func (Reset) simEvent() {}

// Command is a side effect the host must carry out after a transition.
type Command interface {
	simCommand()
}

// Timer identifies one of the periodic timers driving a run.
type Timer int

const (
	TimerSpawn Timer = iota
	TimerMotion
)

// String returns the timer name.
func (t Timer) String() string {
	if t == TimerSpawn {
		return "spawn"
	}
	return "motion"
}

// StartTimer arms a periodic timer.
type StartTimer struct {
	Timer Timer
}

func (StartTimer) simCommand() {}

// StopTimer cancels a periodic timer. Ticks already in flight must be dropped.
type StopTimer struct {
	Timer Timer
}

func (StopTimer) simCommand() {}

// ScheduleEffectExpiry asks the host to send EffectExpired{Seq} after a delay.
type ScheduleEffectExpiry struct {
	Seq   int
	After time.Duration
}

func (ScheduleEffectExpiry) simCommand() {}

// ScheduleEase asks the host to send EaseDue{Seq} after a delay, animating the
// player back to Target inside the travel bound. Any later movement makes the
// ease stale.
type ScheduleEase struct {
	Seq    int
	Target float64
	After  time.Duration
}

func (ScheduleEase) simCommand() {}

// SubmitScore is emitted exactly once per run, on entering game over.
type SubmitScore struct {
	UserID int
	Score  int
	Hood   string
}

func (SubmitScore) simCommand() {}
