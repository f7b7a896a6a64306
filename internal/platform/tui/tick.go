// Package tui provides the Bubble Tea host for Space Dodge.
// It owns the timers that drive the simulation, maps terminal input and focus
// changes to simulation events, renders the field, and serves the same UI over
// SSH.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/space-dodge/internal/sim"
)

// hostIDs numbers game models so messages scheduled by a model that has since
// been replaced are not delivered to its successor.
var hostIDs atomic.Uint64

// timerMsg is delivered when a periodic timer fires. gen identifies the arming
// of the timer that produced it; stale generations are dropped.
type timerMsg struct {
	host  uint64
	timer sim.Timer
	gen   int
}

// effectMsg ends a collision effect.
type effectMsg struct {
	host uint64
	seq  int
}

// easeMsg delivers a scheduled ease back inside the travel bound.
type easeMsg struct {
	host uint64
	seq  int
}

// submitResultMsg reports the outcome of a score submission. run numbers the
// run within its model so a late result never lands on a restarted run.
type submitResultMsg struct {
	host  uint64
	run   int
	score int
	err   error
}

// timerCmd fires one tick of a periodic timer after interval.
// The model re-arms the timer after handling the tick, so ticks never overlap.
func timerCmd(host uint64, t sim.Timer, gen int, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return timerMsg{host: host, timer: t, gen: gen}
	})
}

// afterCmd delivers msg once after d.
func afterCmd(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}
