package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/game"
	"github.com/vovakirdan/space-dodge/internal/sim"
)

// GameOptions wires a game screen to its collaborators.
type GameOptions struct {
	Submitter     ScoreSubmitter // nil disables score submission
	SubmitTimeout time.Duration  // Per-submission deadline (0 = 5s)
	Logger        *log.Logger    // nil discards log output
	ExitOnBack    bool           // Back quits the program instead of returning to a menu
}

// GameModel is the Bubble Tea model hosting one Space Dodge run.
// It arms and cancels the spawn and motion timers on the simulation's request.
// Each arming gets a new generation; a tick whose generation is no longer
// current is dropped and not re-armed, so a stopped timer never fires into
// the run. Timer, effect and ease messages also carry the model's id and are
// ignored by any other model.
type GameModel struct {
	id         uint64
	game       *game.Game
	screen     *core.Screen
	config     core.RuntimeConfig
	opts       GameOptions
	keyMapper  *KeyMapper
	gens       [2]int // Current generation per sim.Timer
	runs       int    // Restarts so far; tags score submissions
	startCmd   tea.Cmd
	status     string // Result of the last score submission
	quitting   bool
	backToMenu bool
}

// NewGameModel starts a fresh run of g sized to cfg.
func NewGameModel(g *game.Game, cfg core.RuntimeConfig, opts GameOptions) GameModel {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	m := GameModel{
		id:        hostIDs.Add(1),
		game:      g,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:    cfg,
		opts:      opts,
		keyMapper: NewKeyMapper(),
	}
	m.startCmd = m.execute(g.Reset(cfg))
	m.config.Seed = g.Seed()
	opts.Logger.Debug("run started", "seed", m.config.Seed)
	return m
}

// Init arms the timers of the new run.
func (m GameModel) Init() tea.Cmd {
	return m.startCmd
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.FocusMsg:
		return m, m.apply(sim.AppLifecycle{State: sim.AppActive})

	case tea.BlurMsg:
		return m, m.apply(sim.AppLifecycle{State: sim.AppBackground})

	case timerMsg:
		return m.handleTimer(msg)

	case effectMsg:
		if msg.host != m.id {
			return m, nil
		}
		return m, m.apply(sim.EffectExpired{Seq: msg.seq})

	case easeMsg:
		if msg.host != m.id {
			return m, nil
		}
		return m, m.apply(sim.EaseDue{Seq: msg.seq})

	case submitResultMsg:
		if msg.host != m.id || msg.run != m.runs {
			logSubmitResult(m.opts.Logger, msg)
			return m, nil
		}
		if msg.err != nil {
			m.opts.Logger.Error("score submission failed", "score", msg.score, "err", msg.err)
			m.status = "Score could not be saved"
		} else {
			m.opts.Logger.Info("score submitted", "score", msg.score)
			m.status = "Score saved"
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	frame := core.NewInputFrame()
	if m.keyMapper.MapKeyToFrame(msg, &frame) {
		m.quitting = true
		return m, tea.Quit
	}

	st := m.game.State()
	if frame.Has(core.ActionBack) && (st.GameOver || st.Paused) {
		m.backToMenu = true
		if m.opts.ExitOnBack {
			return m, tea.Quit
		}
		return m, nil
	}

	cmds := m.game.HandleInput(frame)
	if frame.Has(core.ActionRestart) && st.GameOver && !m.game.State().GameOver {
		m.status = ""
		m.runs++
		m.opts.Logger.Debug("run restarted")
	}
	return m, m.execute(cmds)
}

// handleMouse steers the ship toward the pointer while the left button is held.
func (m GameModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
		return m, nil
	}
	return m, m.execute(m.game.MoveToColumn(msg.X, m.screen.Width()))
}

// handleTimer runs one spawn or motion tick and re-arms the timer unless the
// tick cancelled it.
func (m GameModel) handleTimer(msg timerMsg) (tea.Model, tea.Cmd) {
	if msg.host != m.id || msg.gen != m.gens[msg.timer] {
		return m, nil
	}

	var cmds []sim.Command
	switch msg.timer {
	case sim.TimerSpawn:
		cmds = m.game.Spawn()
	case sim.TimerMotion:
		cmds = m.game.Apply(sim.MotionTick{})
	}
	cmd := m.execute(cmds)

	if msg.gen == m.gens[msg.timer] {
		cmd = tea.Batch(cmd, timerCmd(m.id, msg.timer, msg.gen, m.period(msg.timer)))
	}
	return m, cmd
}

// apply feeds one event to the run and executes the resulting commands.
func (m *GameModel) apply(ev sim.Event) tea.Cmd {
	return m.execute(m.game.Apply(ev))
}

// execute turns simulation commands into Bubble Tea commands.
func (m *GameModel) execute(cmds []sim.Command) tea.Cmd {
	var out []tea.Cmd
	for _, c := range cmds {
		switch c := c.(type) {
		case sim.StartTimer:
			m.gens[c.Timer]++
			out = append(out, timerCmd(m.id, c.Timer, m.gens[c.Timer], m.period(c.Timer)))
		case sim.StopTimer:
			m.gens[c.Timer]++
		case sim.ScheduleEffectExpiry:
			out = append(out, afterCmd(c.After, effectMsg{host: m.id, seq: c.Seq}))
		case sim.ScheduleEase:
			out = append(out, afterCmd(c.After, easeMsg{host: m.id, seq: c.Seq}))
		case sim.SubmitScore:
			m.opts.Logger.Info("game over", "score", c.Score, "user", c.UserID, "hood", c.Hood)
			out = append(out, m.submitCmd(c))
		}
	}
	return tea.Batch(out...)
}

// submitCmd sends the final score in the background. The result is only
// reported back for logging; the run stays in game over either way.
func (m *GameModel) submitCmd(c sim.SubmitScore) tea.Cmd {
	sub := m.opts.Submitter
	if sub == nil {
		return nil
	}
	m.status = "Saving score..."
	timeout := m.opts.SubmitTimeout
	host, run := m.id, m.runs
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := sub.SubmitScore(ctx, c.UserID, c.Score, c.Hood)
		return submitResultMsg{host: host, run: run, score: c.Score, err: err}
	}
}

// logSubmitResult records a submission outcome that has no run to report to.
func logSubmitResult(logger *log.Logger, res submitResultMsg) {
	if res.err != nil {
		logger.Error("score submission failed", "score", res.score, "err", res.err)
		return
	}
	logger.Info("score submitted", "score", res.score)
}

func (m *GameModel) period(t sim.Timer) time.Duration {
	if t == sim.TimerSpawn {
		return m.game.Timing().SpawnEvery
	}
	return m.game.Timing().MotionEvery
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		m.opts.Logger.Warn("cannot save screenshot", "err", err)
		return
	}
	dir := filepath.Join(home, ".spacedodge", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.opts.Logger.Warn("cannot save screenshot", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.opts.Logger.Warn("cannot save screenshot", "err", err)
		return
	}
	m.opts.Logger.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	if m.status != "" && m.game.State().GameOver {
		m.screen.DrawTextCentered(m.screen.Bounds(), m.screen.Height()-2, m.status, core.ColorGray)
	}
	return RenderScreen(m.screen)
}

// State returns the summary of the hosted run.
func (m GameModel) State() core.GameState {
	return m.game.State()
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}
