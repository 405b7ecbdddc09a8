package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rilesc555/ralph-claude/internal/config"
	"github.com/rilesc555/ralph-claude/internal/prd"
	rot "github.com/rilesc555/ralph-claude/internal/progress"
	"github.com/rilesc555/ralph-claude/internal/prompt"
	"github.com/rilesc555/ralph-claude/internal/pty"
	"github.com/rilesc555/ralph-claude/internal/term"
	"github.com/rilesc555/ralph-claude/internal/ui"
	"github.com/rilesc555/ralph-claude/internal/watch"
)

const (
	// uiTickInterval drives spinner/elapsed-time refresh.
	uiTickInterval = 100 * time.Millisecond
	// pollTickInterval drives subprocess liveness and signal checks.
	pollTickInterval = 50 * time.Millisecond
)

type uiTickMsg time.Time
type pollTickMsg time.Time
type spawnFirstMsg struct{}

func uiTickCmd() tea.Cmd {
	return tea.Tick(uiTickInterval, func(t time.Time) tea.Msg { return uiTickMsg(t) })
}

func pollTickCmd() tea.Cmd {
	return tea.Tick(pollTickInterval, func(t time.Time) tea.Msg { return pollTickMsg(t) })
}

// Model is the bubbletea program driving the whole run: it owns the
// iteration counters, the live agent session, the shared terminal state and
// the view state, and applies the state machine's verdict on every poll.
type Model struct {
	cfg *config.Config
	log *zap.Logger

	taskDir string
	prdPath string
	doc     *prd.Document

	state         State
	iteration     int
	maxIterations int
	rotCfg        rot.RotationConfig

	termState *term.State
	session   *pty.Session
	flag      *watch.Flag
	watcher   *watch.Watcher

	delayStart  time.Time
	lingerUntil time.Time
	completedAt time.Time

	sessionStart   time.Time
	iterationStart time.Time
	sessionID      string
	stopReason     string
	err            error
	userQuit       bool

	view       *ui.UI
	spin       spinner.Model
	inputMode  ui.InputMode
	sortMode   ui.StorySortMode
	selected   int
	showDetail bool

	width, height int
}

// NewModel wires up a run for the given task directory. The PRD must exist;
// the watcher failing to start is degraded to "no live reload", not fatal.
func NewModel(cfg *config.Config, log *zap.Logger, taskDir string, maxIterations int, rotCfg rot.RotationConfig) (*Model, error) {
	prdPath := filepath.Join(taskDir, prd.FileName)
	doc, err := prd.Load(prdPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", prd.FileName, err)
	}

	signals := term.Signals{
		CompletionMarker: cfg.Signals.CompletionMarker,
		StopPhrases:      cfg.Signals.StopPhrases,
	}
	termState := term.NewState(cfg.Terminal.Rows, cfg.Terminal.Cols, signals)

	flag := &watch.Flag{}
	watcher, err := watch.Start(prdPath, flag)
	if err != nil {
		log.Warn("prd watcher unavailable, live reload disabled", zap.Error(err))
		watcher = nil
	}

	sp := spinner.New()
	sp.Spinner = spinner.Points

	now := time.Now()
	m := &Model{
		cfg:            cfg,
		log:            log,
		taskDir:        taskDir,
		prdPath:        prdPath,
		doc:            doc,
		state:          Running,
		iteration:      1,
		maxIterations:  maxIterations,
		rotCfg:         rotCfg,
		termState:      termState,
		flag:           flag,
		watcher:        watcher,
		sessionStart:   now,
		iterationStart: now,
		sessionID:      "RL-" + strings.ToUpper(uuid.NewString()[:5]),
		view:           ui.New(80),
		spin:           sp,
	}
	m.selected = firstIncompleteIndex(doc)
	return m, nil
}

func firstIncompleteIndex(doc *prd.Document) int {
	for i, s := range doc.UserStories {
		if !s.Passes {
			return i
		}
	}
	return 0
}

// Init spawns the first iteration and starts the two tick streams.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return spawnFirstMsg{} },
		m.spin.Tick,
		uiTickCmd(),
		pollTickCmd(),
	)
}

// Update is the single control loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spawnFirstMsg:
		if err := m.spawnIteration(); err != nil {
			return m.fatal(err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeAgent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case uiTickMsg:
		return m, uiTickCmd()

	case pollTickMsg:
		return m.poll(time.Now())
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode == ui.ModeClaude {
		if msg.Type == tea.KeyCtrlCloseBracket {
			m.inputMode = ui.ModeRalph
			return m, nil
		}
		if m.session != nil {
			if b := pty.KeyBytes(msg); b != nil {
				_, _ = m.session.Write(b)
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit("stopped by user")
	case "tab":
		m.inputMode = ui.ModeClaude
	case "s":
		m.sortMode = m.sortMode.Toggle()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.doc != nil && m.selected < len(m.doc.UserStories)-1 {
			m.selected++
		}
	case "enter":
		m.showDetail = !m.showDetail
	case "esc":
		m.showDetail = false
	}
	return m, nil
}

// quit is the user-initiated exit: kill the child from any state and leave
// immediately, without the completion linger.
func (m *Model) quit(reason string) (tea.Model, tea.Cmd) {
	m.userQuit = true
	tr := Next(m.state, Observation{QuitRequested: true})
	m.state = tr.State
	m.teardown()
	if m.stopReason == "" {
		m.stopReason = reason
	}
	return m, tea.Quit
}

func (m *Model) fatal(err error) (tea.Model, tea.Cmd) {
	m.log.Error("fatal", zap.Error(err))
	m.err = err
	m.state = Completed
	m.teardown()
	return m, tea.Quit
}

// poll samples the terminal state, feeds the state machine, and performs
// whatever side effect the transition demands.
func (m *Model) poll(now time.Time) (tea.Model, tea.Cmd) {
	rearm := pollTickCmd()

	if m.state == Completed {
		if now.After(m.completedAt.Add(m.cfg.ExitLinger())) {
			return m, tea.Quit
		}
		return m, rearm
	}

	if m.flag.Consume() {
		if doc, err := prd.Load(m.prdPath); err == nil {
			m.doc = doc
			m.log.Info("prd reloaded",
				zap.Int("completed", doc.CompletedCount()),
				zap.Int("total", len(doc.UserStories)))
		} else {
			m.log.Warn("prd reload failed", zap.Error(err))
		}
	}

	m.termState.UpdateActivities()

	// Hold the first exit observation for a short linger so the user sees
	// the agent's final output before the engine reacts to it.
	childExited := m.exitedForMachine(now)

	obs := Observation{
		ChildExited:     childExited,
		Completion:      m.termState.HasCompletionSignal(),
		StopHook:        m.termState.HasStopHookSignal(),
		AllStoriesPass:  m.doc != nil && m.doc.AllStoriesPass(),
		AtMaxIterations: m.iteration >= m.maxIterations,
		PauseOnStop:     m.doc != nil && m.doc.PauseOnStop,
		DelayElapsed:    m.state == WaitingDelay && now.Sub(m.delayStart) >= m.cfg.IterationDelay(),
	}

	tr := Next(m.state, obs)
	if tr.State != m.state {
		m.log.Info("state change",
			zap.String("from", m.state.String()),
			zap.String("to", tr.State.String()),
			zap.Int("iteration", m.iteration))
	}
	m.state = tr.State

	switch tr.Action {
	case ActionKillChild:
		m.teardown()
		m.markCompleted(now, "all stories pass")

	case ActionStopAtMax:
		m.teardown()
		m.markCompleted(now, fmt.Sprintf("stopped after %d iterations", m.maxIterations))

	case ActionStartDelay:
		m.delayStart = now

	case ActionRespawn:
		m.betweenIterations(now)
	}

	if m.state == Completed && m.completedAt.IsZero() {
		m.markCompleted(now, "task complete")
	}
	return m, rearm
}

// exitedForMachine reports child exit to the state machine only after the
// linger window has passed.
func (m *Model) exitedForMachine(now time.Time) bool {
	if !m.termState.ChildExited() {
		return false
	}
	if m.lingerUntil.IsZero() {
		m.lingerUntil = now.Add(m.cfg.ExitLinger())
		return false
	}
	return now.After(m.lingerUntil)
}

// betweenIterations is the once-per-delay-exit bookkeeping: tear down the
// previous session, rotate the progress log, reload the PRD (short-
// circuiting to Completed when everything passes), then spawn the next
// iteration.
func (m *Model) betweenIterations(now time.Time) {
	m.teardown()

	res := rot.CheckAndRotate(m.taskDir, m.rotCfg)
	switch res.Outcome {
	case rot.RotationDone:
		m.log.Info("progress log rotated",
			zap.Int("lines", res.OriginalLines),
			zap.String("archive", res.ArchivePath))
	case rot.RotationError:
		m.log.Warn("progress rotation failed", zap.Error(res.Err))
	}

	if doc, err := prd.Load(m.prdPath); err == nil {
		m.doc = doc
	} else {
		m.log.Warn("prd reload failed", zap.Error(err))
	}
	if m.doc != nil && m.doc.AllStoriesPass() {
		m.state = Completed
		m.markCompleted(now, "all stories pass")
		return
	}

	m.iteration++
	if err := m.spawnIteration(); err != nil {
		m.err = err
		m.state = Completed
		m.markCompleted(now, "spawn failed")
		m.log.Error("spawn failed", zap.Error(err))
	}
}

func (m *Model) spawnIteration() error {
	p := prompt.Build(m.taskDir)
	s, err := pty.Spawn(m.cfg, p, m.iteration, m.termState)
	if err != nil {
		return err
	}
	m.session = s
	m.lingerUntil = time.Time{}
	m.iterationStart = time.Now()
	m.log.Info("iteration started", zap.Int("iteration", m.iteration))
	m.resizeAgent()
	return nil
}

func (m *Model) markCompleted(now time.Time, reason string) {
	if m.completedAt.IsZero() {
		m.completedAt = now
	}
	if m.stopReason == "" {
		m.stopReason = reason
	}
}

// teardown stops the current session in the required order: kill, wait,
// close the master so the reader sees EOF, join the reader.
func (m *Model) teardown() {
	if m.session == nil {
		return
	}
	m.session.Teardown()
	m.session = nil
}

// resizeAgent keeps the PTY device and the emulator in sync with the panel
// the agent renders into.
func (m *Model) resizeAgent() {
	if m.width == 0 || m.height == 0 {
		return
	}
	cols := m.width * 70 / 100
	if cols > 2 {
		cols -= 2
	}
	if cols < 40 {
		cols = 40
	}
	rows := m.height - 3
	if rows < 10 {
		rows = 10
	}
	m.termState.Resize(rows, cols)
	if m.session != nil {
		if err := m.session.Resize(rows, cols); err != nil {
			m.log.Warn("pty resize failed", zap.Error(err))
		}
	}
}

// View renders the current frame.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}

	now := time.Now()
	var delayRemaining time.Duration
	if m.state == WaitingDelay {
		delayRemaining = m.cfg.IterationDelay() - now.Sub(m.delayStart)
		if delayRemaining < 0 {
			delayRemaining = 0
		}
	}

	return m.view.Render(ui.Snapshot{
		Width:            m.width,
		Height:           m.height,
		SessionID:        m.sessionID,
		StateLabel:       m.state.String(),
		Iteration:        m.iteration,
		MaxIterations:    m.maxIterations,
		SessionElapsed:   now.Sub(m.sessionStart),
		IterationElapsed: now.Sub(m.iterationStart),
		SpinnerView:      m.spin.View(),
		Doc:              m.doc,
		SortMode:         m.sortMode,
		SelectedIndex:    m.selected,
		ShowDetail:       m.showDetail && m.doc != nil,
		Activities:       m.termState.Activities(),
		ScreenRows:       m.termState.ScreenRows(),
		InputMode:        m.inputMode,
		DelayRemaining:   delayRemaining,
		StopReason:       m.stopReason,
		Err:              m.err,
	})
}

// Err reports a fatal error once the program has exited.
func (m *Model) Err() error {
	return m.err
}

// StopReason reports why the run ended, for the post-exit summary line.
func (m *Model) StopReason() string {
	return m.stopReason
}

// Cleanup releases everything the model owns. Call after the bubbletea
// program returns.
func (m *Model) Cleanup() {
	m.teardown()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}
