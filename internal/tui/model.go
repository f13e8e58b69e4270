package tui

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpicalc/internal/calc"
	"github.com/agbru/mpicalc/internal/config"
	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/sysmon"
)

// Layout constants for the terminal UI.
const (
	headerHeight  = 1
	inputHeight   = 2
	helpHeight    = 1
	metricsHeight = 6
	minBodyHeight = 4
	tickInterval  = 500 * time.Millisecond
)

// ExecutionState tracks the evaluation in flight.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	running    bool
	progress   float64
	eta        time.Duration
	exitCode   int
}

// Model is the root bubbletea model of the interactive calculator.
type Model struct {
	header  HeaderModel
	history HistoryModel
	metrics MetricsModel
	input   textinput.Model
	help    help.Model
	keymap  KeyMap

	ExecutionState

	factory  calc.BackendFactory
	backends []string
	current  int
	session  *calc.Session
	config   config.AppConfig
	ref      *programRef

	width  int
	height int
}

// NewModel creates the model. The session starts on cfg.Backend, or on the
// first registered backend when cfg.Backend is empty or "all".
func NewModel(parentCtx context.Context, factory calc.BackendFactory, cfg config.AppConfig, version string) Model {
	backends := factory.List()
	current := 0
	for i, name := range backends {
		if name == cfg.Backend {
			current = i
		}
	}

	ti := textinput.New()
	ti.Placeholder = "x = 1 << 100; gcd(x, 48)"
	ti.Prompt = ""
	ti.Focus()

	ctx, cancel := context.WithCancel(parentCtx)
	m := Model{
		history: NewHistoryModel(cfg.Hex, cfg.ShowValue),
		metrics: NewMetricsModel(),
		input:   ti,
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		factory:  factory,
		backends: backends,
		current:  current,
		session:  calc.NewSession(cfg.MaxDigits),
		config:   cfg,
		ref:      &programRef{},
	}
	m.header = NewHeaderModel(version, m.backendName())
	return m
}

func (m Model) backendName() string {
	if len(m.backends) == 0 {
		return ""
	}
	return m.backends[m.current]
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(), sampleMemStatsCmd(), sampleSysStatsCmd())
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case ProgressMsg:
		if msg.Generation == m.generation && m.running {
			m.progress = msg.AverageProgress
			m.eta = msg.ETA
		}
		return m, nil

	case EvalResultMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.finish(msg.Entry)
		m.exitCode = apperrors.ExitCodeFor(msg.Entry.Err)
		return m, nil

	case CompareResultMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.finish(compareEntry(msg))
		m.exitCode = msg.ExitCode
		return m, nil

	case TickMsg:
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.metrics.UpdateSysStats(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) finish(e HistoryEntry) {
	m.running = false
	m.progress = 0
	m.header.SetRunning(false)
	m.history.Add(e)
	if e.Err == nil && e.Value != nil {
		m.metrics.RecordResult(e.Value.BitLen(), e.Duration)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Eval):
		return m.submit(false)

	case key.Matches(msg, m.keymap.Compare):
		return m.submit(true)

	case key.Matches(msg, m.keymap.NextBackend):
		if !m.running && len(m.backends) > 0 {
			m.current = (m.current + 1) % len(m.backends)
			m.header.SetBackend(m.backendName())
		}
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		m.history.Clear()
		return m, nil

	case key.Matches(msg, m.keymap.HistoryPrev):
		if s, ok := m.history.Prev(); ok {
			m.input.SetValue(s)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keymap.HistoryNext):
		if s, ok := m.history.Next(); ok {
			m.input.SetValue(s)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keymap.ScrollUp):
		m.history.ScrollUp(m.bodyHeight() / 2)
		return m, nil

	case key.Matches(msg, m.keymap.ScrollDown):
		m.history.ScrollDown(m.bodyHeight() / 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts evaluating the input line, on the current backend or on
// all of them. Input typed while an evaluation runs is ignored.
func (m Model) submit(compare bool) (tea.Model, tea.Cmd) {
	src := strings.TrimSpace(m.input.Value())
	if m.running || src == "" {
		return m, nil
	}
	m.input.Reset()
	m.generation++
	m.running = true
	m.progress = 0
	m.eta = 0
	m.header.SetRunning(true)

	if compare {
		return m, compareCmd(m.ctx, m.ref, m.session, m.factory.GetAll(), src, m.config.MaxDigits, m.config.Timeout, m.generation)
	}
	backend, err := m.factory.Get(m.backendName())
	if err != nil {
		m.finish(HistoryEntry{Input: src, Backend: m.backendName(), Err: err})
		return m, nil
	}
	return m, evalCmd(m.ctx, m.ref, m.session, backend, src, m.config.Timeout, m.generation)
}

func (m Model) bodyHeight() int {
	return max(m.height-headerHeight-inputHeight-helpHeight-metricsHeight, minBodyHeight)
}

func (m *Model) layout() {
	m.header.SetWidth(m.width)
	m.history.SetSize(m.width, m.bodyHeight())
	m.metrics.SetSize(m.width, metricsHeight)
	m.input.Width = max(m.width-len(m.backendName())-4, 10)
	m.help.Width = m.width
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	prompt := promptStyle.Render(m.backendName()+"> ") + m.input.View()
	status := dimStyle.Render("enter evaluates on " + m.backendName() + ", ctrl+r compares all backends")
	if m.running {
		status = progressBarStyle.Render(format.FormatProgressBarWithETA(m.progress, m.eta, 30))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.history.View(),
		m.metrics.View(),
		prompt,
		status,
		m.help.View(m.keymap),
	)
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code of
// the last evaluation.
func Run(ctx context.Context, factory calc.BackendFactory, cfg config.AppConfig, version string) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, factory, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		if apperrors.IsContextError(err) || ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// tickCmd schedules the next sampling tick.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemStatsCmd reads runtime memory stats and returns a MemStatsMsg.
func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			HeapAlloc:    ms.HeapAlloc,
			HeapSys:      ms.HeapSys,
			NumGC:        ms.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

// sampleSysStatsCmd reads host CPU and memory usage and returns a SysStatsMsg.
func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}
