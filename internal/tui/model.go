package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibdispatch/internal/config"
	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/format"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/sysmon"
)

const (
	sampleInterval   = time.Second
	sysHistoryLen    = 30
	tickHistoryLen   = 30
	fixedLayoutLines = 12
)

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header HeaderModel
	input  textinput.Model
	help   help.Model
	keymap KeyMap

	names       []string
	calculators []fibonacci.Calculator
	selected    int
	cfg         config.AppConfig
	clock       harness.Clock
	sampler     sysmon.Sampler

	history History
	scroll  int
	ticks   *RingBuffer
	cpu     *RingBuffer
	mem     *RingBuffer
	sys     sysmon.Stats

	parentCtx  context.Context
	cancel     context.CancelFunc
	ref        *programRef
	generation uint64
	running    bool
	progress   float64
	eta        time.Duration
	status     string

	width  int
	height int
}

// ModelOption customises a Model.
type ModelOption func(*Model)

// WithSampler replaces the gopsutil sampler.
func WithSampler(s sysmon.Sampler) ModelOption { return func(m *Model) { m.sampler = s } }

// WithClock replaces the tick clock.
func WithClock(c harness.Clock) ModelOption { return func(m *Model) { m.clock = c } }

// NewModel creates the dashboard over every backend of factory, which must
// not be empty. cfg.Algo preselects a backend.
func NewModel(ctx context.Context, factory fibonacci.CalculatorFactory, cfg config.AppConfig, version string, opts ...ModelOption) Model {
	in := textinput.New()
	in.Placeholder = "index"
	in.Prompt = "F( "
	in.CharLimit = 20
	in.Width = 22
	if cfg.IndexSet {
		in.SetValue(fmt.Sprint(cfg.Index))
	}
	in.Focus()

	m := Model{
		header:      NewHeaderModel(version),
		input:       in,
		help:        help.New(),
		keymap:      DefaultKeyMap(),
		cfg:         cfg,
		ticks:       NewRingBuffer(tickHistoryLen),
		cpu:         NewRingBuffer(sysHistoryLen),
		mem:         NewRingBuffer(sysHistoryLen),
		parentCtx:   ctx,
		ref:         &programRef{},
	}
	all := factory.GetAll()
	for i, name := range factory.List() {
		m.names = append(m.names, name)
		m.calculators = append(m.calculators, all[name])
		if strings.EqualFold(name, cfg.Algo) {
			m.selected = i
		}
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.clock == nil {
		m.clock = harness.NewMonotonicClock()
	}
	if m.sampler == nil {
		m.sampler = sysmon.NewSystemSampler()
	}
	return m
}

// Init starts the input cursor and the sampling loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, sampleSysStatsCmd(m.parentCtx, m.sampler), tickCmd())
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case ProgressMsg:
		if msg.Generation == m.generation && m.running {
			m.progress = msg.AverageProgress
			m.eta = msg.ETA
		}
		return m, nil

	case RoundDoneMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.finishRound()
		entry := NewHistoryEntry(msg.Index, msg.Results, time.Now())
		m.history.Add(entry)
		m.scroll = 0
		for _, r := range msg.Results {
			if r.Err == nil {
				m.ticks.Push(float64(r.Ticks))
			}
		}
		m.status = roundStatus(msg.Results)
		if entry.Mismatch {
			m.status = errorStyle.Render("backends disagree")
		}
		return m, nil

	case TickMsg:
		return m, tea.Batch(sampleSysStatsCmd(m.parentCtx, m.sampler), tickCmd())

	case SysStatsMsg:
		m.sys = sysmon.Stats(msg)
		m.cpu.Push(msg.CPUPercent)
		m.mem.Push(msg.MemPercent)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Run):
		return m.startRound([]fibonacci.Calculator{m.calculators[m.selected]})

	case key.Matches(msg, m.keymap.Compare):
		return m.startRound(m.calculators)

	case key.Matches(msg, m.keymap.Cycle):
		m.selected = (m.selected + 1) % len(m.calculators)
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		m.history.Clear()
		m.ticks.Reset()
		m.scroll = 0
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		m.scroll = max(m.scroll-1, 0)
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		m.scroll++
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if !unicode.IsDigit(r) {
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startRound parses the input and benchmarks calcs on it. A running round is
// canceled first; its late results are dropped by generation.
func (m Model) startRound(calcs []fibonacci.Calculator) (tea.Model, tea.Cmd) {
	index, err := harness.ParseIndex(m.input.Value())
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return m, nil
	}
	if m.cancel != nil {
		m.cancel()
	}

	m.generation++
	var ctx context.Context
	if m.cfg.Timeout > 0 {
		ctx, m.cancel = context.WithTimeout(m.parentCtx, m.cfg.Timeout)
	} else {
		ctx, m.cancel = context.WithCancel(m.parentCtx)
	}
	m.running = true
	m.progress = 0
	m.eta = 0
	m.status = ""

	opts := orchestration.RunOptions{Index: index, Repeat: max(m.cfg.Repeat, 1), Clock: m.clock}
	return m, runRoundCmd(ctx, m.ref, calcs, opts, m.generation)
}

func (m *Model) finishRound() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.running = false
	m.progress = 1
}

func roundStatus(results []orchestration.CalculationResult) string {
	for _, r := range results {
		if r.Err != nil {
			switch apperrors.ExitCode(r.Err) {
			case apperrors.ExitErrorTimeout:
				return errorStyle.Render("timed out")
			case apperrors.ExitErrorCanceled:
				return warningStyle.Render("canceled")
			}
			return errorStyle.Render("failed")
		}
	}
	return successStyle.Render("done")
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	inner := max(m.width-4, 10)

	input := lipgloss.JoinHorizontal(lipgloss.Top,
		m.input.View(), dimStyle.Render(" )   "), m.renderAlgorithms())
	var progress string
	if m.running {
		progress = format.FormatProgressBarWithETA(m.progress, m.eta, 20)
	} else {
		progress = m.status
	}
	top := panelStyle.Width(inner).Render(input + "\n" + progress)

	historyHeight := max(m.height-fixedLayoutLines-lipgloss.Height(m.help.View(m.keymap)), 3)
	results := panelStyle.Width(inner).Render(m.history.Render(m.scroll, historyHeight))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(), top, results, m.renderFooter(), m.help.View(m.keymap))
}

func (m Model) renderAlgorithms() string {
	names := make([]string, len(m.names))
	for i, name := range m.names {
		if i == m.selected {
			names[i] = selectedAlgoStyle.Render(name)
		} else {
			names[i] = dimStyle.Render(name)
		}
	}
	return strings.Join(names, dimStyle.Render(" · "))
}

func (m Model) renderFooter() string {
	parts := []string{
		labelStyle.Render("CPU ") + cpuSparkStyle.Render(RenderSparkline(m.cpu.Slice(), 100)) +
			fmt.Sprintf(" %5.1f%%", m.sys.CPUPercent),
		labelStyle.Render("MEM ") + memSparkStyle.Render(RenderSparkline(m.mem.Slice(), 100)) +
			fmt.Sprintf(" %5.1f%%", m.sys.MemPercent),
		labelStyle.Render("RSS ") + format.FormatBytes(m.sys.ProcessRSS),
	}
	if m.ticks.Len() > 0 {
		parts = append(parts, labelStyle.Render("ticks ")+accentStyle.Render(RenderSparkline(m.ticks.Slice(), 0)))
	}
	return " " + strings.Join(parts, "   ")
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, factory fibonacci.CalculatorFactory, cfg config.AppConfig, version string) int {
	if len(factory.List()) == 0 {
		return apperrors.ExitErrorConfig
	}
	initTUIStyles()

	model := NewModel(ctx, factory, cfg, version)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.ref.SetProgram(p)

	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.cancel != nil {
		fm.cancel()
	}
	switch {
	case err == nil:
		return apperrors.ExitSuccess
	case ctx.Err() != nil:
		return apperrors.ExitErrorCanceled
	default:
		return apperrors.ExitErrorGeneric
	}
}

func runRoundCmd(ctx context.Context, ref *programRef, calcs []fibonacci.Calculator, opts orchestration.RunOptions, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref, generation: gen}
		results := orchestration.ExecuteCalculations(ctx, calcs, opts, reporter, io.Discard)
		return RoundDoneMsg{Generation: gen, Index: opts.Index, Results: results}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(sampleInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleSysStatsCmd(ctx context.Context, s sysmon.Sampler) tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(s.Sample(ctx))
	}
}
