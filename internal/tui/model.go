// Package tui is the full-screen variant of the monitor: the same bar,
// plus session statistics and a sparkline of recent readings.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/luki/pitemp/internal/chart"
	"github.com/luki/pitemp/internal/history"
	"github.com/luki/pitemp/internal/monitor"
	"github.com/luki/pitemp/internal/sensor"
)

const historySize = 600

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type readingMsg sensor.Reading

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ── Model ────────────────────────────────────────────────────────────

// Options configure the model.
type Options struct {
	Label      string
	Length     int
	Interval   time.Duration
	Thresholds chart.Thresholds
	Sinks      []monitor.Sink

	// Seed preloads the history, oldest first.
	Seed []history.Point
}

// Model is the Bubble Tea model for the full-screen monitor.
type Model struct {
	sampler   *monitor.Sampler
	opts      Options
	renderer  *chart.Renderer
	history   *history.Buffer
	keys      keyMap
	last      sensor.Reading
	err       error
	width     int
	paused    bool
	startTime time.Time
}

// New creates the initial model.
func New(sampler *monitor.Sampler, opts Options) Model {
	h := history.NewBuffer(historySize)
	for _, p := range opts.Seed {
		h.Push(p.Value, p.Time)
	}
	return Model{
		sampler:   sampler,
		opts:      opts,
		renderer:  chart.DefaultRenderer(),
		history:   h,
		keys:      newKeyMap(),
		startTime: time.Now(),
	}
}

// Err returns the fatal error that stopped the model, if any.
func (m Model) Err() error {
	return m.err
}

// Run starts the program and blocks until it quits or ctx is cancelled.
// A fatal sampling or rendering error is returned.
func Run(ctx context.Context, sampler *monitor.Sampler, opts Options) error {
	p := tea.NewProgram(New(sampler, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return err
	}
	if m, ok := final.(Model); ok {
		return m.err
	}
	return nil
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) poll() tea.Msg {
	r, err := m.sampler.Sample()
	if err != nil {
		return errMsg{err}
	}
	return readingMsg(r)
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return m.poll
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		if m.paused {
			return m, m.tick()
		}
		return m, m.poll

	case readingMsg:
		r := sensor.Reading(msg)
		m.last = r
		m.history.Push(r.Value, r.Time)
		if _, err := m.bar(r); err != nil {
			m.err = err
			return m, tea.Quit
		}
		for _, s := range m.opts.Sinks {
			if err := s.Record(r); err != nil {
				log.WithField("package", "tui").WithError(err).Warn("sink failed")
			}
		}
		return m, m.tick()

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorPaused   = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) bar(r sensor.Reading) (string, error) {
	lo, hi := r.Unit.Range()
	zones, err := chart.BuildBar(r.Value-lo, hi-lo, m.opts.Length, m.opts.Thresholds)
	if err != nil {
		return "", err
	}
	return m.renderer.Bar(zones), nil
}

func (m Model) View() string {
	if m.last.Time.IsZero() {
		return "  Waiting for sensor data..."
	}

	width := m.width
	if width < m.opts.Length+30 {
		width = m.opts.Length + 30
	}

	sections := []string{m.renderTitleBar(width), m.renderPanel(width), m.renderFooter(width)}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render(strings.ToUpper(m.opts.Label) + " TEMPERATURE")

	dim := lipgloss.NewStyle().Foreground(colorDim)
	status := []string{
		dim.Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime)))),
		dim.Render(m.last.Time.Format("15:04:05")),
	}
	if m.paused {
		status = append(status, lipgloss.NewStyle().Foreground(colorPaused).Bold(true).Render("PAUSED"))
	}
	right := strings.Join(status, dim.Render(" │ "))

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderPanel(width int) string {
	r := m.last
	bar, err := m.bar(r)
	if err != nil {
		bar = err.Error()
	}

	label := lipgloss.NewStyle().Foreground(colorLabel)
	dim := lipgloss.NewStyle().Foreground(colorDim)

	current := label.Bold(true).Render(fmt.Sprintf("%.1f%s", r.Value, r.Unit.Symbol()))
	st := m.history.Stats()
	stats := dim.Render(" lo ") + label.Render(fmt.Sprintf("%.1f", st.Min)) +
		dim.Render(" avg ") + label.Render(fmt.Sprintf("%.1f", st.Avg)) +
		dim.Render(" pk ") + label.Render(fmt.Sprintf("%.1f", st.Peak))

	lo, hi := r.Unit.Range()
	spark := m.renderer.Sparkline(m.history.LastN(m.opts.Length), m.opts.Length, lo, hi, m.opts.Thresholds)

	rows := []string{
		"|" + bar + "| " + current,
		" " + spark + " " + stats,
		dim.Render(" " + r.Source),
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderFooter(width int) string {
	dim := lipgloss.NewStyle().Foreground(colorDim)
	keyStyle := lipgloss.NewStyle().Foreground(colorLabel)

	var legend string
	for _, z := range []chart.Zone{chart.Cyan, chart.Yellow, chart.Red} {
		legend += m.renderer.Style(z).Render("██") + dim.Render(" "+z.String()+" ")
	}

	var keys []string
	for _, b := range []key.Binding{m.keys.Quit, m.keys.Pause} {
		h := b.Help()
		keys = append(keys, dim.Render(h.Key)+keyStyle.Render(":"+h.Desc))
	}
	right := strings.Join(keys, "  ")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + strings.Repeat(" ", gap) + right)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	mm := d / time.Minute
	d -= mm * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, mm, s)
	}
	return fmt.Sprintf("%dm%02ds", mm, s)
}
