// Package tui provides the Bubble Tea host that drives the overlay.
package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/telehud/internal/config"
	"github.com/verte-zerg/telehud/internal/hud"
	"github.com/verte-zerg/telehud/internal/model"
	"github.com/verte-zerg/telehud/internal/screen"
	"github.com/verte-zerg/telehud/internal/store"
	"github.com/verte-zerg/telehud/internal/telemetry"
)

const (
	// DefaultTelemetryInterval is the telemetry tick period.
	DefaultTelemetryInterval = 50 * time.Millisecond
	// HiresTelemetryInterval is used when hires updates are on.
	HiresTelemetryInterval = 20 * time.Millisecond
	// DefaultRenderInterval is the frame period.
	DefaultRenderInterval = 100 * time.Millisecond
	// DefaultHoldWindow is how long a first keypress counts as the key being
	// held. It outlasts common autorepeat delays.
	DefaultHoldWindow = 700 * time.Millisecond
	// DefaultRepeatWindow extends the hold for each autorepeat of a held key.
	DefaultRepeatWindow = 200 * time.Millisecond

	// chromeRows are the status and footer lines below the canvas.
	chromeRows = 2
)

// Options configure the host.
type Options struct {
	TelemetryInterval time.Duration
	RenderInterval    time.Duration
	HoldWindow        time.Duration
	RepeatWindow      time.Duration
	MagicKey          int
	Record            bool
}

type telemetryTickMsg time.Time

type renderTickMsg time.Time

type keyMap struct {
	Toggle   key.Binding
	Live     key.Binding
	Exit     key.Binding
	NewStint key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Live, k.Exit, k.NewStint, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// reservedKeys are bound to host actions and cannot toggle the overlay.
var reservedKeys = map[string]bool{"enter": true, "esc": true, "n": true, "N": true, "q": true, "Q": true, "ctrl+c": true}

func newKeyMap(magic int) (keyMap, error) {
	r := rune(magic)
	keys := []string{string(unicode.ToLower(r))}
	if upper := unicode.ToUpper(r); upper != unicode.ToLower(r) {
		keys = append(keys, string(upper))
	}
	for _, k := range keys {
		if reservedKeys[k] {
			return keyMap{}, fmt.Errorf("magic key %q is bound to another action", k)
		}
	}
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], "toggle overlay")),
		Live:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drive")),
		Exit:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "pit")),
		NewStint: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}, nil
}

// ResolveMagicKey returns magic unless it collides with a host binding, in
// which case the collision is logged and the default key is returned.
func ResolveMagicKey(magic int, logger *log.Logger) int {
	if _, err := newKeyMap(magic); err != nil {
		if logger != nil {
			logger.Printf("%v; using %q", err, rune(config.DefaultMagicKey))
		}
		return config.DefaultMagicKey
	}
	return magic
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea host. Every controller callback runs on the
// Bubble Tea update goroutine.
type Model struct {
	ctrl   *hud.Controller
	device *screen.Device
	source telemetry.Source
	store  *store.Store
	logger *log.Logger
	opts   Options
	now    func() time.Time

	keys keyMap
	help help.Model

	width       int
	height      int
	screenReady bool

	keyDownUntil time.Time
	status       string
	exhausted    bool

	stintStart time.Time
	recording  []model.Telemetry
}

// NewModel constructs the host. st may be nil to disable recording.
func NewModel(ctrl *hud.Controller, source telemetry.Source, st *store.Store, logger *log.Logger, opts Options) *Model {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.TelemetryInterval <= 0 {
		opts.TelemetryInterval = DefaultTelemetryInterval
	}
	if opts.RenderInterval <= 0 {
		opts.RenderInterval = DefaultRenderInterval
	}
	if opts.HoldWindow <= 0 {
		opts.HoldWindow = DefaultHoldWindow
	}
	if opts.RepeatWindow <= 0 {
		opts.RepeatWindow = DefaultRepeatWindow
	}
	opts.MagicKey = ResolveMagicKey(opts.MagicKey, logger)
	keys, _ := newKeyMap(opts.MagicKey)
	return &Model{
		ctrl:   ctrl,
		device: screen.NewDevice(0, 0),
		source: source,
		store:  st,
		logger: logger,
		opts:   opts,
		now:    time.Now,
		keys:   keys,
		help:   help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.ctrl.Startup()
	m.ctrl.Load()
	m.ctrl.StartSession()
	return tea.Batch(m.telemetryTick(), m.renderTick())
}

func (m *Model) telemetryTick() tea.Cmd {
	return tea.Tick(m.opts.TelemetryInterval, func(t time.Time) tea.Msg {
		return telemetryTickMsg(t)
	})
}

func (m *Model) renderTick() tea.Cmd {
	return tea.Tick(m.opts.RenderInterval, func(t time.Time) tea.Msg {
		return renderTickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case telemetryTickMsg:
		m.handleTelemetry()
		return m, m.telemetryTick()
	case renderTickMsg:
		m.handleRender()
		return m, m.renderTick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.pressMagicKey()
	case key.Matches(msg, m.keys.Live):
		m.enterLive()
	case key.Matches(msg, m.keys.Exit):
		m.exitLive()
	case key.Matches(msg, m.keys.NewStint):
		m.exitLive()
		m.ctrl.EndSession()
		m.ctrl.StartSession()
		m.status = ""
	}
	return m, nil
}

// pressMagicKey marks the magic key down. Terminals only report presses, so a
// first press holds for HoldWindow and each autorepeat extends the hold by
// RepeatWindow.
func (m *Model) pressMagicKey() {
	now := m.now()
	window := m.opts.HoldWindow
	if now.Before(m.keyDownUntil) {
		window = m.opts.RepeatWindow
	}
	if until := now.Add(window); until.After(m.keyDownUntil) {
		m.keyDownUntil = until
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	rows := max(height-chromeRows, 1)
	if !m.screenReady {
		m.device.Resize(width, rows)
		c := m.device.Canvas()
		m.ctrl.InitScreen(hud.Screen{Width: c.Width(), Height: c.Height(), Device: m.device})
		m.screenReady = true
		return
	}
	m.ctrl.PreReset()
	m.device.Resize(width, rows)
	m.ctrl.PostReset()
}

func (m *Model) handleTelemetry() {
	if m.exhausted {
		return
	}
	sample, ok := m.source.Next()
	if !ok {
		m.exhausted = true
		m.status = fmt.Sprintf("%s source finished", m.source.Name())
		m.exitLive()
		return
	}
	keyDown := m.now().Before(m.keyDownUntil)
	m.ctrl.UpdateTelemetry(sample, keyDown)
	if m.opts.Record && m.ctrl.Phase() == hud.Live {
		m.recording = append(m.recording, sample)
	}
}

func (m *Model) handleRender() {
	if !m.screenReady {
		return
	}
	c := m.device.Canvas()
	c.Clear()
	m.ctrl.RenderBeforeOverlays(c.Width(), c.Height())
	if text, ok := m.ctrl.WantsToDisplayMessage(); ok {
		m.status = text
	}
}

func (m *Model) enterLive() {
	if m.ctrl.Phase() == hud.Live || m.exhausted {
		return
	}
	m.ctrl.EnterLive()
	m.stintStart = m.now()
	m.recording = nil
}

func (m *Model) exitLive() {
	if m.ctrl.Phase() != hud.Live {
		return
	}
	m.saveStint()
	m.ctrl.ExitLive()
}

func (m *Model) shutdown() {
	m.exitLive()
	m.ctrl.EndSession()
	m.ctrl.UninitScreen()
	m.ctrl.Unload()
}

func (m *Model) saveStint() {
	samples := m.recording
	m.recording = nil
	if m.store == nil || !m.opts.Record || len(samples) == 0 {
		return
	}
	stint := model.Stint{
		StartedAt: m.stintStart,
		EndedAt:   m.now(),
		Source:    m.source.Name(),
		Elapsed:   m.ctrl.Elapsed(),
	}
	id, err := m.store.InsertStint(context.Background(), stint, samples)
	if err != nil {
		m.logger.Printf("failed to save stint: %v", err)
		return
	}
	m.logger.Printf("saved stint %d (%d samples)", id, len(samples))
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.screenReady {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.device.Canvas().Render())
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Left, statusStyle.Render(m.status)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Left, m.renderFooter()))
	return b.String()
}

func (m *Model) renderFooter() string {
	overlay := "off"
	if toggleOn(m.ctrl.Toggle()) {
		overlay = "on"
	}
	segments := []string{
		fmt.Sprintf("Phase %s", m.ctrl.Phase()),
		fmt.Sprintf("Overlay %s", overlay),
		fmt.Sprintf("Elapsed %.1fs", m.ctrl.Elapsed()),
		fmt.Sprintf("Source %s", m.source.Name()),
	}
	if m.opts.Record && m.store != nil {
		segments = append(segments, fmt.Sprintf("Rec %d", len(m.recording)))
	}
	footer := strings.Join(segments, "  ")
	return footerStyle.Render(footer) + "  " + m.help.View(m.keys)
}

func toggleOn(s hud.ToggleState) bool {
	return s == hud.EnabledStable || s == hud.EnabledArmed
}
