package tui

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/telehud/internal/hud"
	"github.com/verte-zerg/telehud/internal/model"
	"github.com/verte-zerg/telehud/internal/store"
	"github.com/verte-zerg/telehud/internal/telemetry"
)

func testHUDConfig() model.HUDConfig {
	return model.HUDConfig{
		Bar: model.BarConfig{Enabled: true, Top: 130, Width: 300, Height: 20, Gutter: 5},
		Time: model.TimeConfig{
			Enabled:  true,
			Width:    62,
			Height:   20,
			FontSize: 16,
			FontName: "Arial Black",
		},
		Keyboard: model.KeyboardConfig{MagicKey: 'T'},
	}
}

func testSamples(n int) []model.Telemetry {
	samples := make([]model.Telemetry, n)
	for i := range samples {
		samples[i] = model.Telemetry{DeltaTime: 0.05, Drag: float64(100 + i), FrontDownforce: 300, RearDownforce: 450}
		samples[i].Wheels[model.WheelFL] = model.Wheel{TireLoad: 1500, Wear: 0.01}
	}
	return samples
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newTestModel(t *testing.T, src telemetry.Source, st *store.Store, record bool) (*Model, *hud.Controller, *clock) {
	t.Helper()
	ctrl := hud.NewController(hud.StaticConfig(testHUDConfig()), nil, "Welcome to telehud")
	m := NewModel(ctrl, src, st, nil, Options{MagicKey: 'T', Record: record})
	clk := &clock{t: time.Unix(1000, 0)}
	m.now = clk.now
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 32})
	return m, ctrl, clk
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHostDrivesLifecycle(t *testing.T) {
	m, ctrl, _ := newTestModel(t, telemetry.NewReplay(testSamples(10), true), nil, false)
	if !ctrl.Ready() {
		t.Fatalf("expected screen to be initialised on first size message")
	}
	if cfg := ctrl.Config(); cfg.Time.Width != 62 {
		t.Fatalf("unexpected resolved config: %+v", cfg)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if ctrl.Phase() != hud.Live {
		t.Fatalf("expected live after enter")
	}
	m.Update(telemetryTickMsg{})
	m.Update(telemetryTickMsg{})
	if ctrl.Elapsed() != 0.1 {
		t.Fatalf("expected elapsed 0.1, got %v", ctrl.Elapsed())
	}

	m.Update(renderTickMsg{})
	if m.status != "Welcome to telehud" {
		t.Fatalf("expected welcome status, got %q", m.status)
	}
	if !strings.Contains(m.View(), "1500") {
		t.Fatalf("expected overlay text in view")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if ctrl.Phase() != hud.Inactive {
		t.Fatalf("expected inactive after esc")
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	if ctrl.Ready() {
		t.Fatalf("expected resources released on quit")
	}
}

func TestHeldMagicKeyTogglesOnce(t *testing.T) {
	m, ctrl, clk := newTestModel(t, telemetry.NewReplay(testSamples(1), true), nil, false)

	m.Update(runes("t"))
	for i := 0; i < 4; i++ {
		m.Update(telemetryTickMsg{})
		clk.t = clk.t.Add(50 * time.Millisecond)
	}
	if ctrl.Toggle() != hud.DisabledArmed {
		t.Fatalf("expected disabled-armed while held, got %s", ctrl.Toggle())
	}

	clk.t = clk.t.Add(time.Second)
	m.Update(telemetryTickMsg{})
	if ctrl.Toggle() != hud.DisabledStable {
		t.Fatalf("expected disabled after release, got %s", ctrl.Toggle())
	}

	m.Update(runes("T"))
	m.Update(telemetryTickMsg{})
	if ctrl.Toggle() != hud.EnabledArmed {
		t.Fatalf("expected upper-case key to toggle back on, got %s", ctrl.Toggle())
	}
}

func TestSustainedHoldWithAutorepeatTogglesOnce(t *testing.T) {
	m, ctrl, clk := newTestModel(t, telemetry.NewReplay(testSamples(1), true), nil, false)
	start := clk.t

	// 2s hold: first repeat after 500ms, then every 33ms; telemetry every 50ms.
	flips := 0
	on := toggleOn(ctrl.Toggle())
	for ms := 0; ms <= 3000; ms++ {
		clk.t = start.Add(time.Duration(ms) * time.Millisecond)
		if ms == 0 || (ms >= 500 && ms < 2000 && (ms-500)%33 == 0) {
			m.Update(runes("t"))
		}
		if ms%50 == 0 {
			m.Update(telemetryTickMsg{})
			if now := toggleOn(ctrl.Toggle()); now != on {
				flips++
				on = now
			}
		}
	}
	if flips != 1 {
		t.Fatalf("expected one flip during a sustained hold, got %d", flips)
	}
	if ctrl.Toggle() != hud.DisabledStable {
		t.Fatalf("expected disabled after release, got %s", ctrl.Toggle())
	}
}

func TestMagicKeyCollisionFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	if got := ResolveMagicKey('q', logger); got != 'T' {
		t.Fatalf("expected default key for q, got %q", rune(got))
	}
	if !strings.Contains(buf.String(), "bound to another action") {
		t.Fatalf("expected collision logged, got %q", buf.String())
	}
	if got := ResolveMagicKey('N', nil); got != 'T' {
		t.Fatalf("expected default key for N, got %q", rune(got))
	}
	if got := ResolveMagicKey('y', nil); got != 'y' {
		t.Fatalf("expected y kept, got %q", rune(got))
	}

	ctrl := hud.NewController(hud.StaticConfig(testHUDConfig()), nil, "")
	m := NewModel(ctrl, telemetry.NewReplay(testSamples(1), true), nil, logger, Options{MagicKey: 'q'})
	m.Init()
	m.Update(runes("t"))
	m.Update(telemetryTickMsg{})
	if ctrl.Toggle() != hud.DisabledArmed {
		t.Fatalf("expected fallback key to toggle, got %s", ctrl.Toggle())
	}
}

func TestResizeResetsResources(t *testing.T) {
	m, ctrl, _ := newTestModel(t, telemetry.NewReplay(testSamples(1), true), nil, false)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if !ctrl.Ready() {
		t.Fatalf("expected resources to survive a reset")
	}
	if cols := m.device.Canvas().Cols(); cols != 100 {
		t.Fatalf("expected canvas resize, got %d cols", cols)
	}
}

func TestRecordedStintIsStored(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "telehud.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	m, _, _ := newTestModel(t, telemetry.NewReplay(testSamples(3), false), st, true)
	m.Update(telemetryTickMsg{})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(telemetryTickMsg{})
	m.Update(telemetryTickMsg{})
	// Replay runs out and ends the stint.
	m.Update(telemetryTickMsg{})
	if !m.exhausted || !strings.Contains(m.status, "finished") {
		t.Fatalf("expected exhausted source, status %q", m.status)
	}

	stints, err := st.ListStints(context.Background(), model.SessionsConfig{})
	if err != nil {
		t.Fatalf("list stints: %v", err)
	}
	if len(stints) != 1 {
		t.Fatalf("expected 1 stint, got %d", len(stints))
	}
	if stints[0].Samples != 2 || stints[0].Source != "replay" {
		t.Fatalf("unexpected stint: %+v", stints[0])
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m, _, _ := newTestModel(t, telemetry.NewReplay(testSamples(5), true), nil, false)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(telemetryTickMsg{})
	m.Update(telemetryTickMsg{})
	out := m.renderFooter()
	if !containsAll(out, []string{"Phase live", "Overlay on", "Elapsed 0.1s", "Source replay", "toggle overlay"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
