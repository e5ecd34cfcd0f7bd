package hud

import (
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/telehud/internal/model"
)

type fakeResource struct {
	name     string
	log      *[]string
	released bool
}

func (r *fakeResource) Release() {
	r.released = true
	*r.log = append(*r.log, r.name+".release")
}

func (r *fakeResource) OnLostDevice()  { *r.log = append(*r.log, r.name+".lost") }
func (r *fakeResource) OnResetDevice() { *r.log = append(*r.log, r.name+".reset") }

type fakeFont struct {
	fakeResource
	texts []DrawCommand
}

func (f *fakeFont) DrawText(text string, r Rect, c Color) {
	f.texts = append(f.texts, DrawCommand{Kind: TextCommand, Text: text, Rect: r, Color: c})
}

type fakeSprite struct {
	fakeResource
	open  bool
	draws int
}

func (s *fakeSprite) Begin() { s.open = true }
func (s *fakeSprite) End()   { s.open = false }
func (s *fakeSprite) Draw(Texture, Rect, Point, Color) {
	if !s.open {
		panic("draw outside begin/end")
	}
	s.draws++
}

type fakeDevice struct {
	log      []string
	font     *fakeFont
	sprite   *fakeSprite
	texture  *fakeResource
	failFont bool
	fontSpec FontSpec
}

func (d *fakeDevice) CreateFont(spec FontSpec) (Font, error) {
	d.fontSpec = spec
	if d.failFont {
		return nil, errors.New("no font")
	}
	d.font = &fakeFont{fakeResource: fakeResource{name: "font", log: &d.log}}
	return d.font, nil
}

func (d *fakeDevice) CreateTexture(string) (Texture, error) {
	d.texture = &fakeResource{name: "texture", log: &d.log}
	return d.texture, nil
}

func (d *fakeDevice) CreateSprite() (Sprite, error) {
	d.sprite = &fakeSprite{fakeResource: fakeResource{name: "sprite", log: &d.log}}
	return d.sprite, nil
}

type countingSource struct {
	cfg   model.HUDConfig
	loads int
}

func (s *countingSource) Load() model.HUDConfig {
	s.loads++
	return s.cfg
}

func newTestController(t *testing.T) (*Controller, *fakeDevice) {
	t.Helper()
	c := NewController(StaticConfig(testConfig()), nil, "welcome")
	dev := &fakeDevice{}
	c.Startup()
	c.InitScreen(Screen{Width: 1920, Height: 1080, Device: dev})
	return c, dev
}

func TestShouldDisplayRequiresLiveAndEnabled(t *testing.T) {
	c, _ := newTestController(t)
	if c.ShouldDisplay() {
		t.Fatalf("expected gate closed while inactive")
	}
	c.EnterLive()
	if !c.ShouldDisplay() {
		t.Fatalf("expected gate open while live and enabled")
	}
	c.UpdateTelemetry(model.Telemetry{}, true)
	c.UpdateTelemetry(model.Telemetry{}, false)
	if c.ShouldDisplay() {
		t.Fatalf("expected gate closed after toggling off")
	}
	c.ExitLive()
	c.UpdateTelemetry(model.Telemetry{}, true)
	c.UpdateTelemetry(model.Telemetry{}, false)
	if c.ShouldDisplay() {
		t.Fatalf("expected gate closed while inactive even when enabled")
	}
	if c.Toggle() != EnabledStable {
		t.Fatalf("expected toggle debounced outside live, got %s", c.Toggle())
	}
}

func TestInactiveTelemetryKeepsSnapshot(t *testing.T) {
	c, _ := newTestController(t)
	c.EnterLive()
	c.UpdateTelemetry(sampleTelemetry(), false)
	c.ExitLive()
	before := c.Snapshot()
	c.UpdateTelemetry(model.Telemetry{Drag: 1, FrontDownforce: 2, RearDownforce: 3}, false)
	if c.Snapshot() != before {
		t.Fatalf("snapshot changed while inactive: %+v", c.Snapshot())
	}
}

func TestElapsedAccumulatesWhileLive(t *testing.T) {
	c, _ := newTestController(t)
	c.UpdateTelemetry(model.Telemetry{DeltaTime: 1}, false)
	c.EnterLive()
	for i := 0; i < 4; i++ {
		c.UpdateTelemetry(model.Telemetry{DeltaTime: 0.25}, false)
	}
	if c.Elapsed() != 1 {
		t.Fatalf("expected 1s elapsed, got %v", c.Elapsed())
	}
	c.EnterLive()
	if c.Elapsed() != 0 {
		t.Fatalf("expected elapsed reset on enter live, got %v", c.Elapsed())
	}
	c.UpdateTelemetry(model.Telemetry{DeltaTime: 0.5}, false)
	c.EndSession()
	if c.Elapsed() != 0 || c.Phase() != Inactive {
		t.Fatalf("expected end session to reset, got %v %s", c.Elapsed(), c.Phase())
	}
}

func TestWelcomeOncePerSession(t *testing.T) {
	c, _ := newTestController(t)
	c.StartSession()
	if _, ok := c.WantsToDisplayMessage(); ok {
		t.Fatalf("expected no welcome while inactive")
	}
	c.EnterLive()
	msg, ok := c.WantsToDisplayMessage()
	if !ok || msg != "welcome" {
		t.Fatalf("expected welcome, got %q %t", msg, ok)
	}
	if _, ok := c.WantsToDisplayMessage(); ok {
		t.Fatalf("expected welcome only once")
	}
	c.ExitLive()
	c.EnterLive()
	if _, ok := c.WantsToDisplayMessage(); ok {
		t.Fatalf("expected no welcome when re-entering live in the same session")
	}
	c.EndSession()
	c.StartSession()
	if _, ok := c.WantsToDisplayMessage(); ok {
		t.Fatalf("expected no welcome before entering live")
	}
	c.EnterLive()
	if _, ok := c.WantsToDisplayMessage(); !ok {
		t.Fatalf("expected welcome in the new session")
	}
}

func TestInitScreenResolvesOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Time.Width = 0
	cfg.Time.Height = 0
	src := &countingSource{cfg: cfg}
	c := NewController(src, nil, "")
	dev := &fakeDevice{}
	c.InitScreen(Screen{Width: 1600, Height: 900, Device: dev})
	if src.loads != 1 {
		t.Fatalf("expected one config load, got %d", src.loads)
	}
	got := c.Config()
	if got.Time.Width != 1600 || got.Time.Height != 900 {
		t.Fatalf("unexpected resolved config: %+v", got.Time)
	}
	c.EnterLive()
	c.RenderBeforeOverlays(1600, 900)
	c.RenderBeforeOverlays(1600, 900)
	if src.loads != 1 {
		t.Fatalf("expected rendering not to reload config, got %d loads", src.loads)
	}
	if dev.fontSpec != (FontSpec{Name: "Arial Black", Size: 16}) {
		t.Fatalf("unexpected font spec: %+v", dev.fontSpec)
	}
}

func TestRenderDrawsShadowBeforeText(t *testing.T) {
	c, dev := newTestController(t)
	c.StartSession()
	c.EnterLive()
	c.UpdateTelemetry(sampleTelemetry(), false)
	if !c.ShouldDisplay() {
		t.Fatalf("expected gate open")
	}
	if !c.RenderBeforeOverlays(1920, 1080) {
		t.Fatalf("expected a frame to be drawn")
	}
	if dev.sprite.draws != 2 {
		t.Fatalf("expected background and bar sprites, got %d", dev.sprite.draws)
	}
	texts := dev.font.texts
	if len(texts) != 6 {
		t.Fatalf("expected 6 text draws, got %d", len(texts))
	}
	for i := 0; i < len(texts); i += 2 {
		shadow, text := texts[i], texts[i+1]
		if shadow.Color != ShadowColor || text.Color != TextColor(1) {
			t.Fatalf("unexpected colors at line %d: %08x %08x", i/2, uint32(shadow.Color), uint32(text.Color))
		}
		if shadow.Text != text.Text || shadow.Rect != text.Rect.Offset(2, 2) {
			t.Fatalf("shadow mismatch at line %d: %+v %+v", i/2, shadow, text)
		}
	}
	if got := strings.Join(strings.Fields(texts[5].Text), " "); got != "+300.1 +450.2 +120.4" {
		t.Fatalf("unexpected third line: %q", texts[5].Text)
	}
}

func TestRenderSkippedWhenGateClosed(t *testing.T) {
	c, dev := newTestController(t)
	c.UpdateTelemetry(sampleTelemetry(), false)
	if c.RenderBeforeOverlays(1920, 1080) {
		t.Fatalf("expected no frame while inactive")
	}
	if len(dev.font.texts) != 0 || dev.sprite.draws != 0 {
		t.Fatalf("expected no draw calls")
	}
}

func TestResourceFailureClosesGate(t *testing.T) {
	c := NewController(StaticConfig(testConfig()), nil, "")
	dev := &fakeDevice{failFont: true}
	c.InitScreen(Screen{Width: 800, Height: 600, Device: dev})
	c.EnterLive()
	if c.Ready() {
		t.Fatalf("expected controller not ready without a font")
	}
	if c.RenderBeforeOverlays(800, 600) {
		t.Fatalf("expected no frame without a font")
	}
	if dev.sprite.draws != 0 {
		t.Fatalf("expected no sprite draws")
	}
}

func TestUninitScreenIsIdempotent(t *testing.T) {
	c := NewController(StaticConfig(testConfig()), nil, "")
	c.UninitScreen()

	dev := &fakeDevice{}
	c.InitScreen(Screen{Width: 800, Height: 600, Device: dev})
	c.UninitScreen()
	c.UninitScreen()
	if !dev.font.released || !dev.sprite.released || !dev.texture.released {
		t.Fatalf("expected all resources released")
	}
	if got := strings.Join(dev.log, ","); got != "font.release,sprite.release,texture.release" {
		t.Fatalf("unexpected release sequence: %s", got)
	}
	if c.Ready() {
		t.Fatalf("expected no resources after uninit")
	}
}

func TestResetForwardsToFontAndSprite(t *testing.T) {
	c, dev := newTestController(t)
	c.PreReset()
	c.PostReset()
	want := "font.lost,sprite.lost,font.reset,sprite.reset"
	if got := strings.Join(dev.log, ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if !c.Ready() {
		t.Fatalf("expected resources to survive a reset")
	}
}

func TestCommandsRespectDisabledSections(t *testing.T) {
	cfg := testConfig()
	cfg.Time.Enabled = false
	c := NewController(StaticConfig(cfg), nil, "")
	c.InitScreen(Screen{Width: 1920, Height: 1080, Device: &fakeDevice{}})
	cmds := c.Commands(1920, 1080)
	if len(cmds) != 1 || cmds[0].Kind != SpriteCommand {
		t.Fatalf("expected only the bar sprite, got %+v", cmds)
	}
	if cmds[0].Color != BarColor(0, 0) {
		t.Fatalf("expected white bar before the first frame, got %08x", uint32(cmds[0].Color))
	}

	cfg.Bar.Enabled = false
	c = NewController(StaticConfig(cfg), nil, "")
	c.InitScreen(Screen{Width: 1920, Height: 1080, Device: &fakeDevice{}})
	if cmds := c.Commands(1920, 1080); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %+v", cmds)
	}
}

func TestBarTurnsRedWhenDownforceRises(t *testing.T) {
	c, _ := newTestController(t)
	c.EnterLive()
	c.UpdateTelemetry(model.Telemetry{FrontDownforce: 100, RearDownforce: 100}, false)
	c.RenderBeforeOverlays(1920, 1080)
	c.UpdateTelemetry(model.Telemetry{FrontDownforce: 150, RearDownforce: 150}, false)
	cmds := c.Commands(1920, 1080)
	bar := cmds[1]
	if bar.Color != BarColorCutoff(1, BarBlendCutoff) {
		t.Fatalf("expected pure red bar, got %08x", uint32(bar.Color))
	}
}
