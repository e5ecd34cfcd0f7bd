package hud

import (
	"io"
	"log"
	"math"

	"github.com/verte-zerg/telehud/internal/model"
)

// CommandKind selects the primitive a DrawCommand uses.
type CommandKind int

const (
	// SpriteCommand draws Src from the background texture at Pos.
	SpriteCommand CommandKind = iota
	// TextCommand draws Text inside Rect.
	TextCommand
)

// DrawCommand is one primitive of a frame, in draw order.
type DrawCommand struct {
	Kind  CommandKind
	Src   Rect
	Pos   Point
	Rect  Rect
	Text  string
	Color Color
}

// Controller owns the overlay state and answers the host callbacks.
//
// The host must call every method from a single goroutine, one call at a
// time: telemetry and render callbacks are serialized by the host loop and the
// controller does no locking of its own.
type Controller struct {
	source  ConfigSource
	logger  *log.Logger
	welcome string

	config       model.HUDConfig
	screenWidth  int
	screenHeight int

	toggle   *Toggle
	life     Lifecycle
	snapshot model.Telemetry

	font    Font
	texture Texture
	sprite  Sprite

	lastDownforce float64
	rendered      bool
}

// NewController returns a controller with the overlay switched on. A nil
// logger discards lifecycle logging.
func NewController(source ConfigSource, logger *log.Logger, welcome string) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		source:  source,
		logger:  logger,
		welcome: welcome,
		toggle:  NewToggle(EnabledStable),
	}
}

// Startup is called once when the host loads the overlay.
func (c *Controller) Startup() {
	c.logger.Println("--STARTUP--")
}

// Load is called when the host loads a track or vehicle.
func (c *Controller) Load() {
	c.logger.Println("--LOAD--")
}

// Unload is called when the host unloads a track or vehicle.
func (c *Controller) Unload() {
	c.logger.Println("--UNLOAD--")
}

// StartSession re-arms the welcome message.
func (c *Controller) StartSession() {
	c.life.StartSession()
	c.logger.Println("--STARTSESSION--")
}

// EndSession leaves the live phase and clears the elapsed timer.
func (c *Controller) EndSession() {
	c.life.EndSession()
	c.logger.Println("--ENDSESSION--")
}

// EnterLive is called when the driver enters the cockpit.
func (c *Controller) EnterLive() {
	c.life.EnterLive()
	c.logger.Println("---ENTERREALTIME---")
}

// ExitLive is called when the driver leaves the cockpit.
func (c *Controller) ExitLive() {
	c.life.ExitLive()
	c.logger.Println("---EXITREALTIME---")
}

// UpdateTelemetry feeds one simulation tick. The toggle key is debounced on
// every tick; the snapshot is only replaced while live.
func (c *Controller) UpdateTelemetry(sample model.Telemetry, keyDown bool) {
	before := c.toggle.Enabled()
	c.toggle.Update(keyDown)
	if after := c.toggle.Enabled(); after != before {
		c.logger.Printf("overlay toggled: enabled=%t", after)
	}

	if !c.life.Live() {
		return
	}
	c.snapshot = sample
	c.life.advance(sample.DeltaTime)
}

// ShouldDisplay reports whether the overlay wants to draw this frame.
func (c *Controller) ShouldDisplay() bool {
	return c.life.Live() && c.toggle.Enabled()
}

// WantsToDisplayMessage returns the welcome notice once per session, and
// only while live so the host does not drop it.
func (c *Controller) WantsToDisplayMessage() (string, bool) {
	if !c.life.takeWelcome() {
		return "", false
	}
	return c.welcome, true
}

// InitScreen loads the configuration, resolves screen-derived defaults and
// creates the drawing resources. Creation failures are logged and leave the
// overlay hidden for this screen.
func (c *Controller) InitScreen(s Screen) {
	c.UninitScreen()

	c.config = c.source.Load().Resolve(s.Width, s.Height)
	c.screenWidth = s.Width
	c.screenHeight = s.Height
	c.rendered = false

	if s.Device == nil {
		c.logger.Println("init screen: no device")
		return
	}
	font, err := s.Device.CreateFont(FontSpec{Name: c.config.Time.FontName, Size: c.config.Time.FontSize})
	if err != nil {
		c.logger.Printf("init screen: create font: %v", err)
	} else {
		c.font = font
	}
	texture, err := s.Device.CreateTexture(BackgroundTexture)
	if err != nil {
		c.logger.Printf("init screen: create texture: %v", err)
	} else {
		c.texture = texture
	}
	sprite, err := s.Device.CreateSprite()
	if err != nil {
		c.logger.Printf("init screen: create sprite: %v", err)
	} else {
		c.sprite = sprite
	}
	c.logger.Printf("---INIT SCREEN--- %dx%d", s.Width, s.Height)
}

// UninitScreen releases the drawing resources. It is safe to call without a
// prior InitScreen and more than once.
func (c *Controller) UninitScreen() {
	if c.font == nil && c.texture == nil && c.sprite == nil {
		return
	}
	if c.font != nil {
		c.font.Release()
		c.font = nil
	}
	if c.sprite != nil {
		c.sprite.Release()
		c.sprite = nil
	}
	if c.texture != nil {
		c.texture.Release()
		c.texture = nil
	}
	c.logger.Println("---UNINIT SCREEN---")
}

// PreReset tells the resources the device is about to be reset.
func (c *Controller) PreReset() {
	if c.font != nil {
		c.font.OnLostDevice()
	}
	if c.sprite != nil {
		c.sprite.OnLostDevice()
	}
}

// PostReset tells the resources the device reset completed.
func (c *Controller) PostReset() {
	if c.font != nil {
		c.font.OnResetDevice()
	}
	if c.sprite != nil {
		c.sprite.OnResetDevice()
	}
}

// Ready reports whether all drawing resources exist.
func (c *Controller) Ready() bool {
	return c.font != nil && c.texture != nil && c.sprite != nil
}

// RenderBeforeOverlays draws the overlay for one frame and reports whether
// anything was drawn.
func (c *Controller) RenderBeforeOverlays(screenWidth, screenHeight int) bool {
	if !c.ShouldDisplay() || !c.Ready() {
		return false
	}

	cmds := c.Commands(screenWidth, screenHeight)
	c.sprite.Begin()
	for _, cmd := range cmds {
		if cmd.Kind == SpriteCommand {
			c.sprite.Draw(c.texture, cmd.Src, cmd.Pos, cmd.Color)
		}
	}
	c.sprite.End()
	for _, cmd := range cmds {
		if cmd.Kind == TextCommand {
			c.font.DrawText(cmd.Text, cmd.Rect, cmd.Color)
		}
	}

	c.lastDownforce = c.snapshot.Downforce()
	c.rendered = true
	return true
}

// Commands returns the primitives a frame of the given size draws from the
// current snapshot. Sprites come first, then each text line's shadow followed
// by the line itself.
func (c *Controller) Commands(screenWidth, screenHeight int) []DrawCommand {
	cfg := c.config
	layout := ComputeLayout(cfg, screenWidth, screenHeight)

	var cmds []DrawCommand
	if cfg.Time.Enabled {
		bg := layout.Background
		cmds = append(cmds, DrawCommand{
			Kind:  SpriteCommand,
			Src:   bg,
			Pos:   Point{X: bg.X, Y: bg.Y},
			Color: BackgroundColor,
		})
	}
	if cfg.Bar.Enabled && layout.Bar.H > 0 {
		downforce := c.snapshot.Downforce()
		cmds = append(cmds, DrawCommand{
			Kind:  SpriteCommand,
			Src:   Rect{W: layout.Bar.W, H: layout.Bar.H},
			Pos:   Point{X: layout.Bar.X, Y: layout.Bar.Y},
			Color: BarColor(downforce, c.downforceDiff(downforce)),
		})
	}
	if !cfg.Time.Enabled {
		return cmds
	}

	textColor := TextColor(1.0)
	lines := TextLines(c.snapshot, cfg.Time.FixRearLoad)
	for i, line := range lines {
		cmds = append(cmds,
			DrawCommand{Kind: TextCommand, Rect: layout.Shadow[i], Text: line, Color: ShadowColor},
			DrawCommand{Kind: TextCommand, Rect: layout.Text[i], Text: line, Color: textColor},
		)
	}
	return cmds
}

// downforceDiff is the relative downforce change since the last drawn frame.
func (c *Controller) downforceDiff(now float64) float64 {
	if !c.rendered {
		return 0
	}
	return (now - c.lastDownforce) / math.Max(math.Abs(c.lastDownforce), 1)
}

// Snapshot returns the last telemetry sample taken while live.
func (c *Controller) Snapshot() model.Telemetry {
	return c.snapshot
}

// Config returns the configuration resolved at the last InitScreen.
func (c *Controller) Config() model.HUDConfig {
	return c.config
}

// Phase returns the session phase.
func (c *Controller) Phase() Phase {
	return c.life.Phase()
}

// Elapsed returns seconds of telemetry received since entering live.
func (c *Controller) Elapsed() float64 {
	return c.life.Elapsed()
}

// Toggle returns the debounced toggle state.
func (c *Controller) Toggle() ToggleState {
	return c.toggle.State()
}
