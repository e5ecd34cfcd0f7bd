package screen

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/telehud/internal/hud"
)

// DefaultBackground is the color cleared cells take.
const DefaultBackground hud.Color = 0xFF000000

// ErrReleased is returned when a released device is asked for resources.
var ErrReleased = errors.New("screen: device released")

// Device draws overlay resources onto a Canvas.
type Device struct {
	canvas   *Canvas
	released bool
}

var _ hud.Device = (*Device)(nil)

// NewDevice returns a device backed by a canvas of cols by rows cells.
func NewDevice(cols, rows int) *Device {
	return &Device{canvas: NewCanvas(cols, rows, DefaultBackground)}
}

// Canvas returns the backing canvas.
func (d *Device) Canvas() *Canvas {
	return d.canvas
}

// Resize changes the canvas size in cells.
func (d *Device) Resize(cols, rows int) {
	d.canvas.Resize(cols, rows)
}

// Release makes later resource creation fail.
func (d *Device) Release() {
	d.released = true
}

// CreateFont implements hud.Device. The terminal renders every face in its
// own font, so the requested face is only validated.
func (d *Device) CreateFont(spec hud.FontSpec) (hud.Font, error) {
	if d.released {
		return nil, ErrReleased
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("screen: font name is empty")
	}
	if spec.Size <= 0 {
		return nil, fmt.Errorf("screen: invalid font size %d", spec.Size)
	}
	return &font{canvas: d.canvas, spec: spec}, nil
}

// CreateTexture implements hud.Device. Textures are flat fills tinted at draw
// time.
func (d *Device) CreateTexture(name string) (hud.Texture, error) {
	if d.released {
		return nil, ErrReleased
	}
	if name == "" {
		return nil, fmt.Errorf("screen: texture name is empty")
	}
	return &texture{name: name}, nil
}

// CreateSprite implements hud.Device.
func (d *Device) CreateSprite() (hud.Sprite, error) {
	if d.released {
		return nil, ErrReleased
	}
	return &sprite{canvas: d.canvas}, nil
}

// state tracks the lost and released flags shared by all resources.
type state struct {
	lost     bool
	released bool
}

func (s *state) Release()       { s.released = true }
func (s *state) OnLostDevice()  { s.lost = true }
func (s *state) OnResetDevice() { s.lost = false }

func (s *state) usable() bool {
	return !s.lost && !s.released
}

type font struct {
	state
	canvas *Canvas
	spec   hud.FontSpec
}

func (f *font) DrawText(text string, r hud.Rect, c hud.Color) {
	if !f.usable() {
		return
	}
	f.canvas.DrawText(text, hud.Point{X: r.X, Y: r.Y}, c)
}

type texture struct {
	state
	name string
}

type sprite struct {
	state
	canvas *Canvas
	open   bool
}

func (s *sprite) Begin() {
	if s.usable() {
		s.open = true
	}
}

func (s *sprite) End() {
	s.open = false
}

func (s *sprite) Draw(tex hud.Texture, src hud.Rect, pos hud.Point, tint hud.Color) {
	if !s.open || !s.usable() {
		return
	}
	if t, ok := tex.(*texture); !ok || t.released {
		return
	}
	s.canvas.FillRect(hud.Rect{X: pos.X, Y: pos.Y, W: src.W, H: src.H}, tint)
}
