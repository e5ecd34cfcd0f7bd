package hud

import "github.com/verte-zerg/telehud/internal/model"

// BackgroundTexture names the texture the background box is cropped from.
const BackgroundTexture = "telehud-background"

// Resource is a drawing resource owned by the controller between screen init
// and uninit.
type Resource interface {
	// Release frees the resource. It is not used afterwards.
	Release()
	// OnLostDevice is called before the host resets its drawing device.
	OnLostDevice()
	// OnResetDevice is called after the reset completes.
	OnResetDevice()
}

// Font draws text.
type Font interface {
	Resource
	DrawText(text string, r Rect, c Color)
}

// Texture is a sprite source image.
type Texture interface {
	Resource
}

// Sprite batches textured quads. Draw is only valid between Begin and End.
type Sprite interface {
	Resource
	Begin()
	Draw(tex Texture, src Rect, pos Point, tint Color)
	End()
}

// FontSpec describes the requested font face.
type FontSpec struct {
	Name string
	Size int
}

// Device creates drawing resources for one screen.
type Device interface {
	CreateFont(spec FontSpec) (Font, error)
	CreateTexture(name string) (Texture, error)
	CreateSprite() (Sprite, error)
}

// Screen describes the host drawing surface at init time.
type Screen struct {
	Width  int
	Height int
	Device Device
}

// ConfigSource loads the configuration at each screen init.
type ConfigSource interface {
	Load() model.HUDConfig
}

// StaticConfig is a ConfigSource returning a fixed configuration.
type StaticConfig model.HUDConfig

// Load implements ConfigSource.
func (s StaticConfig) Load() model.HUDConfig {
	return model.HUDConfig(s)
}
