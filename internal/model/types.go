// Package model defines shared data structures.
package model

import "time"

// FontNameMaxLen bounds the configured font face name.
const FontNameMaxLen = 32

// Wheel indexes into Telemetry.Wheels.
const (
	WheelFL = iota
	WheelFR
	WheelRL
	WheelRR
	WheelCount
)

// HUDConfig holds display layout and key bindings for one screen lifetime.
type HUDConfig struct {
	Bar      BarConfig
	Time     TimeConfig
	Keyboard KeyboardConfig
}

// BarConfig positions the bar marker and the text block gutter.
type BarConfig struct {
	Enabled bool
	Left    int
	Top     int
	Width   int
	Height  int
	Gutter  int
}

// TimeConfig sizes the text readout boxes. Zero Top, Width and Height are
// resolved against the screen at init.
type TimeConfig struct {
	Enabled      bool
	HiresUpdates bool
	FixRearLoad  bool
	Top          int
	Width        int
	Height       int
	FontSize     int
	FontName     string
}

// KeyboardConfig holds key bindings.
type KeyboardConfig struct {
	MagicKey int
}

// Resolve returns a copy with screen-derived defaults applied to zero-valued
// time box geometry.
func (c HUDConfig) Resolve(screenWidth, screenHeight int) HUDConfig {
	if c.Time.Width == 0 {
		c.Time.Width = screenWidth
	}
	if c.Time.Height == 0 {
		c.Time.Height = screenHeight
	}
	if c.Time.Top == 0 {
		c.Time.Top = screenHeight / 4
	}
	return c
}

// Wheel is the per-tire part of a telemetry sample.
type Wheel struct {
	TireLoad float64
	Wear     float64
}

// Telemetry is one raw sample from the simulation.
type Telemetry struct {
	DeltaTime      float64
	Drag           float64
	FrontDownforce float64
	RearDownforce  float64
	Wheels         [WheelCount]Wheel
}

// Downforce returns the combined front and rear downforce.
func (t Telemetry) Downforce() float64 {
	return t.FrontDownforce + t.RearDownforce
}

// Stint is a recorded live period.
type Stint struct {
	StartedAt time.Time
	EndedAt   time.Time
	Source    string
	Elapsed   float64
}

// StintAggregate summarizes a stored stint.
type StintAggregate struct {
	StintID   int64
	StartedAt time.Time
	EndedAt   time.Time
	Source    string
	Samples   int
	Elapsed   float64
}

// SessionsConfig filters the stint listing.
type SessionsConfig struct {
	Source string
	Since  *time.Time
	Last   int
}
