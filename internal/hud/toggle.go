// Package hud implements the telemetry overlay core: input debouncing,
// session phase tracking, the display gate, and the layout and color rules
// that turn a telemetry snapshot into draw commands.
package hud

// ToggleState is the debounced state of the toggle key.
type ToggleState int

const (
	// DisabledStable is off with the key released.
	DisabledStable ToggleState = iota
	// EnabledArmed is on, waiting for the key that turned it on to be released.
	EnabledArmed
	// EnabledStable is on with the key released.
	EnabledStable
	// DisabledArmed is off, waiting for the key that turned it off to be released.
	DisabledArmed
)

func (s ToggleState) String() string {
	switch s {
	case DisabledStable:
		return "disabled"
	case EnabledArmed:
		return "enabled-armed"
	case EnabledStable:
		return "enabled"
	case DisabledArmed:
		return "disabled-armed"
	default:
		return "unknown"
	}
}

// Toggle debounces a key sampled once per telemetry tick. It flips at most
// once per press-then-release cycle no matter how many ticks the key is held.
type Toggle struct {
	state ToggleState
}

// NewToggle returns a toggle starting in the given state.
func NewToggle(initial ToggleState) *Toggle {
	return &Toggle{state: initial}
}

// Update advances the state machine with the current key sample.
func (t *Toggle) Update(pressed bool) {
	if pressed {
		switch t.state {
		case DisabledStable:
			t.state = EnabledArmed
		case EnabledStable:
			t.state = DisabledArmed
		}
		return
	}
	switch t.state {
	case EnabledArmed:
		t.state = EnabledStable
	case DisabledArmed:
		t.state = DisabledStable
	}
}

// Enabled reports whether the overlay is switched on.
func (t *Toggle) Enabled() bool {
	return t.state == EnabledStable || t.state == EnabledArmed
}

// State returns the raw state.
func (t *Toggle) State() ToggleState {
	return t.state
}
