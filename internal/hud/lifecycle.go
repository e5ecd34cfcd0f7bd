package hud

// Phase is the host session phase.
type Phase int

const (
	// Inactive covers menus, monitor and replay.
	Inactive Phase = iota
	// Live means the driver is in the cockpit.
	Live
)

func (p Phase) String() string {
	if p == Live {
		return "live"
	}
	return "inactive"
}

// Lifecycle tracks the session phase, time spent live and whether the
// welcome notice was already shown for the current session. Transitions are
// driven only by host callbacks.
type Lifecycle struct {
	phase        Phase
	elapsed      float64
	welcomeShown bool
}

// EnterLive switches to Live and restarts the elapsed timer.
func (l *Lifecycle) EnterLive() {
	l.elapsed = 0
	l.phase = Live
}

// ExitLive switches to Inactive.
func (l *Lifecycle) ExitLive() {
	l.phase = Inactive
}

// StartSession re-arms the welcome notice.
func (l *Lifecycle) StartSession() {
	l.welcomeShown = false
}

// EndSession forces Inactive and clears the elapsed timer.
func (l *Lifecycle) EndSession() {
	l.elapsed = 0
	l.phase = Inactive
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() Phase {
	return l.phase
}

// Live reports whether the phase is Live.
func (l *Lifecycle) Live() bool {
	return l.phase == Live
}

// Elapsed returns seconds accumulated since the last EnterLive.
func (l *Lifecycle) Elapsed() float64 {
	return l.elapsed
}

func (l *Lifecycle) advance(dt float64) {
	if l.phase != Live || dt <= 0 {
		return
	}
	l.elapsed += dt
}

// takeWelcome returns true once per session, and only while live.
func (l *Lifecycle) takeWelcome() bool {
	if l.phase != Live || l.welcomeShown {
		return false
	}
	l.welcomeShown = true
	return true
}
