package telemetry

import "github.com/verte-zerg/telehud/internal/model"

// Replay plays back recorded samples.
type Replay struct {
	samples []model.Telemetry
	pos     int
	loop    bool
}

// NewReplay returns a source over samples. With loop set it restarts from the
// first sample instead of running out.
func NewReplay(samples []model.Telemetry, loop bool) *Replay {
	return &Replay{samples: samples, loop: loop}
}

// Name implements Source.
func (r *Replay) Name() string {
	return "replay"
}

// Next implements Source.
func (r *Replay) Next() (model.Telemetry, bool) {
	if len(r.samples) == 0 {
		return model.Telemetry{}, false
	}
	if r.pos >= len(r.samples) {
		if !r.loop {
			return model.Telemetry{}, false
		}
		r.pos = 0
	}
	t := r.samples[r.pos]
	r.pos++
	return t, true
}
