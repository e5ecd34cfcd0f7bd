// Package telemetry provides telemetry sources for the terminal host.
package telemetry

import (
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/telehud/internal/model"
)

// Source yields telemetry samples one tick at a time.
type Source interface {
	// Next returns the next sample, or false when the source is exhausted.
	Next() (model.Telemetry, bool)
	// Name identifies the source in recorded stints.
	Name() string
}

// Car and track constants for the synthetic model. Speeds are m/s, mass is
// kg with driver, and aero coefficients are N per (m/s)^2.
const (
	carMass      = 600.0
	gravity      = 9.81
	frontDFCoef  = 0.85
	rearDFCoef   = 1.25
	dragCoef     = 0.42
	lapSeconds   = 80.0
	minSpeed     = 22.0
	maxSpeed     = 78.0
	wearPerJoule = 2.5e-9
	lateralShare = 0.18
	speedNoise   = 0.35
)

// Synthetic simulates a car lapping a circuit: aero forces grow with the
// square of speed, loads shift with downforce and cornering, and tires wear
// in proportion to the work they do.
type Synthetic struct {
	rnd  *rand.Rand
	dt   float64
	t    float64
	wear [model.WheelCount]float64
}

// NewSynthetic returns a source seeded with the current time producing a
// sample every dt.
func NewSynthetic(dt time.Duration) *Synthetic {
	return NewSyntheticSeeded(dt, time.Now().UnixNano())
}

// NewSyntheticSeeded returns a deterministic source.
func NewSyntheticSeeded(dt time.Duration, seed int64) *Synthetic {
	return &Synthetic{
		rnd: rand.New(rand.NewSource(seed)),
		dt:  dt.Seconds(),
	}
}

// Name implements Source.
func (s *Synthetic) Name() string {
	return "synthetic"
}

// Next implements Source. The synthetic source never runs out.
func (s *Synthetic) Next() (model.Telemetry, bool) {
	s.t += s.dt
	phase := 2 * math.Pi * s.t / lapSeconds

	// Three slow corners per lap; speed dips where curvature peaks.
	curve := math.Sin(3 * phase)
	speed := minSpeed + (maxSpeed-minSpeed)*(1-math.Abs(curve))
	speed += s.rnd.NormFloat64() * speedNoise
	speed = math.Max(speed, 0)
	v2 := speed * speed

	front := frontDFCoef * v2
	rear := rearDFCoef * v2
	drag := dragCoef * v2

	static := carMass * gravity / 4
	lateral := lateralShare * carMass * gravity * curve / 2

	loads := [model.WheelCount]float64{
		static + front/2 + lateral,
		static + front/2 - lateral,
		static + rear/2 + lateral,
		static + rear/2 - lateral,
	}

	sample := model.Telemetry{
		DeltaTime:      s.dt,
		Drag:           drag,
		FrontDownforce: front,
		RearDownforce:  rear,
	}
	for i, load := range loads {
		load = math.Max(load, 0)
		s.wear[i] = math.Min(s.wear[i]+load*speed*s.dt*wearPerJoule, 1)
		sample.Wheels[i] = model.Wheel{TireLoad: load, Wear: s.wear[i]}
	}
	return sample, true
}
