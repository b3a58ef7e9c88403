package audio

import "math"

// Modulation is the set of visual scalars derived from one Frame.
type Modulation struct {
	RotationSpeed float64 // multiplier on the base rotation rate, >= 1
	HueShift      float64 // degrees, in [0, 360)
	Glow          float64 // 0..1
	ScalePulse    float64 // target multiplicative scale, 1 when idle
}

// pulseBoost is the instantaneous scale spike on a transient at full
// intensity.
const pulseBoost = 0.35

// DeriveModulation maps an analysis frame and a reactivity intensity
// (0..1) to modulation scalars. It is a pure function: the same inputs
// always produce the same outputs, and intensity 0 yields the idle
// modulation no matter what the frame holds.
func DeriveModulation(f Frame, intensity float64) Modulation {
	intensity = clamp01(intensity)

	hue := math.Mod(intensity*f.High*360, 360)
	if hue < 0 {
		hue += 360
	}

	pulse := 1.0
	if f.Transient {
		pulse = 1 + pulseBoost*intensity
	}

	return Modulation{
		RotationSpeed: 1 + intensity*f.Amplitude,
		HueShift:      hue,
		Glow:          clamp01(intensity * f.Amplitude),
		ScalePulse:    pulse,
	}
}

// pulseHalfLife is how long a transient spike takes to decay halfway
// back to 1. Short enough that a burst of onsets reads as distinct
// pulses rather than one sustained boost.
const pulseHalfLife = 0.12 // seconds

// PulseTracker carries the transient scale envelope across frames.
// DeriveModulation stays pure; the decay state lives here and is
// advanced once per rendered frame with wall-clock dt.
type PulseTracker struct {
	value float64
}

// NewPulseTracker returns a tracker at rest.
func NewPulseTracker() *PulseTracker {
	return &PulseTracker{value: 1}
}

// Observe retriggers the envelope if target exceeds the current value.
func (p *PulseTracker) Observe(target float64) {
	if target > p.value {
		p.value = target
	}
}

// Advance decays the envelope exponentially toward 1 with a fixed
// half-life and returns the new value.
func (p *PulseTracker) Advance(dt float64) float64 {
	if dt > 0 {
		k := math.Exp2(-dt / pulseHalfLife)
		p.value = 1 + (p.value-1)*k
		if math.Abs(p.value-1) < 1e-4 {
			p.value = 1
		}
	}
	return p.value
}

// Value returns the current envelope without advancing it.
func (p *PulseTracker) Value() float64 { return p.value }
