package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveModulationPure(t *testing.T) {
	f := Frame{Amplitude: 0.8, Low: 0.4, Mid: 0.5, High: 0.6, Transient: true}
	first := DeriveModulation(f, 0.7)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, DeriveModulation(f, 0.7))
	}
}

func TestDeriveModulationIdleAtZeroIntensity(t *testing.T) {
	frames := []Frame{
		{},
		{Amplitude: 1, Low: 1, Mid: 1, High: 1, Transient: true},
		{Amplitude: 0.3, High: 0.9},
	}
	for _, f := range frames {
		m := DeriveModulation(f, 0)
		require.Equal(t, 1.0, m.RotationSpeed)
		require.Equal(t, 0.0, m.HueShift)
		require.Equal(t, 0.0, m.Glow)
		require.Equal(t, 1.0, m.ScalePulse)
	}
}

func TestDeriveModulationMapping(t *testing.T) {
	f := Frame{Amplitude: 0.5, High: 0.25}
	m := DeriveModulation(f, 1)
	require.InDelta(t, 1.5, m.RotationSpeed, 1e-12)
	require.InDelta(t, 90.0, m.HueShift, 1e-12)
	require.InDelta(t, 0.5, m.Glow, 1e-12)
	require.Equal(t, 1.0, m.ScalePulse)
}

func TestDeriveModulationHueWraps(t *testing.T) {
	// High band saturated: intensity * 1 * 360 wraps to 0.
	m := DeriveModulation(Frame{High: 1}, 1)
	require.GreaterOrEqual(t, m.HueShift, 0.0)
	require.Less(t, m.HueShift, 360.0)
}

func TestDeriveModulationGlowClamped(t *testing.T) {
	m := DeriveModulation(Frame{Amplitude: 1}, 1)
	require.Equal(t, 1.0, m.Glow)
	m = DeriveModulation(Frame{Amplitude: -2}, 1)
	require.GreaterOrEqual(t, m.Glow, 0.0)
}

func TestPulseTrackerDecaysTowardOne(t *testing.T) {
	p := NewPulseTracker()
	p.Observe(DeriveModulation(Frame{Transient: true}, 1).ScalePulse)
	require.InDelta(t, 1+pulseBoost, p.Value(), 1e-12)

	// One half-life later the excess has halved.
	got := p.Advance(pulseHalfLife)
	require.InDelta(t, 1+pulseBoost/2, got, 1e-9)

	// A long stretch settles back to exactly 1.
	for i := 0; i < 100; i++ {
		p.Advance(pulseHalfLife)
	}
	require.Equal(t, 1.0, p.Value())
}

func TestPulseTrackerBurstRetriggers(t *testing.T) {
	p := NewPulseTracker()
	spike := 1 + pulseBoost

	p.Observe(spike)
	p.Advance(pulseHalfLife * 3)
	dipped := p.Value()
	require.Less(t, dipped, spike)

	// A second transient pulls the envelope back to the full spike,
	// producing a visibly distinct second pulse.
	p.Observe(spike)
	require.Equal(t, spike, p.Value())

	// Observe never lowers the envelope.
	p.Observe(1.0)
	require.Equal(t, spike, p.Value())
}

func TestCellOverwriteAndLatestWins(t *testing.T) {
	var c Cell

	_, ok := c.Load()
	require.False(t, ok, "empty cell reports no frame")

	c.Store(Frame{Amplitude: 0.1})
	c.Store(Frame{Amplitude: 0.9})
	f, ok := c.Load()
	require.True(t, ok)
	require.Equal(t, 0.9, f.Amplitude, "latest write wins")

	// Reading does not consume.
	f, ok = c.Load()
	require.True(t, ok)
	require.Equal(t, 0.9, f.Amplitude)
}
