// Package render owns the drawing side of the visualizer: program
// compilation and caching with fallback recovery, per-frame uniform
// binding, and a terminal line-rasterizer device.
package render

import (
	"fmt"

	"github.com/hyperav/hyperviz/internal/projection"
)

// Effect selects a program variant for a geometry.
type Effect uint8

const (
	EffectWireframe Effect = iota
	EffectGlow
)

func (e Effect) String() string {
	switch e {
	case EffectWireframe:
		return "wireframe"
	case EffectGlow:
		return "glow"
	default:
		return fmt.Sprintf("effect(%d)", uint8(e))
	}
}

// ProgramKey identifies one compiled program: a geometry/effect pair.
type ProgramKey struct {
	Geometry string
	Effect   Effect
}

// ColorStop is one point of a program's palette ramp.
type ColorStop struct {
	At      float64 // position along the ramp, 0..1, strictly increasing
	R, G, B uint8
}

// ProgramSpec is the source a device compiles into a program.
type ProgramSpec struct {
	Key   ProgramKey
	Stops []ColorStop
}

// ProgramID is an opaque device handle.
type ProgramID uint32

// Compiled pairs a device handle with the uniform name→slot table the
// device assigned at compile time.
type Compiled struct {
	ID        ProgramID
	Locations map[string]int
}

// CompileError reports a program that the device rejected. Rendering
// recovers through the fallback program; this never escapes the render
// loop as a failure.
type CompileError struct {
	Key    ProgramKey
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s/%s: %s", e.Key.Geometry, e.Key.Effect, e.Reason)
}

// Canonical uniform names. Every program exposes exactly this set and
// every frame binds all of them; partial updates do not exist.
const (
	UHueShift   = "hue_shift"
	UGlow       = "glow"
	UBaseR      = "base_r"
	UBaseG      = "base_g"
	UBaseB      = "base_b"
	ULineWidth  = "line_width"
	UScalePulse = "scale_pulse"
	UTime       = "time"
)

// UniformNames lists the canonical set in slot order.
func UniformNames() []string {
	return []string{UHueShift, UGlow, UBaseR, UBaseG, UBaseB, ULineWidth, UScalePulse, UTime}
}

// Uniforms is the complete per-frame uniform value set.
type Uniforms struct {
	HueShift   float64 // degrees
	Glow       float64 // 0..1
	BaseR      float64 // 0..1
	BaseG      float64
	BaseB      float64
	LineWidth  float64
	ScalePulse float64
	Time       float64 // seconds since the loop started
}

func (u Uniforms) value(name string) float64 {
	switch name {
	case UHueShift:
		return u.HueShift
	case UGlow:
		return u.Glow
	case UBaseR:
		return u.BaseR
	case UBaseG:
		return u.BaseG
	case UBaseB:
		return u.BaseB
	case ULineWidth:
		return u.LineWidth
	case UScalePulse:
		return u.ScalePulse
	case UTime:
		return u.Time
	default:
		return 0
	}
}

// Device is the graphics backend. The production implementation is the
// terminal rasterizer; tests use a fake that can refuse compiles.
type Device interface {
	// CompileProgram builds a program from spec. May be slow; callers
	// only compile on cold start or after a context loss.
	CompileProgram(spec ProgramSpec) (Compiled, error)
	// DeleteProgram releases a handle. Unknown handles are ignored.
	DeleteProgram(id ProgramID)
	// DrawEdges renders one wireframe with the dense uniform slot
	// values previously bound for the program.
	DrawEdges(id ProgramID, pts []projection.Point2, edges [][2]int, slots []float64) error
}
