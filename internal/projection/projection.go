// Package projection maps rotated 4D vertices down to 2D viewport
// coordinates: a perspective divide by the 4th coordinate into 3-space,
// then a conventional perspective divide by depth into screen space.
package projection

import (
	"fmt"

	"github.com/hyperav/hyperviz/internal/geometry"
)

// Method selects how the 4D→3D stage divides out the W coordinate.
type Method uint8

const (
	// Perspective scales by distance/(distance+w).
	Perspective Method = iota
	// Stereographic scales by distance/(distance-w), the classic
	// pole-projection of the 3-sphere.
	Stereographic
)

func (m Method) String() string {
	switch m {
	case Perspective:
		return "perspective"
	case Stereographic:
		return "stereographic"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// ParseMethod maps a name to a Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "perspective":
		return Perspective, nil
	case "stereographic":
		return Stereographic, nil
	default:
		return 0, fmt.Errorf("unknown projection method %q", name)
	}
}

// epsDenom guards the perspective divides. A vertex swinging through
// the projection pole would otherwise blow up to infinity.
const epsDenom = 1e-6

// Config holds the projection parameters. Distance is the 4D camera
// distance (perceived hyper-depth), ViewDistance the 3D camera distance
// (conventional FOV), Width/Height the target viewport in cells.
type Config struct {
	Method       Method
	Distance     float64
	ViewDistance float64
	Width        int
	Height       int
}

// DefaultConfig returns the config used before the host reconfigures.
func DefaultConfig(width, height int) Config {
	return Config{
		Method:       Perspective,
		Distance:     2.2,
		ViewDistance: 3.5,
		Width:        width,
		Height:       height,
	}
}

// Validate rejects parameters that would degenerate every vertex.
func (c Config) Validate() error {
	if c.Distance <= 0 {
		return fmt.Errorf("projection distance must be > 0, got %g", c.Distance)
	}
	if c.ViewDistance <= 0 {
		return fmt.Errorf("view distance must be > 0, got %g", c.ViewDistance)
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("viewport must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	return nil
}

// Point2 is a projected vertex in viewport coordinates (origin at the
// viewport center, Y growing downward). Depth carries the rotated W
// coordinate through for depth-cued shading.
type Point2 struct {
	X, Y  float64
	Depth float64
}

// Project rotates every vertex of p by rot and projects it into the
// viewport. The output has the same length and order as p.Vertices, so
// it can be zipped with p.Edges by index.
func Project(p *geometry.Polytope, rot geometry.Rotation, cfg Config) []Point2 {
	R := rot.Compose()
	out := make([]Point2, len(p.Vertices))

	cx := float64(cfg.Width) / 2
	cy := float64(cfg.Height) / 2
	span := float64(cfg.Width)
	if float64(cfg.Height) < span {
		span = float64(cfg.Height)
	}
	scalePx := span / 2

	for i, v := range p.Vertices {
		r := R.MulVec(v)

		var denom float64
		switch cfg.Method {
		case Stereographic:
			denom = cfg.Distance - r.W
		default:
			denom = cfg.Distance + r.W
		}
		if denom < epsDenom && denom > -epsDenom {
			if denom < 0 {
				denom = -epsDenom
			} else {
				denom = epsDenom
			}
		}
		s3 := cfg.Distance / denom
		x3, y3, z3 := r.X*s3, r.Y*s3, r.Z*s3

		denom = cfg.ViewDistance + z3
		if denom < epsDenom && denom > -epsDenom {
			if denom < 0 {
				denom = -epsDenom
			} else {
				denom = epsDenom
			}
		}
		s2 := cfg.ViewDistance / denom

		out[i] = Point2{
			X:     cx + x3*s2*scalePx,
			Y:     cy - y3*s2*scalePx,
			Depth: r.W,
		}
	}
	return out
}
