package render

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/hyperav/hyperviz/internal/projection"
)

// Braille cell dot layout: 2 columns × 4 rows per character cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const lutSize = 256

type termProgram struct {
	key ProgramKey
	lut [lutSize]colorRGB
}

// TermDevice rasterizes wireframes onto a braille dot grid and emits
// the frame as an ANSI-colored string. It is the production Device.
type TermDevice struct {
	mu       sync.Mutex
	width    int // cells
	height   int
	programs map[ProgramID]*termProgram
	nextID   ProgramID
	profile  colorProfile

	dots   []uint8
	colors []colorRGB
	out    string
}

// NewTermDevice creates a device targeting a width×height cell grid.
func NewTermDevice(width, height int) *TermDevice {
	d := &TermDevice{
		programs: make(map[ProgramID]*termProgram),
		nextID:   1,
		profile:  currentColorProfile(),
	}
	d.Resize(width, height)
	return d
}

// Resize retargets the cell grid. The next draw uses the new size.
func (d *TermDevice) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
	d.dots = make([]uint8, width*height)
	d.colors = make([]colorRGB, width*height)
}

// CompileProgram validates the palette ramp and bakes it into a color
// lookup table.
func (d *TermDevice) CompileProgram(spec ProgramSpec) (Compiled, error) {
	if len(spec.Stops) == 0 {
		return Compiled{}, &CompileError{Key: spec.Key, Reason: "palette has no stops"}
	}
	for i, s := range spec.Stops {
		if s.At < 0 || s.At > 1 {
			return Compiled{}, &CompileError{Key: spec.Key, Reason: fmt.Sprintf("stop %d position %g outside [0,1]", i, s.At)}
		}
	}
	if !sort.SliceIsSorted(spec.Stops, func(i, j int) bool { return spec.Stops[i].At < spec.Stops[j].At }) {
		return Compiled{}, &CompileError{Key: spec.Key, Reason: "palette stops out of order"}
	}

	p := &termProgram{key: spec.Key}
	for i := 0; i < lutSize; i++ {
		p.lut[i] = sampleRamp(spec.Stops, float64(i)/(lutSize-1))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.programs[id] = p

	locs := make(map[string]int, len(UniformNames()))
	for slot, name := range UniformNames() {
		locs[name] = slot
	}
	return Compiled{ID: id, Locations: locs}, nil
}

// DeleteProgram drops a compiled program. Unknown ids are ignored.
func (d *TermDevice) DeleteProgram(id ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, id)
}

// DrawEdges rasterizes one wireframe and replaces the current frame
// string. Edge colors come from the program LUT indexed by hyper-depth,
// hue-shifted and glow-brightened per the bound uniforms.
func (d *TermDevice) DrawEdges(id ProgramID, pts []projection.Point2, edges [][2]int, slots []float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("render: draw with unknown program %d", id)
	}
	u := uniformsFromSlots(slots)

	for i := range d.dots {
		d.dots[i] = 0
	}

	dotsW := d.width * 2
	dotsH := d.height * 4
	cx := float64(d.width) / 2
	cy := float64(d.height) / 2
	scale := u.ScalePulse
	if scale <= 0 {
		scale = 1
	}

	thick := u.LineWidth >= 1.5
	for _, e := range edges {
		if e[0] < 0 || e[0] >= len(pts) || e[1] < 0 || e[1] >= len(pts) {
			continue
		}
		a, b := pts[e[0]], pts[e[1]]
		// Pulse scaling around the viewport center, then cell→dot space.
		ax := (cx + (a.X-cx)*scale) * 2
		ay := (cy + (a.Y-cy)*scale) * 4
		bx := (cx + (b.X-cx)*scale) * 2
		by := (cy + (b.Y-cy)*scale) * 4
		d.line(p, u, ax, ay, bx, by, a.Depth, b.Depth, dotsW, dotsH, thick)
	}

	d.out = d.render()
	return nil
}

// Frame returns the most recently drawn frame string.
func (d *TermDevice) Frame() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out
}

// line draws a dot-space segment with depth-interpolated coloring.
// The segment is clipped to the grid first: a vertex flung out by the
// projection pole clamp can land millions of dots off-grid, and
// stepping the unclipped span would stall the frame loop.
func (d *TermDevice) line(p *termProgram, u Uniforms, x0, y0, x1, y1, d0, d1 float64, dotsW, dotsH int, thick bool) {
	t0, t1, ok := clipSegment(x0, y0, x1, y1, dotsW, dotsH)
	if !ok {
		return
	}
	cx0 := x0 + (x1-x0)*t0
	cy0 := y0 + (y1-y0)*t0
	cx1 := x0 + (x1-x0)*t1
	cy1 := y0 + (y1-y0)*t1
	cd0 := d0 + (d1-d0)*t0
	cd1 := d0 + (d1-d0)*t1

	steps := math.Max(math.Abs(cx1-cx0), math.Abs(cy1-cy0))
	n := int(steps) + 1
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		x := int(math.Round(cx0 + (cx1-cx0)*t))
		y := int(math.Round(cy0 + (cy1-cy0)*t))
		if x < 0 || x >= dotsW || y < 0 || y >= dotsH {
			continue
		}
		depth := cd0 + (cd1-cd0)*t
		c := d.edgeColor(p, u, depth)
		d.plot(x, y, c)
		if thick {
			if x+1 < dotsW {
				d.plot(x+1, y, c)
			}
			if y+1 < dotsH {
				d.plot(x, y+1, c)
			}
		}
	}
}

// clipSegment intersects a parameterized segment with the dot grid
// (Liang-Barsky), returning the [t0,t1] span inside it. ok is false
// when the segment misses the grid entirely.
func clipSegment(x0, y0, x1, y1 float64, dotsW, dotsH int) (float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx := x1 - x0
	dy := y1 - y0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, float64(dotsW-1) - x0},
		{-dy, y0},
		{dy, float64(dotsH-1) - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return t0, t1, true
}

func (d *TermDevice) plot(x, y int, c colorRGB) {
	i := (y/4)*d.width + x/2
	d.dots[i] |= brailleBits[y%4][x%2]
	d.colors[i] = c
}

// edgeColor maps hyper-depth into the LUT, then applies the hue-shift
// and glow uniforms. Unit-scale polytopes keep W within about ±1.
func (d *TermDevice) edgeColor(p *termProgram, u Uniforms, depth float64) colorRGB {
	t := clamp01f((depth + 1.2) / 2.4)
	c := p.lut[int(t*(lutSize-1))]
	// Tint toward the base-color uniform, then shift.
	base := colorRGB{R: uint8(clamp01f(u.BaseR) * 255), G: uint8(clamp01f(u.BaseG) * 255), B: uint8(clamp01f(u.BaseB) * 255)}
	c = lerpColor(c, base, 0.25)
	return shiftHue(c, u.HueShift, 0.55+0.45*clamp01f(u.Glow))
}

func (d *TermDevice) render() string {
	var sb strings.Builder
	sb.Grow(d.width*d.height + d.height)
	color := newANSIState(d.profile)
	for row := 0; row < d.height; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < d.width; col++ {
			i := row*d.width + col
			if d.dots[i] == 0 {
				sb.WriteByte(' ')
				continue
			}
			color.set(&sb, d.colors[i])
			sb.WriteRune(rune(0x2800 + int(d.dots[i])))
		}
		color.reset(&sb)
	}
	return sb.String()
}

func uniformsFromSlots(slots []float64) Uniforms {
	var u Uniforms
	for slot, name := range UniformNames() {
		if slot >= len(slots) {
			break
		}
		v := slots[slot]
		switch name {
		case UHueShift:
			u.HueShift = v
		case UGlow:
			u.Glow = v
		case UBaseR:
			u.BaseR = v
		case UBaseG:
			u.BaseG = v
		case UBaseB:
			u.BaseB = v
		case ULineWidth:
			u.LineWidth = v
		case UScalePulse:
			u.ScalePulse = v
		case UTime:
			u.Time = v
		}
	}
	return u
}

// sampleRamp interpolates the palette at position t.
func sampleRamp(stops []ColorStop, t float64) colorRGB {
	first := stops[0]
	if t <= first.At || len(stops) == 1 {
		return colorRGB{first.R, first.G, first.B}
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].At {
			lo, hi := stops[i-1], stops[i]
			span := hi.At - lo.At
			f := 0.0
			if span > 0 {
				f = (t - lo.At) / span
			}
			return lerpColor(colorRGB{lo.R, lo.G, lo.B}, colorRGB{hi.R, hi.G, hi.B}, f)
		}
	}
	last := stops[len(stops)-1]
	return colorRGB{last.R, last.G, last.B}
}
