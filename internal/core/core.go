// Package core orchestrates the visualizer: it owns the frame loop,
// the rotation state, the active geometry/projection/program
// selections, and drives geometry → projection → render each frame
// using the latest audio analysis.
package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/hyperav/hyperviz/internal/audio"
	"github.com/hyperav/hyperviz/internal/geometry"
	"github.com/hyperav/hyperviz/internal/projection"
	"github.com/hyperav/hyperviz/internal/render"
)

// ErrDisposed is returned by operations on a disposed core.
var ErrDisposed = errors.New("core: disposed")

// Screen is the graphics surface the core renders to: a program
// device plus viewport control and frame readback.
type Screen interface {
	render.Device
	Resize(width, height int)
	Frame() string
}

// Idle tumbling rates per rotation plane, radians/second. Chosen
// incommensurate so the figure never settles into a short cycle.
var baseVelocity = geometry.Rotation{
	XY: 0.31, XZ: 0.23, XW: 0.47, YZ: 0.19, YW: 0.29, ZW: 0.13,
}

const fpsSmoothing = 0.12

// Options configures a Core. Zero values pick the documented defaults.
type Options struct {
	Width, Height    int
	FPS              int             // frame rate, default 30
	Kind             geometry.Kind   // initial polytope
	SphereResolution int             // default DefaultSphereResolution
	Effect           render.Effect   // initial program variant
	Intensity        float64         // audio reactivity 0..1, default 0.7
	Logger           *slog.Logger    // nil means slog.Default()
}

// Core is one independent visualizer instance. All of its state is
// instance-owned; multiple cores can coexist.
type Core struct {
	mu sync.Mutex

	status   Status
	screen   Screen
	programs *render.Manager
	log      *slog.Logger

	kind      geometry.Kind
	sphereRes int
	effect    render.Effect
	polytope  *geometry.Polytope
	pending   *geometry.Polytope // swapped in at the next frame boundary

	projCfg     projection.Config
	pendingProj *projection.Config
	distSpring  harmonica.Spring
	dist        float64 // eased projection distance
	distVel     float64

	rotation  geometry.Rotation
	intensity float64

	cell      *audio.Cell
	lastFrame audio.Frame
	pulse     *audio.PulseTracker

	fps      int
	fpsEWMA  float64
	lastStep time.Time
	started  time.Time

	loopStop chan struct{}
	loopDone chan struct{}
	noLoop   bool // tests drive step directly
}

// New builds a core in the Uninitialized state. cell is the shared
// audio handoff slot; it may be nil for a silent, idle-driven run.
func New(screen Screen, cell *audio.Cell, opts Options) *Core {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	if opts.SphereResolution <= 0 {
		opts.SphereResolution = geometry.DefaultSphereResolution
	}
	if opts.Intensity == 0 {
		opts.Intensity = 0.7
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if cell == nil {
		cell = &audio.Cell{}
	}

	cfg := projection.DefaultConfig(opts.Width, opts.Height)
	return &Core{
		status:     Uninitialized,
		screen:     screen,
		programs:   render.NewManager(screen, opts.Logger),
		log:        opts.Logger,
		kind:       opts.Kind,
		sphereRes:  opts.SphereResolution,
		effect:     opts.Effect,
		projCfg:    cfg,
		distSpring: harmonica.NewSpring(harmonica.FPS(opts.FPS), 6.0, 1.0),
		dist:       cfg.Distance,
		intensity:  clamp01(opts.Intensity),
		cell:       cell,
		lastFrame:  audio.Idle(),
		pulse:      audio.NewPulseTracker(),
		fps:        opts.FPS,
	}
}

// Init acquires the initial geometry and program and moves the core to
// Ready. Compilation happens here, on the cold path, never mid-frame.
func (c *Core) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case Disposed:
		return ErrDisposed
	case Uninitialized:
	default:
		return fmt.Errorf("core: init from %s", c.status)
	}

	p, err := geometry.Topology(c.kind, c.sphereRes)
	if err != nil {
		return err
	}
	c.polytope = p
	c.programs.GetOrCompile(c.programKeyLocked())
	c.setStatusLocked(Ready)
	return nil
}

// Start begins the frame loop. Effective from Ready only.
func (c *Core) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case Disposed:
		return ErrDisposed
	case Rendering:
		return nil
	case Ready:
	default:
		return fmt.Errorf("core: start from %s", c.status)
	}

	c.setStatusLocked(Rendering)
	c.lastStep = time.Time{}
	if c.started.IsZero() {
		c.started = time.Now()
	}
	if c.loopStop == nil && !c.noLoop {
		c.loopStop = make(chan struct{})
		c.loopDone = make(chan struct{})
		go c.loop(c.loopStop, c.loopDone)
	}
	return nil
}

// Stop pauses the frame loop, returning to Ready. Takes effect within
// one frame interval.
func (c *Core) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Rendering {
		c.setStatusLocked(Ready)
	}
}

// Dispose tears the core down from any state. Idempotent.
func (c *Core) Dispose() {
	c.mu.Lock()
	if c.status == Disposed {
		c.mu.Unlock()
		return
	}
	c.setStatusLocked(Disposed)
	stop := c.loopStop
	done := c.loopDone
	c.loopStop = nil
	c.loopDone = nil
	c.programs.InvalidateAll()
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// NotifyContextLost signals loss of the graphics surface. The loop
// pauses; audio frames keep being overwritten in the cell, never
// queued.
func (c *Core) NotifyContextLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Rendering || c.status == Ready {
		c.setStatusLocked(ContextLost)
	}
}

// NotifyContextRestored recovers from ContextLost: cached programs are
// invalidated, geometry is rebuilt from the selected kind, and the
// core returns to Ready. The host restarts rendering with Start.
func (c *Core) NotifyContextRestored() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case Disposed:
		return ErrDisposed
	case ContextLost:
	default:
		return fmt.Errorf("core: restore from %s", c.status)
	}

	c.programs.InvalidateAll()
	p, err := geometry.Topology(c.kind, c.sphereRes)
	if err != nil {
		return err
	}
	c.polytope = p
	c.pending = nil
	c.programs.GetOrCompile(c.programKeyLocked())
	c.setStatusLocked(Ready)
	return nil
}

// SetGeometry switches the polytope kind. The topology is built and
// validated here; the swap lands on the next frame boundary. On error
// the active polytope is untouched.
func (c *Core) SetGeometry(kind geometry.Kind, sphereRes int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Disposed {
		return ErrDisposed
	}
	if sphereRes <= 0 {
		sphereRes = c.sphereRes
	}
	p, err := geometry.Topology(kind, sphereRes)
	if err != nil {
		return err
	}
	c.kind = kind
	c.sphereRes = sphereRes
	c.pending = p
	return nil
}

// SetProjection reconfigures the projection. Validated here, applied
// at the next frame boundary; the distance eases over rather than
// snapping.
func (c *Core) SetProjection(cfg projection.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Disposed {
		return ErrDisposed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.pendingProj = &cfg
	return nil
}

// SetEffect switches the program variant at the next frame.
func (c *Core) SetEffect(e render.Effect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.effect = e
}

// SetIntensity sets the audio reactivity amount, clamped to 0..1.
func (c *Core) SetIntensity(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intensity = clamp01(v)
}

// SetViewport resizes the render target.
func (c *Core) SetViewport(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Disposed {
		return
	}
	c.screen.Resize(width, height)
	c.projCfg.Width = width
	c.projCfg.Height = height
	if c.pendingProj != nil {
		c.pendingProj.Width = width
		c.pendingProj.Height = height
	}
}

// Status reports the current lifecycle state.
func (c *Core) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Geometry reports the selected polytope kind.
func (c *Core) Geometry() geometry.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

// Projection reports the active projection config.
func (c *Core) Projection() projection.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projCfg
}

// Intensity reports the audio reactivity amount.
func (c *Core) Intensity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intensity
}

// Effect reports the active program variant.
func (c *Core) Effect() render.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effect
}

// FPS reports the smoothed measured frame rate.
func (c *Core) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fpsEWMA
}

// CompileFailures reports how many program compiles fell back.
func (c *Core) CompileFailures() int {
	return c.programs.CompileFailures()
}

// Frame returns the most recently rendered frame string.
func (c *Core) Frame() string {
	return c.screen.Frame()
}

func (c *Core) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Second / time.Duration(c.fps))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			c.step(now)
		}
	}
}

// step renders one frame. All per-frame work is synchronous and
// non-blocking; pending geometry/projection swaps land here, at the
// frame boundary.
func (c *Core) step(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Rendering {
		// Paused or context lost: no frame, and the in-flight audio
		// frame is simply left to be overwritten.
		c.lastStep = time.Time{}
		return
	}

	dt := 1.0 / float64(c.fps)
	if !c.lastStep.IsZero() {
		if wall := now.Sub(c.lastStep).Seconds(); wall > 0 {
			dt = wall
		}
	}
	c.lastStep = now

	if c.pending != nil {
		c.polytope = c.pending
		c.pending = nil
	}
	if c.pendingProj != nil {
		c.projCfg = *c.pendingProj
		c.pendingProj = nil
	}

	// Latest audio frame; reuse the previous one when the producer has
	// not published since last frame, idle before the first ever.
	if f, ok := c.cell.Load(); ok {
		c.lastFrame = f
	}
	mod := audio.DeriveModulation(c.lastFrame, c.intensity)
	c.pulse.Observe(mod.ScalePulse)
	pulse := c.pulse.Advance(dt)

	c.rotation = c.rotation.Advance(scaleVelocity(baseVelocity, mod.RotationSpeed), dt)

	// Ease the 4D camera distance toward the configured target.
	c.dist, c.distVel = c.distSpring.Update(c.dist, c.distVel, c.projCfg.Distance)
	cfg := c.projCfg
	cfg.Distance = c.dist

	pts := projection.Project(c.polytope, c.rotation, cfg)

	prog := c.programs.GetOrCompile(c.programKeyLocked())
	base := baseColorFor(c.kind)
	c.programs.BindUniforms(prog, render.Uniforms{
		HueShift:   mod.HueShift,
		Glow:       mod.Glow,
		BaseR:      base[0],
		BaseG:      base[1],
		BaseB:      base[2],
		LineWidth:  1 + mod.Glow,
		ScalePulse: pulse,
		Time:       now.Sub(c.started).Seconds(),
	})
	if err := c.programs.Draw(prog, pts, c.polytope.Edges); err != nil {
		c.log.Warn("draw failed", "err", err)
	}

	if dt > 0 {
		inst := 1 / dt
		if c.fpsEWMA == 0 {
			c.fpsEWMA = inst
		} else {
			c.fpsEWMA += (inst - c.fpsEWMA) * fpsSmoothing
		}
	}
}

func (c *Core) programKeyLocked() render.ProgramKey {
	return render.ProgramKey{Geometry: c.kind.String(), Effect: c.effect}
}

func (c *Core) setStatusLocked(s Status) {
	if c.status == s {
		return
	}
	c.log.Debug("status", "from", c.status.String(), "to", s.String())
	c.status = s
}

func scaleVelocity(v geometry.Rotation, mult float64) geometry.Rotation {
	return geometry.Rotation{
		XY: v.XY * mult, XZ: v.XZ * mult, XW: v.XW * mult,
		YZ: v.YZ * mult, YW: v.YW * mult, ZW: v.ZW * mult,
	}
}

func baseColorFor(kind geometry.Kind) [3]float64 {
	switch kind {
	case geometry.Hypertetrahedron:
		return [3]float64{1, 0.35, 0.6}
	case geometry.Hypersphere:
		return [3]float64{0.2, 1, 0.7}
	default:
		return [3]float64{0.25, 0.75, 1}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
