package core

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hyperav/hyperviz/internal/audio"
	"github.com/hyperav/hyperviz/internal/geometry"
	"github.com/hyperav/hyperviz/internal/projection"
	"github.com/hyperav/hyperviz/internal/render"
)

// fakeScreen satisfies Screen without a terminal. It accepts every
// compile unless told otherwise and remembers what was drawn.
type fakeScreen struct {
	mu        sync.Mutex
	nextID    render.ProgramID
	compiles  int
	deletes   int
	draws     int
	lastPts   int
	lastEdges int
	lastSlots []float64
	failAll   bool
}

func newFakeScreen() *fakeScreen { return &fakeScreen{nextID: 1} }

func (f *fakeScreen) drawCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draws
}

func (f *fakeScreen) CompileProgram(spec render.ProgramSpec) (render.Compiled, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compiles++
	if f.failAll && spec.Key.Geometry != "fallback" {
		return render.Compiled{}, &render.CompileError{Key: spec.Key, Reason: "refused"}
	}
	locs := make(map[string]int)
	for slot, name := range render.UniformNames() {
		locs[name] = slot
	}
	id := f.nextID
	f.nextID++
	return render.Compiled{ID: id, Locations: locs}, nil
}

func (f *fakeScreen) DeleteProgram(render.ProgramID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
}

func (f *fakeScreen) DrawEdges(_ render.ProgramID, pts []projection.Point2, edges [][2]int, slots []float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draws++
	f.lastPts = len(pts)
	f.lastEdges = len(edges)
	f.lastSlots = append([]float64(nil), slots...)
	return nil
}

func (f *fakeScreen) Resize(int, int) {}
func (f *fakeScreen) Frame() string   { return "frame" }

func quietOpts() Options {
	return Options{Width: 40, Height: 20, Logger: slog.New(slog.DiscardHandler)}
}

func newReadyCore(t *testing.T, screen *fakeScreen, cell *audio.Cell) *Core {
	t.Helper()
	c := New(screen, cell, quietOpts())
	c.noLoop = true
	if err := c.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return c
}

func (c *Core) render(t *testing.T) {
	t.Helper()
	if err := c.Start(); err != nil && c.Status() != Rendering {
		t.Fatalf("start: %v", err)
	}
	c.step(time.Now())
	c.Stop()
}

func TestLifecycleHappyPath(t *testing.T) {
	screen := newFakeScreen()
	c := New(screen, nil, quietOpts())
	c.noLoop = true
	if got := c.Status(); got != Uninitialized {
		t.Fatalf("fresh core status %s", got)
	}

	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if got := c.Status(); got != Ready {
		t.Fatalf("after init: %s", got)
	}

	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if got := c.Status(); got != Rendering {
		t.Fatalf("after start: %s", got)
	}

	c.step(time.Now())
	if screen.draws != 1 {
		t.Fatalf("expected 1 draw, got %d", screen.draws)
	}
	// Tesseract wireframe: 16 projected points, 32 edges.
	if screen.lastPts != 16 || screen.lastEdges != 32 {
		t.Fatalf("drew %d points / %d edges", screen.lastPts, screen.lastEdges)
	}

	c.Dispose()
	if got := c.Status(); got != Disposed {
		t.Fatalf("after dispose: %s", got)
	}
	if err := c.Start(); !errors.Is(err, ErrDisposed) {
		t.Fatalf("start after dispose: %v", err)
	}
}

func TestStartBeforeInitFails(t *testing.T) {
	c := New(newFakeScreen(), nil, quietOpts())
	if err := c.Start(); err == nil {
		t.Fatal("expected error starting uninitialized core")
	}
}

func TestContextLossDropsFramesAndRecovers(t *testing.T) {
	screen := newFakeScreen()
	c := newReadyCore(t, screen, nil)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.step(time.Now())
	drawsBefore := screen.draws
	compilesBefore := screen.compiles

	c.NotifyContextLost()
	if got := c.Status(); got != ContextLost {
		t.Fatalf("after loss: %s", got)
	}

	// In-flight frames are dropped, not drawn and not queued.
	c.step(time.Now())
	c.step(time.Now())
	if screen.draws != drawsBefore {
		t.Fatalf("drew %d frames while context lost", screen.draws-drawsBefore)
	}

	if err := c.NotifyContextRestored(); err != nil {
		t.Fatal(err)
	}
	if got := c.Status(); got != Ready {
		t.Fatalf("after restore: %s", got)
	}
	if screen.deletes == 0 {
		t.Fatal("expected program cache invalidated on recovery")
	}
	if screen.compiles <= compilesBefore {
		t.Fatal("expected recompile after recovery, not a stale handle")
	}

	// Rendering resumes normally.
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.step(time.Now())
	if screen.draws != drawsBefore+1 {
		t.Fatalf("expected draw after recovery, got %d", screen.draws-drawsBefore)
	}
}

func TestGeometrySwitchAtFrameBoundary(t *testing.T) {
	screen := newFakeScreen()
	c := newReadyCore(t, screen, nil)

	if err := c.SetGeometry(geometry.Hypertetrahedron, 0); err != nil {
		t.Fatal(err)
	}
	c.render(t)
	if screen.lastPts != 5 || screen.lastEdges != 10 {
		t.Fatalf("expected 5-cell after switch, drew %d/%d", screen.lastPts, screen.lastEdges)
	}
	if c.Geometry() != geometry.Hypertetrahedron {
		t.Fatalf("geometry reports %s", c.Geometry())
	}
}

func TestBadSphereResolutionLeavesGeometryUnchanged(t *testing.T) {
	screen := newFakeScreen()
	c := newReadyCore(t, screen, nil)

	err := c.SetGeometry(geometry.Hypersphere, 1)
	if err == nil {
		t.Fatal("expected ConfigError")
	}
	var ce *geometry.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %T", err)
	}

	// The active hypercube still renders.
	c.render(t)
	if screen.lastPts != 16 {
		t.Fatalf("active polytope changed: %d points", screen.lastPts)
	}
	if c.Geometry() != geometry.Hypercube {
		t.Fatalf("kind changed to %s", c.Geometry())
	}
}

func TestProjectionValidationAndSwap(t *testing.T) {
	c := newReadyCore(t, newFakeScreen(), nil)

	bad := projection.Config{Distance: -1, ViewDistance: 1, Width: 10, Height: 10}
	if err := c.SetProjection(bad); err == nil {
		t.Fatal("expected validation error")
	}

	good := projection.DefaultConfig(40, 20)
	good.Method = projection.Stereographic
	if err := c.SetProjection(good); err != nil {
		t.Fatal(err)
	}
	if c.Projection().Method == projection.Stereographic {
		t.Fatal("projection must not change before the frame boundary")
	}
	c.render(t)
	if c.Projection().Method != projection.Stereographic {
		t.Fatal("projection change not applied at frame boundary")
	}
}

func TestAudioModulationReachesUniforms(t *testing.T) {
	screen := newFakeScreen()
	cell := &audio.Cell{}
	c := newReadyCore(t, screen, cell)
	c.SetIntensity(1)

	cell.Store(audio.Frame{Amplitude: 1, High: 0.25})
	c.render(t)

	slots := screen.lastSlots
	names := render.UniformNames()
	get := func(want string) float64 {
		for i, n := range names {
			if n == want {
				return slots[i]
			}
		}
		t.Fatalf("uniform %s missing", want)
		return 0
	}
	if got := get(render.UHueShift); got != 90 {
		t.Fatalf("hue shift %g", got)
	}
	if got := get(render.UGlow); got != 1 {
		t.Fatalf("glow %g", got)
	}
}

func TestIdleFrameWhenNoAudio(t *testing.T) {
	screen := newFakeScreen()
	c := newReadyCore(t, screen, nil)
	// No producer: the core renders with the idle frame and never blocks.
	c.render(t)
	if screen.draws != 1 {
		t.Fatal("expected a frame despite missing audio")
	}
}

func TestCompileFailureDoesNotStopRendering(t *testing.T) {
	screen := newFakeScreen()
	screen.failAll = true
	c := newReadyCore(t, screen, nil)
	c.render(t)
	if screen.draws != 1 {
		t.Fatal("expected fallback program to draw")
	}
	if c.CompileFailures() == 0 {
		t.Fatal("expected recorded compile failure")
	}
}

func TestLoopStopsWithinOneFrame(t *testing.T) {
	screen := newFakeScreen()
	c := New(screen, nil, Options{Width: 10, Height: 10, FPS: 120, Logger: slog.New(slog.DiscardHandler)})
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	c.Dispose()
	if c.Status() != Disposed {
		t.Fatal("dispose did not land")
	}
	// The loop goroutine has exited; further ticks are inert.
	draws := screen.drawCount()
	time.Sleep(30 * time.Millisecond)
	if screen.drawCount() != draws {
		t.Fatal("loop still drawing after dispose")
	}
}

func TestMultipleIndependentCores(t *testing.T) {
	a := newReadyCore(t, newFakeScreen(), nil)
	b := newReadyCore(t, newFakeScreen(), nil)

	if err := a.SetGeometry(geometry.Hypersphere, 4); err != nil {
		t.Fatal(err)
	}
	a.render(t)
	b.render(t)

	if a.Geometry() == b.Geometry() {
		t.Fatal("cores share geometry state")
	}
}
