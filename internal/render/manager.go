package render

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hyperav/hyperviz/internal/projection"
)

// Program is a compiled program handle plus its uniform location table
// and the most recently bound uniform values.
type Program struct {
	Key       ProgramKey
	Fallback  bool // true when this is the flat-color recovery program
	compiled  Compiled
	slots     []float64
	haveUnifs bool
}

// Manager compiles programs lazily, caches them by key, falls back to
// a flat-color program when a compile fails, and drops every cached
// handle on context loss so the next lookup recompiles.
type Manager struct {
	dev Device
	log *slog.Logger

	mu              sync.Mutex
	programs        map[ProgramKey]*Program
	fallback        *Program
	compileFailures int
}

// NewManager wraps a device. logger may be nil.
func NewManager(dev Device, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dev:      dev,
		log:      logger,
		programs: make(map[ProgramKey]*Program),
	}
}

// GetOrCompile returns the cached program for key, compiling it on
// first use. A failed compile is recorded and answered with the shared
// flat-color fallback program; the render loop never sees an error.
func (m *Manager) GetOrCompile(key ProgramKey) *Program {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.programs[key]; ok {
		return p
	}

	spec := SpecFor(key)
	compiled, err := m.dev.CompileProgram(spec)
	if err != nil {
		m.compileFailures++
		m.log.Warn("program compile failed, using fallback",
			"geometry", key.Geometry, "effect", key.Effect.String(), "err", err)
		p := m.fallbackLocked()
		m.programs[key] = p
		return p
	}

	p := &Program{Key: key, compiled: compiled, slots: make([]float64, len(compiled.Locations))}
	m.programs[key] = p
	return p
}

// fallbackLocked compiles the minimal flat program once per context
// generation. Its spec is trivial; if even that fails the device is
// unusable and we panic rather than render nothing silently.
func (m *Manager) fallbackLocked() *Program {
	if m.fallback != nil {
		return m.fallback
	}
	compiled, err := m.dev.CompileProgram(FallbackSpec())
	if err != nil {
		panic(fmt.Sprintf("render: fallback program rejected by device: %v", err))
	}
	m.fallback = &Program{
		Key:      FallbackSpec().Key,
		Fallback: true,
		compiled: compiled,
		slots:    make([]float64, len(compiled.Locations)),
	}
	return m.fallback
}

// BindUniforms writes the complete uniform set into the program's
// slots. Binding is idempotent and total: every canonical uniform is
// written on every call.
func (m *Manager) BindUniforms(p *Program, u Uniforms) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range UniformNames() {
		slot, ok := p.compiled.Locations[name]
		if !ok {
			// A program missing a canonical uniform is a device bug;
			// skipping keeps the frame alive.
			m.log.Warn("program missing uniform", "uniform", name, "geometry", p.Key.Geometry)
			continue
		}
		p.slots[slot] = u.value(name)
	}
	p.haveUnifs = true
}

// Draw issues the draw call for one projected wireframe.
func (m *Manager) Draw(p *Program, pts []projection.Point2, edges [][2]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !p.haveUnifs {
		return fmt.Errorf("render: draw before uniforms bound for %s", p.Key.Geometry)
	}
	return m.dev.DrawEdges(p.compiled.ID, pts, edges, p.slots)
}

// InvalidateAll releases every cached program, including the fallback.
// Called on context loss; the next GetOrCompile recompiles from spec
// instead of reusing stale handles.
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[ProgramID]bool)
	for key, p := range m.programs {
		if !seen[p.compiled.ID] {
			m.dev.DeleteProgram(p.compiled.ID)
			seen[p.compiled.ID] = true
		}
		delete(m.programs, key)
	}
	if m.fallback != nil {
		if !seen[m.fallback.compiled.ID] {
			m.dev.DeleteProgram(m.fallback.compiled.ID)
		}
		m.fallback = nil
	}
	m.log.Debug("program cache invalidated")
}

// CompileFailures reports how many compiles fell back since creation.
func (m *Manager) CompileFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compileFailures
}

// CachedPrograms reports the number of live cache entries.
func (m *Manager) CachedPrograms() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.programs)
}
