// Package audio holds the analysis side of the visualizer: the Frame
// snapshot produced by the analyzer, the single-slot handoff cell
// between the audio and render threads, and the reactivity bridge that
// turns a Frame into visual modulation scalars.
package audio

import "sync/atomic"

// Frame is one immutable snapshot of audio analysis. The producer
// builds a complete value and publishes it; nothing mutates it after.
type Frame struct {
	Amplitude float64 // peak level, 0..1
	Low       float64 // band energy below 250 Hz, 0..1
	Mid       float64 // band energy 250 Hz – 4 kHz, 0..1
	High      float64 // band energy above 4 kHz, 0..1
	Dominant  float64 // strongest bin frequency in Hz
	Transient bool    // onset detected in this block
}

// Idle returns the silent frame used before any analysis arrives.
func Idle() Frame { return Frame{} }

// Cell is the single-slot, overwrite-on-write handoff between the
// audio producer and the render consumer. The producer always
// overwrites; the consumer always reads the latest value without
// blocking or queuing. Staleness of at most one frame is tolerated by
// design, torn reads are not: the pointer swap is atomic.
type Cell struct {
	p atomic.Pointer[Frame]
}

// Store publishes f as the latest frame, replacing any unread one.
func (c *Cell) Store(f Frame) {
	c.p.Store(&f)
}

// Load returns the latest frame. ok is false until the first Store.
func (c *Cell) Load() (Frame, bool) {
	f := c.p.Load()
	if f == nil {
		return Idle(), false
	}
	return *f, true
}
