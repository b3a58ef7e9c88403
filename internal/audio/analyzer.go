package audio

import "math"

const (
	analyzerFFTSize = 1024
	bandSmoothing   = 0.35 // old-value weight in the band EWMA

	// Band edges in Hz, matching the synth engine this feeds from.
	bassMaxHz = 250
	midMaxHz  = 4000

	// Spectral-flux onset gate: a block is a transient when its flux
	// exceeds this multiple of the running average flux.
	fluxGate  = 2.2
	fluxFloor = 1e-4
)

// Analyzer turns raw interleaved stereo PCM into Frames and publishes
// each one into a Cell. It is driven from the audio goroutine; the
// render side only ever touches the Cell.
type Analyzer struct {
	cell       *Cell
	sampleRate int

	window   []float64
	buf      []complex128
	prevMags []float64

	low, mid, high float64
	fluxAvg        float64
}

// NewAnalyzer creates an Analyzer publishing into cell.
func NewAnalyzer(cell *Cell, sampleRate int) *Analyzer {
	return &Analyzer{
		cell:       cell,
		sampleRate: sampleRate,
		window:     hannWindow(analyzerFFTSize),
		buf:        make([]complex128, analyzerFFTSize),
		prevMags:   make([]float64, analyzerFFTSize/2),
	}
}

// Process analyzes one block of interleaved stereo int16 samples and
// publishes the resulting Frame. Blocks shorter than the FFT size are
// zero-padded; empty blocks publish the idle frame.
func (a *Analyzer) Process(samples []int16) {
	if len(samples) < 2 {
		a.cell.Store(Idle())
		return
	}

	// Mono mix the newest fftSize frames, windowed.
	frames := len(samples) / 2
	start := 0
	if frames > analyzerFFTSize {
		start = frames - analyzerFFTSize
	}
	peak := 0.0
	for i := 0; i < analyzerFFTSize; i++ {
		var s float64
		if start+i < frames {
			// Widen before adding: summing in int16 wraps on loud
			// correlated stereo.
			idx := (start + i) * 2
			s = (float64(samples[idx]) + float64(samples[idx+1])) / 65536.0
		}
		if v := math.Abs(s); v > peak {
			peak = v
		}
		a.buf[i] = complex(s*a.window[i], 0)
	}

	fft(a.buf)

	// Band averages and spectral flux over the magnitude spectrum.
	binHz := float64(a.sampleRate) / analyzerFFTSize
	var bassSum, midSum, highSum float64
	var bassN, midN, highN int
	var flux float64
	maxMag, maxBin := 0.0, 0
	for i := 1; i < analyzerFFTSize/2; i++ {
		mag := cmplxAbs(a.buf[i]) / (analyzerFFTSize / 4)
		hz := float64(i) * binHz
		switch {
		case hz < bassMaxHz:
			bassSum += mag
			bassN++
		case hz < midMaxHz:
			midSum += mag
			midN++
		default:
			highSum += mag
			highN++
		}
		if mag > maxMag {
			maxMag, maxBin = mag, i
		}
		if d := mag - a.prevMags[i]; d > 0 {
			flux += d
		}
		a.prevMags[i] = mag
	}

	mean := func(sum float64, n int) float64 {
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}
	a.low = a.low*bandSmoothing + softClamp(mean(bassSum, bassN))*(1-bandSmoothing)
	a.mid = a.mid*bandSmoothing + softClamp(mean(midSum, midN))*(1-bandSmoothing)
	a.high = a.high*bandSmoothing + softClamp(mean(highSum, highN))*(1-bandSmoothing)

	transient := flux > fluxFloor && a.fluxAvg > 0 && flux > fluxGate*a.fluxAvg
	a.fluxAvg = a.fluxAvg*0.9 + flux*0.1

	dominant := 0.0
	if maxMag > fluxFloor {
		dominant = float64(maxBin) * binHz
	}

	a.cell.Store(Frame{
		Amplitude: clamp01(peak),
		Low:       a.low,
		Mid:       a.mid,
		High:      a.high,
		Dominant:  dominant,
		Transient: transient,
	})
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// softClamp maps a non-negative magnitude into 0..1 with a knee
// instead of a hard cut, so loud bands saturate gracefully.
func softClamp(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v / (v + 0.15)
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
