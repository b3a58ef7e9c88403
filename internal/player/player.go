package player

import (
	"encoding/binary"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hyperav/hyperviz/internal/audio"
)

// tapReader wraps a decoder, tracks the byte position of playback, and
// hands every decoded PCM block to the analyzer before it reaches the
// audio device.
type tapReader struct {
	reader   pcmStream
	analyzer *audio.Analyzer
	channels int

	mu      sync.Mutex
	pos     int64
	samples []int16
}

func (tr *tapReader) Read(p []byte) (int, error) {
	n, err := tr.reader.Read(p)
	if n > 0 {
		tr.mu.Lock()
		tr.pos += int64(n)
		tr.mu.Unlock()
		if tr.analyzer != nil {
			tr.tap(p[:n])
		}
	}
	return n, err
}

// tap decodes the raw little-endian block into int16 samples and feeds
// the analyzer. Mono sources are upmixed so the analyzer always sees
// interleaved stereo.
func (tr *tapReader) tap(b []byte) {
	count := len(b) / 2
	if count == 0 {
		return
	}
	want := count
	if tr.channels == 1 {
		want = count * 2
	}
	if cap(tr.samples) < want {
		tr.samples = make([]int16, want)
	}
	s := tr.samples[:want]
	if tr.channels == 1 {
		for i := 0; i < count; i++ {
			v := int16(binary.LittleEndian.Uint16(b[i*2:]))
			s[i*2] = v
			s[i*2+1] = v
		}
	} else {
		for i := 0; i < count; i++ {
			s[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
		}
	}
	tr.analyzer.Process(s)
}

func (tr *tapReader) Pos() int64 {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.pos
}

// Player plays one audio file and feeds the decoded PCM stream to the
// analyzer as a side effect of playback.
type Player struct {
	file      *os.File
	decoder   pcmStream
	tap       *tapReader
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	duration  time.Duration
	volume    float64
	paused    bool
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New opens the audio file at path, starts playback, and publishes
// analysis frames into cell. Format is detected by file extension
// (mp3, wav, flac, ogg).
func New(path string, cell *audio.Cell) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := openStream(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto(dec.SampleRate(), dec.ChannelCount())
	if err != nil {
		f.Close()
		return nil, err
	}

	bytesPerSec := int64(dec.SampleRate() * dec.ChannelCount() * 2)
	dur := time.Duration(float64(dec.Length()) / float64(bytesPerSec) * float64(time.Second))

	var analyzer *audio.Analyzer
	if cell != nil {
		analyzer = audio.NewAnalyzer(cell, dec.SampleRate())
	}

	tr := &tapReader{
		reader:   dec,
		analyzer: analyzer,
		channels: dec.ChannelCount(),
	}

	p := &Player{
		file:     f,
		decoder:  dec,
		tap:      tr,
		otoCtx:   ctx,
		duration: dur,
		volume:   0.8,
		done:     make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(tr)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor(cell)

	return p, nil
}

// monitor closes done when playback reaches the end of the stream, and
// publishes an idle frame so the visual drive settles once audio stops.
func (p *Player) monitor(cell *audio.Cell) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		pos := p.tap.Pos()
		total := p.decoder.Length()
		paused := p.paused
		p.mu.Unlock()

		if !paused && pos >= total {
			if cell != nil {
				cell.Store(audio.Idle())
			}
			close(p.done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	bytesPerSec := int64(p.decoder.SampleRate() * p.decoder.ChannelCount() * 2)
	secs := float64(p.tap.Pos()) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v) // SetVolume handles clamping
}

// Close releases all resources.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.file.Close()
}
