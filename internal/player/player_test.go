package player

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/hyperav/hyperviz/internal/audio"
)

type stubStream struct {
	data       []byte
	off        int
	sampleRate int
	channels   int
}

func (s *stubStream) Read(p []byte) (int, error) {
	if s.off >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.off:])
	s.off += n
	return n, nil
}

func (s *stubStream) Length() int64     { return int64(len(s.data)) }
func (s *stubStream) SampleRate() int   { return s.sampleRate }
func (s *stubStream) ChannelCount() int { return s.channels }

// sineBytes renders frames of a stereo 16-bit sine tone as raw
// little-endian PCM.
func sineBytes(freq float64, rate, frames int) []byte {
	b := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		v := int16(0.6 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		binary.LittleEndian.PutUint16(b[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(b[i*4+2:], uint16(v))
	}
	return b
}

func TestTapReaderCountsAndPublishes(t *testing.T) {
	cell := &audio.Cell{}
	data := sineBytes(440, 44100, 2048)
	src := &stubStream{data: data, sampleRate: 44100, channels: 2}
	tr := &tapReader{
		reader:   src,
		analyzer: audio.NewAnalyzer(cell, 44100),
		channels: 2,
	}

	buf := make([]byte, 4096)
	total := 0
	for {
		n, err := tr.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
	}

	if total != len(data) {
		t.Fatalf("expected %d bytes read, got %d", len(data), total)
	}
	if got := tr.Pos(); got != int64(len(data)) {
		t.Fatalf("expected position %d, got %d", len(data), got)
	}
	f, ok := cell.Load()
	if !ok {
		t.Fatal("expected analyzer to publish a frame")
	}
	if f.Amplitude <= 0 {
		t.Fatalf("expected nonzero amplitude from tone, got %v", f.Amplitude)
	}
}

func TestTapReaderUpmixesMono(t *testing.T) {
	cell := &audio.Cell{}
	mono := make([]byte, 8)
	for i, v := range []int16{1000, -2000, 3000, -4000} {
		binary.LittleEndian.PutUint16(mono[i*2:], uint16(v))
	}

	tr := &tapReader{
		reader:   &stubStream{data: mono, sampleRate: 44100, channels: 1},
		analyzer: audio.NewAnalyzer(cell, 44100),
		channels: 1,
	}

	buf := make([]byte, 16)
	if _, err := tr.Read(buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := []int16{1000, 1000, -2000, -2000, 3000, 3000, -4000, -4000}
	if len(tr.samples) != len(want) {
		t.Fatalf("expected %d upmixed samples, got %d", len(want), len(tr.samples))
	}
	for i, w := range want {
		if tr.samples[i] != w {
			t.Fatalf("sample %d: expected %d, got %d", i, w, tr.samples[i])
		}
	}
}

func TestTapReaderWithoutAnalyzer(t *testing.T) {
	data := sineBytes(220, 44100, 64)
	tr := &tapReader{
		reader:   &stubStream{data: data, sampleRate: 44100, channels: 2},
		channels: 2,
	}

	buf := make([]byte, len(data))
	n, err := tr.Read(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if int64(n) != tr.Pos() {
		t.Fatalf("expected position %d, got %d", n, tr.Pos())
	}
}

func TestPositionUsesStreamFormat(t *testing.T) {
	src := &stubStream{sampleRate: 44100, channels: 2}
	p := &Player{
		decoder: src,
		tap:     &tapReader{pos: 44100 * 2 * 2},
	}

	if got := p.Position(); got != time.Second {
		t.Fatalf("expected position 1s, got %v", got)
	}
}

func TestScaleTo16(t *testing.T) {
	cases := []struct {
		v, bits int
		want    int16
	}{
		{0x7FFFFF, 24, 0x7FFF},
		{-0x800000, 24, -0x8000},
		{1 << 20, 24, 1 << 12},
		{100, 16, 100},
		{-64, 8, -64 << 8},
		{1 << 20, 16, math.MaxInt16}, // out-of-range source clamps
	}
	for _, tc := range cases {
		if got := scaleTo16(tc.v, tc.bits); got != tc.want {
			t.Fatalf("scaleTo16(%d, %d) = %d, want %d", tc.v, tc.bits, got, tc.want)
		}
	}
}

func TestSampleQueueDrain(t *testing.T) {
	q := sampleQueue{pending: []int16{10, -20, 30}}

	p := make([]byte, 4)
	if n := q.drain(p); n != 4 {
		t.Fatalf("expected 4 bytes drained, got %d", n)
	}
	if got := int16(binary.LittleEndian.Uint16(p[2:])); got != -20 {
		t.Fatalf("expected -20, got %d", got)
	}
	if n := q.drain(p); n != 2 {
		t.Fatalf("expected 2 trailing bytes, got %d", n)
	}
	if len(q.pending) != 0 {
		t.Fatalf("expected drained queue, got %d pending", len(q.pending))
	}
}
