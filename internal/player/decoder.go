package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// pcmStream is a forward-only source of s16le PCM. Playback never
// rewinds, so there is no seek surface.
type pcmStream interface {
	io.Reader
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// openStream picks a codec by file extension and normalizes its output
// to the fixed playback format.
func openStream(f *os.File) (pcmStream, error) {
	var (
		s   pcmStream
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(f.Name())); ext {
	case ".mp3":
		s, err = newMP3Stream(f)
	case ".wav":
		s, err = newWAVStream(f)
	case ".flac":
		s, err = newFLACStream(f)
	case ".ogg":
		s, err = newOGGStream(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		return nil, err
	}
	return normalizeStream(s)
}

// sampleQueue holds decoded samples that did not fit the caller's
// buffer on the previous Read.
type sampleQueue struct {
	pending []int16
}

func (q *sampleQueue) drain(p []byte) int {
	n := len(q.pending)
	if max := len(p) / 2; n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(q.pending[i]))
	}
	q.pending = q.pending[n:]
	return n * 2
}

// scaleTo16 rescales a sample of the given source bit depth to 16 bits
// with clamping.
func scaleTo16(v, bits int) int16 {
	switch {
	case bits > 16:
		v >>= bits - 16
	case bits < 16:
		v <<= 16 - bits
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// --- MP3 ---

// go-mp3 already emits s16le stereo, so the stream is a thin shim.
type mp3Stream struct {
	dec *mp3.Decoder
}

func newMP3Stream(f *os.File) (*mp3Stream, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return &mp3Stream{dec: dec}, nil
}

func (s *mp3Stream) Read(p []byte) (int, error) { return s.dec.Read(p) }
func (s *mp3Stream) Length() int64              { return s.dec.Length() }
func (s *mp3Stream) SampleRate() int            { return s.dec.SampleRate() }
func (s *mp3Stream) ChannelCount() int          { return 2 }

// --- WAV ---

type wavStream struct {
	dec      *wav.Decoder
	q        sampleQueue
	buf      *audio.IntBuffer
	bits     int
	length   int64
	rate     int
	channels int
}

func newWAVStream(f *os.File) (*wavStream, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bits := int(dec.BitDepth)
	if bits == 0 {
		bits = 16
	}
	channels := int(dec.NumChans)
	rate := int(dec.SampleRate)
	frames := dec.PCMLen() / int64(channels*bits/8)

	return &wavStream{
		dec: dec,
		buf: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: channels, SampleRate: rate},
			Data:   make([]int, 2048),
		},
		bits:     bits,
		length:   frames * int64(channels) * 2,
		rate:     rate,
		channels: channels,
	}, nil
}

func (s *wavStream) Read(p []byte) (int, error) {
	if len(s.q.pending) == 0 {
		n, err := s.dec.PCMBuffer(s.buf)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		for _, v := range s.buf.Data[:n] {
			s.q.pending = append(s.q.pending, scaleTo16(v, s.bits))
		}
	}
	return s.q.drain(p), nil
}

func (s *wavStream) Length() int64     { return s.length }
func (s *wavStream) SampleRate() int   { return s.rate }
func (s *wavStream) ChannelCount() int { return s.channels }

// --- FLAC ---

type flacStream struct {
	stream   *flac.Stream
	q        sampleQueue
	bits     int
	length   int64
	rate     int
	channels int
}

func newFLACStream(f *os.File) (*flacStream, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	return &flacStream{
		stream:   stream,
		bits:     int(info.BitsPerSample),
		length:   int64(info.NSamples) * int64(channels) * 2,
		rate:     int(info.SampleRate),
		channels: channels,
	}, nil
}

func (s *flacStream) Read(p []byte) (int, error) {
	if len(s.q.pending) == 0 {
		frame, err := s.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		n := int(frame.Subframes[0].NSamples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < s.channels; ch++ {
				s.q.pending = append(s.q.pending, scaleTo16(int(frame.Subframes[ch].Samples[i]), s.bits))
			}
		}
	}
	return s.q.drain(p), nil
}

func (s *flacStream) Length() int64     { return s.length }
func (s *flacStream) SampleRate() int   { return s.rate }
func (s *flacStream) ChannelCount() int { return s.channels }

// --- OGG Vorbis ---

type oggStream struct {
	r      *oggvorbis.Reader
	q      sampleQueue
	fbuf   []float32
	length int64
}

func newOGGStream(f *os.File) (*oggStream, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggStream{
		r:      r,
		fbuf:   make([]float32, 2048),
		length: r.Length() * int64(r.Channels()) * 2,
	}, nil
}

func (s *oggStream) Read(p []byte) (int, error) {
	if len(s.q.pending) == 0 {
		n, err := s.r.Read(s.fbuf)
		if n == 0 {
			if err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		for _, v := range s.fbuf[:n] {
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			s.q.pending = append(s.q.pending, int16(v*math.MaxInt16))
		}
	}
	return s.q.drain(p), nil
}

func (s *oggStream) Length() int64     { return s.length }
func (s *oggStream) SampleRate() int   { return s.r.SampleRate() }
func (s *oggStream) ChannelCount() int { return s.r.Channels() }
