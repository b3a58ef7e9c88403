package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	playbackSampleRate = 44100
	playbackChannels   = 2
	playbackFrameSize  = playbackChannels * 2
)

// normalizedStream presents any decoded source as 44.1 kHz stereo
// s16le, so the playback device and the analyzer always see one fixed
// format. Rate conversion is linear interpolation between neighbouring
// source frames; mono sources are duplicated to both channels.
type normalizedStream struct {
	src      pcmStream
	srcRate  int
	channels int
	srcFrame int
	step     float64

	totalOut int64
	pos      int64

	frames  []int16
	cursor  float64
	srcEOF  bool
	readBuf []byte
}

// normalizeStream wraps src, or returns it unchanged when it already
// matches the playback format.
func normalizeStream(src pcmStream) (pcmStream, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > playbackChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if rate == playbackSampleRate && channels == playbackChannels {
		return src, nil
	}

	srcFrame := channels * 2
	totalSrcFrames := src.Length() / int64(srcFrame)
	totalOutFrames := totalSrcFrames * playbackSampleRate / int64(rate)

	return &normalizedStream{
		src:      src,
		srcRate:  rate,
		channels: channels,
		srcFrame: srcFrame,
		step:     float64(rate) / float64(playbackSampleRate),
		totalOut: totalOutFrames * playbackFrameSize,
	}, nil
}

// refill drops frames the cursor has passed and decodes another block
// from the source.
func (d *normalizedStream) refill() error {
	idx := int(d.cursor)
	if idx > 0 {
		keep := idx * d.channels
		if keep > len(d.frames) {
			keep = len(d.frames)
		}
		d.frames = append(d.frames[:0], d.frames[keep:]...)
		d.cursor -= float64(idx)
	}
	if d.srcEOF {
		return nil
	}
	if d.readBuf == nil {
		d.readBuf = make([]byte, 2048*d.srcFrame)
	}
	n, err := d.src.Read(d.readBuf)
	for i := 0; i+1 < n; i += 2 {
		d.frames = append(d.frames, int16(binary.LittleEndian.Uint16(d.readBuf[i:])))
	}
	if err == io.EOF || (n == 0 && err == nil) {
		d.srcEOF = true
		return nil
	}
	return err
}

func (d *normalizedStream) Read(p []byte) (int, error) {
	outFrames := len(p) / playbackFrameSize
	if outFrames == 0 {
		return 0, nil
	}

	written := 0
	for f := 0; f < outFrames; f++ {
		for !d.srcEOF && len(d.frames) < (int(d.cursor)+2)*d.channels {
			if err := d.refill(); err != nil {
				if written > 0 {
					break
				}
				return 0, err
			}
		}

		frameCount := len(d.frames) / d.channels
		i := int(d.cursor)
		if i >= frameCount {
			if written == 0 {
				return 0, io.EOF
			}
			break
		}
		j := i + 1
		if j >= frameCount {
			j = i
		}
		t := d.cursor - float64(i)

		for ch := 0; ch < playbackChannels; ch++ {
			sc := ch
			if d.channels == 1 {
				sc = 0
			}
			a := float64(d.frames[i*d.channels+sc])
			b := float64(d.frames[j*d.channels+sc])
			binary.LittleEndian.PutUint16(p[written:], uint16(int16(a+(b-a)*t)))
			written += 2
		}
		d.cursor += d.step
	}

	d.pos += int64(written)
	return written, nil
}

func (d *normalizedStream) Length() int64     { return d.totalOut }
func (d *normalizedStream) SampleRate() int   { return playbackSampleRate }
func (d *normalizedStream) ChannelCount() int { return playbackChannels }
