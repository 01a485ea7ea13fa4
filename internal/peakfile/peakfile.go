// Package peakfile reads and writes the canonical on-disk peak format: a
// little-endian RIFF/WAV container, PCM signed 16-bit, 1 or 2 channels
// matching the source. Frame i holds (max_i, min_i) for input samples
// [i*PeakRatio, (i+1)*PeakRatio), interleaved by channel. See spec.md §4.2
// and §6, grounded on original_source/wf/loaders/riff.c and
// original_source/wf/peakgen.c.
package peakfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrBadFormat means the peakfile is not 16-bit PCM WAV, or has more than
// two channels. Callers map this to the root package's ErrBadPeakFormat.
var ErrBadFormat = errors.New("peakfile: not 16-bit PCM WAV, or too many channels")

// PeakRatio is the number of source frames summarised by one stored
// (max,min) pair.
const PeakRatio = 256

// mmapThreshold is the file size at or above which Open memory-maps the
// peakfile instead of reading it fully, per spec.md §4.4 ("memory-map or
// read it fully into peak.buf[channel]").
const mmapThreshold = 8 << 20 // 8 MiB

// negClamp is the clamp applied to negative peaks so that sign-flipping
// downstream (rendering the min as a positive height) stays symmetric.
const negClamp = -32767

// Pair is one (max, min) peak summarising PeakRatio consecutive frames.
type Pair struct {
	Max int16
	Min int16
}

// File is a fully decoded peakfile: one contiguous Pair slice per channel.
type File struct {
	Channels int
	Peaks    [][]Pair // Peaks[channel][index]
}

// NumPeaks returns the number of (max,min) pairs per channel.
func (f *File) NumPeaks() int {
	if len(f.Peaks) == 0 {
		return 0
	}
	return len(f.Peaks[0])
}

// ClampMin clamps a negative peak to negClamp, never to math.MinInt16.
func ClampMin(v int32) int16 {
	if v < negClamp {
		return negClamp
	}
	return int16(v)
}

// Open reads a peakfile from path, memory-mapping it when it is at
// least mmapThreshold bytes.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("peakfile: stat %s: %w", path, err)
	}

	if info.Size() >= mmapThreshold {
		if f, err := openMapped(path, info.Size()); err == nil {
			return f, nil
		}
		// fall through to a plain read if mapping is unavailable (e.g. on
		// a filesystem that doesn't support mmap).
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("peakfile: read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(raw))
}

// Decode parses a peakfile from an in-memory reader.
func Decode(r io.ReadSeeker) (*File, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("peakfile: %w: not a valid WAV container", ErrBadFormat)
	}
	if dec.WavAudioFormat != 1 || dec.BitDepth != 16 {
		return nil, fmt.Errorf("peakfile: %w: expected 16-bit PCM, got %d-bit format %d", ErrBadFormat, dec.BitDepth, dec.WavAudioFormat)
	}

	format := dec.Format()
	if format == nil {
		return nil, fmt.Errorf("peakfile: %w: missing format chunk", ErrBadFormat)
	}
	channels := int(format.NumChannels)
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("peakfile: %w: unsupported channel count %d", ErrBadFormat, channels)
	}

	const chunkSamples = 8192
	buf := &audio.IntBuffer{Format: format, Data: make([]int, chunkSamples-(chunkSamples%(channels*2)))}

	samples := make([]int, 0, chunkSamples)
	for {
		n, readErr := dec.PCMBuffer(buf)
		if n > 0 {
			samples = append(samples, buf.Data[:n]...)
		}
		if readErr == io.EOF || n == 0 {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("peakfile: reading PCM: %w", readErr)
		}
	}

	framesPerChan := len(samples) / (channels * 2)
	peaks := make([][]Pair, channels)
	for ch := range peaks {
		peaks[ch] = make([]Pair, framesPerChan)
	}
	for i := 0; i < framesPerChan; i++ {
		base := i * channels * 2
		for ch := 0; ch < channels; ch++ {
			peaks[ch][i] = Pair{
				Max: int16(samples[base+ch*2]),
				Min: int16(samples[base+ch*2+1]),
			}
		}
	}

	return &File{Channels: channels, Peaks: peaks}, nil
}

// Write encodes peaks to a 16-bit PCM WAV peakfile at sampleRate. Short
// channels are padded with zero frames so all channels end up the same
// length, per spec.md §4.2 ("Writer pads with zero frames if short").
func Write(w io.WriteSeeker, f *File, sampleRate int) error {
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("peakfile: write: unsupported channel count %d", f.Channels)
	}

	n := f.NumPeaks()
	for _, ch := range f.Peaks {
		if len(ch) > n {
			n = len(ch)
		}
	}

	enc := wav.NewEncoder(w, sampleRate, 16, f.Channels, 1)
	format := &audio.Format{NumChannels: f.Channels, SampleRate: sampleRate}

	const framesPerChunk = 4096
	data := make([]int, 0, framesPerChunk*f.Channels*2)
	flush := func() error {
		if len(data) == 0 {
			return nil
		}
		buf := &audio.IntBuffer{Format: format, Data: data, SourceBitDepth: 16}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("peakfile: encoding: %w", err)
		}
		data = data[:0]
		return nil
	}

	for i := 0; i < n; i++ {
		for ch := 0; ch < f.Channels; ch++ {
			var p Pair
			if i < len(f.Peaks[ch]) {
				p = f.Peaks[ch][i]
			}
			data = append(data, int(p.Max), int(p.Min))
		}
		if len(data) >= framesPerChunk*f.Channels*2 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("peakfile: closing encoder: %w", err)
	}
	return nil
}
