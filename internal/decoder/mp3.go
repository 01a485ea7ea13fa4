package decoder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Backend decodes MP3 sources via hajimehoshi/go-mp3, which always
// yields 16-bit little-endian stereo PCM regardless of the source's own
// channel count.
type MP3Backend struct{}

func (MP3Backend) Eval(filename string) int {
	if strings.EqualFold(filepath.Ext(filename), ".mp3") {
		return 90
	}
	return 0
}

func (MP3Backend) Open(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	const bytesPerFrame = 4 // stereo, 16-bit
	frames := dec.Length() / bytesPerFrame

	return &mp3Handle{
		file: f,
		dec:  dec,
		info: Info{
			SampleRate: dec.SampleRate(),
			Channels:   2,
			Frames:     frames,
			BitDepth:   16,
		},
	}, nil
}

type mp3Handle struct {
	file *os.File
	dec  *mp3.Decoder
	info Info
}

func (h *mp3Handle) Info() Info { return h.info }

func (h *mp3Handle) Seek(frame int64) (int64, error) {
	const bytesPerFrame = 4
	n, err := h.dec.Seek(frame*bytesPerFrame, io.SeekStart)
	if err != nil {
		return -1, fmt.Errorf("decoder: mp3 seek: %w", err)
	}
	return n / bytesPerFrame, nil
}

func (h *mp3Handle) ReadShort(out [][]int16) (int, error) {
	if len(out) != 2 {
		return 0, fmt.Errorf("decoder: mp3 ReadShort requires a 2-channel buffer, got %d", len(out))
	}
	want := len(out[0])
	raw := make([]byte, want*4)
	n, err := io.ReadFull(h.dec, raw)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("decoder: mp3 read: %w", err)
	}
	frames := n / 4
	for i := 0; i < frames; i++ {
		out[0][i] = int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		out[1][i] = int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
	}
	return frames, nil
}

func (h *mp3Handle) ReadFloat(out []float32) (int, error) {
	frames := len(out) / 2
	shorts := [][]int16{make([]int16, frames), make([]int16, frames)}
	n, err := h.ReadShort(shorts)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		out[i*2] = float32(shorts[0][i]) / 32768.0
		out[i*2+1] = float32(shorts[1][i]) / 32768.0
	}
	return n * 2, nil
}

func (h *mp3Handle) Thumbnail() ([]byte, bool) { return nil, false }

func (h *mp3Handle) Close() error { return h.file.Close() }
