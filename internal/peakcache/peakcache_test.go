package peakcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayyi/libwaveform-sub000/internal/decoder"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

// fakeHandle yields a fixed set of int16 frames, one read call at a time.
type fakeHandle struct {
	channels int
	frames   [][]int16 // frames[channel]
	pos      int
}

func (h *fakeHandle) Info() decoder.Info {
	return decoder.Info{SampleRate: 44100, Channels: h.channels, Frames: int64(len(h.frames[0]))}
}
func (h *fakeHandle) Seek(frame int64) (int64, error) { h.pos = int(frame); return frame, nil }
func (h *fakeHandle) ReadShort(out [][]int16) (int, error) {
	n := len(out[0])
	remaining := len(h.frames[0]) - h.pos
	if n > remaining {
		n = remaining
	}
	for c := range out {
		copy(out[c], h.frames[c][h.pos:h.pos+n])
	}
	h.pos += n
	return n, nil
}
func (h *fakeHandle) ReadFloat(out []float32) (int, error) { return 0, nil }
func (h *fakeHandle) Thumbnail() ([]byte, bool)            { return nil, false }
func (h *fakeHandle) Close() error                         { return nil }

type fakeBackend struct{ h *fakeHandle }

func (b fakeBackend) Eval(filename string) int           { return 100 }
func (b fakeBackend) Open(path string) (decoder.Handle, error) { return b.h, nil }

func TestPathForIsStableAndAbsolute(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	p1, err := PathFor("a.wav")
	require.NoError(t, err)
	p2, err := PathFor("a.wav")
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, ".peak", filepath.Ext(p1))
}

func TestPathForDiffersByFile(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	a, err := PathFor("a.wav")
	require.NoError(t, err)
	b, err := PathFor("b.wav")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateSyncFoldsPeaksAndWritesFile(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	frames := make([]int16, 600)
	for i := range frames {
		frames[i] = int16(i % 100)
	}
	h := &fakeHandle{channels: 1, frames: [][]int16{frames}}
	gen := NewGenerator(decoder.New(fakeBackend{h: h}))

	peakPath := filepath.Join(t.TempDir(), "out.peak")
	require.NoError(t, gen.GenerateSync("in.wav", peakPath))

	got, err := peakfile.Open(peakPath)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Channels)
	assert.Equal(t, 3, got.NumPeaks()) // 600 / 256 = 2.34 -> 3 windows (last partial)
}

func TestIsFreshFalseWhenPeakOlderThanSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.wav")
	peak := filepath.Join(dir, "a.peak")
	require.NoError(t, os.WriteFile(peak, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(src, []byte("y"), 0o644))
	now := time.Now()
	require.NoError(t, os.Chtimes(peak, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(src, now, now))

	assert.False(t, IsFresh(src, peak))
}

func TestIsFreshFalseWhenMissing(t *testing.T) {
	assert.False(t, IsFresh("/no/such/src", "/no/such/peak"))
}

func TestSweepRemovesOldEntriesOnlyWhenDue(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	cacheDir, err := Dir()
	require.NoError(t, err)

	oldFile := filepath.Join(cacheDir, "old.peak")
	newFile := filepath.Join(cacheDir, "new.peak")
	require.NoError(t, os.WriteFile(oldFile, nil, 0o644))
	require.NoError(t, os.WriteFile(newFile, nil, 0o644))
	old := time.Now().Add(-91 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, old, old))

	needCheck := false
	require.NoError(t, Sweep(false, &needCheck))
	_, err = os.Stat(oldFile)
	assert.NoError(t, err, "sweep should not run when not due and not forced")

	require.NoError(t, Sweep(true, &needCheck))
	_, err = os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(newFile)
	assert.NoError(t, err)
}
