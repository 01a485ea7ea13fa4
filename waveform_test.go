package waveform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayyi/libwaveform-sub000/internal/actor"
	"github.com/ayyi/libwaveform-sub000/internal/decoder"
	"github.com/ayyi/libwaveform-sub000/internal/peakcache"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

// fakeHandle serves a fixed set of int16 frames, one channel per row,
// mirroring internal/peakcache's test double.
type fakeHandle struct {
	channels int
	frames   [][]int16
	pos      int
}

func (h *fakeHandle) Info() decoder.Info {
	return decoder.Info{SampleRate: 44100, Channels: h.channels, Frames: int64(len(h.frames[0]))}
}
func (h *fakeHandle) Seek(frame int64) (int64, error) { h.pos = int(frame); return frame, nil }
func (h *fakeHandle) ReadShort(out [][]int16) (int, error) {
	n := len(out[0])
	remaining := len(h.frames[0]) - h.pos
	if remaining < 0 {
		remaining = 0
	}
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

func (b fakeBackend) Eval(filename string) int                 { return 100 }
func (b fakeBackend) Open(path string) (decoder.Handle, error) { return b.h, nil }

func newTestSystem(t *testing.T, frames []int16) (*System, string) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "source.wav")
	require.NoError(t, os.WriteFile(src, []byte("not actually decoded, a fake backend reads this"), 0o644))

	h := &fakeHandle{channels: 1, frames: [][]int16{frames}}
	sys := NewSystem(fakeBackend{h: h})
	return sys, src
}

func TestLoadResolvesPeaksReadyOnFreshSource(t *testing.T) {
	frames := make([]int16, 3000)
	for i := range frames {
		frames[i] = int16(i % 1000)
	}
	sys, src := newTestSystem(t, frames)

	w := sys.Load(src)
	sys.PumpUntilIdle()

	_, err := w.Peaks().Wait()
	require.NoError(t, err)
	assert.True(t, w.Renderable())
	assert.False(t, w.Offline())
	assert.Equal(t, 1, w.Channels())
	assert.Greater(t, w.NumFrames(), int64(0))
}

func TestLoadRejectsTooShortPeakfile(t *testing.T) {
	// The source holds 100 peaks' worth of frames, but the cached
	// peakfile (fresh by mtime, so it is not regenerated) holds only 10:
	// 90 peaks short, beyond the tolerance.
	sys, src := newTestSystem(t, make([]int16, 100*peakfile.PeakRatio))
	peakPath, err := peakcache.PathFor(src)
	require.NoError(t, err)
	f, err := os.Create(peakPath)
	require.NoError(t, err)
	require.NoError(t, peakfile.Write(f, &peakfile.File{Channels: 1, Peaks: [][]peakfile.Pair{make([]peakfile.Pair, 10)}}, 44100))
	require.NoError(t, f.Close())

	w := sys.Load(src)
	sys.PumpUntilIdle()

	_, err = w.Peaks().Wait()
	assert.ErrorIs(t, err, ErrTooShortPeak)
	assert.False(t, w.Renderable())
}

func TestOnPeakDataReadyFiresImmediatelyAfterResolution(t *testing.T) {
	frames := make([]int16, 3000)
	sys, src := newTestSystem(t, frames)

	w := sys.Load(src)
	sys.PumpUntilIdle()

	called := false
	w.OnPeakDataReady(func() { called = true })
	assert.True(t, called, "registering after peaks are ready should fire synchronously")
}

func TestLoadSameSourceTwiceMultiplexesThroughSingleflight(t *testing.T) {
	frames := make([]int16, 3000)
	sys, src := newTestSystem(t, frames)

	w1 := sys.Load(src)
	w2 := sys.Load(src)
	sys.PumpUntilIdle()

	_, err1 := w1.Peaks().Wait()
	_, err2 := w2.Peaks().Wait()
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, w1.ID(), w2.ID(), "each Load call still returns its own Waveform")
}

func TestLoadOfflineWhenCachePathCannotBeResolved(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	sys := NewSystem(fakeBackend{h: &fakeHandle{channels: 1, frames: [][]int16{make([]int16, 3000)}}})
	w := sys.Load(filepath.Join(t.TempDir(), "missing.wav"))
	sys.PumpUntilIdle()

	_, err := w.Peaks().Wait()
	assert.ErrorIs(t, err, ErrNoSuchFile)
	assert.True(t, w.Offline(), "a cache path that can't be resolved at all leaves the source unreachable")
}

func TestLoadNotOfflineWhenSourceReachableButDecodeFails(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	sys := NewSystem() // no backends registered: the source opens fine on disk, but decoding it fails
	src := filepath.Join(t.TempDir(), "present.wav")
	require.NoError(t, os.WriteFile(src, []byte("some bytes"), 0o644))

	w := sys.Load(src)
	sys.PumpUntilIdle()

	_, err := w.Peaks().Wait()
	assert.ErrorIs(t, err, ErrDecodeFailed)
	assert.False(t, w.Offline(), "a decode failure on a reachable file must not report Offline")
}

func TestRequestAudioBlockEmitsHiresReadyOnce(t *testing.T) {
	frames := make([]int16, 3000)
	for i := range frames {
		frames[i] = int16(i % 1000)
	}
	sys, src := newTestSystem(t, frames)

	w := sys.Load(src)
	sys.PumpUntilIdle()
	_, err := w.Peaks().Wait()
	require.NoError(t, err)

	notified := make(chan int, 1)
	w.OnHiresReady(func(block int) { notified <- block })

	sys.RequestAudioBlock(w, 0)
	sys.PumpUntilIdle()

	select {
	case block := <-notified:
		assert.Equal(t, 0, block)
	default:
		t.Fatal("expected hires-ready to fire after RequestAudioBlock")
	}

	blk, ok := w.HiresBlock(0)
	require.True(t, ok)
	assert.Equal(t, 16, blk.Tier)
}

func TestRequestAudioBlockIgnoresForeignBinding(t *testing.T) {
	sys, _ := newTestSystem(t, make([]int16, 3000))
	var other actor.WaveformBinding
	assert.NotPanics(t, func() { sys.RequestAudioBlock(other, 0) })
}

func TestSweepIsDebouncedUnlessForced(t *testing.T) {
	sys, _ := newTestSystem(t, make([]int16, 3000))
	require.NoError(t, sys.Sweep(false))
	assert.False(t, sys.needSweepCheck, "the first unforced sweep clears the debounce flag")
	require.NoError(t, sys.Sweep(true))
}
