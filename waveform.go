package waveform

import (
	"errors"
	"fmt"
	"sync"
	"weak"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ayyi/libwaveform-sub000/internal/actor"
	"github.com/ayyi/libwaveform-sub000/internal/audiocache"
	"github.com/ayyi/libwaveform-sub000/internal/decoder"
	"github.com/ayyi/libwaveform-sub000/internal/hires"
	"github.com/ayyi/libwaveform-sub000/internal/peakcache"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
	"github.com/ayyi/libwaveform-sub000/internal/promise"
	"github.com/ayyi/libwaveform-sub000/internal/worker"
)

// System is the process-wide set of shared singletons spec.md §5 names:
// the decoder facade, the peak generator, the background worker, and
// the audio block cache. One System normally backs an entire process;
// tests may construct several for isolation.
type System struct {
	decoder   *decoder.Facade
	generator *peakcache.Generator
	worker    *worker.Worker[Waveform]
	audio     *audiocache.Cache

	loadGroup singleflight.Group

	mu             sync.Mutex
	needSweepCheck bool
}

// NewSystem builds a System trying backends in the given order (first
// registered wins ties), per spec.md §4.1.
func NewSystem(backends ...decoder.Backend) *System {
	d := decoder.New(backends...)
	return &System{
		decoder:        d,
		generator:      peakcache.NewGenerator(d),
		worker:         worker.New[Waveform](64),
		audio:          audiocache.New(),
		needSweepCheck: true,
	}
}

// Pump drains the worker's finished jobs onto the calling ("main")
// goroutine, per spec.md §5's single-writer discipline. Call this once
// per host frame.
func (s *System) Pump() { s.worker.Pump() }

// PumpUntilIdle blocks until the worker has no outstanding jobs; a
// *_sync-style entry point for tests and warmup.
func (s *System) PumpUntilIdle() { s.worker.PumpUntilIdle() }

// Sweep deletes peak-cache entries older than peakcache.Expiry,
// debounced to at most once per process unless force is true.
func (s *System) Sweep(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return peakcache.Sweep(force, &s.needSweepCheck)
}

// AudioCache returns the shared decoded-PCM block cache, for callers
// (e.g. internal/scene) that need to purge it on waveform destruction.
func (s *System) AudioCache() *audiocache.Cache { return s.audio }

// RequestAudioBlock implements internal/actor.AudioLoader: it decodes
// and caches the raw PCM for block (via the shared audio cache), then
// derives a hires.Block from it and fires hires-ready(block), per
// spec.md §4.6/§4.12. The actual decode runs on the background worker;
// this method never blocks.
func (s *System) RequestAudioBlock(binding actor.WaveformBinding, block int) {
	w, ok := binding.(*Waveform)
	if !ok {
		return
	}

	key := audiocache.Key{Waveform: w.id, Block: block}
	if _, ok := s.audio.Get(key); ok {
		w.deriveAndEmitHires(block)
		return
	}

	job := &worker.Job[Waveform]{
		Ref:  weak.Make(w),
		Work: func() { w.decodeBlock(block) },
		Done: func(ww *Waveform) { ww.deriveAndEmitHires(block) },
	}
	s.worker.Enqueue(job)
}

// Waveform is one loaded (or loading) audio source: its estimated frame
// count, channel count, low-res peak, and on-demand hi-res peak blocks.
// It implements internal/actor.WaveformBinding so an Actor can bind to
// it without either package importing the other.
type Waveform struct {
	sys  *System
	id   uuid.UUID
	path string

	mu         sync.Mutex
	sampleRate int
	channels   int
	frames     int64
	renderable bool
	offline    bool
	peaks      [][]peakfile.Pair
	hiresPeaks map[int]*hires.Block

	peaksReady *promise.Promise[struct{}]
	events     eventBus
}

// Load opens path and begins generating or loading its peak cache in
// the background, returning immediately with an unresolved Waveform.
// Callers use OnPeakDataReady, or Peaks().Wait() in tests, to learn
// when loading finishes.
func (s *System) Load(path string) *Waveform {
	w := &Waveform{
		sys:        s,
		id:         uuid.New(),
		path:       path,
		hiresPeaks: make(map[int]*hires.Block),
		peaksReady: promise.New[struct{}](),
	}

	job := &worker.Job[Waveform]{
		Ref:  weak.Make(w),
		Work: func() { w.loadPeaks() },
		Done: func(ww *Waveform) { ww.emitPeakDataReady() },
	}
	s.worker.Enqueue(job)
	return w
}

// loadPeaks runs on the background worker goroutine: resolve the cache
// path, generate the peakfile if stale, then read it back. Concurrent
// loads of the same source path are multiplexed through loadGroup so
// only one generation happens, per spec.md §4.4.
func (w *Waveform) loadPeaks() {
	type result struct {
		file         *peakfile.File
		sampleRate   int
		sourceFrames int64
	}

	v, err, _ := w.sys.loadGroup.Do(w.path, func() (any, error) {
		peakPath, err := peakcache.PathFor(w.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSuchFile, err)
		}

		if !peakcache.IsFresh(w.path, peakPath) {
			if err := w.sys.generator.GenerateSync(w.path, peakPath); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
			}
		}

		f, err := peakfile.Open(peakPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPeakFormat, err)
		}

		sampleRate := 44100
		var sourceFrames int64
		if h, err := w.sys.decoder.Open(w.path); err == nil {
			info := h.Info()
			sampleRate = info.SampleRate
			sourceFrames = info.Frames
			h.Close()
		}

		return result{file: f, sampleRate: sampleRate, sourceFrames: sourceFrames}, nil
	})

	if err != nil {
		// Only ErrNoSuchFile (the source itself is unreachable) marks the
		// waveform offline, per spec.md §7: a reachable source whose
		// peakfile failed to generate or open is merely unrenderable.
		if errors.Is(err, ErrNoSuchFile) {
			w.mu.Lock()
			w.offline = true
			w.mu.Unlock()
		}
		w.peaksReady.Reject(err)
		return
	}

	r := v.(result)
	w.mu.Lock()
	w.sampleRate = r.sampleRate
	w.channels = r.file.Channels
	w.peaks = r.file.Peaks
	w.frames = int64(r.file.NumPeaks()) * int64(peakfile.PeakRatio)
	w.renderable = tolerablePeakCount(r.file, r.sourceFrames)
	renderable := w.renderable
	w.mu.Unlock()

	if !renderable {
		w.peaksReady.Reject(ErrTooShortPeak)
		return
	}
	w.peaksReady.Resolve(struct{}{})
}

// peakCountTolerance is the shortfall, in peaks, a peakfile may have
// below its source's current expected count before ErrTooShortPeak
// applies, resolving spec.md §9's open question with the stricter
// reading: a peakfile generated against a source that has since grown
// (still being recorded, for instance) is tolerated up to this many
// peaks short of what the source's current frame count would produce.
// sourceFrames of 0 (source could not be opened to check) is treated
// as no expectation, so a peakfile with at least one peak is accepted.
const peakCountTolerance = 32

func tolerablePeakCount(f *peakfile.File, sourceFrames int64) bool {
	if sourceFrames <= 0 {
		return f.NumPeaks() > 0
	}
	expected := sourceFrames / int64(peakfile.PeakRatio)
	shortfall := expected - int64(f.NumPeaks())
	return shortfall <= peakCountTolerance
}

// ID implements internal/actor.WaveformBinding.
func (w *Waveform) ID() uuid.UUID { return w.id }

// Channels implements internal/actor.WaveformBinding.
func (w *Waveform) Channels() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.channels
}

// Renderable implements internal/actor.WaveformBinding.
func (w *Waveform) Renderable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renderable
}

// NumFrames implements internal/actor.WaveformBinding.
func (w *Waveform) NumFrames() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// LowResPeaks implements internal/actor.WaveformBinding.
func (w *Waveform) LowResPeaks() [][]peakfile.Pair {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.peaks
}

// Offline reports whether the source file's cache path could not be
// resolved at all (the source is unreachable); a waveform whose source
// is reachable but whose peakfile failed to generate or open is merely
// unrenderable, not offline.
func (w *Waveform) Offline() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offline
}

// Path returns the source path this waveform was loaded from.
func (w *Waveform) Path() string { return w.path }

// SampleRate returns the source's sample rate, valid once peaks are
// ready.
func (w *Waveform) SampleRate() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sampleRate
}

// Peaks returns the promise that resolves once peak data is loaded or
// generated; its error, if any, is one of this package's sentinels.
func (w *Waveform) Peaks() *promise.Promise[struct{}] { return w.peaksReady }

// HiresBlock returns the hi-res peak block for block, if it has been
// derived.
func (w *Waveform) HiresBlock(block int) (*hires.Block, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.hiresPeaks[block]
	return b, ok
}

func (w *Waveform) decodeBlock(block int) {
	h, err := w.sys.decoder.Open(w.path)
	if err != nil {
		return
	}
	defer h.Close()

	w.mu.Lock()
	channels := w.channels
	w.mu.Unlock()
	if channels < 1 {
		channels = 1
	}

	start := hires.StartFrame(block)
	if _, err := h.Seek(start); err != nil {
		return
	}

	buf := make([][]int16, channels)
	for c := range buf {
		buf[c] = make([]int16, hires.PeakBlockSize)
	}
	n, err := h.ReadShort(buf)
	if err != nil || n == 0 {
		return
	}
	for c := range buf {
		buf[c] = buf[c][:n]
	}

	const tier = 16
	blk, err := hires.Derive(buf, tier)
	if err != nil {
		return
	}

	w.sys.audio.Insert(audiocache.Key{Waveform: w.id, Block: block}, audiocache.Block{Channels: buf})

	w.mu.Lock()
	w.hiresPeaks[block] = blk
	w.mu.Unlock()
}

func (w *Waveform) deriveAndEmitHires(block int) {
	w.mu.Lock()
	_, ok := w.hiresPeaks[block]
	w.mu.Unlock()
	if !ok {
		return
	}
	w.emitHiresReady(block)
}
