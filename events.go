package waveform

import "sync"

// eventBus is a minimal typed pub/sub used for the two signals spec.md §6
// names: peakdata-ready (fires once) and hires-ready (fires each time a
// requested block's hi-res peaks are available). It replaces oliwoli-HushCut's runtime.EventsEmit(a.ctx, ...)
// calls with an in-process equivalent, since the GUI toolkit's event loop
// is an external collaborator this package does not own. Multiple actors
// viewing the same Waveform each register independently.
type eventBus struct {
	mu            sync.Mutex
	peakReady     []func()
	peakReadyDone bool
	hiresReady    []func(block int)
}

// OnPeakDataReady registers a callback for the peakdata-ready signal. If
// peaks are already loaded, it fires immediately.
func (w *Waveform) OnPeakDataReady(cb func()) {
	w.events.mu.Lock()
	if w.events.peakReadyDone {
		w.events.mu.Unlock()
		cb()
		return
	}
	w.events.peakReady = append(w.events.peakReady, cb)
	w.events.mu.Unlock()
}

func (w *Waveform) emitPeakDataReady() {
	w.events.mu.Lock()
	if w.events.peakReadyDone {
		w.events.mu.Unlock()
		return
	}
	w.events.peakReadyDone = true
	cbs := w.events.peakReady
	w.events.peakReady = nil
	w.events.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// OnHiresReady registers a callback for the hires-ready(block) signal,
// fired each time a hi-res peak block becomes available.
func (w *Waveform) OnHiresReady(cb func(block int)) {
	w.events.mu.Lock()
	w.events.hiresReady = append(w.events.hiresReady, cb)
	w.events.mu.Unlock()
}

func (w *Waveform) emitHiresReady(block int) {
	w.events.mu.Lock()
	cbs := append([]func(block int){}, w.events.hiresReady...)
	w.events.mu.Unlock()
	for _, cb := range cbs {
		cb(block)
	}
}
