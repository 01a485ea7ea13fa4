package waveform

import (
	"math"

	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

// Peak is one (max, min) pair summarising peakfile.PeakRatio consecutive
// source frames, the public mirror of internal/peakfile.Pair. Host
// applications that only need peak values (e.g. a thumbnail renderer
// outside internal/pixbuf) use this instead of importing an internal
// package.
type Peak struct {
	Max, Min int16
}

// PeakBuffer is a low- or hi-res peak array, one Peak slice per channel,
// per spec.md §3's `Peaks PeakBuffer` attribute.
type PeakBuffer [][]Peak

func toPeakBuffer(peaks [][]peakfile.Pair) PeakBuffer {
	out := make(PeakBuffer, len(peaks))
	for c, ch := range peaks {
		out[c] = make([]Peak, len(ch))
		for i, p := range ch {
			out[c][i] = Peak{Max: p.Max, Min: p.Min}
		}
	}
	return out
}

// PeakData returns the low-resolution peak buffer, one (max,min) pair
// per peakfile.PeakRatio source frames per channel. It is empty until
// Peaks() resolves.
func (w *Waveform) PeakData() PeakBuffer {
	return toPeakBuffer(w.LowResPeaks())
}

// HiresPeakData returns the hi-res peak buffer for block, if it has
// been derived via RequestAudioBlock, converted to the public Peak
// type.
func (w *Waveform) HiresPeakData(block int) (PeakBuffer, bool) {
	b, ok := w.HiresBlock(block)
	if !ok {
		return nil, false
	}
	return toPeakBuffer(b.Channels), true
}

// RMS returns the root-mean-square loudness of each low-res peak
// window, one slice per channel, approximated from the stored
// (max,min) pair the way a peak-only cache must: sqrt((max²+min²)/2).
// This is spec.md §3's "optional RMS buffer", derived lazily rather
// than stored, since the peakfile format itself carries no better
// information to compute it from.
func (w *Waveform) RMS() [][]float64 {
	peaks := w.LowResPeaks()
	out := make([][]float64, len(peaks))
	for c, ch := range peaks {
		out[c] = make([]float64, len(ch))
		for i, p := range ch {
			max, min := float64(p.Max), float64(p.Min)
			out[c][i] = math.Sqrt((max*max + min*min) / 2)
		}
	}
	return out
}
