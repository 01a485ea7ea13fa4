package waveform

import "errors"

// Error kinds from spec.md §7. Each is a sentinel checked with errors.Is;
// callers wrap these with fmt.Errorf("...: %w", err) the way
// oliwoli-HushCut wraps every I/O and decode failure.
var (
	// ErrNoSuchFile means the peak cache path for the source could not
	// be resolved, leaving the source unreachable. Sets Waveform.Offline.
	// A source file that is missing or unreadable is reported as
	// ErrDecodeFailed instead, and in neither case is an existing
	// peakfile loaded.
	ErrNoSuchFile = errors.New("waveform: source file not found or unreadable")

	// ErrBadPeakFormat means the peakfile is not 16-bit PCM WAV, or has
	// more than two channels. Sets Waveform.Renderable = false.
	ErrBadPeakFormat = errors.New("waveform: peakfile is not 16-bit PCM WAV or has too many channels")

	// ErrTooShortPeak means the peakfile is shorter than the source's
	// expected peak count by more than the allowed tolerance. Sets
	// Waveform.Renderable = false.
	ErrTooShortPeak = errors.New("waveform: peakfile shorter than expected")

	// ErrDecodeFailed means the decoder backend rejected the source.
	ErrDecodeFailed = errors.New("waveform: decode failed")

	// ErrCacheEvicted means a GPU texture slot was reclaimed by the LRU
	// policy. Handled silently via the steal callback; exported so
	// renderers can recognize it if they choose to log it.
	ErrCacheEvicted = errors.New("waveform: texture cache entry evicted")

	// ErrCancelled means the waveform was destroyed, or cancel_jobs was
	// called, before a worker job's done callback ran.
	ErrCancelled = errors.New("waveform: operation cancelled")
)
