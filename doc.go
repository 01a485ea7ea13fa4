// Package waveform renders very large audio waveforms interactively at
// multiple levels of detail. It owns the multi-resolution peak cache (disk
// and memory), the audio block cache, the GPU texture cache, the
// level-of-detail selector and per-mode renderers, and the per-actor frame
// loop that animates a waveform's visible region and drives all of the
// above.
//
// The audio codec, the GPU, and the GUI toolkit are external
// collaborators: this package defines narrow interfaces for each
// (internal/decoder, internal/renderer's GPU interface, and the
// frame-pump in internal/scene) rather than owning them.
package waveform
