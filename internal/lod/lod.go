// Package lod selects the level-of-detail render mode for a waveform
// viewport, and the block geometry that mode implies. See spec.md §4.9,
// grounded on original_source/wf/view_plus/mode.c.
package lod

import "fmt"

// Mode is a level of detail, ordered from coarsest (largest block,
// furthest zoomed out) to finest (smallest block, closest zoomed in).
type Mode int

const (
	VLow Mode = iota
	Low
	Med
	Hi
	VHi
)

func (m Mode) String() string {
	switch m {
	case VLow:
		return "V_LOW"
	case Low:
		return "LOW"
	case Med:
		return "MED"
	case Hi:
		return "HI"
	case VHi:
		return "V_HI"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Source describes what data a mode's textures are built from.
type Source int

const (
	SourceDownsampledLowRes Source = iota
	SourceLowRes
	SourceHiRes
	SourceRawAudio
)

type modeInfo struct {
	mode              Mode
	trigger           float64 // minimum pixels/sample to use this mode; V_LOW has none
	hasTrigger        bool
	samplesPerTexture int
	source            Source
}

// BorderPixels is the fixed neighbour-overlap border, in pixels, that
// keeps linear sampling seamless across block boundaries.
const BorderPixels = 2

var modes = []modeInfo{
	{VLow, 0, false, 256 * 16384, SourceDownsampledLowRes},
	{Low, 1.0 / 65536, true, 256 * 1024, SourceDownsampledLowRes},
	{Med, 1.0 / 4096, true, 256 * 256, SourceLowRes},
	{Hi, 1.0 / 256, true, 256 * 256, SourceHiRes},
	{VHi, 1.0 / 16, true, 256, SourceRawAudio},
}

func infoFor(m Mode) modeInfo {
	for _, mi := range modes {
		if mi.mode == m {
			return mi
		}
	}
	panic(fmt.Sprintf("lod: unknown mode %v", m))
}

// SamplesPerTexture returns how many source samples one texture for
// mode m covers.
func SamplesPerTexture(m Mode) int { return infoFor(m).samplesPerTexture }

// SourceOf returns what data mode m's textures are built from.
func SourceOf(m Mode) Source { return infoFor(m).source }

// Select picks the finest mode whose trigger is satisfied by
// pixelsPerSample, falling back to V_LOW (which has no minimum).
func Select(pixelsPerSample float64) Mode {
	best := VLow
	for _, m := range modes {
		if !m.hasTrigger {
			continue
		}
		if pixelsPerSample >= m.trigger {
			best = m.mode
		}
	}
	return best
}

// Finer returns the next finer (smaller block, more zoomed-in) mode, or
// m unchanged if already V_HI.
func (m Mode) Finer() Mode {
	if m == VHi {
		return m
	}
	return m + 1
}

// Coarser returns the next coarser mode, or m unchanged if already
// V_LOW. Used by the actor's fall-through policy (spec.md §4.11).
func (m Mode) Coarser() Mode {
	if m == VLow {
		return m
	}
	return m - 1
}

// BlockWidthPixels is the on-screen width of one block's texture at the
// given zoom (pixels per sample), per spec.md §4.9.
func BlockWidthPixels(m Mode, pixelsPerSample float64) float64 {
	return float64(SamplesPerTexture(m)) * pixelsPerSample
}
