package actor

import (
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/renderer"
)

// AudioLoader requests that raw PCM for one block of w be decoded and
// cached; it is implemented by the root package, which owns the
// worker/audiocache/hires wiring the actor package cannot import.
type AudioLoader interface {
	RequestAudioBlock(w WaveformBinding, block int)
}

// LoadMissingBlocks derives the block range from the actor's current
// region and its in-flight target region: every block from the lower
// start to the higher end, including any gap between the two, so
// blocks needed mid transition are requested before they are first
// drawn. Only the region is used; the rect and the scene viewport are
// not consulted, so the range is not cropped to what is on screen.
// HI/V_HI request an audio decode via loader; MED/LOW/
// V_LOW instead upload a texture directly from the already-loaded
// low-res peak.
func (a *Actor) LoadMissingBlocks(ctx SceneContext, loader AudioLoader) {
	if a.waveform == nil || a.data == nil {
		return
	}
	mode := lod.Select(ctx.PixelsPerSample())
	spt := lod.SamplesPerTexture(mode)
	if spt <= 0 {
		return
	}

	targetStart := a.region.Start
	if v, ok := a.engine.TargetOf(&a.region.Start); ok {
		targetStart = int64(v)
	}
	targetLen := a.region.Len
	if v, ok := a.engine.TargetOf(&a.region.Len); ok {
		targetLen = int64(v)
	}

	for _, block := range unionBlocks(a.region.Start, a.region.Len, targetStart, targetLen, spt) {
		switch mode {
		case lod.Hi, lod.VHi:
			if !a.data.AudioLoaded[block] {
				loader.RequestAudioBlock(a.waveform, block)
			}
		default:
			renderer.ForMode(mode).LoadBlock(a.data, block, ctx.Textures(), ctx.GPU())
		}
	}
}

func unionBlocks(startA, lenA, startB, lenB int64, spt int) []int {
	var lo, hi int64
	switch {
	case lenA <= 0 && lenB <= 0:
		return nil
	case lenA <= 0:
		lo, hi = startB, startB+lenB-1
	case lenB <= 0:
		lo, hi = startA, startA+lenA-1
	default:
		lo = min64(startA, startB)
		hi = max64(startA+lenA-1, startB+lenB-1)
	}

	first := int(lo / int64(spt))
	last := int(hi / int64(spt))
	out := make([]int, 0, last-first+1)
	for b := first; b <= last; b++ {
		out = append(out, b)
	}
	return out
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
