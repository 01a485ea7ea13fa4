package renderer

import (
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

// vlowRenderer and lowRenderer both derive max/min from the full-file
// low-res peak, downsampled to their mode's samples-per-texture, per
// spec.md §4.11 ("in LOW/V_LOW, derive max/min from the low-res peak").
type vlowRenderer struct{}

func (vlowRenderer) Mode() lod.Mode { return lod.VLow }

func (vlowRenderer) New(a *ActorData) { a.initialized[lod.VLow] = true }

func (vlowRenderer) LoadBlock(a *ActorData, block int, tc *texturecache.Cache, gpu GPU) bool {
	return loadDownsampledBlock(a, block, lod.VLow, tc, gpu)
}

func (vlowRenderer) PreRender(a *ActorData, gpu GPU) bool {
	return preRenderFromLowRes(a, gpu)
}

func (vlowRenderer) RenderBlock(a *ActorData, block int, isFirst, isLast bool, x float32, tc *texturecache.Cache, gpu GPU) bool {
	return renderDownsampledBlock(a, block, lod.VLow, isFirst, isLast, x, tc, gpu)
}

func (vlowRenderer) PostRender(a *ActorData, gpu GPU) {}
func (vlowRenderer) FreeWaveform(a *ActorData)        {}

func preRenderFromLowRes(a *ActorData, gpu GPU) bool {
	if len(a.LowResPeaks) == 0 {
		return false
	}
	gpu.SetUniforms(Uniforms{Colour: a.Colour, Channels: a.Channels})
	return true
}

// loadDownsampledBlock builds (or refreshes) the 1-D texture for block
// at mode m by downsampling the waveform's full low-res peak into
// SamplesPerTexture(m) (max,min) pairs.
func loadDownsampledBlock(a *ActorData, block int, m lod.Mode, tc *texturecache.Cache, gpu GPU) bool {
	if len(a.LowResPeaks) == 0 {
		return false
	}
	key := modeKey(a.WaveformID, block, m)
	if _, ok := tc.Lookup(texturecache.Type1D, key); ok {
		tc.Freshen(texturecache.Type1D, key)
		return true
	}

	samplesPerTexture := lod.SamplesPerTexture(m)
	peaks := a.LowResPeaks[0]
	start := block * samplesPerTexture
	if start >= len(peaks) {
		return false
	}
	end := start + samplesPerTexture
	if end > len(peaks) {
		end = len(peaks)
	}

	out := make([]byte, samplesPerTexture*2)
	for i, p := range peaks[start:end] {
		packPair(p, out, i)
	}

	id := tc.AssignNew(texturecache.Type1D, key)
	gpu.UploadTexture1D(id, out)
	return true
}

func renderDownsampledBlock(a *ActorData, block int, m lod.Mode, isFirst, isLast bool, x float32, tc *texturecache.Cache, gpu GPU) bool {
	key := modeKey(a.WaveformID, block, m)
	id, ok := tc.Lookup(texturecache.Type1D, key)
	if !ok {
		return false
	}
	tc.Freshen(texturecache.Type1D, key)

	texStart, texEnd := float32(0), float32(1)
	if isFirst {
		texStart += borderFraction(m)
	}
	if isLast {
		texEnd -= borderFraction(m)
	}

	gpu.DrawQuad(Quad{
		X:             x,
		Width:         float32(lod.SamplesPerTexture(m)),
		TexCoordStart: texStart,
		TexCoordEnd:   texEnd,
		TextureID:     id,
	})
	return true
}

// borderFraction converts lod.BorderPixels into a fraction of one
// mode's texture width, so the first/last block in a region trims its
// border overlap rather than sampling past the region edge.
func borderFraction(m lod.Mode) float32 {
	return float32(lod.BorderPixels) / float32(lod.SamplesPerTexture(m))
}
