package renderer

import (
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

// vhiRenderer never uploads a texture — V_HI draws directly from
// decoded audio each frame, per spec.md §4.11 ("in V_HI, no texture is
// uploaded; audio read directly per frame"). LoadBlock instead reports
// whether the raw PCM for the block is already resident in the audio
// cache; until it is, RenderBlock falls through. RenderBlock draws one
// full SamplesPerTexture-wide quad for the given block and never reads
// from the next block; the quad is not trimmed at the region boundary.
type vhiRenderer struct{}

func (vhiRenderer) Mode() lod.Mode { return lod.VHi }

func (vhiRenderer) New(a *ActorData) { a.initialized[lod.VHi] = true }

func (vhiRenderer) LoadBlock(a *ActorData, block int, tc *texturecache.Cache, gpu GPU) bool {
	return a.AudioLoaded[block]
}

func (vhiRenderer) PreRender(a *ActorData, gpu GPU) bool {
	gpu.SetUniforms(Uniforms{Colour: a.Colour, Channels: a.Channels})
	return true
}

func (vhiRenderer) RenderBlock(a *ActorData, block int, isFirst, isLast bool, x float32, tc *texturecache.Cache, gpu GPU) bool {
	if !a.AudioLoaded[block] {
		return false
	}
	// No texture id: the quad's TextureID is the zero value. PreRender
	// sets only the colour and channel uniforms, as the other modes do,
	// so MipLevel/PeaksPerPixel are left at zero.
	gpu.DrawQuad(Quad{X: x, Width: float32(lod.SamplesPerTexture(lod.VHi))})
	return true
}

func (vhiRenderer) PostRender(a *ActorData, gpu GPU) {}
func (vhiRenderer) FreeWaveform(a *ActorData)        {}
