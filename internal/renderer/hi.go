package renderer

import (
	"github.com/ayyi/libwaveform-sub000/internal/hires"
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

// hiRenderer uploads the hi-res peak block packed as one row per
// channel (the non-legacy path; spec.md §9 drops the *_gl1 2-D alpha
// fallback as dead code on modern GL). LoadBlock returns false — not
// ready, fall through — until the owning waveform's hi-res buffer for
// this block has actually been derived by internal/hires, matching the
// actor's normal "fall-through while hi-res data is being produced"
// handshake (spec.md §4.11).
type hiRenderer struct{}

func (hiRenderer) Mode() lod.Mode { return lod.Hi }

func (hiRenderer) New(a *ActorData) { a.initialized[lod.Hi] = true }

func (hiRenderer) LoadBlock(a *ActorData, block int, tc *texturecache.Cache, gpu GPU) bool {
	hb, ok := a.HiResBlocks[block]
	if !ok {
		return false
	}

	key := modeKey(a.WaveformID, block, lod.Hi)
	if _, ok := tc.Lookup(texturecache.Type2D, key); ok {
		tc.Freshen(texturecache.Type2D, key)
		return true
	}

	width := 0
	if len(hb.Channels) > 0 {
		width = len(hb.Channels[0])
	}
	rows := make([]byte, 0, width*2*len(hb.Channels))
	for _, ch := range hb.Channels {
		row := make([]byte, width*2)
		for i, p := range ch {
			packPair(p, row, i)
		}
		rows = append(rows, row...)
	}

	id := tc.AssignNew(texturecache.Type2D, key)
	gpu.UploadTexture2D(id, width, len(hb.Channels), rows)
	return true
}

func (hiRenderer) PreRender(a *ActorData, gpu GPU) bool {
	if len(a.HiResBlocks) == 0 {
		return false
	}
	gpu.SetUniforms(Uniforms{Colour: a.Colour, Channels: a.Channels, MipLevel: 0})
	return true
}

func (hiRenderer) RenderBlock(a *ActorData, block int, isFirst, isLast bool, x float32, tc *texturecache.Cache, gpu GPU) bool {
	key := modeKey(a.WaveformID, block, lod.Hi)
	id, ok := tc.Lookup(texturecache.Type2D, key)
	if !ok {
		return false
	}
	tc.Freshen(texturecache.Type2D, key)

	texStart, texEnd := float32(0), float32(1)
	if isFirst {
		texStart += borderFraction(lod.Hi)
	}
	if isLast {
		texEnd -= borderFraction(lod.Hi)
	}
	gpu.DrawQuad(Quad{
		X:             x,
		Width:         float32(lod.SamplesPerTexture(lod.Hi)),
		TexCoordStart: texStart,
		TexCoordEnd:   texEnd,
		TextureID:     id,
	})
	return true
}

func (hiRenderer) PostRender(a *ActorData, gpu GPU) {}

func (hiRenderer) FreeWaveform(a *ActorData) {
	a.HiResBlocks = make(map[int]*hires.Block)
}
