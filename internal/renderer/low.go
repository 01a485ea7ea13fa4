package renderer

import (
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

type lowRenderer struct{}

func (lowRenderer) Mode() lod.Mode { return lod.Low }

func (lowRenderer) New(a *ActorData) { a.initialized[lod.Low] = true }

func (lowRenderer) LoadBlock(a *ActorData, block int, tc *texturecache.Cache, gpu GPU) bool {
	return loadDownsampledBlock(a, block, lod.Low, tc, gpu)
}

func (lowRenderer) PreRender(a *ActorData, gpu GPU) bool {
	return preRenderFromLowRes(a, gpu)
}

func (lowRenderer) RenderBlock(a *ActorData, block int, isFirst, isLast bool, x float32, tc *texturecache.Cache, gpu GPU) bool {
	return renderDownsampledBlock(a, block, lod.Low, isFirst, isLast, x, tc, gpu)
}

func (lowRenderer) PostRender(a *ActorData, gpu GPU) {}
func (lowRenderer) FreeWaveform(a *ActorData)        {}
