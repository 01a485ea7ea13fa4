package renderer

import (
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

// medRenderer uploads an alpha buffer windowed directly from the
// already-generated low-res peak (no extra downsampling — MED's
// samples-per-texture window just spans fewer peak pairs than LOW's),
// per spec.md §4.11 ("in MED, upload an alpha buffer built from the
// low-res peak").
type medRenderer struct{}

func (medRenderer) Mode() lod.Mode { return lod.Med }

func (medRenderer) New(a *ActorData) { a.initialized[lod.Med] = true }

func (medRenderer) LoadBlock(a *ActorData, block int, tc *texturecache.Cache, gpu GPU) bool {
	return loadDownsampledBlock(a, block, lod.Med, tc, gpu)
}

func (medRenderer) PreRender(a *ActorData, gpu GPU) bool {
	return preRenderFromLowRes(a, gpu)
}

func (medRenderer) RenderBlock(a *ActorData, block int, isFirst, isLast bool, x float32, tc *texturecache.Cache, gpu GPU) bool {
	return renderDownsampledBlock(a, block, lod.Med, isFirst, isLast, x, tc, gpu)
}

func (medRenderer) PostRender(a *ActorData, gpu GPU) {}
func (medRenderer) FreeWaveform(a *ActorData)        {}
