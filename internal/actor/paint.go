package actor

import (
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/renderer"
)

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// computeRenderInfo fills a.renderInfo from the current region/rect and
// the scene's zoom/viewport, per spec.md §4.12 step 2.
func (a *Actor) computeRenderInfo(ctx SceneContext) {
	vp := ctx.Viewport()
	pps := ctx.PixelsPerSample()

	mode := lod.Select(pps)
	spt := lod.SamplesPerTexture(mode)

	info := RenderInfo{Mode: mode, PeaksPerPixel: pps, SamplesPerTexture: spt}

	if a.region.Len <= 0 || spt <= 0 {
		info.Valid = true
		info.Empty = true
		a.renderInfo = info
		return
	}

	info.FirstRegionBlock = int(a.region.Start / int64(spt))
	info.LastRegionBlock = int((a.region.Start + a.region.Len - 1) / int64(spt))

	croppedLeft := clampF(a.rect.Left, vp.Left, vp.Right)
	croppedRight := clampF(a.rect.Right, vp.Left, vp.Right)
	if croppedLeft >= croppedRight {
		info.Valid = true
		info.Empty = true
		a.renderInfo = info
		return
	}

	leftFrame := a.XToFrame(croppedLeft)
	rightFrame := a.XToFrame(croppedRight)
	if leftFrame > rightFrame {
		leftFrame, rightFrame = rightFrame, leftFrame
	}

	firstVisible := clampI(int(leftFrame/int64(spt)), info.FirstRegionBlock, info.LastRegionBlock)
	lastVisible := clampI(int(rightFrame/int64(spt)), info.FirstRegionBlock, info.LastRegionBlock)
	if firstVisible > lastVisible {
		info.Valid = true
		info.Empty = true
		a.renderInfo = info
		return
	}

	info.FirstVisibleBlock = firstVisible
	info.LastVisibleBlock = lastVisible
	info.BlockWidthPixels = lod.BlockWidthPixels(mode, pps)
	info.FirstBlockOffset = float64(a.region.Start-int64(firstVisible)*int64(spt)) * pps
	info.Valid = true
	a.renderInfo = info
}

// Paint draws every visible block, falling through to coarser modes on
// a per-block basis, per spec.md §4.12's frame path. With no waveform
// bound, or one that is not renderable, it returns true without
// drawing. It returns false when the block range is empty or the
// selected mode is not ready to draw — not an error, a "not ready"
// state per spec.md §7.
func (a *Actor) Paint(ctx SceneContext) bool {
	if a.waveform == nil || !a.waveform.Renderable() {
		return true
	}
	if !a.renderInfo.Valid {
		a.computeRenderInfo(ctx)
		if a.renderInfo.Empty {
			return false
		}
	}
	if a.renderInfo.Empty {
		return false
	}

	info := a.renderInfo
	mode := info.Mode
	rend := renderer.ForMode(mode)
	if !rend.PreRender(a.data, ctx.GPU()) {
		return false
	}

	x := a.rect.Left - info.FirstBlockOffset
	for block := info.FirstVisibleBlock; block <= info.LastVisibleBlock; block++ {
		isFirst := block == info.FirstRegionBlock
		isLast := block == info.LastRegionBlock
		m := mode
		for {
			r := renderer.ForMode(m)
			ok := r.RenderBlock(a.data, block, isFirst, isLast, float32(x), ctx.Textures(), ctx.GPU())
			if ok {
				break
			}
			if m == lod.VLow {
				break
			}
			m = m.Coarser()
			renderer.ForMode(m).PreRender(a.data, ctx.GPU())
		}
		x += info.BlockWidthPixels
	}

	renderer.ForMode(mode).PostRender(a.data, ctx.GPU())
	return true
}
