// Package pixbuf implements the CPU-only rendering path: rasterising a
// low-res (or, for short ranges, hi-res) peak buffer into an 8-bit alpha
// image at arbitrary width/height, with a three-line sub-pixel
// accumulation and four-sample sorted intensity banding for
// anti-aliased peak fills. Used when no GPU is available and for
// thumbnail generation. See spec.md §4.15, grounded on
// original_source/ui/pixbuf.c's waveform_peak_to_alphabuf (the
// previous/current/next Line ring buffer and its sort_()-based
// sub-pixel banding).
package pixbuf

import (
	"sort"

	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

// subPixelLevels is how many sub-samples per output column are banded,
// matching the original's MIN(sub_px, 4) cap.
const subPixelLevels = 4

// bandAlpha is the intensity assigned to each of the subPixelLevels
// sorted sub-peaks, innermost (shortest, most common) first, grounded on
// the original's descending alpha as s increases past the first
// sub-peak.
var bandAlpha = [subPixelLevels]uint8{255, 192, 128, 64}

// Buffer is a rasterised 8-bit alpha image, row-major, top-to-bottom.
type Buffer struct {
	Width, Height int
	Alpha         []uint8
}

func newBuffer(width, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Alpha: make([]uint8, width*height)}
}

func (b *Buffer) setColumn(x int, col []uint8) {
	for y, v := range col {
		b.Alpha[y*b.Width+x] = v
	}
}

// At returns the alpha value at (x, y), or 0 if out of bounds.
func (b *Buffer) At(x, y int) uint8 {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return 0
	}
	return b.Alpha[y*b.Width+x]
}

// Rasterize renders one channel's peaks into a width×height alpha
// buffer. peaks is expected to already be at (or coarser than) the
// output resolution; Rasterize downsamples further if len(peaks) >
// width, and upsamples (repeating columns) if shorter.
func Rasterize(peaks []peakfile.Pair, width, height int) *Buffer {
	out := newBuffer(width, height)
	if width <= 0 || height <= 0 || len(peaks) == 0 {
		return out
	}

	halfHeight := height / 2
	mid := halfHeight
	samplesPerPixel := float64(len(peaks)) / float64(width)

	cols := make([][]uint8, width)
	for x := 0; x < width; x++ {
		cols[x] = columnFor(peaks, x, samplesPerPixel, mid, halfHeight, height)
	}

	for x := 0; x < width; x++ {
		prev, cur, next := cols[x], cols[x], cols[x]
		if x > 0 {
			prev = cols[x-1]
		}
		if x < width-1 {
			next = cols[x+1]
		}
		blended := make([]uint8, height)
		for y := 0; y < height; y++ {
			v := int(cur[y])*3/4 + int(prev[y])/6 + int(next[y])/6
			if v > 255 {
				v = 255
			}
			blended[y] = uint8(v)
		}
		out.setColumn(x, blended)
	}
	return out
}

// RasterizeChannels rasterises every channel independently, for a
// waveform's full set of per-channel peaks.
func RasterizeChannels(channels [][]peakfile.Pair, width, height int) []*Buffer {
	out := make([]*Buffer, len(channels))
	for i, ch := range channels {
		out[i] = Rasterize(ch, width, height)
	}
	return out
}

func columnFor(peaks []peakfile.Pair, x int, samplesPerPixel float64, mid, halfHeight, height int) []uint8 {
	col := make([]uint8, height)
	start := int(float64(x) * samplesPerPixel)
	if start >= len(peaks) {
		return col
	}
	end := int(float64(x+1) * samplesPerPixel)
	if end <= start {
		end = start + 1
	}
	if end > len(peaks) {
		end = len(peaks)
	}
	window := peaks[start:end]

	drawBand(col, mid, subSample(window, true, halfHeight), +1)
	drawBand(col, mid, subSample(window, false, halfHeight), -1)
	return col
}

// subSample splits window into up to subPixelLevels evenly-spaced
// groups, takes each group's extreme (max if positive, min's magnitude
// otherwise) scaled to [0, halfHeight], and returns them sorted
// ascending for drawBand's inner-to-outer banding.
func subSample(window []peakfile.Pair, positive bool, halfHeight int) []int {
	if len(window) == 0 {
		return nil
	}
	n := subPixelLevels
	if n > len(window) {
		n = len(window)
	}
	step := float64(len(window)) / float64(n)

	heights := make([]int, 0, n)
	for i := 0; i < n; i++ {
		start := int(float64(i) * step)
		end := int(float64(i+1) * step)
		if end <= start {
			end = start + 1
		}
		if end > len(window) {
			end = len(window)
		}
		group := window[start:end]

		var extreme int16
		if positive {
			extreme = group[0].Max
			for _, p := range group[1:] {
				if p.Max > extreme {
					extreme = p.Max
				}
			}
		} else {
			extreme = group[0].Min
			for _, p := range group[1:] {
				if p.Min < extreme {
					extreme = p.Min
				}
			}
		}

		h := int(extreme) * halfHeight / 32767
		if h < 0 {
			h = -h
		}
		if h > halfHeight {
			h = halfHeight
		}
		heights = append(heights, h)
	}
	sort.Ints(heights)
	return heights
}

// drawBand paints up to subPixelLevels nested bands around mid, shortest
// (most-common across the sub-samples) first at full alpha, tallest
// (rarest) last at the faintest alpha — the "four-sample sorted
// intensity banding" anti-aliasing spec.md §4.15 names. dir is +1 to
// grow upward (max/positive) or -1 downward (min/negative).
func drawBand(col []uint8, mid int, heights []int, dir int) {
	for i, h := range heights {
		if i >= len(bandAlpha) {
			break
		}
		if h == 0 {
			continue // no signal in this sub-sample: draw nothing, matching a silent column
		}
		a := bandAlpha[i]
		for step := 0; step <= h; step++ {
			y := mid - dir*step
			if y < 0 || y >= len(col) {
				continue
			}
			if col[y] < a {
				col[y] = a
			}
		}
	}
}
