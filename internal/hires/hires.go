// Package hires derives hi-resolution peak buffers from decoded PCM
// audio at a requested resolution tier, for the HI and V_HI render
// modes. See spec.md §4.6, grounded on original_source/wf/peak/hires.c.
package hires

import (
	"fmt"

	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

// PeakBlockSize is the number of source frames covered by one audio
// block / hi-res buffer.
const PeakBlockSize = 65536

// Border is the frame-domain overlap between adjacent audio/hi-res
// blocks, converting lod.BorderPixels (a border measured in peaks) to
// source frames via peakfile.PeakRatio, per spec.md §3 ("Blocks
// overlap by a texture border... so adjacent blocks render seamlessly")
// and original_source/wf/audio.c's
// `block_num * (WF_PEAK_BLOCK_SIZE - 2.0 * TEX_BORDER * 256.0)`.
const Border = lod.BorderPixels * peakfile.PeakRatio

// StartFrame returns the first source frame covered by block, per
// spec.md §4.5 step (ii): consecutive blocks are spaced by
// PeakBlockSize-2*Border frames apart so adjacent blocks overlap by
// 2*Border frames (a Border-wide margin from each).
func StartFrame(block int) int64 {
	return int64(block) * int64(PeakBlockSize-2*Border)
}

// MaxTier is the coarsest resolution tier a buffer may be derived at.
const MaxTier = 128

// ValidTier reports whether tier is a power of two in [1, MaxTier],
// per spec.md §4.6 ("powers of two from 1 to 128").
func ValidTier(tier int) bool {
	return tier >= 1 && tier <= MaxTier && tier&(tier-1) == 0
}

// Block is one hi-res peak buffer: Tier is the io_ratio (input frames
// folded into each output pair); Channels holds one Pair slice per channel,
// each of length PeakBlockSize/Tier (the final window may be short if
// the source block itself was short).
type Block struct {
	Tier     int
	Channels [][]peakfile.Pair
}

// Derive folds pcm (one []int16 per channel) into a Block at the given
// tier. Buffers are always rebuilt from scratch, never patched in
// place, per spec.md §4.6 ("Rebuilt (not patched) whenever audio
// reloads").
func Derive(pcm [][]int16, tier int) (*Block, error) {
	if !ValidTier(tier) {
		return nil, fmt.Errorf("hires: invalid tier %d, want a power of two in [1,%d]", tier, MaxTier)
	}
	channels := make([][]peakfile.Pair, len(pcm))
	for c, samples := range pcm {
		channels[c] = deriveChannel(samples, tier)
	}
	return &Block{Tier: tier, Channels: channels}, nil
}

func deriveChannel(samples []int16, tier int) []peakfile.Pair {
	n := (len(samples) + tier - 1) / tier
	out := make([]peakfile.Pair, n)
	for i := range out {
		start := i * tier
		end := start + tier
		if end > len(samples) {
			end = len(samples)
		}
		out[i] = foldWindow(samples[start:end])
	}
	return out
}

func foldWindow(samples []int16) peakfile.Pair {
	if len(samples) == 0 {
		return peakfile.Pair{}
	}
	max := int(samples[0])
	min := int(samples[0])
	for _, s := range samples[1:] {
		if int(s) > max {
			max = int(s)
		}
		if int(s) < min {
			min = int(s)
		}
	}
	return peakfile.Pair{Max: int16(max), Min: peakfile.ClampMin(int32(min))}
}

// NumSamples returns the per-channel output length of a Block derived
// from a source block of sourceFrames frames at tier.
func NumSamples(sourceFrames, tier int) int {
	return (sourceFrames + tier - 1) / tier
}
