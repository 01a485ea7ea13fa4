package pixbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

func flatPeaks(n int, max, min int16) []peakfile.Pair {
	out := make([]peakfile.Pair, n)
	for i := range out {
		out[i] = peakfile.Pair{Max: max, Min: min}
	}
	return out
}

func TestRasterizeProducesRequestedDimensions(t *testing.T) {
	buf := Rasterize(flatPeaks(1000, 16000, -16000), 200, 64)
	assert.Equal(t, 200, buf.Width)
	assert.Equal(t, 64, buf.Height)
	assert.Len(t, buf.Alpha, 200*64)
}

func TestRasterizeSilenceProducesNoAlpha(t *testing.T) {
	buf := Rasterize(flatPeaks(500, 0, 0), 100, 32)
	for _, a := range buf.Alpha {
		assert.Equal(t, uint8(0), a)
	}
}

func TestRasterizeLoudSignalFillsNearCenterline(t *testing.T) {
	buf := Rasterize(flatPeaks(2000, 32000, -32000), 100, 64)
	mid := 32
	nonZero := 0
	for x := 0; x < buf.Width; x++ {
		if buf.At(x, mid) > 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 0, "a loud, sustained signal should paint alpha at the centerline")
}

func TestRasterizeEmptyPeaksReturnsZeroedBuffer(t *testing.T) {
	buf := Rasterize(nil, 10, 10)
	require.Len(t, buf.Alpha, 100)
	for _, a := range buf.Alpha {
		assert.Equal(t, uint8(0), a)
	}
}

func TestRasterizeChannelsReturnsOneBufferPerChannel(t *testing.T) {
	channels := [][]peakfile.Pair{flatPeaks(100, 1000, -1000), flatPeaks(100, 2000, -2000)}
	bufs := RasterizeChannels(channels, 50, 32)
	require.Len(t, bufs, 2)
	for _, b := range bufs {
		assert.Equal(t, 50, b.Width)
	}
}

func TestDegenerateDimensionsReturnEmptyBuffer(t *testing.T) {
	buf := Rasterize(flatPeaks(10, 100, -100), 0, 64)
	assert.Empty(t, buf.Alpha)
}
