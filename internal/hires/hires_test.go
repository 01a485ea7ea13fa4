package hires

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTierAcceptsPowersOfTwoInRange(t *testing.T) {
	for _, tier := range []int{1, 2, 4, 8, 16, 32, 64, 128} {
		assert.True(t, ValidTier(tier), tier)
	}
	for _, tier := range []int{0, 3, 129, 256, -1} {
		assert.False(t, ValidTier(tier), tier)
	}
}

func TestDeriveRejectsInvalidTier(t *testing.T) {
	_, err := Derive([][]int16{{1, 2, 3}}, 3)
	assert.Error(t, err)
}

func TestDeriveFoldsWindowsPerChannel(t *testing.T) {
	left := []int16{10, -20, 5, -5, 30, -1, 2, -2}
	right := []int16{1, -1, 2, -2, 3, -3, 4, -4}
	b, err := Derive([][]int16{left, right}, 4)
	require.NoError(t, err)
	require.Equal(t, 4, b.Tier)
	require.Len(t, b.Channels, 2)
	require.Len(t, b.Channels[0], 2)

	assert.Equal(t, int16(10), b.Channels[0][0].Max)
	assert.Equal(t, int16(-20), b.Channels[0][0].Min)
	assert.Equal(t, int16(30), b.Channels[0][1].Max)
	assert.Equal(t, int16(-2), b.Channels[0][1].Min)
}

func TestDeriveHandlesShortFinalWindow(t *testing.T) {
	samples := []int16{1, 2, 3, 4, 5}
	b, err := Derive([][]int16{samples}, 4)
	require.NoError(t, err)
	require.Len(t, b.Channels[0], 2)
	assert.Equal(t, int16(5), b.Channels[0][1].Max)
}

func TestClampAppliedOnDerive(t *testing.T) {
	samples := []int16{-32768, 0, 0, 0}
	b, err := Derive([][]int16{samples}, 4)
	require.NoError(t, err)
	assert.Equal(t, int16(-32767), b.Channels[0][0].Min)
}

func TestNumSamplesMatchesCeilDivision(t *testing.T) {
	assert.Equal(t, 512, NumSamples(PeakBlockSize, 128))
	assert.Equal(t, PeakBlockSize, NumSamples(PeakBlockSize, 1))
	assert.Equal(t, 2, NumSamples(5, 4))
}

func TestStartFrameOverlapsAdjacentBlocksByBorder(t *testing.T) {
	assert.Equal(t, int64(0), StartFrame(0))

	block0End := StartFrame(0) + PeakBlockSize
	block1Start := StartFrame(1)
	assert.Equal(t, int64(2*Border), block0End-block1Start,
		"consecutive blocks should overlap by exactly 2*Border frames")
}
