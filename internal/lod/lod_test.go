package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectPicksCoarsestBelowAllTriggers(t *testing.T) {
	assert.Equal(t, VLow, Select(0))
	assert.Equal(t, VLow, Select(1.0/100000))
}

func TestSelectPicksFinestSatisfiedTrigger(t *testing.T) {
	assert.Equal(t, Low, Select(1.0/65536))
	assert.Equal(t, Med, Select(1.0/4096))
	assert.Equal(t, Hi, Select(1.0/256))
	assert.Equal(t, VHi, Select(1.0/16))
	assert.Equal(t, VHi, Select(1.0))
}

func TestSamplesPerTextureMatchesSpecTable(t *testing.T) {
	assert.Equal(t, 256*16384, SamplesPerTexture(VLow))
	assert.Equal(t, 256*1024, SamplesPerTexture(Low))
	assert.Equal(t, 256*256, SamplesPerTexture(Med))
	assert.Equal(t, 256*256, SamplesPerTexture(Hi))
	assert.Equal(t, 256, SamplesPerTexture(VHi))
}

func TestFinerAndCoarserClampAtEnds(t *testing.T) {
	assert.Equal(t, VHi, VHi.Finer())
	assert.Equal(t, VLow, VLow.Coarser())
	assert.Equal(t, Low, VLow.Finer())
	assert.Equal(t, VLow, Low.Coarser())
}

func TestBlockWidthPixelsScalesWithZoom(t *testing.T) {
	got := BlockWidthPixels(Hi, 2.0)
	assert.Equal(t, float64(256*256*2.0), got)
}

func TestModeStringIsHumanReadable(t *testing.T) {
	assert.Equal(t, "V_LOW", VLow.String())
	assert.Equal(t, "V_HI", VHi.String())
}
