package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeakDataMirrorsLowResPeaksAfterLoad(t *testing.T) {
	frames := make([]int16, 3000)
	for i := range frames {
		frames[i] = int16(i % 1000)
	}
	sys, src := newTestSystem(t, frames)

	w := sys.Load(src)
	sys.PumpUntilIdle()
	_, err := w.Peaks().Wait()
	require.NoError(t, err)

	pd := w.PeakData()
	require.Len(t, pd, 1)
	assert.Equal(t, len(w.LowResPeaks()[0]), len(pd[0]))
}

func TestRMSIsNonNegativeAndZeroForSilence(t *testing.T) {
	sys, src := newTestSystem(t, make([]int16, 3000))
	w := sys.Load(src)
	sys.PumpUntilIdle()
	w.Peaks().Wait()

	rms := w.RMS()
	require.Len(t, rms, 1)
	for _, v := range rms[0] {
		assert.Equal(t, 0.0, v)
	}
}

func TestHiresPeakDataMissingBlockReturnsFalse(t *testing.T) {
	sys, src := newTestSystem(t, make([]int16, 3000))
	w := sys.Load(src)
	sys.PumpUntilIdle()
	w.Peaks().Wait()

	_, ok := w.HiresPeakData(99)
	assert.False(t, ok)
}
