package transition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceInterpolatesLinearly(t *testing.T) {
	v := 0.0
	now := time.Now()
	e := NewEngine(100 * time.Millisecond)
	e.Start(now, PropTarget{Anim: Float64(&v), Target: 10})

	e.AdvanceAll(now.Add(50 * time.Millisecond))
	assert.InDelta(t, 5.0, v, 0.001)

	e.AdvanceAll(now.Add(100 * time.Millisecond))
	assert.InDelta(t, 10.0, v, 0.001)
	assert.Equal(t, 0, e.Active(), "completed transitions are removed")
}

func TestInt64AnimatableRounds(t *testing.T) {
	var frames int64
	now := time.Now()
	e := NewEngine(100 * time.Millisecond)
	e.Start(now, PropTarget{Anim: Int64(&frames), Target: 1000})
	e.AdvanceAll(now.Add(100 * time.Millisecond))
	assert.Equal(t, int64(1000), frames)
}

func TestStartingOverlappingTransitionDisplacesOldOne(t *testing.T) {
	v := 0.0
	now := time.Now()
	e := NewEngine(100 * time.Millisecond)
	first := e.Start(now, PropTarget{Anim: Float64(&v), Target: 10})

	e.AdvanceAll(now.Add(50 * time.Millisecond))
	midValue := v
	require.InDelta(t, 5.0, midValue, 0.001)

	e.Start(now.Add(50*time.Millisecond), PropTarget{Anim: Float64(&v), Target: 20})
	assert.True(t, first.empty(), "the old transition should have lost its only member")
	assert.Equal(t, 1, e.Active())
}

func TestPreviewDoesNotMutateAnimatable(t *testing.T) {
	v := 0.0
	now := time.Now()
	e := NewEngine(100 * time.Millisecond)
	tr := e.Start(now, PropTarget{Anim: Float64(&v), Target: 10})

	var seq [][]float64
	for vals := range tr.Preview(25 * time.Millisecond) {
		seq = append(seq, append([]float64{}, vals...))
	}

	assert.Equal(t, 0.0, v, "preview must not write back into the animatable")
	require.Len(t, seq, 5)
	assert.InDelta(t, 0.0, seq[0][0], 0.001)
	assert.InDelta(t, 10.0, seq[len(seq)-1][0], 0.001)
}

func TestPreviewIsMonotoneForLinearTransition(t *testing.T) {
	v := 0.0
	now := time.Now()
	e := NewEngine(300 * time.Millisecond)
	tr := e.Start(now, PropTarget{Anim: Float64(&v), Target: 100})

	prev := -1.0
	for vals := range tr.Preview(20 * time.Millisecond) {
		assert.GreaterOrEqual(t, vals[0], prev)
		prev = vals[0]
	}
}

func TestAdvanceBeforeStartClampsToZeroFraction(t *testing.T) {
	v := 5.0
	now := time.Now()
	e := NewEngine(100 * time.Millisecond)
	e.Start(now, PropTarget{Anim: Float64(&v), Target: 50})
	e.AdvanceAll(now.Add(-10 * time.Millisecond))
	assert.InDelta(t, 5.0, v, 0.001)
}
