package promise

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThenAfterResolveRunsImmediately(t *testing.T) {
	p := Resolved(7)
	var got int
	p.Then(func(v int, err error) {
		got = v
		require.NoError(t, err)
	})
	assert.Equal(t, 7, got)
}

func TestThenBeforeResolveQueuesAndRuns(t *testing.T) {
	p := New[int]()
	var got int
	p.Then(func(v int, err error) { got = v })
	assert.Equal(t, 0, got)
	p.Resolve(9)
	assert.Equal(t, 9, got)
}

func TestResolveIsIdempotent(t *testing.T) {
	p := New[int]()
	p.Resolve(1)
	p.Resolve(2)
	v, err, ok := p.Peek()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestRejectedCarriesError(t *testing.T) {
	sentinel := errors.New("boom")
	p := Rejected[int](sentinel)
	_, err, ok := p.Peek()
	require.True(t, ok)
	assert.ErrorIs(t, err, sentinel)
}

func TestWaitBlocksUntilResolve(t *testing.T) {
	p := New[string]()
	go p.Resolve("done")
	v, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestWhenAllCollectsValuesInOrder(t *testing.T) {
	a, b, c := New[int](), New[int](), New[int]()
	all := WhenAll(a, b, c)
	b.Resolve(2)
	c.Resolve(3)
	a.Resolve(1)
	v, err := all.Wait()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestWhenAllRejectsIfAnyReject(t *testing.T) {
	sentinel := errors.New("bad")
	a, b := New[int](), New[int]()
	all := WhenAll(a, b)
	a.Resolve(1)
	b.Reject(sentinel)
	_, err := all.Wait()
	assert.ErrorIs(t, err, sentinel)
}

func TestWhenAllEmptyResolvesImmediately(t *testing.T) {
	all := WhenAll[int]()
	v, _, ok := all.Peek()
	require.True(t, ok)
	assert.Nil(t, v)
}
