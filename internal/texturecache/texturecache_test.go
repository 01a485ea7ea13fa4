package texturecache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignNewGrowsAndReuses(t *testing.T) {
	c := New(nil)
	w := uuid.New()
	id1 := c.AssignNew(Type1D, Key{Waveform: w, Block: 0})
	id2 := c.AssignNew(Type1D, Key{Waveform: w, Block: 1})
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, growBy, c.Len(Type1D))
}

func TestLookupFindsAssignedSlot(t *testing.T) {
	c := New(nil)
	w := uuid.New()
	key := Key{Waveform: w, Block: 3}
	id := c.AssignNew(Type1D, key)
	got, ok := c.Lookup(Type1D, key)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestTablesAreIndependent(t *testing.T) {
	c := New(nil)
	w := uuid.New()
	key := Key{Waveform: w, Block: 0}
	c.AssignNew(Type1D, key)
	_, ok := c.Lookup(Type2D, key)
	assert.False(t, ok)
}

func TestRemoveDropsMatchingSlot(t *testing.T) {
	c := New(nil)
	w := uuid.New()
	key := Key{Waveform: w, Block: 0}
	c.AssignNew(Type1D, key)
	c.Remove(Type1D, w, 0)
	_, ok := c.Lookup(Type1D, key)
	assert.False(t, ok)
}

func TestRemoveWaveformDropsFromBothTables(t *testing.T) {
	c := New(nil)
	w := uuid.New()
	key := Key{Waveform: w, Block: 0}
	c.AssignNew(Type1D, key)
	c.AssignNew(Type2D, key)
	c.RemoveWaveform(w)
	_, ok1 := c.Lookup(Type1D, key)
	_, ok2 := c.Lookup(Type2D, key)
	assert.False(t, ok1)
	assert.False(t, ok2)
}

func TestAssignNewStealsLRUAndFiresCallback(t *testing.T) {
	var stolen []Key
	c := New(func(typ TextureType, old Key, id ID) {
		stolen = append(stolen, old)
	})
	w := uuid.New()

	// Fill the table to maxCap without ever freeing a slot.
	var last Key
	for i := 0; i < maxCap; i++ {
		last = Key{Waveform: w, Block: i}
		c.AssignNew(Type1D, last)
	}
	assert.Equal(t, maxCap, c.Len(Type1D))

	// Freshen everything except block 0 so it remains the LRU victim.
	for i := 1; i < maxCap; i++ {
		c.Freshen(Type1D, Key{Waveform: w, Block: i})
	}

	newKey := Key{Waveform: w, Block: maxCap}
	c.AssignNew(Type1D, newKey)

	require.Len(t, stolen, 1)
	assert.Equal(t, Key{Waveform: w, Block: 0}, stolen[0])
	assert.Equal(t, maxCap, c.Len(Type1D), "stealing must not grow the table past maxCap")
}

func TestFreshenReportsMissingKey(t *testing.T) {
	c := New(nil)
	assert.False(t, c.Freshen(Type1D, Key{Waveform: uuid.New(), Block: 0}))
}
