// Package audiocache is the process-wide, main-thread-only audio block
// cache: decoded PCM blocks keyed by (waveform, block), evicted in
// strict LRU order by access stamp when the shorts budget is exceeded.
// See spec.md §4.5 and §5's single-writer discipline, grounded on
// original_source/wf/audio_cache.c.
package audiocache

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Budget is the maximum number of int16 samples (across all channels
// and waveforms) the cache may hold at once: 2^23 shorts, ≈16 MB.
const Budget = 1 << 23

// Key identifies one decoded audio block belonging to one waveform.
type Key struct {
	Waveform uuid.UUID
	Block    int
}

// Block is one cached decoded audio block, one sample slice per channel.
type Block struct {
	Channels [][]int16
}

func (b Block) size() int {
	n := 0
	for _, ch := range b.Channels {
		n += len(ch)
	}
	return n
}

type entry struct {
	block Block
	stamp uint64
	size  int
}

// Cache is the audio block cache singleton. All methods assume they are
// called from the single designated writer goroutine (the "main
// thread" per spec.md §5); no internal locking is performed.
type Cache struct {
	entries map[Key]*entry
	stamp   uint64
	used    int
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

func (c *Cache) nextStamp() uint64 {
	c.stamp++
	return c.stamp
}

// Get returns the cached block for key, bumping its access stamp on a
// hit per spec.md §4.5 ("every cache hit bumps a global monotonically
// increasing stamp").
func (c *Cache) Get(key Key) (Block, bool) {
	e, ok := c.entries[key]
	if !ok {
		return Block{}, false
	}
	e.stamp = c.nextStamp()
	return e.block, true
}

// Insert adds block under key, evicting the globally least-recently-used
// entries (regardless of which waveform owns them) until it fits within
// Budget. If block alone exceeds Budget, the insert fails and is logged,
// per spec.md §4.5 ("if no block can be evicted the insert logs and
// fails").
func (c *Cache) Insert(key Key, block Block) bool {
	if old, exists := c.entries[key]; exists {
		c.used -= old.size
		delete(c.entries, key)
	}

	size := block.size()
	for c.used+size > Budget && len(c.entries) > 0 {
		victim, victimStamp := Key{}, ^uint64(0)
		for k, e := range c.entries {
			if e.stamp < victimStamp {
				victim, victimStamp = k, e.stamp
			}
		}
		c.used -= c.entries[victim].size
		delete(c.entries, victim)
	}

	if c.used+size > Budget {
		log.Printf("audiocache: insert of %d shorts for waveform %s block %d exceeds budget %d, dropping",
			size, key.Waveform, key.Block, Budget)
		return false
	}

	c.entries[key] = &entry{block: block, stamp: c.nextStamp(), size: size}
	c.used += size
	return true
}

// PurgeWaveform drops every block belonging to id, per spec.md §4.5's
// free-on-waveform-destroy rule.
func (c *Cache) PurgeWaveform(id uuid.UUID) {
	for k, e := range c.entries {
		if k.Waveform == id {
			c.used -= e.size
			delete(c.entries, k)
		}
	}
	if len(c.entries) == 0 {
		c.Compact()
	}
}

// Compact collapses empty trailing allocation by reinitializing the
// backing map once the cache is empty, releasing its bucket array
// rather than retaining it for reuse, per spec.md §4.5 ("a background
// idle collapses empty trailing allocation slabs").
func (c *Cache) Compact() {
	if len(c.entries) == 0 {
		c.entries = make(map[Key]*entry)
	}
}

// Len reports how many blocks are currently cached, for tests and
// diagnostics.
func (c *Cache) Len() int { return len(c.entries) }

// Used reports the current shorts usage, for tests and diagnostics.
func (c *Cache) Used() int { return c.used }

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Waveform, k.Block)
}
