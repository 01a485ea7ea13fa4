// Package texturecache manages the GPU texture pool: two independent
// tables (1-D and 2-D), each growing lazily and evicting by LRU access
// stamp once a size ceiling is hit. See spec.md §4.10, grounded on
// original_source/wf/ui/texture_cache.c.
package texturecache

import "github.com/google/uuid"

// TextureType distinguishes the two independent slot tables.
type TextureType int

const (
	Type1D TextureType = iota
	Type2D
)

// growBy is how many slots a table grows by when it has none free.
const growBy = 20

// maxCap is the ceiling a table's slot count never exceeds; once
// reached, AssignNew steals instead of growing.
const maxCap = 1024

// ID is an opaque GPU texture identifier.
type ID int

// Key identifies what a texture slot currently holds: a waveform block,
// optionally scoped by a render-mode bitmask (multiple modes may share
// one texture's mip chain).
type Key struct {
	Waveform uuid.UUID
	Block    int
	ModeMask uint32
}

// StealCallback notifies the owner of a slot's previous contents that
// its texture id is about to be reassigned, so it can clear its own
// cached pointer before the id becomes stale (spec.md §4.10's
// invariant: the steal callback is the only path by which an id goes
// stale).
type StealCallback func(typ TextureType, old Key, id ID)

type slot struct {
	id       ID
	key      Key
	assigned bool
	stamp    uint64
}

type table struct {
	typ    TextureType
	slots  []*slot
	byKey  map[Key]*slot
	nextID ID
}

func newTable(t TextureType) *table {
	return &table{typ: t, byKey: make(map[Key]*slot)}
}

// Cache owns both texture tables and a single shared access-stamp
// counter so LRU ordering is comparable across 1-D and 2-D textures.
type Cache struct {
	stamp   uint64
	oneD    *table
	twoD    *table
	onSteal StealCallback
}

// New builds an empty Cache notifying onSteal whenever a slot is
// reassigned out from under its previous owner.
func New(onSteal StealCallback) *Cache {
	return &Cache{oneD: newTable(Type1D), twoD: newTable(Type2D), onSteal: onSteal}
}

func (c *Cache) nextStamp() uint64 {
	c.stamp++
	return c.stamp
}

func (c *Cache) tableFor(t TextureType) *table {
	if t == Type1D {
		return c.oneD
	}
	return c.twoD
}

// AssignNew returns a texture id for key: reusing an unassigned slot if
// one exists, else growing the table by growBy (capped at maxCap), else
// stealing the least-recently-used slot and firing onSteal.
func (c *Cache) AssignNew(t TextureType, key Key) ID {
	tbl := c.tableFor(t)

	for _, s := range tbl.slots {
		if !s.assigned {
			return c.claim(tbl, s, key)
		}
	}

	if len(tbl.slots) < maxCap {
		grow := growBy
		if len(tbl.slots)+grow > maxCap {
			grow = maxCap - len(tbl.slots)
		}
		first := len(tbl.slots)
		for i := 0; i < grow; i++ {
			tbl.nextID++
			tbl.slots = append(tbl.slots, &slot{id: tbl.nextID})
		}
		return c.claim(tbl, tbl.slots[first], key)
	}

	var victim *slot
	for _, s := range tbl.slots {
		if victim == nil || s.stamp < victim.stamp {
			victim = s
		}
	}
	if c.onSteal != nil && victim.assigned {
		c.onSteal(t, victim.key, victim.id)
	}
	delete(tbl.byKey, victim.key)
	return c.claim(tbl, victim, key)
}

func (c *Cache) claim(tbl *table, s *slot, key Key) ID {
	s.assigned = true
	s.key = key
	s.stamp = c.nextStamp()
	tbl.byKey[key] = s
	return s.id
}

// Lookup returns the texture id currently holding key, if any.
func (c *Cache) Lookup(t TextureType, key Key) (ID, bool) {
	s, ok := c.tableFor(t).byKey[key]
	if !ok {
		return 0, false
	}
	return s.id, true
}

// Freshen bumps key's access stamp, if present, and reports whether it
// was found.
func (c *Cache) Freshen(t TextureType, key Key) bool {
	s, ok := c.tableFor(t).byKey[key]
	if !ok {
		return false
	}
	s.stamp = c.nextStamp()
	return true
}

// Remove drops any slot in table t whose key matches waveform and
// block, regardless of mode mask.
func (c *Cache) Remove(t TextureType, waveform uuid.UUID, block int) {
	tbl := c.tableFor(t)
	for key, s := range tbl.byKey {
		if key.Waveform == waveform && key.Block == block {
			s.assigned = false
			s.key = Key{}
			delete(tbl.byKey, key)
		}
	}
}

// RemoveWaveform drops every slot in both tables belonging to waveform.
func (c *Cache) RemoveWaveform(waveform uuid.UUID) {
	for _, tbl := range []*table{c.oneD, c.twoD} {
		for key, s := range tbl.byKey {
			if key.Waveform == waveform {
				s.assigned = false
				s.key = Key{}
				delete(tbl.byKey, key)
			}
		}
	}
}

// Len reports how many slots exist in table t (assigned or not), for
// tests and diagnostics.
func (c *Cache) Len(t TextureType) int { return len(c.tableFor(t).slots) }
