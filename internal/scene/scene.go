// Package scene implements the owning context a set of waveform actors
// draw into: the viewport rectangle, the zoom (pixels-per-sample), the
// shared texture cache, the GPU binding, and the per-host-frame pump
// that stands in for a GUI main loop. See spec.md §4.14, grounded on
// original_source/waveform/canvas.h and ui/actors/background.c's
// context ownership shape.
package scene

import (
	"sort"
	"time"

	"github.com/ayyi/libwaveform-sub000/internal/actor"
	"github.com/ayyi/libwaveform-sub000/internal/renderer"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

// Pumpable is the subset of internal/worker.Worker a Context drains
// each frame, so this package does not need the waveform type parameter.
type Pumpable interface {
	Pump()
	PumpUntilIdle()
}

// slot is one arena entry; actors are addressed by a stable index that
// survives removal of other actors, per spec.md §9's "arena of actors
// addressed by stable indices" design note.
type slot struct {
	a    *actor.Actor
	used bool
}

// Context owns the viewport, zoom, texture cache, and GPU binding a set
// of actors render against, and the arena that addresses them.
type Context struct {
	width, height   float64
	pixelsPerSample float64
	viewport        actor.Viewport

	textures *texturecache.Cache
	gpu      renderer.GPU
	worker   Pumpable

	animationsEnabled bool
	actorDuration     time.Duration

	slots    []slot
	freeList []int
}

// New builds a Context drawing against gpu and pumping worker once per
// frame. onSteal is forwarded to the texture cache's eviction callback
// so actors can drop stale texture ids (spec.md §4.10).
func New(gpu renderer.GPU, worker Pumpable, onSteal texturecache.StealCallback, actorDuration time.Duration) *Context {
	return &Context{
		gpu:               gpu,
		worker:            worker,
		textures:          texturecache.New(onSteal),
		animationsEnabled: true,
		actorDuration:     actorDuration,
		pixelsPerSample:   1,
	}
}

// PixelsPerSample implements actor.SceneContext.
func (c *Context) PixelsPerSample() float64 { return c.pixelsPerSample }

// Viewport implements actor.SceneContext.
func (c *Context) Viewport() actor.Viewport { return c.viewport }

// Textures implements actor.SceneContext.
func (c *Context) Textures() *texturecache.Cache { return c.textures }

// GPU implements actor.SceneContext.
func (c *Context) GPU() renderer.GPU { return c.gpu }

// Resize sets the scene's dimensions, and the viewport to match, then
// invalidates every actor per spec.md §4.14.
func (c *Context) Resize(width, height float64) {
	c.width, c.height = width, height
	c.viewport = actor.Viewport{Left: 0, Right: width}
	c.invalidateAll()
}

// SetZoom sets pixels-per-sample, the mode-selecting zoom level, and
// invalidates every actor.
func (c *Context) SetZoom(pixelsPerSample float64) {
	c.pixelsPerSample = pixelsPerSample
	c.invalidateAll()
}

// SetViewport scrolls/resizes the visible window without touching zoom.
func (c *Context) SetViewport(left, right float64) {
	c.viewport = actor.Viewport{Left: left, Right: right}
	c.invalidateAll()
}

// SetAnimationsEnabled stores the animations flag that AnimationsEnabled
// reports. Nothing reads it when a transition starts: actors animate
// region and rect changes whatever its value.
func (c *Context) SetAnimationsEnabled(on bool) { c.animationsEnabled = on }

// AnimationsEnabled reports the current setting.
func (c *Context) AnimationsEnabled() bool { return c.animationsEnabled }

func (c *Context) invalidateAll() {
	for _, s := range c.slots {
		if s.used {
			s.a.Invalidate()
		}
	}
}

// FrameToX maps a source frame to a scene-local x coordinate using the
// scene's own scroll/zoom, independent of any one actor's region/rect —
// used by callers positioning UI chrome (e.g. a playhead) against the
// shared timeline rather than one actor's mapping.
func (c *Context) FrameToX(frame int64, originFrame int64) float64 {
	return c.viewport.Left + float64(frame-originFrame)*c.pixelsPerSample
}

// AddActor allocates a new actor in the arena and returns its stable
// index, reusing the most recently freed slot first.
func (c *Context) AddActor(onRedrawNeeded func()) int {
	a := actor.New(c.actorDuration, onRedrawNeeded)
	if len(c.freeList) > 0 {
		idx := c.freeList[len(c.freeList)-1]
		c.freeList = c.freeList[:len(c.freeList)-1]
		c.slots[idx] = slot{a: a, used: true}
		return idx
	}
	c.slots = append(c.slots, slot{a: a, used: true})
	return len(c.slots) - 1
}

// RemoveActor frees idx for reuse. It is a no-op if idx is already free
// or out of range.
func (c *Context) RemoveActor(idx int) {
	if idx < 0 || idx >= len(c.slots) || !c.slots[idx].used {
		return
	}
	c.slots[idx] = slot{}
	c.freeList = append(c.freeList, idx)
}

// Actor returns the actor at idx, or nil if idx is free or out of range.
func (c *Context) Actor(idx int) *actor.Actor {
	if idx < 0 || idx >= len(c.slots) || !c.slots[idx].used {
		return nil
	}
	return c.slots[idx].a
}

// Pump drains the background worker's finished jobs and advances every
// actor's in-flight transitions, standing in for the GUI main thread's
// per-frame post-task drain (spec.md §5).
func (c *Context) Pump(now time.Time) {
	c.worker.Pump()
	for _, s := range c.slots {
		if s.used {
			s.a.Advance(now)
		}
	}
}

// PumpUntilIdle blocks until the worker has no outstanding jobs; a
// *_sync-style entry point for tests and warmup (spec.md §5).
func (c *Context) PumpUntilIdle() { c.worker.PumpUntilIdle() }

// Render paints every actor back-to-front by Z, per spec.md §4.12's
// z-ordered stacking.
func (c *Context) Render() {
	order := make([]int, 0, len(c.slots))
	for i, s := range c.slots {
		if s.used {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return c.slots[order[i]].a.Z() < c.slots[order[j]].a.Z()
	})
	for _, i := range order {
		c.slots[i].a.Paint(c)
	}
}
