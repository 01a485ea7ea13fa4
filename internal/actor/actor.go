// Package actor implements the waveform actor: the animatable
// region/rect/z/opacity properties, the paint() frame path, and the
// load_missing_blocks preloading path. See spec.md §4.12, grounded on
// original_source/wf/ui/actor.c. The "cyclic parent/child scene graph"
// design note (spec.md §9) is carried by the owning internal/scene
// package addressing actors by stable index, not by this package.
package actor

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayyi/libwaveform-sub000/internal/hires"
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
	"github.com/ayyi/libwaveform-sub000/internal/renderer"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
	"github.com/ayyi/libwaveform-sub000/internal/transition"
)

// Region is the visible span of a waveform, in source frames.
type Region struct {
	Start, Len int64
}

// Rect is the actor's horizontal extent in local pixel coordinates;
// height and top follow the parent scene, per spec.md §4.12.
type Rect struct {
	Left, Right float64
}

// WaveformBinding is the narrow view an actor needs of a bound
// waveform. The root package's Waveform type implements it; actor
// cannot import the root package (it would cycle), so this interface
// is the seam between them.
type WaveformBinding interface {
	ID() uuid.UUID
	Channels() int
	Renderable() bool
	NumFrames() int64
	LowResPeaks() [][]peakfile.Pair
}

// Viewport is a scene's visible rectangle in local pixel coordinates.
type Viewport struct {
	Left, Right float64
}

// SceneContext is the narrow view an actor needs of its owning
// scene/context (spec.md §4.14): current zoom, viewport, and the
// shared texture cache / GPU binding to draw against.
type SceneContext interface {
	PixelsPerSample() float64
	Viewport() Viewport
	Textures() *texturecache.Cache
	GPU() renderer.GPU
}

// RenderInfo is cached per-frame layout, recomputed only when
// invalidated, per spec.md §4.12 step 2.
type RenderInfo struct {
	Valid             bool
	Mode              lod.Mode
	PeaksPerPixel     float64
	SamplesPerTexture int
	FirstRegionBlock  int
	LastRegionBlock   int
	FirstVisibleBlock int
	LastVisibleBlock  int
	BlockWidthPixels  float64
	FirstBlockOffset  float64
	Empty             bool
}

// Actor is one drawable view of one waveform.
type Actor struct {
	waveform WaveformBinding
	data     *renderer.ActorData

	region Region
	rect   Rect
	z      float64
	colour [4]float32 // colour[3] is opacity
	vzoom  float64

	renderInfo RenderInfo

	engine         *transition.Engine
	onRedrawNeeded func()
}

// New returns an unbound actor animating its properties over
// defaultDuration (transition.DefaultDuration if zero).
func New(defaultDuration time.Duration, onRedrawNeeded func()) *Actor {
	return &Actor{
		engine:         transition.NewEngine(defaultDuration),
		onRedrawNeeded: onRedrawNeeded,
		colour:         [4]float32{1, 1, 1, 1},
		vzoom:          1,
	}
}

func (a *Actor) invalidate() {
	a.renderInfo.Valid = false
	if a.onRedrawNeeded != nil {
		a.onRedrawNeeded()
	}
}

// Invalidate forces the next Paint to recompute render_info. Exported
// for the owning scene to call when the viewport or zoom changes,
// per spec.md §4.14 ("on dimensions-changed or zoom-changed, every
// actor is invalidated").
func (a *Actor) Invalidate() { a.invalidate() }

// SetHiResBlock stores a freshly derived hi-res peak block and marks it
// loaded, for HI; SetAudioLoaded additionally marks V_HI's raw-PCM
// availability. Both are called by whatever wires a waveform's
// hires-ready signal into this actor (spec.md §6).
func (a *Actor) SetHiResBlock(block int, b *hires.Block) {
	if a.data == nil {
		return
	}
	a.data.HiResBlocks[block] = b
	a.invalidate()
}

// SetAudioLoaded marks block's raw PCM as resident, letting V_HI render it.
func (a *Actor) SetAudioLoaded(block int) {
	if a.data == nil {
		return
	}
	a.data.AudioLoaded[block] = true
	a.invalidate()
}

// SetWaveform rebinds the actor to w (or detaches it if w is nil),
// resetting all per-waveform renderer state. set_waveform(nil) followed
// by set_waveform(w) restores a fully functional actor, per spec.md §8.
func (a *Actor) SetWaveform(w WaveformBinding, onDone func(error)) {
	if w == nil {
		a.waveform = nil
		a.data = nil
		a.invalidate()
		if onDone != nil {
			onDone(nil)
		}
		return
	}
	a.waveform = w
	a.data = renderer.NewActorData(w.ID(), w.Channels())
	a.data.LowResPeaks = w.LowResPeaks()
	a.data.Colour = a.colour
	a.invalidate()
	if onDone != nil {
		onDone(nil)
	}
}

// Waveform returns the currently bound waveform, or nil.
func (a *Actor) Waveform() WaveformBinding { return a.waveform }

// Region returns the actor's current region.
func (a *Actor) Region() Region { return a.region }

// Rect returns the actor's current rect.
func (a *Actor) Rect() Rect { return a.rect }

// SetRegion animates region.start/region.len to r, unless r already
// equals the current region (no-op, no transition started, per
// spec.md §8's idempotence property).
func (a *Actor) SetRegion(now time.Time, r Region) {
	if r == a.region {
		return
	}
	a.engine.Start(now,
		transition.PropTarget{Anim: transition.Int64(&a.region.Start), Target: float64(r.Start)},
		transition.PropTarget{Anim: transition.Int64(&a.region.Len), Target: float64(r.Len)},
	)
	a.invalidate()
}

// SetRect animates rect.left/rect.right to r, unless unchanged.
func (a *Actor) SetRect(now time.Time, r Rect) {
	if r == a.rect {
		return
	}
	a.engine.Start(now,
		transition.PropTarget{Anim: transition.Float64(&a.rect.Left), Target: r.Left},
		transition.PropTarget{Anim: transition.Float64(&a.rect.Right), Target: r.Right},
	)
	a.invalidate()
}

// SetFull animates region, rect (and, via the shared engine, z/opacity
// untouched) together over a custom duration. onDone is called as soon
// as both transitions have been started; it does not wait for them to
// land.
func (a *Actor) SetFull(now time.Time, region Region, rect Rect, duration time.Duration, onDone func()) {
	engine := a.engine
	if duration > 0 && duration != engine.DefaultDuration() {
		engine = transition.NewEngine(duration)
		a.engine = engine
	}
	a.SetRegion(now, region)
	a.SetRect(now, rect)
	if onDone != nil {
		onDone()
	}
}

// SetZ animates the actor's stacking order.
func (a *Actor) SetZ(now time.Time, z float64) {
	if z == a.z {
		return
	}
	a.engine.Start(now, transition.PropTarget{Anim: transition.Float64(&a.z), Target: z})
	a.invalidate()
}

func (a *Actor) Z() float64 { return a.z }

// SetColour sets the foreground colour directly (not animated); use
// FadeIn/FadeOut to animate opacity, the colour's alpha channel, per
// spec.md §4.12 ("opacity, derived from the alpha byte of the
// foreground colour").
func (a *Actor) SetColour(c [4]float32) {
	a.colour = c
	if a.data != nil {
		a.data.Colour = c
	}
	a.invalidate()
}

func (a *Actor) Opacity() float64 { return float64(a.colour[3]) }

// SetVZoom sets the vertical zoom factor applied at pre-render.
func (a *Actor) SetVZoom(v float64) {
	a.vzoom = v
	a.invalidate()
}

// FadeIn animates opacity to 1 over duration.
func (a *Actor) FadeIn(now time.Time, duration time.Duration) {
	a.fadeTo(now, duration, 1)
}

// FadeOut animates opacity to 0 over duration.
func (a *Actor) FadeOut(now time.Time, duration time.Duration) {
	a.fadeTo(now, duration, 0)
}

func (a *Actor) fadeTo(now time.Time, duration time.Duration, target float32) {
	alpha := float64(a.colour[3])
	if duration > 0 && duration != a.engine.DefaultDuration() {
		a.engine = transition.NewEngine(duration)
	}
	ptr := new(float64)
	*ptr = alpha
	a.engine.Start(now, transition.PropTarget{Anim: opacityAnimatable(a, ptr), Target: float64(target)})
	a.invalidate()
}

// opacityAnimatable binds a transient float64 cell to the actor's
// colour alpha channel so a fade can drive it through the actor's
// engine alongside region/rect/z transitions.
func opacityAnimatable(a *Actor, cell *float64) transition.Animatable {
	return transition.NewAnimatable(cell,
		func() float64 { return *cell },
		func(v float64) {
			*cell = v
			a.colour[3] = float32(v)
			if a.data != nil {
				a.data.Colour = a.colour
			}
		})
}

// ScrollTo animates region.start so that frame becomes the first
// visible frame, preserving the current region length.
func (a *Actor) ScrollTo(now time.Time, frame int64) {
	a.SetRegion(now, Region{Start: frame, Len: a.region.Len})
}

// FrameToX maps a source frame to a local pixel x coordinate given the
// actor's current region/rect.
func (a *Actor) FrameToX(frame int64) float64 {
	if a.region.Len == 0 {
		return a.rect.Left
	}
	frac := float64(frame-a.region.Start) / float64(a.region.Len)
	return a.rect.Left + frac*(a.rect.Right-a.rect.Left)
}

// XToFrame is FrameToX's inverse.
func (a *Actor) XToFrame(x float64) int64 {
	width := a.rect.Right - a.rect.Left
	if width == 0 {
		return a.region.Start
	}
	frac := (x - a.rect.Left) / width
	return a.region.Start + int64(frac*float64(a.region.Len)+0.5)
}

// Advance steps the actor's transition engine.
func (a *Actor) Advance(now time.Time) {
	a.engine.AdvanceAll(now)
}
