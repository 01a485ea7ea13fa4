// Package transition implements the animation engine: linear
// interpolation of animatable properties over wall-clock time, with a
// preview mode that samples the future value sequence without running
// it. See spec.md §4.13, grounded on original_source/wf/transition.c.
// Preview is expressed as a Go 1.23 iter.Seq, per the teacher's comfort
// with range-over-func-shaped iteration in kelindar-ultima-sdk.
package transition

import (
	"iter"
	"time"
)

// DefaultDuration is the typical transition length per spec.md §4.13.
const DefaultDuration = 300 * time.Millisecond

// Animatable is a property an Engine can interpolate: id is a stable,
// comparable identity (normally the property's backing pointer) used
// to detect when a new transition's targets overlap an in-flight one.
type Animatable struct {
	id  any
	get func() float64
	set func(float64)
}

// NewAnimatable builds an Animatable from explicit get/set closures,
// identified by id for overlap detection. Float64 and Int64 are
// convenience constructors over a backing pointer; use NewAnimatable
// directly when the property is derived (e.g. one channel of a colour).
func NewAnimatable(id any, get func() float64, set func(float64)) Animatable {
	return Animatable{id: id, get: get, set: set}
}

// Float64 wraps *ptr as an Animatable.
func Float64(ptr *float64) Animatable {
	return Animatable{id: ptr, get: func() float64 { return *ptr }, set: func(v float64) { *ptr = v }}
}

// Int64 wraps *ptr (e.g. a frame count) as an Animatable, rounding on
// write.
func Int64(ptr *int64) Animatable {
	return Animatable{
		id:  ptr,
		get: func() float64 { return float64(*ptr) },
		set: func(v float64) { *ptr = int64(v + 0.5) },
	}
}

type member struct {
	anim          Animatable
	start, target float64
}

// Transition owns a list of {animatable, start, target} triples and a
// wall-clock window.
type Transition struct {
	members  []*member
	start    time.Time
	end      time.Time
}

func newTransition(now time.Time, duration time.Duration) *Transition {
	return &Transition{start: now, end: now.Add(duration)}
}

func (t *Transition) add(a Animatable, target float64) {
	t.members = append(t.members, &member{anim: a, start: a.get(), target: target})
}

func (t *Transition) remove(id any) {
	for i, m := range t.members {
		if m.anim.id == id {
			t.members = append(t.members[:i], t.members[i+1:]...)
			return
		}
	}
}

func (t *Transition) empty() bool { return len(t.members) == 0 }

func fraction(now, start, end time.Time) float64 {
	total := end.Sub(start).Seconds()
	if total <= 0 {
		return 1
	}
	f := now.Sub(start).Seconds() / total
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Advance writes each member's interpolated value at now, returning
// true once the transition has reached its end and should be removed.
func (t *Transition) Advance(now time.Time) bool {
	f := fraction(now, t.start, t.end)
	for _, m := range t.members {
		m.anim.set(m.start + (m.target-m.start)*f)
	}
	return f >= 1
}

// Preview yields the value sequence the transition would produce if run
// to completion, sampled every step, without mutating any animatable.
// Used by the waveform actor to pre-request blocks for a transition's
// target before the transition actually starts drawing (spec.md §4.13).
func (t *Transition) Preview(step time.Duration) iter.Seq[[]float64] {
	return func(yield func([]float64) bool) {
		if step <= 0 {
			return
		}
		for ts := t.start; ; ts = ts.Add(step) {
			last := ts.After(t.end) || ts.Equal(t.end)
			if last {
				ts = t.end
			}
			f := fraction(ts, t.start, t.end)
			vals := make([]float64, len(t.members))
			for i, m := range t.members {
				vals[i] = m.start + (m.target-m.start)*f
			}
			if !yield(vals) {
				return
			}
			if last {
				return
			}
		}
	}
}

// PropTarget is one property/target pair passed to Engine.Start.
type PropTarget struct {
	Anim   Animatable
	Target float64
}

// Engine runs zero or more concurrently in-flight Transitions.
type Engine struct {
	duration    time.Duration
	transitions []*Transition
	owner       map[any]*Transition
}

// NewEngine builds an Engine using duration for every transition it
// starts; a zero duration falls back to DefaultDuration.
func NewEngine(duration time.Duration) *Engine {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Engine{duration: duration, owner: make(map[any]*Transition)}
}

// Start begins a new Transition over props at now. If a property in
// props is already owned by an in-flight transition, it is displaced
// from that transition — its current (already-interpolated) value
// becomes the new transition's start — and removed from the old
// transition, which is itself dropped once its member list empties,
// per spec.md §4.13.
func (e *Engine) Start(now time.Time, props ...PropTarget) *Transition {
	t := newTransition(now, e.duration)
	for _, p := range props {
		if old, ok := e.owner[p.Anim.id]; ok {
			old.remove(p.Anim.id)
			if old.empty() {
				e.removeTransition(old)
			}
		}
		t.add(p.Anim, p.Target)
		e.owner[p.Anim.id] = t
	}
	e.transitions = append(e.transitions, t)
	return t
}

func (e *Engine) removeTransition(t *Transition) {
	for i, tt := range e.transitions {
		if tt == t {
			e.transitions = append(e.transitions[:i], e.transitions[i+1:]...)
			break
		}
	}
	for id, owner := range e.owner {
		if owner == t {
			delete(e.owner, id)
		}
	}
}

// AdvanceAll steps every in-flight transition at now, removing any that
// complete.
func (e *Engine) AdvanceAll(now time.Time) {
	var done []*Transition
	for _, t := range e.transitions {
		if t.Advance(now) {
			done = append(done, t)
		}
	}
	for _, t := range done {
		e.removeTransition(t)
	}
}

// Active reports how many transitions are currently in flight.
func (e *Engine) Active() int { return len(e.transitions) }

// DefaultDuration returns the duration this Engine starts transitions
// with.
func (e *Engine) DefaultDuration() time.Duration { return e.duration }

// TargetOf returns the target value id is animating towards, if any
// transition currently owns it. Used by callers (e.g. the waveform
// actor's load_missing_blocks) that must consider both a property's
// current and in-flight target value, per spec.md §4.12.
func (e *Engine) TargetOf(id any) (float64, bool) {
	t, ok := e.owner[id]
	if !ok {
		return 0, false
	}
	for _, m := range t.members {
		if m.anim.id == id {
			return m.target, true
		}
	}
	return 0, false
}
