// Package renderer implements the five mode-specific texture
// uploaders/drawers (V_LOW, LOW, MED, HI, V_HI) behind one capability
// interface, and the GPU binding that interface is drawn against. See
// spec.md §4.11 and §9 ("Polymorphic renderers via function-pointer
// vtables → a Renderer capability set ... Mode selection is a pure
// function of zoom; the variant to use is looked up in a fixed
// table"), grounded on original_source/wf/renderer/*.c.
//
// The legacy non-shader (*_gl1) renderers the original carries are
// omitted per spec.md §9's open question: they are dead code on any
// modern GL context, and a faithful rewrite may leave them out.
package renderer

import (
	"github.com/google/uuid"

	"github.com/ayyi/libwaveform-sub000/internal/hires"
	"github.com/ayyi/libwaveform-sub000/internal/lod"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

// GPU is the host-provided texture/draw binding. It is an external
// collaborator per spec.md §1 ("GPU abstraction"); this package never
// touches a concrete graphics API, only this interface.
type GPU interface {
	UploadTexture1D(id texturecache.ID, data []byte)
	UploadTexture2D(id texturecache.ID, width, height int, data []byte)
	SetUniforms(u Uniforms)
	DrawQuad(q Quad)
}

// Uniforms are the per-draw shader parameters a renderer's PreRender
// sets, per spec.md §4.11.
type Uniforms struct {
	Colour        [4]float32
	Top, Bottom   float32
	Channels      int
	PeaksPerPixel float64
	MipLevel      int
}

// Quad is one textured block draw: an x position and pixel width, the
// texture-coordinate range sampled (accounting for border/trim), and
// the texture id to bind.
type Quad struct {
	X, Width                   float32
	TexCoordStart, TexCoordEnd float32
	TextureID                  texturecache.ID
}

// ActorData is the subset of a waveform actor's state a renderer needs.
// It stands in for the actor package's own actor type — renderer must
// not import actor (actor imports renderer), so this is the narrow
// interface between them.
type ActorData struct {
	WaveformID  uuid.UUID
	Channels    int
	LowResPeaks [][]peakfile.Pair   // one slice per channel, full waveform
	HiResBlocks map[int]*hires.Block // per-block, populated as audio loads
	AudioLoaded map[int]bool         // V_HI: whether raw PCM for a block is cached
	Colour      [4]float32

	initialized map[lod.Mode]bool
}

// NewActorData returns empty per-renderer state for a waveform.
func NewActorData(id uuid.UUID, channels int) *ActorData {
	return &ActorData{
		WaveformID:  id,
		Channels:    channels,
		HiResBlocks: make(map[int]*hires.Block),
		AudioLoaded: make(map[int]bool),
		initialized: make(map[lod.Mode]bool),
	}
}

// Renderer is the per-mode capability set spec.md §4.11 names.
type Renderer interface {
	Mode() lod.Mode
	New(actor *ActorData)
	LoadBlock(actor *ActorData, block int, tc *texturecache.Cache, gpu GPU) bool
	PreRender(actor *ActorData, gpu GPU) bool
	RenderBlock(actor *ActorData, block int, isFirst, isLast bool, x float32, tc *texturecache.Cache, gpu GPU) bool
	PostRender(actor *ActorData, gpu GPU)
	FreeWaveform(actor *ActorData)
}

// ForMode returns the fixed-table Renderer for m, per spec.md §9.
func ForMode(m lod.Mode) Renderer {
	return table[m]
}

var table = map[lod.Mode]Renderer{
	lod.VLow: vlowRenderer{},
	lod.Low:  lowRenderer{},
	lod.Med:  medRenderer{},
	lod.Hi:   hiRenderer{},
	lod.VHi:  vhiRenderer{},
}

func modeKey(wf uuid.UUID, block int, m lod.Mode) texturecache.Key {
	return texturecache.Key{Waveform: wf, Block: block, ModeMask: 1 << uint(m)}
}

// packPair writes a (max,min) Pair as two bytes, scaled from int16 into
// the [0,255] alpha range a 1-D texture row expects.
func packPair(p peakfile.Pair, out []byte, i int) {
	out[i*2] = byte((int(p.Max) + 32768) >> 8)
	out[i*2+1] = byte((int(p.Min) + 32768) >> 8)
}
