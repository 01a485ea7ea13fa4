package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayyi/libwaveform-sub000/internal/renderer"
	"github.com/ayyi/libwaveform-sub000/internal/texturecache"
)

type fakeWorker struct {
	pumped      int
	pumpedIdles int
}

func (f *fakeWorker) Pump()         { f.pumped++ }
func (f *fakeWorker) PumpUntilIdle() { f.pumpedIdles++ }

type fakeGPU struct{}

func (fakeGPU) UploadTexture1D(id texturecache.ID, data []byte)                    {}
func (fakeGPU) UploadTexture2D(id texturecache.ID, width, height int, data []byte) {}
func (fakeGPU) SetUniforms(u renderer.Uniforms)                                    {}
func (fakeGPU) DrawQuad(q renderer.Quad)                                           {}

func TestAddActorReusesFreedSlotIndices(t *testing.T) {
	c := New(fakeGPU{}, &fakeWorker{}, nil, 0)
	a0 := c.AddActor(nil)
	a1 := c.AddActor(nil)
	require.NotEqual(t, a0, a1)

	c.RemoveActor(a0)
	assert.Nil(t, c.Actor(a0))

	a2 := c.AddActor(nil)
	assert.Equal(t, a0, a2, "the freed slot should be reused before growing the arena")
	assert.NotNil(t, c.Actor(a1), "unrelated actors survive removal of another")
}

func TestResizeUpdatesViewportToMatchWidth(t *testing.T) {
	c := New(fakeGPU{}, &fakeWorker{}, nil, 0)
	idx := c.AddActor(nil)
	require.NotNil(t, c.Actor(idx))

	c.Resize(800, 200)
	vp := c.Viewport()
	assert.Equal(t, 0.0, vp.Left)
	assert.Equal(t, 800.0, vp.Right)
}

func TestPumpDrainsWorkerAndAdvancesActors(t *testing.T) {
	w := &fakeWorker{}
	c := New(fakeGPU{}, w, nil, 10*time.Millisecond)
	c.AddActor(nil)

	c.Pump(time.Now())
	assert.Equal(t, 1, w.pumped)
}

func TestPumpUntilIdleDelegatesToWorker(t *testing.T) {
	w := &fakeWorker{}
	c := New(fakeGPU{}, w, nil, 0)
	c.PumpUntilIdle()
	assert.Equal(t, 1, w.pumpedIdles)
}

func TestSetZoomUpdatesPixelsPerSample(t *testing.T) {
	c := New(fakeGPU{}, &fakeWorker{}, nil, 0)
	c.SetZoom(0.5)
	assert.Equal(t, 0.5, c.PixelsPerSample())
}
