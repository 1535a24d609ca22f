package testbed

import (
	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// nullDevice satisfies the scheduler's device contract without a GPU.
// Fences are always signaled, acquire rotates through three fake images
// and submit/present succeed unconditionally. Useful for demos, CI and
// profiling the CPU side of the frame loop.
type nullDevice struct {
	framesInFlight int
	surfaceSize    func() (uint32, uint32)
	imageCount     uint32
	nextImage      uint32
	recorders      []*nullRecorder
}

func newNullDevice(framesInFlight int, surfaceSize func() (uint32, uint32)) *nullDevice {
	if framesInFlight < 2 {
		framesInFlight = 2
	}
	d := &nullDevice{
		framesInFlight: framesInFlight,
		surfaceSize:    surfaceSize,
		imageCount:     3,
	}
	d.recorders = make([]*nullRecorder, framesInFlight)
	for i := range d.recorders {
		d.recorders[i] = &nullRecorder{}
	}
	return d
}

func (d *nullDevice) FramesInFlight() int         { return d.framesInFlight }
func (d *nullDevice) WaitForFrame(slot int) error { return nil }
func (d *nullDevice) ResetFrame(slot int) error   { return nil }
func (d *nullDevice) WaitIdle() error             { return nil }
func (d *nullDevice) TeardownSurface() error      { return nil }

func (d *nullDevice) AcquireNextImage(slot int) (uint32, error) {
	image := d.nextImage
	d.nextImage = (d.nextImage + 1) % d.imageCount
	return image, nil
}

func (d *nullDevice) Recorder(slot int) renderer.CommandRecorder {
	return d.recorders[slot]
}

func (d *nullDevice) Submit(slot int, imageIndex uint32) error  { return nil }
func (d *nullDevice) Present(slot int, imageIndex uint32) error { return nil }

func (d *nullDevice) BuildSurface(width, height uint32) (*renderer.SurfaceState, error) {
	if width == 0 || height == 0 {
		width, height = d.surfaceSize()
	}
	return &renderer.SurfaceState{
		Width:      width,
		Height:     height,
		ImageCount: d.imageCount,
	}, nil
}

type nullRecorder struct {
	draws int
}

func (r *nullRecorder) BeginRenderPass(color, depth metadata.RenderTargetID) error { return nil }
func (r *nullRecorder) EndRenderPass()                                             {}
func (r *nullRecorder) BindPipeline(ps renderer.PipelineState) error               { return nil }
func (r *nullRecorder) SetViewport(width, height uint32)                           {}
func (r *nullRecorder) BindVertexBuffer(buffer interface{}) error                  { return nil }
func (r *nullRecorder) BindIndexBuffer(buffer interface{}) error                   { return nil }
func (r *nullRecorder) Draw(vertexCount uint32)                                    { r.draws++ }
func (r *nullRecorder) DrawIndexed(indexCount uint32)                              { r.draws++ }
func (r *nullRecorder) DrawFullScreen()                                            { r.draws++ }
func (r *nullRecorder) Dispatch(groupsX, groupsY, groupsZ uint32)                  {}

// nullPipelines hands every stage the same placeholder state. A real
// provider resolves stage names to compiled pipeline-state objects.
type nullPipelines struct{}

func (nullPipelines) PipelineFor(stageName string) (renderer.PipelineState, error) {
	return stageName, nil
}
