package renderer

import (
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// SurfaceState describes the presentable surface currently owned by the
// device backend. A new value is produced on every rebuild; Generation
// increases monotonically so callers can detect that their cached
// surface-sized resources are stale.
type SurfaceState struct {
	Width      uint32
	Height     uint32
	ImageCount uint32
	Generation uint64
}

// SurfaceDevice is the boundary between frame pacing and the GPU backend.
// All methods are called from the render thread; slot is always in
// [0, FramesInFlight()).
type SurfaceDevice interface {
	FramesInFlight() int
	// WaitForFrame blocks until the submission that last used slot has
	// fully completed on the GPU. This is the only blocking point of a frame.
	WaitForFrame(slot int) error
	// ResetFrame makes slot's fence and command recorder reusable. It must
	// only be called after WaitForFrame(slot) returned nil.
	ResetFrame(slot int) error
	// AcquireNextImage returns the index of the next presentable image,
	// or core.ErrSurfaceOutOfDate when the surface no longer matches the
	// window and must be rebuilt before rendering can continue.
	AcquireNextImage(slot int) (uint32, error)
	Recorder(slot int) CommandRecorder
	Submit(slot int, imageIndex uint32) error
	// Present queues the image for presentation. A core.ErrSurfaceOutOfDate
	// return means the frame's work completed but the surface has gone
	// stale; the caller rebuilds before the next acquire.
	Present(slot int, imageIndex uint32) error
	TeardownSurface() error
	BuildSurface(width, height uint32) (*SurfaceState, error)
	WaitIdle() error
}

// PipelineState is an opaque compiled pipeline-state object owned by the
// backend. Stages receive one from a PipelineProvider and hand it back to
// the recorder unchanged.
type PipelineState interface{}

// PipelineProvider supplies compiled pipeline-state objects by stage name.
// A stage whose provider returns an error is skipped for the frame; it is
// never a frame-fatal condition.
type PipelineProvider interface {
	PipelineFor(stageName string) (PipelineState, error)
}

// SceneProvider fills the per-frame snapshot with camera, light and
// renderable data. The orchestrator populates the surface and pacing
// fields before calling Collect.
type SceneProvider interface {
	Collect(frame *metadata.FrameData) error
}

// CommandRecorder records GPU work for a single frame slot. Recording is
// only legal between the scheduler handing out a frame ticket and
// EndFrame; Configure must never touch a recorder.
type CommandRecorder interface {
	BeginRenderPass(color, depth metadata.RenderTargetID) error
	EndRenderPass()
	BindPipeline(ps PipelineState) error
	SetViewport(width, height uint32)
	BindVertexBuffer(buffer interface{}) error
	BindIndexBuffer(buffer interface{}) error
	Draw(vertexCount uint32)
	DrawIndexed(indexCount uint32)
	// DrawFullScreen records a single full-screen triangle; used by the
	// skybox and post-process stages.
	DrawFullScreen()
	Dispatch(groupsX, groupsY, groupsZ uint32)
}
