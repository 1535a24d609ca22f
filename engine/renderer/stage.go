package renderer

import (
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// RenderStage is a single pass of GPU work scheduled at a fixed point in
// the frame. CreateResources runs once when the stage first enters the
// pipeline, Configure runs every frame before any stage records, Execute
// records through the frame's recorder, and ReleaseResources runs when
// the owning feature is removed or the pipeline shuts down.
type RenderStage interface {
	Name() string
	Event() metadata.RenderPassEvent
	ColorTarget() metadata.RenderTargetID
	DepthTarget() metadata.RenderTargetID
	Active() bool
	CreateResources(p *Pipeline) error
	// Configure prepares per-frame state. It must not record commands; the
	// recorder is only reachable from Execute.
	Configure(frame *metadata.FrameData) error
	Execute(rec CommandRecorder) error
	ReleaseResources(p *Pipeline)
	TempSurfaceRequests() []TempSurfaceRequest
}

// TempSurfaceRequest asks the pipeline for a frame-sized intermediate
// texture bound to a temporary target id. Requests are satisfied from
// the transient pool, so the texture is torn down and reallocated on
// every surface rebuild.
type TempSurfaceRequest struct {
	Target     metadata.RenderTargetID
	Descriptor metadata.TextureDescriptor
}

// StageBase carries the bookkeeping every stage shares: name, scheduling
// event, target bindings, the active flag and pending temp-surface
// requests. Concrete stages embed it and implement Execute themselves.
type StageBase struct {
	name         string
	event        metadata.RenderPassEvent
	colorTarget  metadata.RenderTargetID
	depthTarget  metadata.RenderTargetID
	active       bool
	tempRequests []TempSurfaceRequest
}

func NewStageBase(name string, event metadata.RenderPassEvent) StageBase {
	return StageBase{
		name:        name,
		event:       event,
		colorTarget: metadata.TargetCameraColor,
		depthTarget: metadata.TargetCameraDepth,
		active:      true,
	}
}

func (s *StageBase) Name() string                         { return s.name }
func (s *StageBase) Event() metadata.RenderPassEvent      { return s.event }
func (s *StageBase) ColorTarget() metadata.RenderTargetID { return s.colorTarget }
func (s *StageBase) DepthTarget() metadata.RenderTargetID { return s.depthTarget }
func (s *StageBase) Active() bool                         { return s.active }
func (s *StageBase) SetActive(active bool)                { s.active = active }

// ConfigureTargets redirects the stage's output away from the camera
// targets, typically to a temp surface requested earlier.
func (s *StageBase) ConfigureTargets(color, depth metadata.RenderTargetID) {
	s.colorTarget = color
	s.depthTarget = depth
}

// RequestTempSurface queues an intermediate-texture request; the pipeline
// drains the queue during CreateResources and after every surface rebuild.
func (s *StageBase) RequestTempSurface(target metadata.RenderTargetID, desc metadata.TextureDescriptor) {
	s.tempRequests = append(s.tempRequests, TempSurfaceRequest{Target: target, Descriptor: desc})
}

func (s *StageBase) TempSurfaceRequests() []TempSurfaceRequest {
	return s.tempRequests
}

// Default lifecycle hooks; stages with real resources override these.
func (s *StageBase) CreateResources(p *Pipeline) error         { return nil }
func (s *StageBase) Configure(frame *metadata.FrameData) error { return nil }
func (s *StageBase) ReleaseResources(p *Pipeline)              {}
