package metadata

// RenderPassEvent is a named insertion point in the fixed stage sequence.
// Events are totally ordered; the orchestrator visits them in this order
// every frame, so a stage registered at an event always runs at the same
// relative position across frames.
type RenderPassEvent int

const (
	// Before any rendering happens; useful to prepare resources.
	EventBeforeRendering RenderPassEvent = 0

	EventBeforeRenderingShadows RenderPassEvent = 10
	EventAfterRenderingShadows  RenderPassEvent = 15

	EventBeforeRenderingOpaques RenderPassEvent = 20
	EventAfterRenderingOpaques  RenderPassEvent = 25

	EventBeforeRenderingSkybox RenderPassEvent = 30
	EventAfterRenderingSkybox  RenderPassEvent = 35

	EventBeforeRenderingTransparents RenderPassEvent = 40
	EventAfterRenderingTransparents  RenderPassEvent = 45

	EventBeforeRenderingPostProcessing RenderPassEvent = 50
	EventAfterRenderingPostProcessing  RenderPassEvent = 55

	// After everything; last chance to touch the frame.
	EventAfterRendering RenderPassEvent = 60
)

// RenderPassEvents lists every event in visiting order.
var RenderPassEvents = []RenderPassEvent{
	EventBeforeRendering,
	EventBeforeRenderingShadows,
	EventAfterRenderingShadows,
	EventBeforeRenderingOpaques,
	EventAfterRenderingOpaques,
	EventBeforeRenderingSkybox,
	EventAfterRenderingSkybox,
	EventBeforeRenderingTransparents,
	EventAfterRenderingTransparents,
	EventBeforeRenderingPostProcessing,
	EventAfterRenderingPostProcessing,
	EventAfterRendering,
}

func (e RenderPassEvent) String() string {
	switch e {
	case EventBeforeRendering:
		return "BeforeRendering"
	case EventBeforeRenderingShadows:
		return "BeforeRenderingShadows"
	case EventAfterRenderingShadows:
		return "AfterRenderingShadows"
	case EventBeforeRenderingOpaques:
		return "BeforeRenderingOpaques"
	case EventAfterRenderingOpaques:
		return "AfterRenderingOpaques"
	case EventBeforeRenderingSkybox:
		return "BeforeRenderingSkybox"
	case EventAfterRenderingSkybox:
		return "AfterRenderingSkybox"
	case EventBeforeRenderingTransparents:
		return "BeforeRenderingTransparents"
	case EventAfterRenderingTransparents:
		return "AfterRenderingTransparents"
	case EventBeforeRenderingPostProcessing:
		return "BeforeRenderingPostProcessing"
	case EventAfterRenderingPostProcessing:
		return "AfterRenderingPostProcessing"
	case EventAfterRendering:
		return "AfterRendering"
	}
	return "UnknownEvent"
}
