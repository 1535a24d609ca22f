package metadata

// RenderTargetID identifies a render target without exposing the underlying
// GPU object. Stages declare a color/depth pair of these; the orchestrator
// resolves them to pooled textures at execution time.
type RenderTargetID uint32

const (
	// The camera's color buffer for the current frame.
	TargetCameraColor RenderTargetID = 0
	// The camera's depth buffer for the current frame.
	TargetCameraDepth RenderTargetID = 1

	// Scratch targets shared between stages within one frame.
	TargetTemp0 RenderTargetID = 2
	TargetTemp1 RenderTargetID = 3
	TargetTemp2 RenderTargetID = 4
	TargetTemp3 RenderTargetID = 5

	// First identifier available to feature-allocated targets.
	TargetUserFirst RenderTargetID = 16

	TargetInvalid RenderTargetID = RenderTargetID(InvalidID)
)

func (id RenderTargetID) IsValid() bool {
	return id != TargetInvalid
}
