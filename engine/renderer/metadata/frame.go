package metadata

import (
	"github.com/lumengine/lumen/engine/math"
)

type LightType uint8

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
	LightTypeSpot
)

type Light struct {
	Type      LightType
	Position  math.Vec3
	Direction math.Vec3
	Color     math.Vec4
	Intensity float32
	// Whether the light contributes to the shadow stage.
	CastsShadows bool
}

// Renderable is one visible object as collected by the scene provider:
// world transform plus the handles of the geometry buffers to draw.
type Renderable struct {
	World        math.Mat4
	VertexBuffer Handle
	IndexBuffer  Handle
	IndexCount   uint32
	Transparent  bool
	// Sort key distance from the camera, used by the transparent stage.
	Distance float32
}

// FrameData is the per-frame snapshot handed to every stage's Configure.
// It is rebuilt from scratch each frame; in particular the aspect ratio is
// recomputed from the current surface dimensions because a surface rebuild
// can happen between any two frames.
type FrameData struct {
	FrameNumber uint64
	DeltaTime   float64

	// Index of the frame-in-flight slot recording this frame. Stages use it
	// to pick the matching copy of per-slot dynamic buffers.
	SlotIndex int
	// Swapchain image index bound to this frame.
	ImageIndex uint32

	SurfaceWidth  uint32
	SurfaceHeight uint32
	AspectRatio   float32

	View       math.Mat4
	Projection math.Mat4
	CameraPos  math.Vec3

	Lights      []Light
	Renderables []Renderable

	// Active target identifiers for the built-in stages this frame.
	ColorTarget RenderTargetID
	DepthTarget RenderTargetID
}
