package engine

import (
	"github.com/lumengine/lumen/engine/platform"
	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// Game is what an application hands the engine: configuration, the
// device factory and the per-frame hooks. CreateDevice runs after the
// window exists, so a Vulkan game creates its surface and backend there.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}

	FnCreateDevice CreateDevice
	FnInitialize   Initialize
	FnUpdate       Update
	FnCollect      Collect
	FnOnResize     OnResize
}

type CreateDevice func(p *platform.Platform, framesInFlight int) (renderer.SurfaceDevice, renderer.PipelineProvider, renderer.TextureAllocator, error)
type Initialize func(e *Engine) error
type Update func(deltaTime float64) error

// Collect fills the scene half of the frame snapshot: camera matrices,
// lights and renderables. The engine fills the pacing/surface half.
type Collect func(frame *metadata.FrameData) error

type OnResize func(width, height uint32) error
