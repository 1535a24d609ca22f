/*
Package testbed exercises the engine without a GPU: it plugs a null
surface device into the frame scheduler so the whole orchestration path
runs, and a real Vulkan application only swaps the device factory.
*/
package testbed

import (
	gomath "math"

	"github.com/lumengine/lumen/engine"
	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/math"
	"github.com/lumengine/lumen/engine/platform"
	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

type gameState struct {
	angle float64

	cubeVertices metadata.Handle
	cubeIndices  metadata.Handle
	glassIndices metadata.Handle
}

func NewTestGame() *engine.Game {
	cfg := engine.DefaultApplicationConfig()
	cfg.Name = "Lumen Testbed"
	cfg.Pipeline.Bloom = engine.BloomConfig{Enabled: true, Threshold: 1.0, Intensity: 0.8}
	cfg.Pipeline.DebugView.Enabled = true

	state := &gameState{}
	game := &engine.Game{
		ApplicationConfig: cfg,
		State:             state,
		FnCreateDevice:    createNullDevice,
		FnUpdate:          state.update,
	}
	game.FnInitialize = func(e *engine.Engine) error {
		return state.initialize(e)
	}
	game.FnCollect = state.collect
	return game
}

func createNullDevice(p *platform.Platform, framesInFlight int) (renderer.SurfaceDevice, renderer.PipelineProvider, renderer.TextureAllocator, error) {
	device := newNullDevice(framesInFlight, p.FramebufferSize)
	return device, nullPipelines{}, nil, nil
}

// initialize registers the demo geometry with the persistent pool. The
// null device has no real buffers, so small marker values stand in for
// them; a Vulkan game would store vk.Buffer handles here instead.
func (s *gameState) initialize(e *engine.Engine) error {
	registry := e.Pipeline().Persistent()

	var err error
	s.cubeVertices, err = registry.Allocate(metadata.BufferResource(&metadata.BufferDescriptor{
		Name:  "cube-vertices",
		Size:  24 * 8 * 4,
		Usage: metadata.BufferUsageVertex,
	}), "cube-vertices")
	if err != nil {
		return err
	}
	s.cubeIndices, err = registry.Allocate(metadata.BufferResource(&metadata.BufferDescriptor{
		Name:  "cube-indices",
		Size:  36 * 4,
		Usage: metadata.BufferUsageIndex,
	}), "cube-indices")
	if err != nil {
		return err
	}
	s.glassIndices, err = registry.Allocate(metadata.BufferResource(&metadata.BufferDescriptor{
		Name:  "glass-indices",
		Size:  36 * 4,
		Usage: metadata.BufferUsageIndex,
	}), "glass-indices")
	if err != nil {
		return err
	}

	core.LogInfo("testbed geometry registered: %d live resources", registry.Live())
	return nil
}

func (s *gameState) update(deltaTime float64) error {
	s.angle += 0.5 * deltaTime
	return nil
}

// collect assembles the frame snapshot: a camera orbiting three cubes,
// one of them transparent, lit by a sun light and a point light.
func (s *gameState) collect(frame *metadata.FrameData) error {
	camX := float32(10 * gomath.Cos(s.angle))
	camZ := float32(10 * gomath.Sin(s.angle))
	camera := math.NewVec3(camX, 4, camZ)
	target := math.NewVec3(0, 0, 0)

	frame.CameraPos = camera
	frame.View = math.NewMat4LookAt(camera, target, math.NewVec3(0, 1, 0))
	frame.Projection = math.NewMat4Perspective(math.DegToRad(60), frame.AspectRatio, 0.1, 100.0)

	frame.Lights = append(frame.Lights[:0],
		metadata.Light{
			Type:         metadata.LightTypeDirectional,
			Direction:    math.NewVec3(-0.4, -1, -0.2),
			Color:        math.NewVec4(1, 0.96, 0.9, 1),
			Intensity:    1.2,
			CastsShadows: true,
		},
		metadata.Light{
			Type:      metadata.LightTypePoint,
			Position:  math.NewVec3(3, 2, 0),
			Color:     math.NewVec4(0.9, 0.4, 0.2, 1),
			Intensity: 4,
		},
	)

	positions := []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(3, 0, 1),
		math.NewVec3(-2, 0, -2),
	}
	frame.Renderables = frame.Renderables[:0]
	for i, pos := range positions {
		transparent := i == 2
		indices := s.cubeIndices
		if transparent {
			indices = s.glassIndices
		}
		dx := pos.X - camera.X
		dy := pos.Y - camera.Y
		dz := pos.Z - camera.Z
		frame.Renderables = append(frame.Renderables, metadata.Renderable{
			World:        math.NewMat4Identity(),
			VertexBuffer: s.cubeVertices,
			IndexBuffer:  indices,
			IndexCount:   36,
			Transparent:  transparent,
			Distance:     float32(gomath.Sqrt(float64(dx*dx + dy*dy + dz*dz))),
		})
	}
	return nil
}
