package features

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

type stubProvider struct {
	err error
}

func (p *stubProvider) PipelineFor(stageName string) (renderer.PipelineState, error) {
	if p.err != nil {
		return nil, p.err
	}
	return stageName, nil
}

func TestBloomCreateValidatesThreshold(t *testing.T) {
	bad := NewBloom(&stubProvider{}, 0, 0.8)
	assert.Error(t, bad.Create())

	good := NewBloom(&stubProvider{}, 1.0, 0.8)
	require.NoError(t, good.Create())
	require.NoError(t, good.Destroy())
}

func TestBloomStageRequestsScratchTargets(t *testing.T) {
	bloom := NewBloom(&stubProvider{}, 1.0, 0.8)
	require.NoError(t, bloom.Create())

	stage := bloom.stage
	require.NotNil(t, stage)
	assert.Equal(t, metadata.EventBeforeRenderingPostProcessing, stage.Event())

	require.NoError(t, stage.CreateResources(nil))
	requests := stage.TempSurfaceRequests()
	require.Len(t, requests, 2)
	assert.Equal(t, metadata.TargetTemp0, requests[0].Target)
	assert.Equal(t, metadata.TargetTemp1, requests[1].Target)
	for _, req := range requests {
		assert.Equal(t, metadata.TextureFormatRGBA16F, req.Descriptor.Format)
		assert.Zero(t, req.Descriptor.Width, "zero extent tracks the surface size")
		assert.True(t, req.Descriptor.RenderTarget)
	}
}

// passRecorder journals render-pass color targets so tests can check
// where a stage actually draws.
type passRecorder struct {
	passes []metadata.RenderTargetID
	open   int
	draws  int
}

func (r *passRecorder) BeginRenderPass(color, depth metadata.RenderTargetID) error {
	r.passes = append(r.passes, color)
	r.open++
	return nil
}

func (r *passRecorder) EndRenderPass() { r.open-- }

func (r *passRecorder) BindPipeline(ps renderer.PipelineState) error { return nil }

func (r *passRecorder) SetViewport(width, height uint32)          {}
func (r *passRecorder) BindVertexBuffer(buffer interface{}) error { return nil }
func (r *passRecorder) BindIndexBuffer(buffer interface{}) error  { return nil }
func (r *passRecorder) Draw(vertexCount uint32)                   {}
func (r *passRecorder) DrawIndexed(indexCount uint32)             {}
func (r *passRecorder) DrawFullScreen()                           { r.draws++ }
func (r *passRecorder) Dispatch(groupsX, groupsY, groupsZ uint32) {}

func TestBloomExecuteDrawsThroughScratchTargets(t *testing.T) {
	bloom := NewBloom(&stubProvider{}, 1.0, 0.8)
	require.NoError(t, bloom.Create())
	require.NoError(t, bloom.stage.Configure(&metadata.FrameData{}))

	rec := &passRecorder{}
	require.NoError(t, bloom.stage.Execute(rec))

	// Bright pass and blur land in the scratch targets; only the final
	// composite touches the camera color target.
	assert.Equal(t, []metadata.RenderTargetID{
		metadata.TargetTemp0,
		metadata.TargetTemp1,
		metadata.TargetCameraColor,
	}, rec.passes)
	assert.Equal(t, 3, rec.draws)
	assert.Zero(t, rec.open, "every pass must be ended")
}

func TestBloomConfigurePropagatesProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("missing shader")}
	bloom := NewBloom(provider, 1.0, 0.8)
	require.NoError(t, bloom.Create())

	err := bloom.stage.Configure(&metadata.FrameData{})
	assert.ErrorIs(t, err, provider.err)
}

func TestBloomSetIntensityReachesStage(t *testing.T) {
	bloom := NewBloom(&stubProvider{}, 1.0, 0.8)

	// Safe before Create; applies to the stage once it exists.
	bloom.SetIntensity(0.5)
	require.NoError(t, bloom.Create())
	bloom.SetIntensity(0.25)
	assert.Equal(t, float32(0.25), bloom.stage.intensity)
}

func TestDebugViewModeFollowsRenderModeEvent(t *testing.T) {
	core.EventSystemInitialize()
	t.Cleanup(func() { core.EventSystemShutdown() })

	dv := NewDebugView(&stubProvider{})
	require.NoError(t, dv.Create())
	t.Cleanup(func() { dv.Destroy() })

	assert.Equal(t, DebugViewOff, dv.Mode())

	core.EventFire(core.EventContext{Type: core.EVENT_CODE_SET_RENDER_MODE, Data: DebugViewDepth})
	assert.Equal(t, DebugViewDepth, dv.Mode())

	// A malformed payload is ignored rather than crashing the frame loop.
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_SET_RENDER_MODE, Data: "depth"})
	assert.Equal(t, DebugViewDepth, dv.Mode())
}

func TestDebugViewDestroyStopsListening(t *testing.T) {
	core.EventSystemInitialize()
	t.Cleanup(func() { core.EventSystemShutdown() })

	dv := NewDebugView(&stubProvider{})
	require.NoError(t, dv.Create())
	require.NoError(t, dv.Destroy())

	core.EventFire(core.EventContext{Type: core.EVENT_CODE_SET_RENDER_MODE, Data: DebugViewNormals})
	assert.Equal(t, DebugViewOff, dv.Mode())
}
