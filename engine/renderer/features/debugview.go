package features

import (
	"fmt"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

type DebugViewMode int

const (
	DebugViewOff DebugViewMode = iota
	DebugViewDepth
	DebugViewNormals
	DebugViewOverdraw
)

// DebugView blits an internal target over the final image after
// everything else has rendered. The mode is switchable at runtime
// through the render-mode event, so a game can cycle views without
// touching the feature directly.
type DebugView struct {
	renderer.FeatureBase
	provider renderer.PipelineProvider
	mode     DebugViewMode
	stage    *debugViewStage
}

func NewDebugView(provider renderer.PipelineProvider) *DebugView {
	return &DebugView{
		FeatureBase: renderer.NewFeatureBase("debug-view"),
		provider:    provider,
	}
}

func (f *DebugView) Create() error {
	f.stage = newDebugViewStage(f.provider)
	core.EventRegister(core.EVENT_CODE_SET_RENDER_MODE, f, f.onSetRenderMode)
	return nil
}

func (f *DebugView) AddStages(p *renderer.Pipeline) {
	if f.Active() && f.mode != DebugViewOff {
		f.stage.mode = f.mode
		p.AddStage(f.stage)
	}
}

func (f *DebugView) Destroy() error {
	core.EventUnregister(core.EVENT_CODE_SET_RENDER_MODE, f)
	f.stage = nil
	return nil
}

func (f *DebugView) Mode() DebugViewMode { return f.mode }

func (f *DebugView) SetMode(mode DebugViewMode) { f.mode = mode }

func (f *DebugView) onSetRenderMode(context core.EventContext) {
	mode, ok := context.Data.(DebugViewMode)
	if !ok {
		core.LogWarn("debug view ignoring render-mode event with payload %T", context.Data)
		return
	}
	f.mode = mode
	core.LogDebug("debug view mode set to %d", mode)
}

type debugViewStage struct {
	renderer.StageBase
	provider renderer.PipelineProvider
	ps       renderer.PipelineState
	mode     DebugViewMode
}

func newDebugViewStage(provider renderer.PipelineProvider) *debugViewStage {
	s := &debugViewStage{provider: provider}
	s.StageBase = renderer.NewStageBase("debug-view", metadata.EventAfterRendering)
	return s
}

func (s *debugViewStage) Configure(frame *metadata.FrameData) error {
	ps, err := s.provider.PipelineFor(s.Name())
	if err != nil {
		return fmt.Errorf("pipeline state for %q: %w", s.Name(), err)
	}
	s.ps = ps
	return nil
}

func (s *debugViewStage) Execute(rec renderer.CommandRecorder) error {
	if err := rec.BeginRenderPass(s.ColorTarget(), metadata.TargetInvalid); err != nil {
		return err
	}
	defer rec.EndRenderPass()
	if err := rec.BindPipeline(s.ps); err != nil {
		return err
	}
	rec.DrawFullScreen()
	return nil
}
