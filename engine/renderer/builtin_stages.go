package renderer

import (
	"fmt"
	"sort"

	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// drawStage is the machinery shared by the built-in stages: a pipeline
// handle fetched every frame in Configure (so a provider failure skips
// the stage before anything records) and access to the owning pipeline's
// registries for handle resolution.
type drawStage struct {
	StageBase
	provider PipelineProvider
	owner    *Pipeline
	ps       PipelineState
}

func (s *drawStage) CreateResources(p *Pipeline) error {
	s.owner = p
	return nil
}

func (s *drawStage) Configure(frame *metadata.FrameData) error {
	ps, err := s.provider.PipelineFor(s.Name())
	if err != nil {
		return fmt.Errorf("pipeline state for %q: %w", s.Name(), err)
	}
	s.ps = ps
	return nil
}

func (s *drawStage) drawRenderable(rec CommandRecorder, r metadata.Renderable) error {
	vb, err := s.owner.Persistent().Resolve(r.VertexBuffer)
	if err != nil {
		return fmt.Errorf("vertex buffer of renderable: %w", err)
	}
	ib, err := s.owner.Persistent().Resolve(r.IndexBuffer)
	if err != nil {
		return fmt.Errorf("index buffer of renderable: %w", err)
	}
	if err := rec.BindVertexBuffer(vb); err != nil {
		return err
	}
	if err := rec.BindIndexBuffer(ib); err != nil {
		return err
	}
	rec.DrawIndexed(r.IndexCount)
	return nil
}

// shadowStage renders every shadow-casting renderable into the shadow
// map before the color passes read it.
type shadowStage struct {
	drawStage
	casters []metadata.Renderable
}

func newShadowStage(provider PipelineProvider) *shadowStage {
	s := &shadowStage{}
	s.StageBase = NewStageBase("builtin.shadows", eventStageShadows)
	s.provider = provider
	return s
}

func (s *shadowStage) Configure(frame *metadata.FrameData) error {
	if err := s.drawStage.Configure(frame); err != nil {
		return err
	}
	s.casters = s.casters[:0]
	for _, r := range frame.Renderables {
		if !r.Transparent {
			s.casters = append(s.casters, r)
		}
	}
	return nil
}

func (s *shadowStage) Execute(rec CommandRecorder) error {
	if len(s.casters) == 0 {
		return nil
	}
	if err := rec.BeginRenderPass(metadata.TargetInvalid, s.DepthTarget()); err != nil {
		return err
	}
	defer rec.EndRenderPass()
	if err := rec.BindPipeline(s.ps); err != nil {
		return err
	}
	for _, r := range s.casters {
		if err := s.drawRenderable(rec, r); err != nil {
			return err
		}
	}
	return nil
}

// opaqueStage draws the non-transparent renderables front to back.
type opaqueStage struct {
	drawStage
	visible []metadata.Renderable
}

func newOpaqueStage(provider PipelineProvider) *opaqueStage {
	s := &opaqueStage{}
	s.StageBase = NewStageBase("builtin.opaques", eventStageOpaques)
	s.provider = provider
	return s
}

func (s *opaqueStage) Configure(frame *metadata.FrameData) error {
	if err := s.drawStage.Configure(frame); err != nil {
		return err
	}
	s.visible = s.visible[:0]
	for _, r := range frame.Renderables {
		if !r.Transparent {
			s.visible = append(s.visible, r)
		}
	}
	sort.SliceStable(s.visible, func(i, j int) bool {
		return s.visible[i].Distance < s.visible[j].Distance
	})
	return nil
}

func (s *opaqueStage) Execute(rec CommandRecorder) error {
	if err := rec.BeginRenderPass(s.ColorTarget(), s.DepthTarget()); err != nil {
		return err
	}
	defer rec.EndRenderPass()
	if err := rec.BindPipeline(s.ps); err != nil {
		return err
	}
	for _, r := range s.visible {
		if err := s.drawRenderable(rec, r); err != nil {
			return err
		}
	}
	return nil
}

// skyboxStage fills the background after the opaques so most of its
// fragments fail the depth test.
type skyboxStage struct {
	drawStage
}

func newSkyboxStage(provider PipelineProvider) *skyboxStage {
	s := &skyboxStage{}
	s.StageBase = NewStageBase("builtin.skybox", eventStageSkybox)
	s.provider = provider
	return s
}

func (s *skyboxStage) Execute(rec CommandRecorder) error {
	if err := rec.BeginRenderPass(s.ColorTarget(), s.DepthTarget()); err != nil {
		return err
	}
	defer rec.EndRenderPass()
	if err := rec.BindPipeline(s.ps); err != nil {
		return err
	}
	rec.DrawFullScreen()
	return nil
}

// transparentStage draws the transparent renderables back to front. The
// sort happens in Configure; Execute only records.
type transparentStage struct {
	drawStage
	sorted []metadata.Renderable
}

func newTransparentStage(provider PipelineProvider) *transparentStage {
	s := &transparentStage{}
	s.StageBase = NewStageBase("builtin.transparents", eventStageTransparents)
	s.provider = provider
	return s
}

func (s *transparentStage) Configure(frame *metadata.FrameData) error {
	if err := s.drawStage.Configure(frame); err != nil {
		return err
	}
	s.sorted = s.sorted[:0]
	for _, r := range frame.Renderables {
		if r.Transparent {
			s.sorted = append(s.sorted, r)
		}
	}
	sort.SliceStable(s.sorted, func(i, j int) bool {
		return s.sorted[i].Distance > s.sorted[j].Distance
	})
	return nil
}

func (s *transparentStage) Execute(rec CommandRecorder) error {
	if len(s.sorted) == 0 {
		return nil
	}
	if err := rec.BeginRenderPass(s.ColorTarget(), s.DepthTarget()); err != nil {
		return err
	}
	defer rec.EndRenderPass()
	if err := rec.BindPipeline(s.ps); err != nil {
		return err
	}
	for _, r := range s.sorted {
		if err := s.drawRenderable(rec, r); err != nil {
			return err
		}
	}
	return nil
}

// postProcessStage resolves the camera color target to the presentable
// image with a full-screen pass.
type postProcessStage struct {
	drawStage
}

func newPostProcessStage(provider PipelineProvider) *postProcessStage {
	s := &postProcessStage{}
	s.StageBase = NewStageBase("builtin.postprocess", eventStagePostProcess)
	s.provider = provider
	return s
}

func (s *postProcessStage) Execute(rec CommandRecorder) error {
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
