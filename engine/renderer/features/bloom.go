package features

import (
	"fmt"

	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// Bloom extracts pixels above a luminance threshold into a scratch
// target, blurs them and composites the result back over the camera
// color target, right before the post-process resolve.
type Bloom struct {
	renderer.FeatureBase
	provider  renderer.PipelineProvider
	threshold float32
	intensity float32
	stage     *bloomStage
}

func NewBloom(provider renderer.PipelineProvider, threshold, intensity float32) *Bloom {
	return &Bloom{
		FeatureBase: renderer.NewFeatureBase("bloom"),
		provider:    provider,
		threshold:   threshold,
		intensity:   intensity,
	}
}

func (f *Bloom) Create() error {
	if f.threshold <= 0 {
		return fmt.Errorf("bloom threshold must be positive, got %f", f.threshold)
	}
	f.stage = newBloomStage(f.provider, f.threshold, f.intensity)
	return nil
}

func (f *Bloom) AddStages(p *renderer.Pipeline) {
	if f.Active() {
		p.AddStage(f.stage)
	}
}

func (f *Bloom) Destroy() error {
	f.stage = nil
	return nil
}

// SetIntensity adjusts the composite strength; takes effect next frame.
func (f *Bloom) SetIntensity(intensity float32) {
	f.intensity = intensity
	if f.stage != nil {
		f.stage.intensity = intensity
	}
}

type bloomStage struct {
	renderer.StageBase
	provider  renderer.PipelineProvider
	ps        renderer.PipelineState
	threshold float32
	intensity float32
}

func newBloomStage(provider renderer.PipelineProvider, threshold, intensity float32) *bloomStage {
	s := &bloomStage{
		provider:  provider,
		threshold: threshold,
		intensity: intensity,
	}
	s.StageBase = renderer.NewStageBase("bloom", metadata.EventBeforeRenderingPostProcessing)
	return s
}

func (s *bloomStage) CreateResources(p *renderer.Pipeline) error {
	// Frame-sized scratch targets for the bright pass and the blur
	// ping-pong; zero extent means "match the surface".
	brightPass := metadata.TextureDescriptor{
		Name:         "bloom-bright",
		MipLevels:    1,
		Format:       metadata.TextureFormatRGBA16F,
		RenderTarget: true,
		Sampled:      true,
	}
	blur := brightPass
	blur.Name = "bloom-blur"
	s.RequestTempSurface(metadata.TargetTemp0, brightPass)
	s.RequestTempSurface(metadata.TargetTemp1, blur)
	return nil
}

func (s *bloomStage) Configure(frame *metadata.FrameData) error {
	ps, err := s.provider.PipelineFor(s.Name())
	if err != nil {
		return fmt.Errorf("pipeline state for %q: %w", s.Name(), err)
	}
	s.ps = ps
	return nil
}

func (s *bloomStage) Execute(rec renderer.CommandRecorder) error {
	// Bright pass into Temp0, blur into Temp1, then composite back over
	// the camera color target. The shader side selects the phase by push
	// constant; each phase samples the previous pass's target.
	targets := []metadata.RenderTargetID{
		metadata.TargetTemp0,
		metadata.TargetTemp1,
		s.ColorTarget(),
	}
	for _, target := range targets {
		if err := s.fullScreenPass(rec, target); err != nil {
			return err
		}
	}
	return nil
}

func (s *bloomStage) fullScreenPass(rec renderer.CommandRecorder, target metadata.RenderTargetID) error {
	if err := rec.BeginRenderPass(target, metadata.TargetInvalid); err != nil {
		return err
	}
	defer rec.EndRenderPass()
	if err := rec.BindPipeline(s.ps); err != nil {
		return err
	}
	rec.DrawFullScreen()
	return nil
}
