package renderer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// Sequence points for the built-in stages. They sit between the public
// before/after events so feature stages registered at EventBeforeX always
// run before the built-in and EventAfterX always after, while the
// built-ins still flow through the one execution path every stage uses.
const (
	eventStageShadows      metadata.RenderPassEvent = 12
	eventStageOpaques      metadata.RenderPassEvent = 22
	eventStageSkybox       metadata.RenderPassEvent = 32
	eventStageTransparents metadata.RenderPassEvent = 42
	eventStagePostProcess  metadata.RenderPassEvent = 52
)

// TextureAllocator creates the backing GPU textures for temp surfaces.
// Nil is accepted; the registry then tracks descriptor-only entries,
// which is what the scheduler tests run with.
type TextureAllocator interface {
	CreateTexture(desc metadata.TextureDescriptor) (interface{}, error)
	DestroyTexture(resource interface{})
}

// PipelineOptions toggles the built-in stages. The opaque stage is not
// optional; a pipeline that renders nothing opaque still owns the camera
// targets.
type PipelineOptions struct {
	Shadows      bool
	Skybox       bool
	Transparents bool
	PostProcess  bool
}

func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Shadows:      true,
		Skybox:       true,
		Transparents: true,
		PostProcess:  true,
	}
}

type stageRecord struct {
	stage   RenderStage
	event   metadata.RenderPassEvent
	skipped bool
}

type boundTempSurface struct {
	request TempSurfaceRequest
	handle  metadata.Handle
}

// Pipeline owns the fixed frame sequence and interleaves feature stages
// into it. Each frame it rebuilds a flat stage list, sorts it stably by
// event (insertion order breaks ties), runs every Configure, then every
// Execute. A stage-local failure logs and skips that stage; the frame
// goes on without it.
type Pipeline struct {
	scheduler *FrameScheduler
	scene     SceneProvider
	pipelines PipelineProvider
	textures  TextureAllocator
	options   PipelineOptions

	features   *FeatureManager
	persistent *ResourceRegistry
	transient  *ResourceRegistry

	builtins       []RenderStage
	frameStages    []stageRecord
	prepared       map[RenderStage]struct{}
	tempBindings   []boundTempSurface
	targets        map[metadata.RenderTargetID]metadata.Handle
	nextUserTarget metadata.RenderTargetID
	surfaceGen     uint64

	frame metadata.FrameData
}

func NewPipeline(scheduler *FrameScheduler, scene SceneProvider, pipelines PipelineProvider, textures TextureAllocator, options PipelineOptions) *Pipeline {
	p := &Pipeline{
		scheduler:      scheduler,
		scene:          scene,
		pipelines:      pipelines,
		textures:       textures,
		options:        options,
		features:       NewFeatureManager(),
		persistent:     NewResourceRegistry(64),
		transient:      NewResourceRegistry(16),
		prepared:       make(map[RenderStage]struct{}),
		targets:        make(map[metadata.RenderTargetID]metadata.Handle),
		nextUserTarget: metadata.TargetUserFirst,
	}
	p.builtins = []RenderStage{
		newShadowStage(pipelines),
		newOpaqueStage(pipelines),
		newSkyboxStage(pipelines),
		newTransparentStage(pipelines),
		newPostProcessStage(pipelines),
	}
	return p
}

func (p *Pipeline) Features() *FeatureManager     { return p.features }
func (p *Pipeline) Persistent() *ResourceRegistry { return p.persistent }
func (p *Pipeline) Transient() *ResourceRegistry  { return p.transient }
func (p *Pipeline) Scheduler() *FrameScheduler    { return p.scheduler }

// Initialize creates all installed features. Stage resources are created
// lazily the first frame each stage is enqueued.
func (p *Pipeline) Initialize() error {
	return p.features.InitializeAll()
}

// AddStage enqueues a stage for the frame currently being built. Features
// call this from AddStages; stages enqueued at the same event keep their
// enqueue order.
func (p *Pipeline) AddStage(stage RenderStage) {
	if stage == nil {
		return
	}
	p.frameStages = append(p.frameStages, stageRecord{stage: stage, event: stage.Event()})
}

// TargetHandle resolves a render-target id to the texture handle bound to
// it, if any. Camera targets are backend-owned and have no registry entry.
func (p *Pipeline) TargetHandle(id metadata.RenderTargetID) (metadata.Handle, bool) {
	h, ok := p.targets[id]
	return h, ok
}

// CreateTemporaryTarget allocates a frame-sized intermediate texture from
// the transient pool and binds it to a fresh user target id. The binding
// survives until the next surface rebuild tears the transient pool down.
func (p *Pipeline) CreateTemporaryTarget(desc metadata.TextureDescriptor) (metadata.RenderTargetID, error) {
	desc.Name = fmt.Sprintf("%s-%s", desc.Name, uuid.New().String())
	id := p.nextUserTarget
	p.nextUserTarget++
	if err := p.bindTempSurface(TempSurfaceRequest{Target: id, Descriptor: desc}); err != nil {
		return metadata.TargetInvalid, err
	}
	return id, nil
}

func (p *Pipeline) bindTempSurface(req TempSurfaceRequest) error {
	surface := p.scheduler.Surface()
	if req.Descriptor.Width == 0 {
		req.Descriptor.Width = surface.Width
	}
	if req.Descriptor.Height == 0 {
		req.Descriptor.Height = surface.Height
	}
	var resource interface{}
	if p.textures != nil {
		tex, err := p.textures.CreateTexture(req.Descriptor)
		if err != nil {
			return fmt.Errorf("temp surface %q: %w", req.Descriptor.Name, err)
		}
		resource = tex
	}
	desc := req.Descriptor
	handle, err := p.transient.Allocate(metadata.TextureResource(&desc), resource)
	if err != nil {
		return fmt.Errorf("temp surface %q: %w", req.Descriptor.Name, err)
	}
	p.targets[req.Target] = handle
	p.tempBindings = append(p.tempBindings, boundTempSurface{request: req, handle: handle})
	return nil
}

// refreshTransientPool tears down every surface-sized resource and
// recreates the bindings stages asked for, against the new surface size.
func (p *Pipeline) refreshTransientPool() error {
	p.transient.ReleaseAll(func(_ metadata.ResourceDescriptor, resource interface{}) {
		if p.textures != nil && resource != nil {
			p.textures.DestroyTexture(resource)
		}
	})
	pending := p.tempBindings
	p.tempBindings = p.tempBindings[:0]
	for id := range p.targets {
		delete(p.targets, id)
	}
	for _, bound := range pending {
		req := bound.request
		// Frame-sized surfaces track the new extent.
		req.Descriptor.Width = 0
		req.Descriptor.Height = 0
		if err := p.bindTempSurface(req); err != nil {
			return err
		}
	}
	return nil
}

// prepareStage runs CreateResources once per stage and drains its
// temp-surface requests into the transient pool.
func (p *Pipeline) prepareStage(stage RenderStage) error {
	if _, ok := p.prepared[stage]; ok {
		return nil
	}
	if err := stage.CreateResources(p); err != nil {
		return err
	}
	for _, req := range stage.TempSurfaceRequests() {
		if err := p.bindTempSurface(req); err != nil {
			return err
		}
	}
	p.prepared[stage] = struct{}{}
	return nil
}

// DrawFrame runs one frame: begin, configure sweep, execute sweep, end.
// A skipped frame (surface rebuild) returns nil; only device-fatal
// conditions surface as errors.
func (p *Pipeline) DrawFrame(deltaTime float64) error {
	ticket, err := p.scheduler.BeginFrame()
	if errors.Is(err, core.ErrSurfaceOutOfDate) {
		core.LogDebug("frame %d skipped while surface rebuilds", p.scheduler.FrameNumber())
		return nil
	}
	if err != nil {
		return err
	}

	surface := p.scheduler.Surface()
	if surface.Generation != p.surfaceGen {
		if err := p.refreshTransientPool(); err != nil {
			return err
		}
		p.surfaceGen = surface.Generation
	}

	if err := p.buildFrameData(deltaTime, ticket, surface); err != nil {
		return err
	}

	p.buildStageList()

	// Every Configure runs before any Execute so stages can exchange
	// per-frame state without ordering surprises.
	for i := range p.frameStages {
		rec := &p.frameStages[i]
		if !rec.stage.Active() {
			rec.skipped = true
			continue
		}
		if err := p.prepareStage(rec.stage); err != nil {
			core.LogError("stage %q resource creation failed, skipping: %s", rec.stage.Name(), err.Error())
			rec.skipped = true
			continue
		}
		if err := rec.stage.Configure(&p.frame); err != nil {
			core.LogError("stage %q configure failed, skipping: %s", rec.stage.Name(), err.Error())
			rec.skipped = true
		}
	}

	recorder := ticket.Recorder()
	recorder.SetViewport(surface.Width, surface.Height)
	for i := range p.frameStages {
		rec := &p.frameStages[i]
		if rec.skipped {
			continue
		}
		if err := rec.stage.Execute(recorder); err != nil {
			core.LogError("stage %q execute failed, skipping: %s", rec.stage.Name(), err.Error())
		}
	}

	return p.scheduler.EndFrame(ticket)
}

func (p *Pipeline) buildFrameData(deltaTime float64, ticket *FrameTicket, surface *SurfaceState) error {
	p.frame = metadata.FrameData{
		FrameNumber:   p.scheduler.FrameNumber(),
		DeltaTime:     deltaTime,
		SlotIndex:     ticket.SlotIndex,
		ImageIndex:    ticket.ImageIndex,
		SurfaceWidth:  surface.Width,
		SurfaceHeight: surface.Height,
		ColorTarget:   metadata.TargetCameraColor,
		DepthTarget:   metadata.TargetCameraDepth,
	}
	if surface.Height > 0 {
		p.frame.AspectRatio = float32(surface.Width) / float32(surface.Height)
	}
	if p.scene != nil {
		if err := p.scene.Collect(&p.frame); err != nil {
			return fmt.Errorf("pipeline: scene collect: %w", err)
		}
	}
	return nil
}

// buildStageList assembles this frame's flat stage list: built-ins at
// their sequence points, then feature stages at their events. The sort is
// stable, so stages sharing an event run in feature-installation order.
func (p *Pipeline) buildStageList() {
	p.frameStages = p.frameStages[:0]
	for _, stage := range p.builtins {
		if !p.builtinEnabled(stage.Event()) {
			continue
		}
		p.AddStage(stage)
	}
	p.features.AddStagesAll(p)
	sort.SliceStable(p.frameStages, func(i, j int) bool {
		return p.frameStages[i].event < p.frameStages[j].event
	})
}

func (p *Pipeline) builtinEnabled(event metadata.RenderPassEvent) bool {
	switch event {
	case eventStageShadows:
		return p.options.Shadows
	case eventStageSkybox:
		return p.options.Skybox
	case eventStageTransparents:
		return p.options.Transparents
	case eventStagePostProcess:
		return p.options.PostProcess
	default:
		return true
	}
}

// Shutdown drains the device and releases everything in reverse order of
// creation: features, stage resources, then both registries.
func (p *Pipeline) Shutdown() {
	if err := p.scheduler.device.WaitIdle(); err != nil {
		core.LogError("pipeline shutdown: wait idle: %s", err.Error())
	}
	p.features.DestroyAll()
	for stage := range p.prepared {
		stage.ReleaseResources(p)
		delete(p.prepared, stage)
	}
	destroy := func(_ metadata.ResourceDescriptor, resource interface{}) {
		if p.textures != nil && resource != nil {
			p.textures.DestroyTexture(resource)
		}
	}
	p.transient.ReleaseAll(destroy)
	p.persistent.ReleaseAll(destroy)
	p.tempBindings = nil
	p.frameStages = nil
}
