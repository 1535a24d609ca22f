package engine

import (
	"fmt"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/platform"
	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/features"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

type Phase uint8

const (
	// Engine is in an uninitialized state
	PhaseUninitialized Phase = iota
	// Engine is currently initializing
	PhaseInitializing
	// Engine initialization is complete
	PhaseInitialized
	// Engine is currently running
	PhaseRunning
	// Engine is in the process of shutting down
	PhaseShuttingDown
)

type Engine struct {
	currentPhase Phase
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	platform *platform.Platform
	device   renderer.SurfaceDevice
	pipeline *renderer.Pipeline

	configWatcher *ConfigWatcher
	pendingConfig chan *ApplicationConfig

	width  uint32
	height uint32

	clock    *core.Clock
	lastTime float64
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if g.FnCreateDevice == nil {
		return nil, fmt.Errorf("engine: game provides no device factory")
	}

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentPhase:  PhaseUninitialized,
		gameInstance:  g,
		clock:         core.NewClock(),
		platform:      p,
		isRunning:     true,
		isSuspended:   false,
		width:         g.ApplicationConfig.StartWidth,
		height:        g.ApplicationConfig.StartHeight,
		pendingConfig: make(chan *ApplicationConfig, 1),
		lastTime:      0,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentPhase = PhaseInitializing
	cfg := e.gameInstance.ApplicationConfig

	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight); err != nil {
		return err
	}

	device, pipelines, textures, err := e.gameInstance.FnCreateDevice(e.platform, cfg.FramesInFlight)
	if err != nil {
		return err
	}
	e.device = device

	scheduler, err := renderer.NewFrameScheduler(device, e.platform.FramebufferSize)
	if err != nil {
		return err
	}

	e.pipeline = renderer.NewPipeline(scheduler, sceneAdapter{e.gameInstance}, pipelines, textures, cfg.Pipeline.Options())
	if err := e.installFeatures(&cfg.Pipeline, pipelines); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}

	if err := e.pipeline.Initialize(); err != nil {
		return err
	}

	e.currentPhase = PhaseInitialized
	return nil
}

// Pipeline exposes the orchestrator so games can install their own
// features from FnInitialize.
func (e *Engine) Pipeline() *renderer.Pipeline { return e.pipeline }

// WatchConfig enables hot reload of the pipeline toggles from the given
// TOML file. Snapshots are applied at the top of the next frame.
func (e *Engine) WatchConfig(path string) error {
	watcher, err := WatchConfig(path, func(cfg *ApplicationConfig) {
		select {
		case e.pendingConfig <- cfg:
		default:
			// A newer snapshot is already queued; drop this one.
		}
	})
	if err != nil {
		return err
	}
	e.configWatcher = watcher
	return nil
}

func (e *Engine) installFeatures(pc *PipelineConfig, pipelines renderer.PipelineProvider) error {
	fm := e.pipeline.Features()
	if pc.Bloom.Enabled {
		if err := fm.Add(features.NewBloom(pipelines, pc.Bloom.Threshold, pc.Bloom.Intensity)); err != nil {
			return err
		}
	}
	if pc.DebugView.Enabled {
		if err := fm.Add(features.NewDebugView(pipelines)); err != nil {
			return err
		}
	}
	return nil
}

// applyConfig folds a reloaded config snapshot into the running
// pipeline: feature activation only, nothing structural.
func (e *Engine) applyConfig(cfg *ApplicationConfig) {
	fm := e.pipeline.Features()
	if bloom, ok := fm.Find("bloom").(*features.Bloom); ok && bloom != nil {
		bloom.SetActive(cfg.Pipeline.Bloom.Enabled)
		bloom.SetIntensity(cfg.Pipeline.Bloom.Intensity)
	}
	if dv, ok := fm.Find("debug-view").(*features.DebugView); ok && dv != nil {
		dv.SetActive(cfg.Pipeline.DebugView.Enabled)
	}
	e.gameInstance.ApplicationConfig.Pipeline = cfg.Pipeline
}

func (e *Engine) Run() error {
	e.currentPhase = PhaseRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()
		core.ProcessEvents()

		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}

		select {
		case cfg := <-e.pendingConfig:
			e.applyConfig(cfg)
		default:
		}

		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogFatal("game update failed, shutting down: %s", err.Error())
				e.isRunning = false
				break
			}
		}

		if err := e.pipeline.DrawFrame(delta); err != nil {
			core.LogError("draw frame failed, shutting down: %s", err.Error())
			e.isRunning = false
			break
		}

		core.MetricsUpdate(delta)
		e.lastTime = currentTime
	}

	return e.Shutdown()
}

func (e *Engine) Shutdown() error {
	if e.currentPhase == PhaseShuttingDown {
		return nil
	}
	e.currentPhase = PhaseShuttingDown
	e.isRunning = false

	if e.configWatcher != nil {
		if err := e.configWatcher.Close(); err != nil {
			core.LogWarn("config watcher close: %s", err.Error())
		}
		e.configWatcher = nil
	}
	if e.pipeline != nil {
		e.pipeline.Shutdown()
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
	}
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event payload associated with the event type `%d`", context.Type)
		return
	}

	width := se.WindowWidth
	height := se.WindowHeight
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height
	core.LogDebug("window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	// The scheduler rebuilds the surface at the top of the next frame,
	// pulling the authoritative size from the platform.
	e.pipeline.Scheduler().Invalidate()
}

// sceneAdapter lets a Game's collect hook stand in as the pipeline's
// scene provider.
type sceneAdapter struct {
	game *Game
}

func (s sceneAdapter) Collect(frame *metadata.FrameData) error {
	if s.game.FnCollect == nil {
		return nil
	}
	return s.game.FnCollect(frame)
}
