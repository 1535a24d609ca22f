package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting size.
	StartWidth  uint32 `toml:"start_width"`
	StartHeight uint32 `toml:"start_height"`
	// How many frames the CPU may record ahead of the GPU. Clamped to
	// [2, 3] by the backend.
	FramesInFlight int `toml:"frames_in_flight"`

	Pipeline PipelineConfig `toml:"pipeline"`
}

type PipelineConfig struct {
	// Named preset applied before the individual toggles; the toggles
	// then override whatever the preset chose.
	Preset string `toml:"preset"`

	Shadows      bool `toml:"shadows"`
	Skybox       bool `toml:"skybox"`
	Transparents bool `toml:"transparents"`
	PostProcess  bool `toml:"post_process"`

	Bloom     BloomConfig     `toml:"bloom"`
	DebugView DebugViewConfig `toml:"debug_view"`
}

type BloomConfig struct {
	Enabled   bool    `toml:"enabled"`
	Threshold float32 `toml:"threshold"`
	Intensity float32 `toml:"intensity"`
}

type DebugViewConfig struct {
	Enabled bool `toml:"enabled"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	cfg := &ApplicationConfig{
		Name:           "Lumen Application",
		StartPosX:      100,
		StartPosY:      100,
		StartWidth:     1280,
		StartHeight:    720,
		FramesInFlight: 2,
	}
	cfg.Pipeline.applyPreset("default")
	return cfg
}

// LoadApplicationConfig reads a TOML file over the defaults, so a config
// file only has to name what it changes.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	// The preset, if any, is applied first; explicit keys in the file win.
	var preset struct {
		Pipeline struct {
			Preset string `toml:"preset"`
		} `toml:"pipeline"`
	}
	if err := toml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if preset.Pipeline.Preset != "" {
		if err := cfg.Pipeline.applyPreset(preset.Pipeline.Preset); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (pc *PipelineConfig) applyPreset(name string) error {
	switch name {
	case "", "default":
		pc.Shadows = true
		pc.Skybox = true
		pc.Transparents = true
		pc.PostProcess = true
		pc.Bloom = BloomConfig{Enabled: false, Threshold: 1.0, Intensity: 0.8}
	case "minimal":
		// Opaques only; the cheapest thing that still presents.
		pc.Shadows = false
		pc.Skybox = false
		pc.Transparents = false
		pc.PostProcess = false
		pc.Bloom = BloomConfig{Enabled: false, Threshold: 1.0, Intensity: 0.8}
	case "full":
		pc.Shadows = true
		pc.Skybox = true
		pc.Transparents = true
		pc.PostProcess = true
		pc.Bloom = BloomConfig{Enabled: true, Threshold: 1.0, Intensity: 0.8}
		pc.DebugView.Enabled = true
	default:
		return fmt.Errorf("unknown pipeline preset %q", name)
	}
	pc.Preset = name
	return nil
}

// Options maps the config toggles onto the orchestrator's built-in
// stage switches.
func (pc *PipelineConfig) Options() renderer.PipelineOptions {
	return renderer.PipelineOptions{
		Shadows:      pc.Shadows,
		Skybox:       pc.Skybox,
		Transparents: pc.Transparents,
		PostProcess:  pc.PostProcess,
	}
}

// ConfigWatcher re-reads the config file whenever it changes on disk and
// hands the parsed result to the callback. Only the frame loop applies
// the changes, so the callback must be safe to call from the watcher
// goroutine; the engine just stashes the snapshot for the next frame.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

func WatchConfig(path string, onChange func(*ApplicationConfig)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory; editors replace files on save, which drops a
	// watch held on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		watcher: watcher,
		path:    path,
		done:    make(chan struct{}),
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := LoadApplicationConfig(path)
				if err != nil {
					core.LogWarn("config reload failed: %s", err.Error())
					continue
				}
				core.LogInfo("config reloaded from %s", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				core.LogWarn("config watcher: %s", err.Error())
			case <-cw.done:
				return
			}
		}
	}()

	return cw, nil
}

func (cw *ConfigWatcher) Close() error {
	close(cw.done)
	return cw.watcher.Close()
}
