package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lumen.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultApplicationConfig(t *testing.T) {
	cfg := DefaultApplicationConfig()

	assert.Equal(t, uint32(1280), cfg.StartWidth)
	assert.Equal(t, uint32(720), cfg.StartHeight)
	assert.Equal(t, 2, cfg.FramesInFlight)
	assert.Equal(t, "default", cfg.Pipeline.Preset)
	assert.True(t, cfg.Pipeline.Shadows)
	assert.False(t, cfg.Pipeline.Bloom.Enabled)
}

func TestLoadApplicationConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
name = "Sample"
start_width = 1920
start_height = 1080

[pipeline]
shadows = false

[pipeline.bloom]
enabled = true
threshold = 1.5
`)
	cfg, err := LoadApplicationConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Sample", cfg.Name)
	assert.Equal(t, uint32(1920), cfg.StartWidth)
	assert.False(t, cfg.Pipeline.Shadows)
	assert.True(t, cfg.Pipeline.Skybox, "untouched defaults survive")
	assert.True(t, cfg.Pipeline.Bloom.Enabled)
	assert.Equal(t, float32(1.5), cfg.Pipeline.Bloom.Threshold)
	assert.Equal(t, float32(0.8), cfg.Pipeline.Bloom.Intensity)
}

func TestLoadApplicationConfigPresetThenOverrides(t *testing.T) {
	path := writeConfig(t, `
[pipeline]
preset = "minimal"
skybox = true
`)
	cfg, err := LoadApplicationConfig(path)
	require.NoError(t, err)

	// The preset applies first; explicit keys in the file win over it.
	assert.False(t, cfg.Pipeline.Shadows)
	assert.True(t, cfg.Pipeline.Skybox)
	assert.False(t, cfg.Pipeline.PostProcess)
}

func TestLoadApplicationConfigFullPreset(t *testing.T) {
	path := writeConfig(t, `
[pipeline]
preset = "full"
`)
	cfg, err := LoadApplicationConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Pipeline.Bloom.Enabled)
	assert.True(t, cfg.Pipeline.DebugView.Enabled)
}

func TestLoadApplicationConfigErrors(t *testing.T) {
	_, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadApplicationConfig(writeConfig(t, `[pipeline
broken`))
	assert.Error(t, err)

	_, err = LoadApplicationConfig(writeConfig(t, `
[pipeline]
preset = "ultra"
`))
	assert.Error(t, err)
}

func TestPipelineConfigOptions(t *testing.T) {
	var pc PipelineConfig
	require.NoError(t, pc.applyPreset("minimal"))

	opts := pc.Options()
	assert.False(t, opts.Shadows)
	assert.False(t, opts.Skybox)
	assert.False(t, opts.Transparents)
	assert.False(t, opts.PostProcess)
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, `name = "Before"`)

	reloaded := make(chan *ApplicationConfig, 4)
	cw, err := WatchConfig(path, func(cfg *ApplicationConfig) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer cw.Close()

	require.NoError(t, os.WriteFile(path, []byte(`name = "After"`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "After", cfg.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}

func TestWatchConfigIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumen.toml")
	require.NoError(t, os.WriteFile(path, []byte(`name = "Keep"`), 0o644))

	reloaded := make(chan *ApplicationConfig, 4)
	cw, err := WatchConfig(path, func(cfg *ApplicationConfig) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer cw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("sibling file change should not trigger a reload")
	case <-time.After(250 * time.Millisecond):
	}
}
