package renderer

import (
	"fmt"

	"github.com/lumengine/lumen/engine/core"
)

// RenderFeature is an activatable bundle of stages. Create runs once when
// the feature is initialized, AddStages is called every frame to enqueue
// the feature's stages for the frame being built, and Destroy runs once
// on removal or shutdown.
type RenderFeature interface {
	Name() string
	Create() error
	AddStages(p *Pipeline)
	Destroy() error
}

// FeatureBase holds the name and activation flag shared by features.
type FeatureBase struct {
	name   string
	active bool
}

func NewFeatureBase(name string) FeatureBase {
	return FeatureBase{name: name, active: true}
}

func (f *FeatureBase) Name() string          { return f.name }
func (f *FeatureBase) Active() bool          { return f.active }
func (f *FeatureBase) SetActive(active bool) { f.active = active }

type featureEntry struct {
	feature     RenderFeature
	initialized bool
}

// FeatureManager keeps the installed features in insertion order. Order
// matters: two stages scheduled at the same event execute in the order
// their features were added.
type FeatureManager struct {
	entries []featureEntry
}

func NewFeatureManager() *FeatureManager {
	return &FeatureManager{}
}

// Add installs the feature at the end of the order. Names are unique;
// adding a duplicate is rejected.
func (fm *FeatureManager) Add(feature RenderFeature) error {
	if feature == nil {
		return fmt.Errorf("feature manager: nil feature")
	}
	if fm.Find(feature.Name()) != nil {
		return fmt.Errorf("feature manager: feature %q already installed", feature.Name())
	}
	fm.entries = append(fm.entries, featureEntry{feature: feature})
	return nil
}

// Remove uninstalls the feature, destroying it if it was initialized.
// The relative order of the remaining features is preserved.
func (fm *FeatureManager) Remove(name string) error {
	for i := range fm.entries {
		if fm.entries[i].feature.Name() != name {
			continue
		}
		if fm.entries[i].initialized {
			if err := fm.entries[i].feature.Destroy(); err != nil {
				core.LogError("feature %q destroy failed: %s", name, err.Error())
			}
		}
		fm.entries = append(fm.entries[:i], fm.entries[i+1:]...)
		return nil
	}
	return fmt.Errorf("feature manager: feature %q not installed", name)
}

func (fm *FeatureManager) Find(name string) RenderFeature {
	for i := range fm.entries {
		if fm.entries[i].feature.Name() == name {
			return fm.entries[i].feature
		}
	}
	return nil
}

func (fm *FeatureManager) Len() int {
	return len(fm.entries)
}

// InitializeAll creates every feature that has not been created yet. A
// feature that fails to create is removed and reported; the rest keep
// going.
func (fm *FeatureManager) InitializeAll() error {
	var firstErr error
	kept := fm.entries[:0]
	for i := range fm.entries {
		entry := fm.entries[i]
		if !entry.initialized {
			if err := entry.feature.Create(); err != nil {
				core.LogError("feature %q failed to initialize: %s", entry.feature.Name(), err.Error())
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			entry.initialized = true
		}
		kept = append(kept, entry)
	}
	fm.entries = kept
	return firstErr
}

// AddStagesAll asks every initialized feature to enqueue its stages for
// the frame under construction.
func (fm *FeatureManager) AddStagesAll(p *Pipeline) {
	for i := range fm.entries {
		if fm.entries[i].initialized {
			fm.entries[i].feature.AddStages(p)
		}
	}
}

// DestroyAll tears features down in reverse installation order.
func (fm *FeatureManager) DestroyAll() {
	for i := len(fm.entries) - 1; i >= 0; i-- {
		if fm.entries[i].initialized {
			if err := fm.entries[i].feature.Destroy(); err != nil {
				core.LogError("feature %q destroy failed: %s", fm.entries[i].feature.Name(), err.Error())
			}
		}
	}
	fm.entries = nil
}
