package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureManagerAddRejectsDuplicates(t *testing.T) {
	fm := NewFeatureManager()

	require.NoError(t, fm.Add(newProbeFeature("bloom")))
	assert.Error(t, fm.Add(newProbeFeature("bloom")))
	assert.Error(t, fm.Add(nil))
	assert.Equal(t, 1, fm.Len())
}

func TestFeatureManagerFind(t *testing.T) {
	fm := NewFeatureManager()
	bloom := newProbeFeature("bloom")
	require.NoError(t, fm.Add(bloom))

	assert.Equal(t, RenderFeature(bloom), fm.Find("bloom"))
	assert.Nil(t, fm.Find("ssao"))
}

func TestFeatureManagerRemovePreservesOrder(t *testing.T) {
	fm := NewFeatureManager()
	a := newProbeFeature("a")
	b := newProbeFeature("b")
	c := newProbeFeature("c")
	require.NoError(t, fm.Add(a))
	require.NoError(t, fm.Add(b))
	require.NoError(t, fm.Add(c))
	require.NoError(t, fm.InitializeAll())

	require.NoError(t, fm.Remove("b"))
	assert.Equal(t, 1, b.destroyed, "an initialized feature is destroyed on removal")
	assert.Error(t, fm.Remove("b"), "already removed")

	// Remaining features keep their relative order.
	var journal []string
	a.journal = &journal
	c.journal = &journal
	fm.DestroyAll()
	assert.Equal(t, []string{"destroy:c", "destroy:a"}, journal)
}

func TestFeatureManagerRemoveUninitializedSkipsDestroy(t *testing.T) {
	fm := NewFeatureManager()
	f := newProbeFeature("fx")
	require.NoError(t, fm.Add(f))

	require.NoError(t, fm.Remove("fx"))
	assert.Equal(t, 0, f.destroyed)
}

func TestFeatureManagerInitializeAllCreatesOnce(t *testing.T) {
	fm := NewFeatureManager()
	f := newProbeFeature("fx")
	require.NoError(t, fm.Add(f))

	require.NoError(t, fm.InitializeAll())
	require.NoError(t, fm.InitializeAll())
	assert.Equal(t, 1, f.created)
}

func TestFeatureManagerInitializeAllDropsFailures(t *testing.T) {
	fm := NewFeatureManager()
	good := newProbeFeature("good")
	bad := newProbeFeature("bad")
	bad.createErr = errors.New("no device memory")
	require.NoError(t, fm.Add(bad))
	require.NoError(t, fm.Add(good))

	err := fm.InitializeAll()
	assert.ErrorIs(t, err, bad.createErr)

	// The failed feature is uninstalled; the rest survive.
	assert.Equal(t, 1, fm.Len())
	assert.Nil(t, fm.Find("bad"))
	assert.NotNil(t, fm.Find("good"))
	assert.Equal(t, 1, good.created)
}

func TestFeatureManagerDestroyAllRunsInReverse(t *testing.T) {
	fm := NewFeatureManager()
	var journal []string
	a := newProbeFeature("a")
	a.journal = &journal
	b := newProbeFeature("b")
	b.journal = &journal
	require.NoError(t, fm.Add(a))
	require.NoError(t, fm.Add(b))
	require.NoError(t, fm.InitializeAll())

	fm.DestroyAll()

	assert.Equal(t, []string{"destroy:b", "destroy:a"}, journal)
	assert.Equal(t, 0, fm.Len())
}
