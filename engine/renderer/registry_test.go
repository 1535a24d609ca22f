package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

func textureDesc(name string) metadata.ResourceDescriptor {
	return metadata.TextureResource(metadata.NewTextureDescriptor(name, 64, 64))
}

func bufferDesc(name string) metadata.ResourceDescriptor {
	return metadata.BufferResource(&metadata.BufferDescriptor{
		Name:  name,
		Size:  256,
		Usage: metadata.BufferUsageVertex,
	})
}

func TestRegistryAllocateGrowsWithFreshGenerations(t *testing.T) {
	r := NewResourceRegistry(4)

	for i := 0; i < 16; i++ {
		h, err := r.Allocate(textureDesc("tex"), i)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), h.Index)
		assert.Equal(t, uint32(0), h.Generation)
	}
	assert.Equal(t, 16, r.Live())
}

func TestRegistryReuseBumpsGeneration(t *testing.T) {
	r := NewResourceRegistry(4)

	a, err := r.Allocate(textureDesc("a"), "a")
	require.NoError(t, err)
	b, err := r.Allocate(textureDesc("b"), "b")
	require.NoError(t, err)

	require.NoError(t, r.Release(a))

	// Lowest free slot is reused first, even across resource kinds.
	c, err := r.Allocate(bufferDesc("c"), "c")
	require.NoError(t, err)
	assert.Equal(t, a.Index, c.Index)
	assert.Equal(t, uint32(1), c.Generation)

	// The recycled slot retires the old handle.
	assert.False(t, r.IsValid(a))
	assert.True(t, r.IsValid(b))
	assert.True(t, r.IsValid(c))

	_, err = r.Resolve(a)
	assert.ErrorIs(t, err, core.ErrStaleHandle)

	res, err := r.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, "c", res)

	desc, err := r.Descriptor(c)
	require.NoError(t, err)
	assert.Equal(t, metadata.ResourceKindBuffer, desc.Kind)
}

func TestRegistryReleasedHandleResolvesUntilReuse(t *testing.T) {
	r := NewResourceRegistry(4)

	h, err := r.Allocate(textureDesc("tex"), "payload")
	require.NoError(t, err)
	require.NoError(t, r.Release(h))

	// Release does not invalidate; only reallocation of the slot does.
	assert.True(t, r.IsValid(h))
	res, err := r.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "payload", res)
	assert.Equal(t, 0, r.Live())

	_, err = r.Allocate(textureDesc("next"), "next")
	require.NoError(t, err)
	assert.False(t, r.IsValid(h))
}

func TestRegistryReleaseErrors(t *testing.T) {
	r := NewResourceRegistry(4)

	h, err := r.Allocate(textureDesc("tex"), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		handle metadata.Handle
	}{
		{"nil handle", metadata.NilHandle},
		{"index out of range", metadata.NewHandle(99, 0)},
		{"generation mismatch", metadata.NewHandle(h.Index, h.Generation+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.Release(tt.handle), core.ErrStaleHandle)
		})
	}

	require.NoError(t, r.Release(h))
	assert.ErrorIs(t, r.Release(h), core.ErrStaleHandle, "double release")
}

func TestRegistryAllocateRejectsInvalidDescriptor(t *testing.T) {
	r := NewResourceRegistry(4)

	_, err := r.Allocate(metadata.ResourceDescriptor{}, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, r.Live())
}

func TestRegistryReleaseAllDestroysAndRetires(t *testing.T) {
	r := NewResourceRegistry(4)

	a, err := r.Allocate(textureDesc("a"), "a")
	require.NoError(t, err)
	b, err := r.Allocate(textureDesc("b"), "b")
	require.NoError(t, err)
	require.NoError(t, r.Release(b))

	var destroyed []interface{}
	r.ReleaseAll(func(_ metadata.ResourceDescriptor, resource interface{}) {
		destroyed = append(destroyed, resource)
	})

	// Only the live slot is destroyed, but every handle is retired.
	assert.Equal(t, []interface{}{"a"}, destroyed)
	assert.False(t, r.IsValid(a))
	assert.False(t, r.IsValid(b))
	assert.Equal(t, 0, r.Live())
}
