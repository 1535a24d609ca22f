package renderer

import (
	"fmt"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

type resourceSlot struct {
	descriptor metadata.ResourceDescriptor
	resource   interface{}
	generation uint32
	inUse      bool
}

// ResourceRegistry owns every GPU-resident resource and hands out
// generation-stamped handles for them. Released slots are reused
// first-fit; the generation is bumped when a slot is reallocated, not
// when it is released. Invalidation is therefore lazy: a handle to a
// released slot keeps resolving until something new moves in, at which
// point the generation mismatch retires it. Callers must treat "handle
// becomes invalid only after the next allocation into that slot" as the
// contract, not release time.
//
// The registry is the only writer of slot metadata and is confined to
// the render thread.
type ResourceRegistry struct {
	slots []resourceSlot
}

func NewResourceRegistry(initialCapacity int) *ResourceRegistry {
	return &ResourceRegistry{
		slots: make([]resourceSlot, 0, initialCapacity),
	}
}

// Allocate stores resource under desc and returns a handle stamped with
// the slot's generation. The lowest-index free slot is reused before the
// backing array grows; reuse is what bumps the generation and retires
// every handle minted for the slot's previous occupant. A fresh slot
// starts at generation 0.
func (r *ResourceRegistry) Allocate(desc metadata.ResourceDescriptor, resource interface{}) (metadata.Handle, error) {
	if err := desc.Validate(); err != nil {
		return metadata.NilHandle, err
	}
	for i := range r.slots {
		if r.slots[i].inUse {
			continue
		}
		r.slots[i].generation++
		r.slots[i].descriptor = desc
		r.slots[i].resource = resource
		r.slots[i].inUse = true
		return metadata.NewHandle(uint32(i), r.slots[i].generation), nil
	}
	r.slots = append(r.slots, resourceSlot{
		descriptor: desc,
		resource:   resource,
		inUse:      true,
	})
	return metadata.NewHandle(uint32(len(r.slots)-1), 0), nil
}

// Release marks the slot free for reuse. It does not clear the slot or
// touch the generation; handles minted for the occupant stay resolvable
// until the slot is reallocated. Releasing an already-free or stale
// handle is reported, never fatal.
func (r *ResourceRegistry) Release(handle metadata.Handle) error {
	if handle.IsNil() || int(handle.Index) >= len(r.slots) {
		return fmt.Errorf("release of handle %d.%d: %w", handle.Index, handle.Generation, core.ErrStaleHandle)
	}
	slot := &r.slots[handle.Index]
	if slot.generation != handle.Generation || !slot.inUse {
		return fmt.Errorf("release of handle %d.%d: %w", handle.Index, handle.Generation, core.ErrStaleHandle)
	}
	slot.inUse = false
	return nil
}

// Resolve returns the resource the handle was minted for, or
// core.ErrStaleHandle once the slot has been recycled. Callers treat a
// stale resolution as "nothing to draw", never a crash.
func (r *ResourceRegistry) Resolve(handle metadata.Handle) (interface{}, error) {
	if !r.IsValid(handle) {
		return nil, core.ErrStaleHandle
	}
	return r.slots[handle.Index].resource, nil
}

// Descriptor returns the descriptor the resource was allocated with.
func (r *ResourceRegistry) Descriptor(handle metadata.Handle) (metadata.ResourceDescriptor, error) {
	if !r.IsValid(handle) {
		return metadata.ResourceDescriptor{}, core.ErrStaleHandle
	}
	return r.slots[handle.Index].descriptor, nil
}

// IsValid reports whether the handle still refers to its slot: the index
// is in range and the generation matches. A released slot passes until
// reallocation bumps its generation (the lazy-invalidation contract).
func (r *ResourceRegistry) IsValid(handle metadata.Handle) bool {
	if handle.IsNil() || int(handle.Index) >= len(r.slots) {
		return false
	}
	return r.slots[handle.Index].generation == handle.Generation
}

// Live counts slots currently in use.
func (r *ResourceRegistry) Live() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].inUse {
			n++
		}
	}
	return n
}

// ReleaseAll tears down every slot, invoking destroy for each live
// resource. Unlike Release this bumps the generation eagerly: the pool's
// contents are destroyed, so outstanding handles must stop resolving
// immediately rather than lazily. Used for the transient pool on surface
// rebuild and for both pools at shutdown.
func (r *ResourceRegistry) ReleaseAll(destroy func(desc metadata.ResourceDescriptor, resource interface{})) {
	for i := range r.slots {
		if r.slots[i].inUse && destroy != nil {
			destroy(r.slots[i].descriptor, r.slots[i].resource)
		}
		r.slots[i].generation++
		r.slots[i].resource = nil
		r.slots[i].inUse = false
	}
}
