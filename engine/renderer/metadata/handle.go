package metadata

// InvalidID marks an unset index in any of the renderer's pools.
const InvalidID = ^uint32(0)

// Handle identifies a pooled GPU resource slot by (index, generation).
// A handle is valid only while its generation matches the slot's current
// generation; the slot generation is bumped every time the slot is recycled,
// so a handle captured before recycling fails validity checks afterward.
type Handle struct {
	Index      uint32
	Generation uint32
}

// NilHandle is the zero-value "points at nothing" handle.
var NilHandle = Handle{Index: InvalidID, Generation: 0}

func NewHandle(index, generation uint32) Handle {
	return Handle{Index: index, Generation: generation}
}

// IsNil reports whether the handle was never assigned a slot. It says
// nothing about staleness; ask the owning registry for that.
func (h Handle) IsNil() bool {
	return h.Index == InvalidID
}

// Key packs the handle into a single integer, usable as a map key.
func (h Handle) Key() uint64 {
	return uint64(h.Generation)<<32 | uint64(h.Index)
}

func HandleFromKey(key uint64) Handle {
	return Handle{
		Index:      uint32(key & 0xFFFFFFFF),
		Generation: uint32(key >> 32),
	}
}
