package core

import (
	"errors"
)

var (
	// ErrSurfaceOutOfDate signals that the presentable surface was invalidated
	// (resize, rotation) and has been rebuilt; the current frame is skipped.
	ErrSurfaceOutOfDate = errors.New("surface out of date, frame skipped")
	// ErrDeviceLost is fatal: the render loop must be torn down by the host.
	ErrDeviceLost  = errors.New("graphics device lost")
	ErrStaleHandle = errors.New("stale resource handle")
	ErrUnknown     = errors.New("unknown")
)
