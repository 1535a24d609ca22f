package renderer

import (
	"errors"
	"fmt"

	"github.com/lumengine/lumen/engine/core"
)

// FrameTicket is the loan of a frame slot between BeginFrame and
// EndFrame. It names the slot whose resources the frame may touch and
// the swapchain image the frame will render into.
type FrameTicket struct {
	SlotIndex  int
	ImageIndex uint32
	recorder   CommandRecorder
}

func (t *FrameTicket) Recorder() CommandRecorder { return t.recorder }

// FrameScheduler paces CPU recording against GPU consumption with N
// frames in flight. The wait on the slot's fence in BeginFrame is the
// only place a frame blocks; everything after it runs unthrottled.
//
// Surface loss is handled in one place: both a stale acquire and a stale
// present funnel into rebuildSurface, the same procedure initial
// bring-up uses. A stale present only marks the surface dirty; the
// rebuild happens at the top of the next BeginFrame so the in-flight
// frame's work is never torn down under it.
type FrameScheduler struct {
	device      SurfaceDevice
	surfaceSize func() (uint32, uint32)

	frames         int
	current        int
	frameNumber    uint64
	surface        *SurfaceState
	generation     uint64
	pendingRebuild bool
}

// NewFrameScheduler builds the initial surface through the same rebuild
// path later invalidations use. surfaceSize must report the authoritative
// window framebuffer size; it is consulted on every rebuild.
func NewFrameScheduler(device SurfaceDevice, surfaceSize func() (uint32, uint32)) (*FrameScheduler, error) {
	if device.FramesInFlight() < 1 {
		return nil, fmt.Errorf("frame scheduler: frames in flight must be at least 1, got %d", device.FramesInFlight())
	}
	s := &FrameScheduler{
		device:      device,
		surfaceSize: surfaceSize,
		frames:      device.FramesInFlight(),
	}
	if err := s.rebuildSurface(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FrameScheduler) Surface() *SurfaceState { return s.surface }
func (s *FrameScheduler) FrameNumber() uint64    { return s.frameNumber }
func (s *FrameScheduler) CurrentSlot() int       { return s.current }

// Invalidate marks the surface stale so the next BeginFrame rebuilds it.
// Called on window resize; the swapchain would report out-of-date on its
// own eventually, but reacting to the event avoids a wasted acquire.
func (s *FrameScheduler) Invalidate() {
	s.pendingRebuild = true
}

// BeginFrame blocks until the slot's previous submission has completed,
// then acquires the next presentable image. A core.ErrSurfaceOutOfDate
// return means the frame is skipped: the surface was rebuilt (or a stale
// acquire triggered a rebuild) and the caller should simply try again
// next frame. Any other error is device-fatal.
func (s *FrameScheduler) BeginFrame() (*FrameTicket, error) {
	if s.pendingRebuild {
		s.pendingRebuild = false
		if err := s.rebuildSurface(); err != nil {
			return nil, err
		}
		s.skipFrame()
		return nil, core.ErrSurfaceOutOfDate
	}

	if err := s.device.WaitForFrame(s.current); err != nil {
		return nil, fmt.Errorf("frame scheduler: wait on slot %d: %w", s.current, err)
	}

	imageIndex, err := s.device.AcquireNextImage(s.current)
	if errors.Is(err, core.ErrSurfaceOutOfDate) {
		if rerr := s.rebuildSurface(); rerr != nil {
			return nil, rerr
		}
		s.skipFrame()
		return nil, core.ErrSurfaceOutOfDate
	}
	if err != nil {
		return nil, fmt.Errorf("frame scheduler: acquire on slot %d: %w", s.current, err)
	}

	// The slot's previous work is confirmed complete; only now is it safe
	// to recycle its fence and recorder.
	if err := s.device.ResetFrame(s.current); err != nil {
		return nil, fmt.Errorf("frame scheduler: reset slot %d: %w", s.current, err)
	}

	return &FrameTicket{
		SlotIndex:  s.current,
		ImageIndex: imageIndex,
		recorder:   s.device.Recorder(s.current),
	}, nil
}

// EndFrame submits the recorded work and queues the image for present.
// An out-of-date present is not an error: the frame completed, and the
// rebuild is deferred to the next BeginFrame.
func (s *FrameScheduler) EndFrame(ticket *FrameTicket) error {
	if err := s.device.Submit(ticket.SlotIndex, ticket.ImageIndex); err != nil {
		return fmt.Errorf("frame scheduler: submit slot %d: %w", ticket.SlotIndex, err)
	}
	err := s.device.Present(ticket.SlotIndex, ticket.ImageIndex)
	if errors.Is(err, core.ErrSurfaceOutOfDate) {
		core.LogDebug("present reported stale surface, rebuild deferred to next frame")
		s.pendingRebuild = true
	} else if err != nil {
		return fmt.Errorf("frame scheduler: present slot %d: %w", ticket.SlotIndex, err)
	}
	s.advance()
	return nil
}

// skipFrame advances pacing without a submission. The slot's fence was
// not consumed, so the eventual wait on it returns immediately.
func (s *FrameScheduler) skipFrame() {
	s.advance()
}

func (s *FrameScheduler) advance() {
	s.current = (s.current + 1) % s.frames
	s.frameNumber++
}

// rebuildSurface is the single teardown-and-rebuild path, shared by
// initial bring-up, stale acquires, stale presents and resize events.
// The device is drained first so nothing in flight references the
// surface being destroyed.
func (s *FrameScheduler) rebuildSurface() error {
	if err := s.device.WaitIdle(); err != nil {
		return fmt.Errorf("frame scheduler: wait idle before rebuild: %w", err)
	}
	if s.surface != nil {
		if err := s.device.TeardownSurface(); err != nil {
			return fmt.Errorf("frame scheduler: surface teardown: %w", err)
		}
	}
	width, height := s.surfaceSize()
	state, err := s.device.BuildSurface(width, height)
	if err != nil {
		return fmt.Errorf("frame scheduler: surface build %dx%d: %w", width, height, err)
	}
	s.generation++
	state.Generation = s.generation
	s.surface = state
	core.LogInfo("surface ready: %dx%d, %d images, generation %d", state.Width, state.Height, state.ImageCount, state.Generation)
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_DEFAULT_RENDERTARGET_REFRESH_REQUIRED})
	return nil
}
