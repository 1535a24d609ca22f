package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// fakeDevice scripts SurfaceDevice responses and records every call in
// order so tests can assert on sequencing, not just outcomes.
type fakeDevice struct {
	frames     int
	imageCount uint32
	nextImage  uint32

	acquireErrs []error
	presentErrs []error
	buildErr    error

	calls    []string
	built    []SurfaceState
	recorder *recordingRecorder
}

func newFakeDevice(frames int) *fakeDevice {
	return &fakeDevice{frames: frames, imageCount: 3, recorder: &recordingRecorder{}}
}

func (d *fakeDevice) record(call string) { d.calls = append(d.calls, call) }

func (d *fakeDevice) FramesInFlight() int { return d.frames }

func (d *fakeDevice) WaitForFrame(slot int) error {
	d.record("wait")
	return nil
}

func (d *fakeDevice) ResetFrame(slot int) error {
	d.record("reset")
	return nil
}

func (d *fakeDevice) AcquireNextImage(slot int) (uint32, error) {
	d.record("acquire")
	if len(d.acquireErrs) > 0 {
		err := d.acquireErrs[0]
		d.acquireErrs = d.acquireErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	image := d.nextImage
	d.nextImage = (d.nextImage + 1) % d.imageCount
	return image, nil
}

func (d *fakeDevice) Recorder(slot int) CommandRecorder { return d.recorder }

func (d *fakeDevice) Submit(slot int, imageIndex uint32) error {
	d.record("submit")
	return nil
}

func (d *fakeDevice) Present(slot int, imageIndex uint32) error {
	d.record("present")
	if len(d.presentErrs) > 0 {
		err := d.presentErrs[0]
		d.presentErrs = d.presentErrs[1:]
		return err
	}
	return nil
}

func (d *fakeDevice) TeardownSurface() error {
	d.record("teardown")
	return nil
}

func (d *fakeDevice) BuildSurface(width, height uint32) (*SurfaceState, error) {
	d.record("build")
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	state := SurfaceState{Width: width, Height: height, ImageCount: d.imageCount}
	d.built = append(d.built, state)
	return &state, nil
}

func (d *fakeDevice) WaitIdle() error {
	d.record("waitidle")
	return nil
}

// recordingRecorder counts recorded commands; used by scheduler and
// pipeline tests alike.
type recordingRecorder struct {
	passes    []metadata.RenderTargetID
	pipelines int
	draws     int
	passErr   error
}

func (r *recordingRecorder) BeginRenderPass(color, depth metadata.RenderTargetID) error {
	if r.passErr != nil {
		return r.passErr
	}
	r.passes = append(r.passes, color)
	return nil
}

func (r *recordingRecorder) EndRenderPass() {}

func (r *recordingRecorder) BindPipeline(ps PipelineState) error {
	r.pipelines++
	return nil
}

func (r *recordingRecorder) SetViewport(width, height uint32)          {}
func (r *recordingRecorder) BindVertexBuffer(buffer interface{}) error { return nil }
func (r *recordingRecorder) BindIndexBuffer(buffer interface{}) error  { return nil }

func (r *recordingRecorder) Draw(vertexCount uint32)       { r.draws++ }
func (r *recordingRecorder) DrawIndexed(indexCount uint32) { r.draws++ }
func (r *recordingRecorder) DrawFullScreen()               { r.draws++ }

func (r *recordingRecorder) Dispatch(groupsX, groupsY, groupsZ uint32) {}

func fixedSize(width, height uint32) func() (uint32, uint32) {
	return func() (uint32, uint32) { return width, height }
}

func TestSchedulerBringUpBuildsSurface(t *testing.T) {
	device := newFakeDevice(2)
	s, err := NewFrameScheduler(device, fixedSize(1280, 720))
	require.NoError(t, err)

	surface := s.Surface()
	require.NotNil(t, surface)
	assert.Equal(t, uint32(1280), surface.Width)
	assert.Equal(t, uint32(720), surface.Height)
	assert.Equal(t, uint64(1), surface.Generation)

	// Bring-up drains the device but has no previous surface to tear down.
	assert.Equal(t, []string{"waitidle", "build"}, device.calls)
}

func TestSchedulerRejectsZeroFramesInFlight(t *testing.T) {
	device := newFakeDevice(0)
	_, err := NewFrameScheduler(device, fixedSize(1, 1))
	assert.Error(t, err)
}

func TestSchedulerFrameSequence(t *testing.T) {
	device := newFakeDevice(2)
	s, err := NewFrameScheduler(device, fixedSize(800, 600))
	require.NoError(t, err)
	device.calls = nil

	ticket, err := s.BeginFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, ticket.SlotIndex)
	require.NotNil(t, ticket.Recorder())

	// The fence is recycled only after the wait confirmed completion.
	assert.Equal(t, []string{"wait", "acquire", "reset"}, device.calls)

	require.NoError(t, s.EndFrame(ticket))
	assert.Equal(t, []string{"wait", "acquire", "reset", "submit", "present"}, device.calls)
	assert.Equal(t, uint64(1), s.FrameNumber())
	assert.Equal(t, 1, s.CurrentSlot())
}

func TestSchedulerSlotRotation(t *testing.T) {
	device := newFakeDevice(2)
	s, err := NewFrameScheduler(device, fixedSize(800, 600))
	require.NoError(t, err)

	for frame := 0; frame < 6; frame++ {
		ticket, err := s.BeginFrame()
		require.NoError(t, err)
		assert.Equal(t, frame%2, ticket.SlotIndex)
		require.NoError(t, s.EndFrame(ticket))
	}
	assert.Equal(t, uint64(6), s.FrameNumber())
}

func TestSchedulerStaleAcquireSkipsFrameAndRebuilds(t *testing.T) {
	device := newFakeDevice(2)
	s, err := NewFrameScheduler(device, fixedSize(800, 600))
	require.NoError(t, err)
	device.calls = nil
	device.acquireErrs = []error{core.ErrSurfaceOutOfDate}

	ticket, err := s.BeginFrame()
	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, core.ErrSurfaceOutOfDate)

	// The stale acquire funnels into the same teardown-and-rebuild path.
	assert.Equal(t, []string{"wait", "acquire", "waitidle", "teardown", "build"}, device.calls)

	// Pacing advances even though the frame was skipped.
	assert.Equal(t, uint64(1), s.FrameNumber())
	assert.Equal(t, 1, s.CurrentSlot())
	assert.Equal(t, uint64(2), s.Surface().Generation)

	// The next frame proceeds normally against the fresh surface.
	ticket, err = s.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, s.EndFrame(ticket))
}

func TestSchedulerStalePresentDefersRebuild(t *testing.T) {
	device := newFakeDevice(2)
	s, err := NewFrameScheduler(device, fixedSize(800, 600))
	require.NoError(t, err)
	device.presentErrs = []error{core.ErrSurfaceOutOfDate}

	ticket, err := s.BeginFrame()
	require.NoError(t, err)

	// A stale present is not an error; the frame's work completed.
	require.NoError(t, s.EndFrame(ticket))
	assert.Equal(t, uint64(1), s.Surface().Generation, "rebuild must not happen inside EndFrame")

	device.calls = nil
	ticket, err = s.BeginFrame()
	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, core.ErrSurfaceOutOfDate)
	assert.Equal(t, []string{"waitidle", "teardown", "build"}, device.calls)
	assert.Equal(t, uint64(2), s.Surface().Generation)
}

func TestSchedulerInvalidateRebuildsWithNewSize(t *testing.T) {
	width, height := uint32(800), uint32(600)
	device := newFakeDevice(3)
	s, err := NewFrameScheduler(device, func() (uint32, uint32) { return width, height })
	require.NoError(t, err)

	ticket, err := s.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, s.EndFrame(ticket))

	width, height = 1920, 1080
	s.Invalidate()

	_, err = s.BeginFrame()
	assert.ErrorIs(t, err, core.ErrSurfaceOutOfDate)
	assert.Equal(t, uint32(1920), s.Surface().Width)
	assert.Equal(t, uint32(1080), s.Surface().Height)
	assert.Equal(t, uint64(2), s.FrameNumber(), "skipped frame still advances pacing")
}

func TestSchedulerRebuildFiresRefreshEvent(t *testing.T) {
	core.EventSystemInitialize()
	defer core.EventSystemShutdown()

	fired := 0
	listener := &struct{}{}
	core.EventRegister(core.EVENT_CODE_DEFAULT_RENDERTARGET_REFRESH_REQUIRED, listener, func(core.EventContext) {
		fired++
	})
	defer core.EventUnregister(core.EVENT_CODE_DEFAULT_RENDERTARGET_REFRESH_REQUIRED, listener)

	device := newFakeDevice(2)
	s, err := NewFrameScheduler(device, fixedSize(800, 600))
	require.NoError(t, err)
	assert.Equal(t, 1, fired, "bring-up goes through the rebuild path")

	s.Invalidate()
	_, err = s.BeginFrame()
	assert.ErrorIs(t, err, core.ErrSurfaceOutOfDate)
	assert.Equal(t, 2, fired)
}

// blockingDevice gates WaitForFrame per slot so tests can hold a frame's
// fence unsignaled.
type blockingDevice struct {
	*fakeDevice
	gates map[int]chan struct{}
}

func (d *blockingDevice) WaitForFrame(slot int) error {
	if gate, ok := d.gates[slot]; ok {
		<-gate
	}
	return d.fakeDevice.WaitForFrame(slot)
}

func TestSchedulerBeginFrameBlocksOnUnsignaledFence(t *testing.T) {
	device := &blockingDevice{fakeDevice: newFakeDevice(2), gates: map[int]chan struct{}{}}
	s, err := NewFrameScheduler(device, fixedSize(800, 600))
	require.NoError(t, err)

	for frame := 0; frame < 2; frame++ {
		ticket, err := s.BeginFrame()
		require.NoError(t, err)
		require.NoError(t, s.EndFrame(ticket))
	}

	// Slot 0 comes around again but its fence has not signaled yet.
	gate := make(chan struct{})
	device.gates[0] = gate

	type result struct {
		ticket *FrameTicket
		err    error
	}
	got := make(chan result, 1)
	go func() {
		ticket, err := s.BeginFrame()
		got <- result{ticket, err}
	}()

	select {
	case <-got:
		t.Fatal("BeginFrame returned before slot 0's fence signaled")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	select {
	case res := <-got:
		require.NoError(t, res.err)
		assert.Equal(t, 0, res.ticket.SlotIndex)
	case <-time.After(time.Second):
		t.Fatal("BeginFrame did not return after the fence signaled")
	}
}

func TestSchedulerRebuildIdempotentForUnchangedSize(t *testing.T) {
	device := newFakeDevice(2)
	s, err := NewFrameScheduler(device, fixedSize(800, 600))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		s.Invalidate()
		_, err = s.BeginFrame()
		assert.ErrorIs(t, err, core.ErrSurfaceOutOfDate)
	}

	// Back-to-back rebuilds with unchanged dimensions produce the same
	// surface; only the generation moves.
	require.Len(t, device.built, 3)
	assert.Equal(t, device.built[1], device.built[2])
	assert.Equal(t, uint64(3), s.Surface().Generation)

	ticket, err := s.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, s.EndFrame(ticket))
}
