package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetEvents(t *testing.T) {
	t.Helper()
	EventSystemInitialize()
	t.Cleanup(func() {
		require.NoError(t, EventSystemShutdown())
	})
}

func TestEventRegisterAndFire(t *testing.T) {
	resetEvents(t)

	got := make([]EventContext, 0, 2)
	listener := &struct{}{}
	require.True(t, EventRegister(EVENT_CODE_RESIZED, listener, func(ctx EventContext) {
		got = append(got, ctx)
	}))

	assert.True(t, EventFire(EventContext{
		Type: EVENT_CODE_RESIZED,
		Data: &SystemEvent{WindowWidth: 640, WindowHeight: 480},
	}))
	require.Len(t, got, 1)
	payload, ok := got[0].Data.(*SystemEvent)
	require.True(t, ok)
	assert.Equal(t, uint32(640), payload.WindowWidth)

	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}), "no listeners for that code")
}

func TestEventRegisterRejectsDuplicateListener(t *testing.T) {
	resetEvents(t)

	listener := &struct{}{}
	handler := func(EventContext) {}
	require.True(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, listener, handler))
	assert.False(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, listener, handler))
}

func TestEventUnregisterStopsDelivery(t *testing.T) {
	resetEvents(t)

	fired := 0
	listener := &struct{}{}
	require.True(t, EventRegister(EVENT_CODE_SET_RENDER_MODE, listener, func(EventContext) {
		fired++
	}))
	require.True(t, EventUnregister(EVENT_CODE_SET_RENDER_MODE, listener))
	assert.False(t, EventUnregister(EVENT_CODE_SET_RENDER_MODE, listener))

	EventFire(EventContext{Type: EVENT_CODE_SET_RENDER_MODE})
	assert.Equal(t, 0, fired)
}

func TestEventEnqueueDeliversOnProcess(t *testing.T) {
	resetEvents(t)

	var got []SystemEventCode
	listener := &struct{}{}
	for _, code := range []SystemEventCode{EVENT_CODE_APPLICATION_QUIT, EVENT_CODE_RESIZED} {
		require.True(t, EventRegister(code, listener, func(ctx EventContext) {
			got = append(got, ctx.Type)
		}))
	}

	assert.True(t, EventEnqueue(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.True(t, EventEnqueue(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
	assert.Empty(t, got, "enqueued events wait for the drain")

	ProcessEvents()
	assert.Equal(t, []SystemEventCode{EVENT_CODE_RESIZED, EVENT_CODE_APPLICATION_QUIT}, got)

	ProcessEvents()
	assert.Len(t, got, 2, "the queue drains fully")
}

func TestEventSystemUninitialized(t *testing.T) {
	// No initialization: everything degrades to a no-op.
	assert.False(t, EventRegister(EVENT_CODE_RESIZED, &struct{}{}, func(EventContext) {}))
	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.False(t, EventEnqueue(EventContext{Type: EVENT_CODE_RESIZED}))
}
