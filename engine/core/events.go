package core

import (
	"sync"

	"github.com/lumengine/lumen/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Resized/resolution changed from the OS. Data is a *SystemEvent.
	EVENT_CODE_RESIZED SystemEventCode = 0x02

	// A render-mode switch was requested (debug visualization).
	EVENT_CODE_SET_RENDER_MODE SystemEventCode = 0x03

	// The default render targets must be regenerated (surface rebuilt).
	EVENT_CODE_DEFAULT_RENDERTARGET_REFRESH_REQUIRED SystemEventCode = 0x04

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough queued events between two frames...
const MAX_QUEUED_EVENTS = 1024

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

// SystemEvent carries the authoritative window dimensions on resize.
type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type FnOnEvent func(context EventContext)

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	mu         sync.Mutex
	registered map[SystemEventCode][]*registeredEvent
	pending    *containers.RingQueue[EventContext]
}

var onceEvent sync.Once
var isInitialized bool = false
var eventState *eventSystemState = nil

func EventSystemInitialize() bool {
	if isInitialized {
		return false
	}
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[SystemEventCode][]*registeredEvent),
			pending:    containers.NewRingQueue[EventContext](MAX_QUEUED_EVENTS),
		}
	})
	isInitialized = true
	return true
}

func EventSystemShutdown() error {
	if !isInitialized {
		return nil
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	eventState.registered = make(map[SystemEventCode][]*registeredEvent)
	eventState.pending = containers.NewRingQueue[EventContext](MAX_QUEUED_EVENTS)
	isInitialized = false
	return nil
}

// EventRegister subscribes the callback to the given code. Duplicate
// listener registrations for the same code are rejected.
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !isInitialized {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	for _, e := range eventState.registered[code] {
		if e.listener == listener {
			// TODO: warn
			return false
		}
	}
	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// EventUnregister removes a previously registered listener for the code.
func EventUnregister(code SystemEventCode, listener interface{}) bool {
	if !isInitialized {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	events := eventState.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// EventFire dispatches the event synchronously to every listener of its code.
func EventFire(context EventContext) bool {
	if !isInitialized {
		return false
	}
	eventState.mu.Lock()
	listeners := append([]*registeredEvent(nil), eventState.registered[context.Type]...)
	eventState.mu.Unlock()
	if len(listeners) == 0 {
		return false
	}
	for _, e := range listeners {
		e.callback(context)
	}
	return true
}

// EventEnqueue defers delivery until the next ProcessEvents drain. Platform
// callbacks use this so listeners always run on the frame loop.
func EventEnqueue(context EventContext) bool {
	if !isInitialized {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	if err := eventState.pending.Enqueue(context); err != nil {
		LogWarn("event queue full, dropping event %d", context.Type)
		return false
	}
	return true
}

// ProcessEvents drains the pending queue, firing each event in order.
func ProcessEvents() {
	if !isInitialized {
		return
	}
	for {
		eventState.mu.Lock()
		ctx, err := eventState.pending.Dequeue()
		eventState.mu.Unlock()
		if err != nil {
			return
		}
		EventFire(ctx)
	}
}
