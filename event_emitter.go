package resock

import (
	"reflect"
	"sync"
)

// EventKind names a lifecycle event a client can emit.
type EventKind string

const (
	EventOpen      EventKind = "open"
	EventClose     EventKind = "close"
	EventMessage   EventKind = "message"
	EventError     EventKind = "error"
	EventReconnect EventKind = "reconnect"
	// EventAny subscribes to every event. Wildcard subscribers receive an
	// Envelope tagging the originating kind.
	EventAny EventKind = "*"
)

// Callback receives the event payload: nil for open/close, the decoded
// payload for message, an error for error, a Reconnect for reconnect.
type Callback func(data any)

// Envelope is what wildcard subscribers receive for every emission.
type Envelope struct {
	Kind EventKind
	Data any
}

type subscription struct {
	key uintptr
	fn  Callback
}

// EventHub maps event kinds to sets of subscribers. Membership has set
// semantics: a callback's identity is its function value's code pointer,
// so registering the same function twice under one kind is a no-op.
// Note that distinct closures created at the same source location share
// a code pointer and therefore share identity, as do method values of
// the same method bound to different receivers.
type EventHub struct {
	logger Logger

	lock sync.RWMutex
	subs map[EventKind][]subscription
}

// NewEventHub creates an empty hub. The logger receives diagnostics about
// subscribers that panic during delivery.
func NewEventHub(logger Logger) *EventHub {
	return &EventHub{
		logger: logger.WithField("type", "event_hub"),
		subs:   make(map[EventKind][]subscription),
	}
}

func callbackKey(cb Callback) uintptr {
	return reflect.ValueOf(cb).Pointer()
}

// On registers cb under kind. Registering under EventAny subscribes to a
// synthetic stream of Envelope values for every emission.
func (h *EventHub) On(kind EventKind, cb Callback) {
	key := callbackKey(cb)

	h.lock.Lock()
	defer h.lock.Unlock()

	for _, s := range h.subs[kind] {
		if s.key == key {
			return
		}
	}
	h.subs[kind] = append(h.subs[kind], subscription{key: key, fn: cb})
}

// Off removes cb from the kind's set. No-op if absent.
func (h *EventHub) Off(kind EventKind, cb Callback) {
	key := callbackKey(cb)

	h.lock.Lock()
	defer h.lock.Unlock()

	subs := h.subs[kind]
	for i, s := range subs {
		if s.key == key {
			h.subs[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit synchronously delivers data to every subscriber of kind, then the
// Envelope to every wildcard subscriber. Each delivery happens before Emit
// returns. A panicking subscriber is isolated so it cannot suppress
// delivery to the others; the panic is logged.
func (h *EventHub) Emit(kind EventKind, data any) {
	h.lock.RLock()
	subs := make([]subscription, 0, len(h.subs[kind])+len(h.subs[EventAny]))
	subs = append(subs, h.subs[kind]...)
	wildcardFrom := len(subs)
	subs = append(subs, h.subs[EventAny]...)
	h.lock.RUnlock()

	for i, s := range subs {
		payload := data
		if i >= wildcardFrom {
			payload = Envelope{Kind: kind, Data: data}
		}
		h.deliver(kind, s.fn, payload)
	}
}

func (h *EventHub) deliver(kind EventKind, fn Callback, payload any) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("subscriber for %q panicked: %v", kind, r)
		}
	}()

	fn(payload)
}

// Clear removes every subscriber from every kind.
func (h *EventHub) Clear() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.subs = make(map[EventKind][]subscription)
}
