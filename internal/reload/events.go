package reload

import (
	"sync"
	"time"
)

// EventType represents the type of reload event.
type EventType int

const (
	// EventReloadStarted is emitted when a reload begins.
	EventReloadStarted EventType = iota
	// EventReloadCompleted is emitted when the clip has been refilled.
	EventReloadCompleted
	// EventReloadFailed is emitted when a due reload could not be applied.
	EventReloadFailed
	// EventReloadCancelled is emitted when a reload is cancelled or restarted.
	EventReloadCancelled
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventReloadStarted:
		return "ReloadStarted"
	case EventReloadCompleted:
		return "ReloadCompleted"
	case EventReloadFailed:
		return "ReloadFailed"
	case EventReloadCancelled:
		return "ReloadCancelled"
	default:
		return "Unknown"
	}
}

// Event represents a reload event.
type Event struct {
	Type      EventType
	Job       *Job
	Timestamp time.Time
	// TotalRemainingAmmo is the reserve left for the weapon after a completed
	// reload.
	TotalRemainingAmmo int
	Reason             string
}

// EventBus manages event subscriptions and delivery.
type EventBus interface {
	Subscribe(name string, handler func(Event))
	Unsubscribe(name string)
	Publish(event Event)
}

type busHandler struct {
	name    string
	handler func(Event)
}

// SimpleEventBus delivers events synchronously, in subscription order, on the
// publisher's goroutine.
type SimpleEventBus struct {
	mu       sync.RWMutex
	handlers []busHandler
}

// NewSimpleEventBus creates an empty event bus.
func NewSimpleEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe registers handler under name, replacing any previous handler with
// the same name.
func (bus *SimpleEventBus) Subscribe(name string, handler func(Event)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i := range bus.handlers {
		if bus.handlers[i].name == name {
			bus.handlers[i].handler = handler
			return
		}
	}
	bus.handlers = append(bus.handlers, busHandler{name: name, handler: handler})
}

// Unsubscribe removes the handler registered under name.
func (bus *SimpleEventBus) Unsubscribe(name string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i := range bus.handlers {
		if bus.handlers[i].name == name {
			bus.handlers = append(bus.handlers[:i], bus.handlers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to every handler.
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	handlers := make([]busHandler, len(bus.handlers))
	copy(handlers, bus.handlers)
	bus.mu.RUnlock()

	for _, h := range handlers {
		h.handler(event)
	}
}

// NullEventBus is an event bus that does nothing.
type NullEventBus struct{}

// NewNullEventBus creates a new null event bus.
func NewNullEventBus() *NullEventBus {
	return &NullEventBus{}
}

// Subscribe does nothing.
func (bus *NullEventBus) Subscribe(name string, handler func(Event)) {}

// Unsubscribe does nothing.
func (bus *NullEventBus) Unsubscribe(name string) {}

// Publish does nothing.
func (bus *NullEventBus) Publish(event Event) {}
