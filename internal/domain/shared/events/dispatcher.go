package events

import (
	"sync"

	"jtrac/internal/shared/logger"
)

// SyncEventDispatcher delivers events to the registered handlers on the
// caller's goroutine, after the triggering mutation has committed. A handler
// error or panic is logged and swallowed: the notification hook must never
// roll back the transition that raised it.
type SyncEventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	log      logger.Interface
}

func NewSyncEventDispatcher(log logger.Interface) *SyncEventDispatcher {
	return &SyncEventDispatcher{
		handlers: make(map[string][]EventHandler),
		log:      log,
	}
}

// Subscribe registers a handler for a specific event type
func (d *SyncEventDispatcher) Subscribe(eventType string, handler EventHandler) {
	if eventType == "" || handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// Publish publishes a single event
func (d *SyncEventDispatcher) Publish(event DomainEvent) {
	d.mu.RLock()
	handlers := append([]EventHandler(nil), d.handlers[event.GetEventType()]...)
	d.mu.RUnlock()

	for _, h := range handlers {
		if !h.CanHandle(event.GetEventType()) {
			continue
		}
		d.dispatch(h, event)
	}
}

// PublishAll publishes multiple events
func (d *SyncEventDispatcher) PublishAll(events []DomainEvent) {
	for _, e := range events {
		d.Publish(e)
	}
}

func (d *SyncEventDispatcher) dispatch(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("event handler panicked", "event_type", event.GetEventType(), "panic", r)
		}
	}()
	if err := h.Handle(event); err != nil {
		d.log.Errorw("event handler failed", "event_type", event.GetEventType(), "error", err)
	}
}
