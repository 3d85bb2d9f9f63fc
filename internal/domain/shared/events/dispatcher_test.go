package events

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"jtrac/internal/shared/logger"
)

type recordingHandler struct {
	eventType string
	seen      []DomainEvent
	err       error
	panics    bool
}

func (h *recordingHandler) Handle(event DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.seen = append(h.seen, event)
	return h.err
}

func (h *recordingHandler) CanHandle(eventType string) bool {
	return eventType == h.eventType
}

func newDispatcher() *SyncEventDispatcher {
	return NewSyncEventDispatcher(logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestPublish_RoutesByEventType(t *testing.T) {
	d := newDispatcher()
	created := &recordingHandler{eventType: "item.created"}
	removed := &recordingHandler{eventType: "item.removed"}
	d.Subscribe("item.created", created)
	d.Subscribe("item.removed", removed)

	d.Publish(NewBaseEvent("item:1", "item.created"))

	assert.Len(t, created.seen, 1)
	assert.Empty(t, removed.seen)
}

func TestPublish_HandlerFailureDoesNotStopDelivery(t *testing.T) {
	d := newDispatcher()
	failing := &recordingHandler{eventType: "item.created", err: fmt.Errorf("notification down")}
	healthy := &recordingHandler{eventType: "item.created"}
	d.Subscribe("item.created", failing)
	d.Subscribe("item.created", healthy)

	d.Publish(NewBaseEvent("item:1", "item.created"))

	assert.Len(t, healthy.seen, 1, "the failure of one handler does not starve the next")
}

func TestPublish_HandlerPanicIsContained(t *testing.T) {
	d := newDispatcher()
	panicking := &recordingHandler{eventType: "item.created", panics: true}
	healthy := &recordingHandler{eventType: "item.created"}
	d.Subscribe("item.created", panicking)
	d.Subscribe("item.created", healthy)

	assert.NotPanics(t, func() {
		d.Publish(NewBaseEvent("item:1", "item.created"))
	})
	assert.Len(t, healthy.seen, 1)
}

func TestPublishAll(t *testing.T) {
	d := newDispatcher()
	h := &recordingHandler{eventType: "item.created"}
	d.Subscribe("item.created", h)

	d.PublishAll([]DomainEvent{
		NewBaseEvent("item:1", "item.created"),
		NewBaseEvent("item:2", "item.created"),
	})

	assert.Len(t, h.seen, 2)
}
