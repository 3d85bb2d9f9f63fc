package item

import (
	"fmt"
	"time"

	"jtrac/internal/domain/shared/events"
)

const (
	EventTypeItemCreated      = "item.created"
	EventTypeItemTransitioned = "item.transitioned"
	EventTypeItemAssigned     = "item.assigned"
	EventTypeItemRemoved      = "item.removed"
)

type ItemCreatedEvent struct {
	events.BaseEvent
	ItemID      uint
	SpaceID     uint
	SequenceNum uint
	Ref         string
	LoggedBy    uint
}

func NewItemCreatedEvent(itemID, spaceID, sequenceNum uint, ref string, loggedBy uint) ItemCreatedEvent {
	return ItemCreatedEvent{
		BaseEvent:   events.NewBaseEvent(fmt.Sprintf("item:%d", itemID), EventTypeItemCreated),
		ItemID:      itemID,
		SpaceID:     spaceID,
		SequenceNum: sequenceNum,
		Ref:         ref,
		LoggedBy:    loggedBy,
	}
}

type ItemTransitionedEvent struct {
	events.BaseEvent
	ItemID    uint
	SpaceID   uint
	FromState string
	ToState   string
	ActorID   uint
	Timestamp time.Time
}

func NewItemTransitionedEvent(itemID, spaceID uint, fromState, toState string, actorID uint) ItemTransitionedEvent {
	return ItemTransitionedEvent{
		BaseEvent: events.NewBaseEvent(fmt.Sprintf("item:%d", itemID), EventTypeItemTransitioned),
		ItemID:    itemID,
		SpaceID:   spaceID,
		FromState: fromState,
		ToState:   toState,
		ActorID:   actorID,
		Timestamp: time.Now(),
	}
}

type ItemAssignedEvent struct {
	events.BaseEvent
	ItemID           uint
	SpaceID          uint
	PreviousAssignee *uint
	NewAssignee      *uint
	ActorID          uint
}

func NewItemAssignedEvent(itemID, spaceID uint, previousAssignee, newAssignee *uint, actorID uint) ItemAssignedEvent {
	return ItemAssignedEvent{
		BaseEvent:        events.NewBaseEvent(fmt.Sprintf("item:%d", itemID), EventTypeItemAssigned),
		ItemID:           itemID,
		SpaceID:          spaceID,
		PreviousAssignee: previousAssignee,
		NewAssignee:      newAssignee,
		ActorID:          actorID,
	}
}

type ItemRemovedEvent struct {
	events.BaseEvent
	ItemID        uint
	SpaceID       uint
	DetachedLinks int
	ActorID       uint
}

func NewItemRemovedEvent(itemID, spaceID uint, detachedLinks int, actorID uint) ItemRemovedEvent {
	return ItemRemovedEvent{
		BaseEvent:     events.NewBaseEvent(fmt.Sprintf("item:%d", itemID), EventTypeItemRemoved),
		ItemID:        itemID,
		SpaceID:       spaceID,
		DetachedLinks: detachedLinks,
		ActorID:       actorID,
	}
}
