package item

import (
	"time"

	"jtrac/internal/domain/metadata"
)

// FieldChange records one field's old and new value inside a history record.
type FieldChange struct {
	Old string
	New string
}

// History is one immutable record of a committed state transition. Records
// are only ever appended, never mutated or removed.
type History struct {
	fromState    metadata.State
	toState      metadata.State
	actorID      uint
	comment      string
	fieldChanges map[string]FieldChange
	timestamp    time.Time
}

func newHistory(from, to metadata.State, actorID uint, comment string, changes map[string]FieldChange) History {
	changesCopy := make(map[string]FieldChange, len(changes))
	for k, v := range changes {
		changesCopy[k] = v
	}
	return History{
		fromState:    from,
		toState:      to,
		actorID:      actorID,
		comment:      comment,
		fieldChanges: changesCopy,
		timestamp:    time.Now(),
	}
}

// ReconstructHistory rehydrates a persisted record.
func ReconstructHistory(from, to metadata.State, actorID uint, comment string, changes map[string]FieldChange, timestamp time.Time) History {
	h := newHistory(from, to, actorID, comment, changes)
	h.timestamp = timestamp
	return h
}

func (h History) FromState() metadata.State {
	return h.fromState
}

func (h History) ToState() metadata.State {
	return h.toState
}

func (h History) ActorID() uint {
	return h.actorID
}

func (h History) Comment() string {
	return h.comment
}

func (h History) FieldChanges() map[string]FieldChange {
	changesCopy := make(map[string]FieldChange, len(h.fieldChanges))
	for k, v := range h.fieldChanges {
		changesCopy[k] = v
	}
	return changesCopy
}

func (h History) Timestamp() time.Time {
	return h.timestamp
}
