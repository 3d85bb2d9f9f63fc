// Package item holds the trackable issue aggregate: current state, custom
// field values, typed relations, watchers, and the append-only transition
// history. The workflow decision logic lives in the permission engine and the
// application use cases; this aggregate enforces the mechanical invariants.
package item

import (
	"fmt"
	"time"

	"jtrac/internal/domain/metadata"
)

type Item struct {
	id           uint
	spaceID      uint
	sequenceNum  uint
	summary      string
	detail       string
	state        metadata.State
	assignedToID *uint
	loggedByID   uint
	fieldValues  map[string]string
	relations    []*Relation
	watcherIDs   []uint
	history      []History
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// InitialState is the state every newly logged item starts in.
func InitialState() metadata.State {
	return metadata.StateNew
}

// NewItem logs a fresh item. Every new item starts in StateNew; the sequence
// number is assigned separately by the space's allocator.
func NewItem(spaceID, loggedByID uint, summary, detail string) (*Item, error) {
	if spaceID == 0 {
		return nil, fmt.Errorf("space ID is required")
	}
	if loggedByID == 0 {
		return nil, fmt.Errorf("logged by user ID is required")
	}
	if len(summary) == 0 {
		return nil, fmt.Errorf("summary is required")
	}
	if len(summary) > 200 {
		return nil, fmt.Errorf("summary exceeds maximum length of 200 characters")
	}

	now := time.Now()
	return &Item{
		spaceID:     spaceID,
		loggedByID:  loggedByID,
		summary:     summary,
		detail:      detail,
		state:       metadata.StateNew,
		fieldValues: make(map[string]string),
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructItem(
	id uint,
	spaceID uint,
	sequenceNum uint,
	summary string,
	detail string,
	state metadata.State,
	assignedToID *uint,
	loggedByID uint,
	fieldValues map[string]string,
	relations []*Relation,
	watcherIDs []uint,
	history []History,
	version int,
	createdAt, updatedAt time.Time,
) (*Item, error) {
	if id == 0 {
		return nil, fmt.Errorf("item ID cannot be zero")
	}
	if spaceID == 0 {
		return nil, fmt.Errorf("space ID is required")
	}
	if sequenceNum == 0 {
		return nil, fmt.Errorf("sequence number is required")
	}
	if fieldValues == nil {
		fieldValues = make(map[string]string)
	}

	return &Item{
		id:           id,
		spaceID:      spaceID,
		sequenceNum:  sequenceNum,
		summary:      summary,
		detail:       detail,
		state:        state,
		assignedToID: assignedToID,
		loggedByID:   loggedByID,
		fieldValues:  fieldValues,
		relations:    relations,
		watcherIDs:   watcherIDs,
		history:      history,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (i *Item) ID() uint {
	return i.id
}

func (i *Item) SetID(id uint) error {
	if i.id != 0 {
		return fmt.Errorf("item ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("item ID cannot be zero")
	}
	i.id = id
	return nil
}

func (i *Item) SpaceID() uint {
	return i.spaceID
}

func (i *Item) SequenceNum() uint {
	return i.sequenceNum
}

// SetSequenceNum assigns the space-scoped sequence number exactly once.
func (i *Item) SetSequenceNum(sequenceNum uint) error {
	if i.sequenceNum != 0 {
		return fmt.Errorf("sequence number is already set")
	}
	if sequenceNum == 0 {
		return fmt.Errorf("sequence number cannot be zero")
	}
	i.sequenceNum = sequenceNum
	return nil
}

func (i *Item) Summary() string {
	return i.summary
}

func (i *Item) Detail() string {
	return i.detail
}

func (i *Item) State() metadata.State {
	return i.state
}

func (i *Item) AssignedToID() *uint {
	return i.assignedToID
}

func (i *Item) LoggedByID() uint {
	return i.loggedByID
}

func (i *Item) FieldValues() map[string]string {
	valuesCopy := make(map[string]string, len(i.fieldValues))
	for k, v := range i.fieldValues {
		valuesCopy[k] = v
	}
	return valuesCopy
}

// FieldValue returns the current value of a custom field, empty when unset.
func (i *Item) FieldValue(name string) string {
	return i.fieldValues[name]
}

func (i *Item) Relations() []*Relation {
	relationsCopy := make([]*Relation, len(i.relations))
	copy(relationsCopy, i.relations)
	return relationsCopy
}

func (i *Item) WatcherIDs() []uint {
	watchersCopy := make([]uint, len(i.watcherIDs))
	copy(watchersCopy, i.watcherIDs)
	return watchersCopy
}

func (i *Item) History() []History {
	historyCopy := make([]History, len(i.history))
	copy(historyCopy, i.history)
	return historyCopy
}

func (i *Item) Version() int {
	return i.version
}

func (i *Item) CreatedAt() time.Time {
	return i.createdAt
}

func (i *Item) UpdatedAt() time.Time {
	return i.updatedAt
}

// SetInitialFieldValues seeds custom field values while the item is still
// being logged. Once any transition has committed, field values only change
// through ApplyTransition so the history diff stays complete.
func (i *Item) SetInitialFieldValues(values map[string]string) error {
	if len(i.history) > 0 {
		return fmt.Errorf("field values of a transitioned item change only through transitions")
	}
	for name, value := range values {
		i.fieldValues[name] = value
	}
	i.updatedAt = time.Now()
	return nil
}

// ApplyTransition commits a state change that has already passed permission
// and required-field checks. It merges the supplied field values, moves the
// item to the target state, and appends exactly one history record carrying
// the per-field diff. The history slice only ever grows. Actor ID zero
// records the anonymous guest.
func (i *Item) ApplyTransition(to metadata.State, actorID uint, fieldValues map[string]string, comment string) error {
	if to == i.state {
		return fmt.Errorf("item is already in state %s", to)
	}

	changes := make(map[string]FieldChange, len(fieldValues))
	for name, value := range fieldValues {
		old := i.fieldValues[name]
		if old == value {
			continue
		}
		changes[name] = FieldChange{Old: old, New: value}
		i.fieldValues[name] = value
	}

	from := i.state
	i.state = to
	i.history = append(i.history, newHistory(from, to, actorID, comment, changes))
	i.version++
	i.updatedAt = time.Now()
	return nil
}

// Assign changes the assignee without a state transition. Authorization is
// the caller's job; the counts delta is derived from the returned previous
// assignee.
func (i *Item) Assign(assigneeID *uint, actorID uint) (previous *uint, err error) {
	if actorID == 0 {
		return nil, fmt.Errorf("actor ID is required")
	}
	if assigneeID != nil && *assigneeID == 0 {
		return nil, fmt.Errorf("assignee ID cannot be zero")
	}

	previous = i.assignedToID
	i.assignedToID = assigneeID
	i.version++
	i.updatedAt = time.Now()
	return previous, nil
}

// AddRelation links this item to another with a typed directed edge.
func (i *Item) AddRelation(toItemID uint, relType RelationType) error {
	for _, r := range i.relations {
		if r.toItemID == toItemID && r.relType == relType {
			return fmt.Errorf("relation %s to item %d already exists", relType, toItemID)
		}
	}
	rel, err := NewRelation(i.id, toItemID, relType)
	if err != nil {
		return err
	}
	i.relations = append(i.relations, rel)
	i.version++
	i.updatedAt = time.Now()
	return nil
}

// DetachRelationsTo drops every edge pointing at toItemID, returning how many
// were removed. Used when the target item is removed under the detach policy.
func (i *Item) DetachRelationsTo(toItemID uint) int {
	kept := i.relations[:0]
	removed := 0
	for _, r := range i.relations {
		if r.toItemID == toItemID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	i.relations = kept
	if removed > 0 {
		i.version++
		i.updatedAt = time.Now()
	}
	return removed
}

// HasRelationTo reports whether this item holds an edge of relType pointing
// at toItemID.
func (i *Item) HasRelationTo(toItemID uint, relType RelationType) bool {
	for _, r := range i.relations {
		if r.toItemID == toItemID && r.relType == relType {
			return true
		}
	}
	return false
}

// AddWatcher subscribes a user to this item's notifications.
func (i *Item) AddWatcher(userID uint) error {
	if userID == 0 {
		return fmt.Errorf("watcher user ID cannot be zero")
	}
	for _, w := range i.watcherIDs {
		if w == userID {
			return nil
		}
	}
	i.watcherIDs = append(i.watcherIDs, userID)
	i.version++
	i.updatedAt = time.Now()
	return nil
}

// RemoveWatcher drops a user's watch; removing a user must detach all their
// watches without touching the items themselves.
func (i *Item) RemoveWatcher(userID uint) {
	for idx, w := range i.watcherIDs {
		if w == userID {
			i.watcherIDs = append(i.watcherIDs[:idx], i.watcherIDs[idx+1:]...)
			i.version++
			i.updatedAt = time.Now()
			return
		}
	}
}

// Clone returns a deep snapshot of the item. Persistence collaborators hand
// out clones so a caller's in-progress mutation never leaks into the stored
// authoritative state.
func (i *Item) Clone() *Item {
	clone := *i
	if i.assignedToID != nil {
		assignee := *i.assignedToID
		clone.assignedToID = &assignee
	}
	clone.fieldValues = i.FieldValues()
	clone.relations = i.Relations()
	clone.watcherIDs = i.WatcherIDs()
	clone.history = i.History()
	return &clone
}
