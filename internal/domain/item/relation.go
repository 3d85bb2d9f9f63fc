package item

import "fmt"

// RelationType tags a directed edge between two items.
type RelationType string

const (
	RelationDependsOn   RelationType = "DEPENDS_ON"
	RelationDuplicateOf RelationType = "DUPLICATE_OF"
	RelationRelatedTo   RelationType = "RELATED_TO"
)

var validRelationTypes = map[RelationType]bool{
	RelationDependsOn:   true,
	RelationDuplicateOf: true,
	RelationRelatedTo:   true,
}

func (rt RelationType) String() string {
	return string(rt)
}

func (rt RelationType) IsValid() bool {
	return validRelationTypes[rt]
}

// Relation is a typed directed edge from the owning item to another item.
// Edges are owned by neither endpoint exclusively: removing the target
// detaches the edge without touching the source item (default policy).
type Relation struct {
	fromItemID uint
	toItemID   uint
	relType    RelationType
}

func NewRelation(fromItemID, toItemID uint, relType RelationType) (*Relation, error) {
	if fromItemID == toItemID {
		return nil, fmt.Errorf("item cannot relate to itself")
	}
	if toItemID == 0 {
		return nil, fmt.Errorf("related item ID cannot be zero")
	}
	if !relType.IsValid() {
		return nil, fmt.Errorf("invalid relation type: %s", relType)
	}
	return &Relation{
		fromItemID: fromItemID,
		toItemID:   toItemID,
		relType:    relType,
	}, nil
}

func (r *Relation) FromItemID() uint {
	return r.fromItemID
}

func (r *Relation) ToItemID() uint {
	return r.toItemID
}

func (r *Relation) Type() RelationType {
	return r.relType
}
