package metadata

// State is a named stage in an item's lifecycle. The state set is declared
// per-space by the metadata definition; New and Closed are always members.
type State string

const (
	StateNew    State = "NEW"
	StateClosed State = "CLOSED"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsNew() bool {
	return s == StateNew
}

func (s State) IsClosed() bool {
	return s == StateClosed
}
