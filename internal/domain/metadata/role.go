package metadata

// Well-known role keys. RoleAdmin is never declared by a space's metadata; a
// null-space grant of it makes the holder an effective member of every role.
// RoleGuest must be declared by the metadata before a transition may
// reference it.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleGuest = "ROLE_GUEST"
)

// Role is a role declared by a space's metadata, keyed for grant lookups.
type Role struct {
	key   string
	label string
}

func (r Role) Key() string {
	return r.key
}

func (r Role) Label() string {
	return r.label
}
