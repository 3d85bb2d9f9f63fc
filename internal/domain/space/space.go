// Package space holds the project container aggregate: a space owns its
// metadata schema, its item sequence, and the prefix code from which external
// item references are built.
package space

import (
	"fmt"
	"regexp"
	"time"

	"jtrac/internal/domain/metadata"
)

var prefixCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

type Space struct {
	id           uint
	prefixCode   string
	name         string
	description  string
	guestAllowed bool
	itemsLogged  bool
	metadata     *metadata.Metadata
	createdAt    time.Time
	updatedAt    time.Time
}

func NewSpace(prefixCode, name string, md *metadata.Metadata) (*Space, error) {
	if !prefixCodePattern.MatchString(prefixCode) {
		return nil, fmt.Errorf("prefix code must be 2-10 uppercase alphanumeric characters starting with a letter")
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("space name is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("space name exceeds maximum length of 100 characters")
	}
	if md == nil {
		return nil, fmt.Errorf("metadata is required")
	}

	now := time.Now()
	return &Space{
		prefixCode: prefixCode,
		name:       name,
		metadata:   md,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructSpace(
	id uint,
	prefixCode string,
	name string,
	description string,
	guestAllowed bool,
	itemsLogged bool,
	md *metadata.Metadata,
	createdAt, updatedAt time.Time,
) (*Space, error) {
	if id == 0 {
		return nil, fmt.Errorf("space ID cannot be zero")
	}
	if len(prefixCode) == 0 {
		return nil, fmt.Errorf("prefix code is required")
	}
	if md == nil {
		return nil, fmt.Errorf("metadata is required")
	}

	return &Space{
		id:           id,
		prefixCode:   prefixCode,
		name:         name,
		description:  description,
		guestAllowed: guestAllowed,
		itemsLogged:  itemsLogged,
		metadata:     md,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (s *Space) ID() uint {
	return s.id
}

func (s *Space) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("space ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("space ID cannot be zero")
	}
	s.id = id
	return nil
}

func (s *Space) PrefixCode() string {
	return s.prefixCode
}

func (s *Space) Name() string {
	return s.name
}

func (s *Space) Description() string {
	return s.description
}

func (s *Space) GuestAllowed() bool {
	return s.guestAllowed
}

func (s *Space) ItemsLogged() bool {
	return s.itemsLogged
}

func (s *Space) Metadata() *metadata.Metadata {
	return s.metadata
}

func (s *Space) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Space) UpdatedAt() time.Time {
	return s.updatedAt
}

func (s *Space) Rename(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("space name cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("space name exceeds maximum length of 100 characters")
	}
	s.name = name
	s.updatedAt = time.Now()
	return nil
}

func (s *Space) UpdateDescription(description string) {
	s.description = description
	s.updatedAt = time.Now()
}

// ChangePrefixCode rejects the change once the first item has been logged;
// the prefix is part of every issued external reference.
func (s *Space) ChangePrefixCode(prefixCode string) error {
	if s.itemsLogged {
		return fmt.Errorf("prefix code is immutable once items have been logged")
	}
	if !prefixCodePattern.MatchString(prefixCode) {
		return fmt.Errorf("prefix code must be 2-10 uppercase alphanumeric characters starting with a letter")
	}
	s.prefixCode = prefixCode
	s.updatedAt = time.Now()
	return nil
}

// MarkItemsLogged freezes the prefix code. Called when the first item of the
// space is stored.
func (s *Space) MarkItemsLogged() {
	if s.itemsLogged {
		return
	}
	s.itemsLogged = true
	s.updatedAt = time.Now()
}

func (s *Space) AllowGuests() {
	s.guestAllowed = true
	s.updatedAt = time.Now()
}

func (s *Space) DisallowGuests() {
	s.guestAllowed = false
	s.updatedAt = time.Now()
}

// ReplaceMetadata publishes a new schema snapshot. The previous snapshot stays
// internally consistent for readers still holding it.
func (s *Space) ReplaceMetadata(md *metadata.Metadata) error {
	if md == nil {
		return fmt.Errorf("metadata cannot be nil")
	}
	s.metadata = md
	s.updatedAt = time.Now()
	return nil
}

// Clone returns a snapshot of the space. The metadata pointer is shared on
// purpose: snapshots are immutable and only ever swapped whole.
func (s *Space) Clone() *Space {
	clone := *s
	return &clone
}

// ItemRef builds the permanent external reference for a sequence number,
// e.g. "TEST-1".
func (s *Space) ItemRef(sequenceNum uint) string {
	return fmt.Sprintf("%s-%d", s.prefixCode, sequenceNum)
}
