// Package id provides entity identifiers. New ids are UUIDv7: documents,
// stock moves and approvers sort by creation time on their primary key.
package id

import "github.com/google/uuid"

// ID identifies every stored row.
type ID = uuid.UUID

// New returns a UUIDv7. It falls back to a random v4 only if the clock
// source fails.
func New() ID {
	if v, err := uuid.NewV7(); err == nil {
		return v
	}
	return uuid.New()
}

// Parse accepts the canonical and the braced/urn forms.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseOptional maps "" to nil, for optional claims and foreign keys.
func ParseOptional(s string) (*ID, error) {
	if s == "" {
		return nil, nil
	}
	v, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MustParse panics on malformed input; fixtures only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil reports the zero ID, which marks an unset reference.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
