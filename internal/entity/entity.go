// Package entity defines the versioned data unit shared by all revisioned
// repositories: a logical key, a lifecycle status, a monotonically growing
// revision number and a physical storage identity.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a single physical row.
// Only one row per key may be Active at a time.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Record holds the bookkeeping fields every stored entity carries.
// Domain types embed it and get the Versioned interface for free.
//
// StorageID identifies one physical row and is assigned at insert time.
// Key is the logical identity, stable across all revisions of the entity.
// Revision starts at 1 and grows by one for every new revision row.
// CreatedAt is set when the row is inserted and never changes afterwards.
//
// The fields are excluded from JSON so that payload serialization (e.g. the
// sqlstore payload column) carries domain data only.
type Record struct {
	StorageID uuid.UUID `json:"-"`
	Key       uuid.UUID `json:"-"`
	Status    Status    `json:"-"`
	Revision  int       `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Meta returns the record itself, satisfying Versioned via embedding.
func (r *Record) Meta() *Record {
	return r
}

// Versioned is the capability required from any entity stored in a
// revisioned repository: access to its bookkeeping fields.
type Versioned interface {
	Meta() *Record
}

// NewRecord returns a Record initialized the way a caller-constructed
// first revision looks: given key, Active, revision 1.
func NewRecord(key uuid.UUID) Record {
	return Record{
		Key:      key,
		Status:   StatusActive,
		Revision: 1,
	}
}
