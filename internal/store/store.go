// Package store defines the persistence contract consumed by the revisioned
// repository. A Store is a dumb ordered/indexed row container: it inserts new
// rows, flips the status of existing rows in place, and answers predicate
// queries. All lifecycle rules live above it, in the repository.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/revkeeper/internal/entity"
)

// Store persists physical rows for one entity kind.
//
// Lookup-shaped methods report absence with a false found flag and a zero T;
// the error return carries store failures only. Rows handed out by a Store
// are owned by the caller: mutating them must not change stored state until
// the mutation is persisted through UpdateStatus.
type Store[T entity.Versioned] interface {
	// Insert persists rec as a brand-new row. It fails with
	// common.ErrDuplicateStorageID if a row with the same storage
	// identity already exists.
	Insert(ctx context.Context, rec T) (T, error)

	// UpdateStatus persists the status of the existing row identified by
	// rec's storage identity. Status is the only field a stored row ever
	// changes after insert.
	UpdateStatus(ctx context.Context, rec T) (T, error)

	// GetByKeyAndStatus returns the single row matching both key and status.
	GetByKeyAndStatus(ctx context.Context, key uuid.UUID, status entity.Status) (T, bool, error)

	// ListByStatus returns all rows with the given status, in store order.
	ListByStatus(ctx context.Context, status entity.Status) ([]T, error)

	// ListAll returns every row regardless of key or status.
	ListAll(ctx context.Context) ([]T, error)

	// ListByKey returns all rows sharing key, ordered by revision descending.
	ListByKey(ctx context.Context, key uuid.UUID) ([]T, error)

	// GetByKeyAndRevision returns the row matching both key and revision.
	GetByKeyAndRevision(ctx context.Context, key uuid.UUID, revision int) (T, bool, error)

	// ExistsByKey reports whether any row, in any status, has the given key.
	ExistsByKey(ctx context.Context, key uuid.UUID) (bool, error)
}
