// Package memstore implements the store contract with a process-local
// concurrent map. It backs tests and the in-memory repository manager.
package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/dmitrijs2005/revkeeper/internal/common"
	"github.com/dmitrijs2005/revkeeper/internal/entity"
)

// Store keeps rows in an xsync map keyed by storage identity. Rows are
// cloned on the way in and out so callers never share memory with stored
// state; the clone func must copy deeply enough that payload mutations on
// one side do not leak to the other.
type Store[T entity.Versioned] struct {
	rows  *xsync.MapOf[uuid.UUID, T]
	clone func(T) T
}

// NewStore returns an empty in-memory store using clone to copy records.
func NewStore[T entity.Versioned](clone func(T) T) *Store[T] {
	return &Store[T]{
		rows:  xsync.NewMapOf[uuid.UUID, T](),
		clone: clone,
	}
}

// Insert persists rec as a new row. A zero storage identity is assigned here;
// an occupied one fails with common.ErrDuplicateStorageID.
func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	stored := s.clone(rec)
	if stored.Meta().StorageID == uuid.Nil {
		stored.Meta().StorageID = uuid.New()
	}
	if _, loaded := s.rows.LoadOrStore(stored.Meta().StorageID, stored); loaded {
		return zero, fmt.Errorf("insert %s: %w", stored.Meta().StorageID, common.ErrDuplicateStorageID)
	}
	return s.clone(stored), nil
}

// UpdateStatus flips the status of the stored row identified by rec's
// storage identity. The row keeps its key, revision and creation time.
func (s *Store[T]) UpdateStatus(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	id := rec.Meta().StorageID
	cur, ok := s.rows.Load(id)
	if !ok {
		return zero, fmt.Errorf("update status %s: row missing", id)
	}
	updated := s.clone(cur)
	updated.Meta().Status = rec.Meta().Status
	s.rows.Store(id, updated)
	return s.clone(updated), nil
}

func (s *Store[T]) GetByKeyAndStatus(ctx context.Context, key uuid.UUID, status entity.Status) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	var found T
	var ok bool
	s.rows.Range(func(_ uuid.UUID, rec T) bool {
		if rec.Meta().Key == key && rec.Meta().Status == status {
			found, ok = s.clone(rec), true
			return false
		}
		return true
	})
	return found, ok, nil
}

func (s *Store[T]) ListByStatus(ctx context.Context, status entity.Status) ([]T, error) {
	return s.list(ctx, func(rec T) bool { return rec.Meta().Status == status })
}

func (s *Store[T]) ListAll(ctx context.Context) ([]T, error) {
	return s.list(ctx, func(T) bool { return true })
}

// ListByKey returns key's rows ordered by revision descending.
func (s *Store[T]) ListByKey(ctx context.Context, key uuid.UUID) ([]T, error) {
	recs, err := s.list(ctx, func(rec T) bool { return rec.Meta().Key == key })
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Meta().Revision > recs[j].Meta().Revision
	})
	return recs, nil
}

func (s *Store[T]) GetByKeyAndRevision(ctx context.Context, key uuid.UUID, revision int) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	var found T
	var ok bool
	s.rows.Range(func(_ uuid.UUID, rec T) bool {
		if rec.Meta().Key == key && rec.Meta().Revision == revision {
			found, ok = s.clone(rec), true
			return false
		}
		return true
	})
	return found, ok, nil
}

func (s *Store[T]) ExistsByKey(ctx context.Context, key uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists := false
	s.rows.Range(func(_ uuid.UUID, rec T) bool {
		if rec.Meta().Key == key {
			exists = true
			return false
		}
		return true
	})
	return exists, nil
}

func (s *Store[T]) list(ctx context.Context, match func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []T
	s.rows.Range(func(_ uuid.UUID, rec T) bool {
		if match(rec) {
			result = append(result, s.clone(rec))
		}
		return true
	})
	return result, nil
}
