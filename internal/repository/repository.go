// Package repository implements the revisioned repository: lifecycle rules
// and revision bookkeeping for logical entities stored as immutable physical
// rows. Updates never overwrite — they archive the current row and insert a
// new one with the next revision; deletion is a status change, not removal.
package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/dmitrijs2005/revkeeper/internal/common"
	"github.com/dmitrijs2005/revkeeper/internal/entity"
	"github.com/dmitrijs2005/revkeeper/internal/logging"
	"github.com/dmitrijs2005/revkeeper/internal/store"
)

// Repository enforces the entity lifecycle on top of a store.Store.
//
// Create and Update are serialized per key with an in-process keyed mutex, so
// their check-then-act sequences (exists check before insert, archive before
// insert) cannot interleave for the same key within one process. Callers
// spanning processes should back this with a store-level constraint such as a
// partial unique index on (key) for active rows.
type Repository[T entity.Versioned] struct {
	store store.Store[T]
	log   logging.Logger
	now   func() time.Time
	locks *xsync.MapOf[uuid.UUID, *sync.Mutex]
}

// Option configures a Repository.
type Option[T entity.Versioned] func(*Repository[T])

// WithLogger injects a tracing sink. Defaults to a no-op logger.
func WithLogger[T entity.Versioned](l logging.Logger) Option[T] {
	return func(r *Repository[T]) {
		r.log = l.With("module", "repository")
	}
}

// WithClock overrides the time source used for CreatedAt stamps.
func WithClock[T entity.Versioned](now func() time.Time) Option[T] {
	return func(r *Repository[T]) {
		r.now = now
	}
}

// New returns a repository over s.
func New[T entity.Versioned](s store.Store[T], opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		store: s,
		log:   logging.Nop(),
		now:   time.Now,
		locks: xsync.NewMapOf[uuid.UUID, *sync.Mutex](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// lockKey serializes mutating operations on a single logical key.
// The mutex registry grows with the set of keys touched by this process.
func (r *Repository[T]) lockKey(key uuid.UUID) func() {
	mu, _ := r.locks.LoadOrStore(key, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}

// GetActive returns the unique active row for key, or absence if no row for
// the key is currently active (including keys with only archived/deleted rows).
func (r *Repository[T]) GetActive(ctx context.Context, key uuid.UUID) (T, bool, error) {
	r.log.Debug(ctx, "get active", "key", key)
	return r.store.GetByKeyAndStatus(ctx, key, entity.StatusActive)
}

// ListActive returns all active rows across keys.
func (r *Repository[T]) ListActive(ctx context.Context) ([]T, error) {
	return r.ListByStatus(ctx, entity.StatusActive)
}

// ListByStatus returns all rows with the given status, in store order.
func (r *Repository[T]) ListByStatus(ctx context.Context, status entity.Status) ([]T, error) {
	r.log.Debug(ctx, "list by status", "status", status)
	return r.store.ListByStatus(ctx, status)
}

// ListAll returns every row regardless of key or status.
func (r *Repository[T]) ListAll(ctx context.Context) ([]T, error) {
	r.log.Debug(ctx, "list all")
	return r.store.ListAll(ctx)
}

// Create stores the first revision of a new logical entity.
//
// Preconditions, first failure wins: the key must be set (common.ErrMissingKey),
// no row may exist for the key yet (common.ErrAlreadyExists), and the record
// must arrive active (common.ErrInvalidStatus). The stored row gets a fresh
// storage identity, revision 1 and a creation timestamp.
func (r *Repository[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T

	m := rec.Meta()
	if m.Key == uuid.Nil {
		return zero, common.ErrMissingKey
	}

	unlock := r.lockKey(m.Key)
	defer unlock()

	exists, err := r.store.ExistsByKey(ctx, m.Key)
	if err != nil {
		return zero, err
	}
	if exists {
		return zero, fmt.Errorf("key %s: %w", m.Key, common.ErrAlreadyExists)
	}

	if m.Status != entity.StatusActive {
		return zero, fmt.Errorf("status %q: %w", m.Status, common.ErrInvalidStatus)
	}

	r.log.Info(ctx, "creating entity", "key", m.Key)
	stored, err := r.insertRow(ctx, rec, 1)
	if err != nil {
		return zero, err
	}
	r.log.Info(ctx, "entity created", "key", m.Key)
	return stored, nil
}

// Update stores a new revision for an existing logical entity.
//
// The current active row, if any, is archived in place first; then rec is
// inserted as a brand-new row with the next revision and active status. A key
// with no row at all fails with common.ErrNotFound. A key whose rows are all
// archived or deleted is revived: the new revision continues from the highest
// existing revision, so revisions stay unique per key.
func (r *Repository[T]) Update(ctx context.Context, rec T) (T, error) {
	var zero T

	m := rec.Meta()
	if m.Key == uuid.Nil {
		return zero, common.ErrMissingKey
	}

	unlock := r.lockKey(m.Key)
	defer unlock()

	exists, err := r.store.ExistsByKey(ctx, m.Key)
	if err != nil {
		return zero, err
	}
	if !exists {
		return zero, fmt.Errorf("key %s: %w", m.Key, common.ErrNotFound)
	}

	r.log.Info(ctx, "updating entity", "key", m.Key)

	archived, found, err := r.updateStatus(ctx, m.Key, entity.StatusArchived)
	if err != nil {
		return zero, err
	}

	var revision int
	if found {
		revision = archived.Meta().Revision + 1
	} else {
		revision, err = r.nextRevision(ctx, m.Key)
		if err != nil {
			return zero, err
		}
	}

	stored, err := r.insertRow(ctx, rec, revision)
	if err != nil {
		return zero, err
	}
	r.log.Info(ctx, "entity updated", "key", m.Key, "revision", revision)
	return stored, nil
}

// UpdateStatus flips the status of the current active row for key without
// creating a new revision: same storage identity, same revision. Absence of
// an active row is a normal outcome, not an error. A status outside the
// lifecycle enum fails with common.ErrInvalidStatus.
func (r *Repository[T]) UpdateStatus(ctx context.Context, key uuid.UUID, status entity.Status) (T, bool, error) {
	var zero T
	if !status.Valid() {
		return zero, false, fmt.Errorf("status %q: %w", status, common.ErrInvalidStatus)
	}

	unlock := r.lockKey(key)
	defer unlock()

	return r.updateStatus(ctx, key, status)
}

// Delete soft-deletes the current active row for key. Equivalent to
// UpdateStatus(key, StatusDeleted); the row (and the key's whole revision
// history) stays in the store.
func (r *Repository[T]) Delete(ctx context.Context, key uuid.UUID) (T, bool, error) {
	return r.UpdateStatus(ctx, key, entity.StatusDeleted)
}

// ListRevisions returns the full history of key, newest revision first.
// An unknown key yields an empty history.
func (r *Repository[T]) ListRevisions(ctx context.Context, key uuid.UUID) ([]T, error) {
	r.log.Debug(ctx, "list revisions", "key", key)
	return r.store.ListByKey(ctx, key)
}

// GetRevision returns the row matching both key and revision exactly.
func (r *Repository[T]) GetRevision(ctx context.Context, key uuid.UUID, revision int) (T, bool, error) {
	r.log.Debug(ctx, "get revision", "key", key, "revision", revision)
	return r.store.GetByKeyAndRevision(ctx, key, revision)
}

// Exists reports whether key has any row at all, regardless of status.
func (r *Repository[T]) Exists(ctx context.Context, key uuid.UUID) (bool, error) {
	return r.store.ExistsByKey(ctx, key)
}

// updateStatus is UpdateStatus without the per-key lock, for use inside Update.
func (r *Repository[T]) updateStatus(ctx context.Context, key uuid.UUID, status entity.Status) (T, bool, error) {
	var zero T

	rec, found, err := r.store.GetByKeyAndStatus(ctx, key, entity.StatusActive)
	if err != nil || !found {
		return zero, false, err
	}

	r.log.Info(ctx, "updating entity status", "key", key, "status", status)
	rec.Meta().Status = status
	stored, err := r.store.UpdateStatus(ctx, rec)
	if err != nil {
		return zero, false, err
	}
	return stored, true, nil
}

// nextRevision continues a revived key's numbering from its highest existing
// revision. Only called when the key exists but has no active row.
func (r *Repository[T]) nextRevision(ctx context.Context, key uuid.UUID) (int, error) {
	history, err := r.store.ListByKey(ctx, key)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 {
		return 1, nil
	}
	return history[0].Meta().Revision + 1, nil
}

// insertRow stamps rec as a fresh active physical row and persists it.
func (r *Repository[T]) insertRow(ctx context.Context, rec T, revision int) (T, error) {
	m := rec.Meta()
	m.StorageID = uuid.New()
	m.Status = entity.StatusActive
	m.Revision = revision
	m.CreatedAt = r.now()
	return r.store.Insert(ctx, rec)
}
