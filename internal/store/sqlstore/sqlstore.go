// Package sqlstore implements the store contract on top of a SQL database
// through dbx.DBTX (*sql.DB or *sql.Tx). Bookkeeping fields live in fixed
// columns; domain fields are serialized into a JSON payload column.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/revkeeper/internal/common"
	"github.com/dmitrijs2005/revkeeper/internal/dbx"
	"github.com/dmitrijs2005/revkeeper/internal/entity"
)

// pgUniqueViolation is the postgres SQLSTATE for unique constraint errors.
const pgUniqueViolation = "23505"

var tablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store persists one entity kind in a table with the schema
// (id, key, status, revision, created_at, payload).
type Store[T entity.Versioned] struct {
	db    dbx.DBTX
	table string
	newT  func() T
}

// NewStore binds a store to db and table. newT constructs an empty record
// for row scanning. The table name must be a plain lowercase identifier;
// anything else is rejected to keep it safe for query interpolation.
func NewStore[T entity.Versioned](db dbx.DBTX, table string, newT func() T) (*Store[T], error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store[T]{db: db, table: table, newT: newT}, nil
}

// Insert persists rec as a new row. A zero storage identity is assigned
// here. A primary-key collision maps to common.ErrDuplicateStorageID.
func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T

	m := rec.Meta()
	if m.StorageID == uuid.Nil {
		m.StorageID = uuid.New()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to encode payload: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, key, status, revision, created_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.table)

	_, err = s.db.ExecContext(ctx, query,
		m.StorageID, m.Key, string(m.Status), m.Revision, m.CreatedAt, payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return zero, fmt.Errorf("insert %s: %w", m.StorageID, common.ErrDuplicateStorageID)
		}
		return zero, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// UpdateStatus persists the status of the row identified by rec's storage
// identity. Exactly one row must be affected.
func (s *Store[T]) UpdateStatus(ctx context.Context, rec T) (T, error) {
	var zero T

	m := rec.Meta()
	query := fmt.Sprintf(`UPDATE %s SET status = $2 WHERE id = $1`, s.table)

	res, err := s.db.ExecContext(ctx, query, m.StorageID, string(m.Status))
	if err != nil {
		return zero, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return zero, fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return zero, fmt.Errorf("update status %s: unexpected rows affected: %d", m.StorageID, n)
	}
	return rec, nil
}

func (s *Store[T]) GetByKeyAndStatus(ctx context.Context, key uuid.UUID, status entity.Status) (T, bool, error) {
	query := fmt.Sprintf(`
		SELECT id, key, status, revision, created_at, payload FROM %s
		WHERE key = $1 AND status = $2
		LIMIT 1
	`, s.table)
	return s.getOne(ctx, query, key, string(status))
}

func (s *Store[T]) ListByStatus(ctx context.Context, status entity.Status) ([]T, error) {
	query := fmt.Sprintf(`
		SELECT id, key, status, revision, created_at, payload FROM %s
		WHERE status = $1
	`, s.table)
	return s.listRows(ctx, query, string(status))
}

func (s *Store[T]) ListAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT id, key, status, revision, created_at, payload FROM %s`, s.table)
	return s.listRows(ctx, query)
}

func (s *Store[T]) ListByKey(ctx context.Context, key uuid.UUID) ([]T, error) {
	query := fmt.Sprintf(`
		SELECT id, key, status, revision, created_at, payload FROM %s
		WHERE key = $1
		ORDER BY revision DESC
	`, s.table)
	return s.listRows(ctx, query, key)
}

func (s *Store[T]) GetByKeyAndRevision(ctx context.Context, key uuid.UUID, revision int) (T, bool, error) {
	query := fmt.Sprintf(`
		SELECT id, key, status, revision, created_at, payload FROM %s
		WHERE key = $1 AND revision = $2
		LIMIT 1
	`, s.table)
	return s.getOne(ctx, query, key, revision)
}

func (s *Store[T]) ExistsByKey(ctx context.Context, key uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, s.table)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (s *Store[T]) getOne(ctx context.Context, query string, args ...any) (T, bool, error) {
	var zero T

	rec := s.newT()
	var status string
	var payload []byte
	m := rec.Meta()

	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&m.StorageID, &m.Key, &status, &m.Revision, &m.CreatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("db error: %w", err)
	}

	if err := finishRow(rec, status, payload); err != nil {
		return zero, false, err
	}
	return rec, true, nil
}

func (s *Store[T]) listRows(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		rec := s.newT()
		var status string
		var payload []byte
		m := rec.Meta()
		if err := rows.Scan(&m.StorageID, &m.Key, &status, &m.Revision, &m.CreatedAt, &payload); err != nil {
			return nil, err
		}
		if err := finishRow(rec, status, payload); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// finishRow decodes the payload into rec and restores the status after the
// decode (the payload never carries bookkeeping fields, but a stray tag in a
// domain type must not be able to overwrite them).
func finishRow[T entity.Versioned](rec T, status string, payload []byte) error {
	m := *rec.Meta()
	m.Status = entity.Status(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, rec); err != nil {
			return fmt.Errorf("failed to decode payload: %w", err)
		}
	}
	*rec.Meta() = m
	return nil
}
