package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/revkeeper/internal/common"
	"github.com/dmitrijs2005/revkeeper/internal/entity"
)

type note struct {
	entity.Record
	Text string `json:"text"`
}

func newNote() *note { return &note{} }

func newStoreWithMock(t *testing.T) (*Store[*note], sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	s, err := NewStore(db, "notes", newNote)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return s, mock, db
}

func storedNote(key uuid.UUID, status entity.Status, revision int) *note {
	return &note{
		Record: entity.Record{
			StorageID: uuid.New(),
			Key:       key,
			Status:    status,
			Revision:  revision,
			CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Text: "hello",
	}
}

func TestNewStore_RejectsBadTableName(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	for _, name := range []string{"", "Notes", "notes; DROP TABLE x", "1notes"} {
		if _, err := NewStore(db, name, newNote); err == nil {
			t.Fatalf("expected error for table name %q", name)
		}
	}
}

func TestInsert_Success(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	n := storedNote(uuid.New(), entity.StatusActive, 1)

	mock.ExpectExec(`INSERT INTO notes \(id, key, status, revision, created_at, payload\)`).
		WithArgs(n.StorageID, n.Key, "active", 1, n.CreatedAt, []byte(`{"text":"hello"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stored, err := s.Insert(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.StorageID != n.StorageID {
		t.Fatalf("storage id changed: %v != %v", stored.StorageID, n.StorageID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_AssignsStorageID(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	n := storedNote(uuid.New(), entity.StatusActive, 1)
	n.StorageID = uuid.Nil

	mock.ExpectExec(`INSERT INTO notes`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stored, err := s.Insert(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.StorageID == uuid.Nil {
		t.Fatal("expected a fresh storage id")
	}
}

func TestInsert_UniqueViolation(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	n := storedNote(uuid.New(), entity.StatusActive, 1)

	mock.ExpectExec(`INSERT INTO notes`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := s.Insert(context.Background(), n)
	if !errors.Is(err, common.ErrDuplicateStorageID) {
		t.Fatalf("want ErrDuplicateStorageID, got %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO notes`).
		WillReturnError(errors.New("db is down"))

	_, err := s.Insert(context.Background(), storedNote(uuid.New(), entity.StatusActive, 1))
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdateStatus_Success(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	n := storedNote(uuid.New(), entity.StatusArchived, 2)

	mock.ExpectExec(`UPDATE notes SET status = \$2 WHERE id = \$1`).
		WithArgs(n.StorageID, "archived").
		WillReturnResult(sqlmock.NewResult(0, 1))

	stored, err := s.UpdateStatus(context.Background(), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != entity.StatusArchived {
		t.Fatalf("want archived, got %s", stored.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatus_UnexpectedRowsAffected(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE notes SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.UpdateStatus(context.Background(), storedNote(uuid.New(), entity.StatusDeleted, 1))
	if err == nil || !regexp.MustCompile(`unexpected rows affected: 0`).MatchString(err.Error()) {
		t.Fatalf("expected rows-affected error, got %v", err)
	}
}

func metaColumns() []string {
	return []string{"id", "key", "status", "revision", "created_at", "payload"}
}

func TestGetByKeyAndStatus_Found(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	key := uuid.New()
	id := uuid.New()
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, key, status, revision, created_at, payload FROM notes\s+WHERE key = \$1 AND status = \$2`).
		WithArgs(key, "active").
		WillReturnRows(sqlmock.NewRows(metaColumns()).
			AddRow(id.String(), key.String(), "active", 3, createdAt, []byte(`{"text":"stored"}`)))

	got, ok, err := s.GetByKeyAndStatus(context.Background(), key, entity.StatusActive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a row")
	}
	if got.StorageID != id || got.Key != key || got.Revision != 3 ||
		got.Status != entity.StatusActive || got.Text != "stored" {
		t.Fatalf("row decoded wrong: %+v", got)
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("created_at decoded wrong: %v", got.CreatedAt)
	}
}

func TestGetByKeyAndStatus_Absent(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, key, status, revision, created_at, payload FROM notes`).
		WillReturnRows(sqlmock.NewRows(metaColumns()))

	_, ok, err := s.GetByKeyAndStatus(context.Background(), uuid.New(), entity.StatusActive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected absence")
	}
}

func TestListByKey_OrderedQuery(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	key := uuid.New()
	createdAt := time.Now()

	mock.ExpectQuery(`SELECT id, key, status, revision, created_at, payload FROM notes\s+WHERE key = \$1\s+ORDER BY revision DESC`).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows(metaColumns()).
			AddRow(uuid.New().String(), key.String(), "active", 2, createdAt, []byte(`{"text":"b"}`)).
			AddRow(uuid.New().String(), key.String(), "archived", 1, createdAt, []byte(`{"text":"a"}`)))

	recs, err := s.ListByKey(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[0].Revision != 2 || recs[1].Revision != 1 {
		t.Fatalf("unexpected result: %+v", recs)
	}
}

func TestExistsByKey(t *testing.T) {
	s, mock, db := newStoreWithMock(t)
	defer db.Close()

	key := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM notes WHERE key = \$1\)`).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.ExistsByKey(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected true")
	}
}
