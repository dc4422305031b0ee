package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/revkeeper/internal/common"
	"github.com/dmitrijs2005/revkeeper/internal/entity"
	"github.com/dmitrijs2005/revkeeper/internal/logging"
	"github.com/dmitrijs2005/revkeeper/internal/repository"
	"github.com/dmitrijs2005/revkeeper/internal/server/models"
	"github.com/dmitrijs2005/revkeeper/internal/store/memstore"
	"github.com/dmitrijs2005/revkeeper/internal/validation"
)

func newHandlers(t *testing.T) *Handlers {
	t.Helper()
	s := memstore.NewStore(models.CloneDocument)
	repo := repository.New[*models.Document](s)
	return NewHandlers(repo, logging.Nop())
}

func createReq(key string) CreateRequest {
	return CreateRequest{Key: key, Title: "readme", Body: "hello"}
}

func TestCreate_StoresActiveFirstRevision(t *testing.T) {
	h := newHandlers(t)
	key := uuid.New()

	doc, err := h.Create(context.Background(), createReq(key.String()))
	require.NoError(t, err)

	assert.Equal(t, key, doc.Key)
	assert.Equal(t, "readme", doc.Title)
	assert.Equal(t, 1, doc.Revision)
	assert.Equal(t, entity.StatusActive, doc.Status)
}

func TestCreate_InvalidRequestAggregatesErrors(t *testing.T) {
	h := newHandlers(t)

	_, err := h.Create(context.Background(), CreateRequest{Key: "not-a-uuid", Tags: []string{" "}})
	require.Error(t, err)

	var agg *validation.AggregateError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errors, 3)

	kinds := map[validation.Kind]int{}
	for _, e := range agg.Errors {
		kinds[e.Kind]++
	}
	assert.Equal(t, 2, kinds[validation.KindInvalidFormat], "bad key + blank tag")
	assert.Equal(t, 1, kinds[validation.KindRequired], "missing title")
}

func TestCreate_DuplicateKeySurfacesDomainError(t *testing.T) {
	h := newHandlers(t)
	key := uuid.New().String()
	ctx := context.Background()

	_, err := h.Create(ctx, createReq(key))
	require.NoError(t, err)

	_, err = h.Create(ctx, createReq(key))
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestUpdate_CreatesNewRevision(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()
	key := uuid.New().String()

	_, err := h.Create(ctx, createReq(key))
	require.NoError(t, err)

	updated, err := h.Update(ctx, UpdateRequest{Key: key, Title: "readme v2", Body: "changed"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Revision)
	assert.Equal(t, "readme v2", updated.Title)

	history, err := h.History(ctx, HistoryRequest{Key: key})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.StatusActive, history[0].Status)
	assert.Equal(t, entity.StatusArchived, history[1].Status)
}

func TestUpdate_UnknownKey(t *testing.T) {
	h := newHandlers(t)

	_, err := h.Update(context.Background(), UpdateRequest{Key: uuid.New().String(), Title: "t"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_AbsenceIsNilDocument(t *testing.T) {
	h := newHandlers(t)

	doc, err := h.Get(context.Background(), GetRequest{Key: uuid.New().String()})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestGet_ReturnsActiveRevision(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()
	key := uuid.New().String()

	_, err := h.Create(ctx, createReq(key))
	require.NoError(t, err)

	doc, err := h.Get(ctx, GetRequest{Key: key})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "readme", doc.Title)
}

func TestDelete_SoftDeletesAndGetReturnsNil(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()
	key := uuid.New().String()

	_, err := h.Create(ctx, createReq(key))
	require.NoError(t, err)

	deleted, err := h.Delete(ctx, DeleteRequest{Key: key})
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, entity.StatusDeleted, deleted.Status)

	doc, err := h.Get(ctx, GetRequest{Key: key})
	require.NoError(t, err)
	assert.Nil(t, doc)

	history, err := h.History(ctx, HistoryRequest{Key: key})
	require.NoError(t, err)
	assert.Len(t, history, 1, "delete keeps the row")
}

func TestDelete_UnknownKeyIsNil(t *testing.T) {
	h := newHandlers(t)

	doc, err := h.Delete(context.Background(), DeleteRequest{Key: uuid.New().String()})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestHistory_ValidatesKey(t *testing.T) {
	h := newHandlers(t)

	_, err := h.History(context.Background(), HistoryRequest{Key: ""})
	var agg *validation.AggregateError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errors, 1)
	assert.Equal(t, validation.KindRequired, agg.Errors[0].Kind)
}
