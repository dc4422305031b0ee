package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/revkeeper/internal/handler"
	"github.com/dmitrijs2005/revkeeper/internal/logging"
	"github.com/dmitrijs2005/revkeeper/internal/repository"
	"github.com/dmitrijs2005/revkeeper/internal/server/models"
)

// Repo is the repository surface the document handlers consume.
type Repo = *repository.Repository[*models.Document]

// Handlers bundles the document operations behind the handler contract.
// Lookup-shaped operations report absence as a nil document, never an error.
type Handlers struct {
	repo Repo
	log  logging.Logger
}

func NewHandlers(repo Repo, log logging.Logger) *Handlers {
	return &Handlers{repo: repo, log: log.With("module", "documents")}
}

// Create runs the create operation through its validator.
func (h *Handlers) Create(ctx context.Context, req CreateRequest) (*models.Document, error) {
	return handler.Run[CreateRequest, *models.Document](ctx, createHandler{h}, req)
}

// Update runs the update-as-new-revision operation through its validator.
func (h *Handlers) Update(ctx context.Context, req UpdateRequest) (*models.Document, error) {
	return handler.Run[UpdateRequest, *models.Document](ctx, updateHandler{h}, req)
}

// Get returns the active revision for the requested key, or nil.
func (h *Handlers) Get(ctx context.Context, req GetRequest) (*models.Document, error) {
	return handler.Run[GetRequest, *models.Document](ctx, getHandler{h}, req)
}

// Delete soft-deletes the active revision, returning it, or nil when there
// was nothing active to delete.
func (h *Handlers) Delete(ctx context.Context, req DeleteRequest) (*models.Document, error) {
	return handler.Run[DeleteRequest, *models.Document](ctx, deleteHandler{h}, req)
}

// History lists every stored revision for the key, newest first.
func (h *Handlers) History(ctx context.Context, req HistoryRequest) ([]*models.Document, error) {
	return handler.Run[HistoryRequest, []*models.Document](ctx, historyHandler{h}, req)
}

type createHandler struct{ h *Handlers }

func (c createHandler) Validator() handler.Validator[CreateRequest] {
	return createValidator{}
}

func (c createHandler) Handle(ctx context.Context, req CreateRequest) (*models.Document, error) {
	key := uuid.MustParse(req.Key) // validator guarantees the format
	doc := models.NewDocument(key, req.Title, req.Body, req.Tags)

	stored, err := c.h.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	c.h.log.Info(ctx, "document created", "key", key)
	return stored, nil
}

type updateHandler struct{ h *Handlers }

func (u updateHandler) Validator() handler.Validator[UpdateRequest] {
	return updateValidator{}
}

func (u updateHandler) Handle(ctx context.Context, req UpdateRequest) (*models.Document, error) {
	key := uuid.MustParse(req.Key)
	doc := models.NewDocument(key, req.Title, req.Body, req.Tags)

	stored, err := u.h.repo.Update(ctx, doc)
	if err != nil {
		return nil, err
	}
	u.h.log.Info(ctx, "document updated", "key", key, "revision", stored.Revision)
	return stored, nil
}

type getHandler struct{ h *Handlers }

func (g getHandler) Validator() handler.Validator[GetRequest] {
	return keyOnlyValidator[GetRequest]{}
}

func (g getHandler) Handle(ctx context.Context, req GetRequest) (*models.Document, error) {
	doc, found, err := g.h.repo.GetActive(ctx, uuid.MustParse(req.Key))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return doc, nil
}

type deleteHandler struct{ h *Handlers }

func (d deleteHandler) Validator() handler.Validator[DeleteRequest] {
	return keyOnlyValidator[DeleteRequest]{}
}

func (d deleteHandler) Handle(ctx context.Context, req DeleteRequest) (*models.Document, error) {
	key := uuid.MustParse(req.Key)
	doc, found, err := d.h.repo.Delete(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	d.h.log.Info(ctx, "document deleted", "key", key)
	return doc, nil
}

type historyHandler struct{ h *Handlers }

func (hh historyHandler) Validator() handler.Validator[HistoryRequest] {
	return keyOnlyValidator[HistoryRequest]{}
}

func (hh historyHandler) Handle(ctx context.Context, req HistoryRequest) ([]*models.Document, error) {
	return hh.h.repo.ListRevisions(ctx, uuid.MustParse(req.Key))
}
