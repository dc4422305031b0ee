package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/revkeeper/internal/repository"
	"github.com/dmitrijs2005/revkeeper/internal/server/models"
	"github.com/dmitrijs2005/revkeeper/internal/store/memstore"
)

// InMemoryRepositoryManager backs the repositories with process-local
// stores. Used in tests and for running the server without a database.
type InMemoryRepositoryManager struct {
	documents *repository.Repository[*models.Document]
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		documents: repository.New[*models.Document](memstore.NewStore(models.CloneDocument)),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) Documents() *repository.Repository[*models.Document] {
	return m.documents
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
