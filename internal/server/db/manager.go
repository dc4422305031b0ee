// Package db wires repositories to their storage backend and owns schema
// migrations.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/revkeeper/internal/repository"
	"github.com/dmitrijs2005/revkeeper/internal/server/models"
)

// RepositoryManager hands out the server's repositories over one backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Documents() *repository.Repository[*models.Document]
	Close() error
}
