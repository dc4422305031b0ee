package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/revkeeper/internal/logging"
	"github.com/dmitrijs2005/revkeeper/internal/repository"
	"github.com/dmitrijs2005/revkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/revkeeper/internal/server/models"
	"github.com/dmitrijs2005/revkeeper/internal/store/sqlstore"
)

type PostgresRepositoryManager struct {
	db        *sql.DB
	documents *repository.Repository[*models.Document]
}

// NewPostgresRepositoryManager opens dsn with pgx, builds the repositories
// over SQL stores and applies pending migrations.
func NewPostgresRepositoryManager(dsn string, log logging.Logger) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	docStore, err := sqlstore.NewStore(db, "documents", func() *models.Document { return &models.Document{} })
	if err != nil {
		return nil, fmt.Errorf("document store creation error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:        db,
		documents: repository.New(docStore, repository.WithLogger[*models.Document](log)),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Documents() *repository.Repository[*models.Document] {
	return m.documents
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
