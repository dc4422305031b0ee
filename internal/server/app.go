// Package server initializes and runs the application server.
// It wires the configured storage backend, starts the gRPC endpoint,
// the periodic snapshot exporter and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/revkeeper/internal/entity"
	"github.com/dmitrijs2005/revkeeper/internal/logging"
	"github.com/dmitrijs2005/revkeeper/internal/server/config"
	"github.com/dmitrijs2005/revkeeper/internal/server/db"
	"github.com/dmitrijs2005/revkeeper/internal/server/documents"
	"github.com/dmitrijs2005/revkeeper/internal/server/snapshot"

	gs "github.com/dmitrijs2005/revkeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	manager  db.RepositoryManager
	handlers *documents.Handlers
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	var manager db.RepositoryManager
	if c.DatabaseDSN == "" {
		manager = db.NewInMemoryRepositoryManager()
	} else {
		m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		manager = m
	}

	h := documents.NewHandlers(manager.Documents(), logger)

	return &App{config: c, logger: logger, manager: manager, handlers: h}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// snapshotRow is the exported form of one stored revision. Bookkeeping
// fields are excluded from the regular payload encoding, so the dump
// carries them explicitly.
type snapshotRow struct {
	Key       uuid.UUID     `json:"key"`
	Status    entity.Status `json:"status"`
	Revision  int           `json:"revision"`
	CreatedAt time.Time     `json:"created_at"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Tags      []string      `json:"tags"`
}

func (app *App) snapshotSource() snapshot.Source {
	repo := app.manager.Documents()
	return func(ctx context.Context) (any, error) {
		docs, err := repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]snapshotRow, 0, len(docs))
		for _, d := range docs {
			m := d.Meta()
			rows = append(rows, snapshotRow{
				Key:       m.Key,
				Status:    m.Status,
				Revision:  m.Revision,
				CreatedAt: m.CreatedAt,
				Title:     d.Title,
				Body:      d.Body,
				Tags:      d.Tags,
			})
		}
		return rows, nil
	}
}

func (app *App) startSnapshotExporter(ctx context.Context, cancelFunc context.CancelFunc) {

	opts := snapshot.Options{
		RootUser:     app.config.S3RootUser,
		RootPassword: app.config.S3RootPassword,
		Region:       app.config.S3Region,
		BaseEndpoint: app.config.S3BaseEndpoint,
		Bucket:       app.config.S3Bucket,
		Prefix:       app.config.SnapshotPrefix,
	}

	client, err := snapshot.NewS3Client(ctx, opts)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	e := snapshot.NewExporter(client, opts, app.snapshotSource(), app.logger)
	e.Run(ctx, app.config.SnapshotInterval)
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.SnapshotInterval > 0 && app.config.S3Bucket != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startSnapshotExporter(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
