// Package server wires the admissions portal core together: configuration,
// logging, database and migrations, object storage, and the service layer.
// It owns startup order and graceful shutdown; the request-facing transport
// embeds the App and calls into its services.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/enrollhub/admitd/internal/logging"
	"github.com/enrollhub/admitd/internal/server/config"
	"github.com/enrollhub/admitd/internal/server/repositories/repomanager"
	"github.com/enrollhub/admitd/internal/server/services"
	"github.com/enrollhub/admitd/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	IdentityService  *services.IdentityService
	SessionService   *services.SessionService
	DetailsService   *services.DetailsService
	PortfolioService *services.PortfolioService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("token-signing secret is not configured")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	blobs, err := storage.NewS3BlobStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing blob store: %w", err)
	}

	return &App{
		config:           cfg,
		logger:           logger,
		db:               db,
		IdentityService:  services.NewIdentityService(db, rm, cfg, logger),
		SessionService:   services.NewSessionService(db, rm, cfg, logger),
		DetailsService:   services.NewDetailsService(db, rm, logger),
		PortfolioService: services.NewPortfolioService(db, rm, blobs, cfg, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until the context is cancelled or a termination signal
// arrives, then releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancelFunc)

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
}
