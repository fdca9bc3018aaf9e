// Package app initializes and runs the election server. It wires
// configuration, storage backends, the service layer and the HTTP
// endpoint, and handles graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muralvote/muralvote/internal/blob"
	"github.com/muralvote/muralvote/internal/config"
	"github.com/muralvote/muralvote/internal/httpapi"
	"github.com/muralvote/muralvote/internal/identity"
	"github.com/muralvote/muralvote/internal/imaging"
	"github.com/muralvote/muralvote/internal/logging"
	"github.com/muralvote/muralvote/internal/notify"
	"github.com/muralvote/muralvote/internal/repositories/repomanager"
	"github.com/muralvote/muralvote/internal/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *gin.Engine
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, blob.S3Options{
		User:         cfg.S3RootUser,
		Password:     cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	validator := &imaging.DecodeValidator{
		AllowedExtensions: cfg.AllowedExtensions,
		AllowedMimetypes:  cfg.AllowedMimetypes,
		MinWidth:          cfg.PictureMinWidth,
		MinHeight:         cfg.PictureMinHeight,
	}
	notifier := notify.NewLogNotifier(logger)

	router := httpapi.NewRouter(gin.ReleaseMode, httpapi.Deps{
		Config:     cfg,
		Elections:  services.NewElectionService(db, repos, notifier, logger),
		Candidates: services.NewCandidateService(db, repos, blobs, validator, notifier, logger),
		Votes:      services.NewVoteService(db, repos, logger),
		Results:    services.NewResultsService(db, repos),
		Identity:   identity.HeaderProvider{},
		Log:        logger,
	})

	return &App{config: cfg, logger: logger, db: db, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	server := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}
}
