package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-duo/internal/config"
	"github.com/vancomm/minesweeper-duo/internal/database"
	"github.com/vancomm/minesweeper-duo/internal/middleware"
	"github.com/vancomm/minesweeper-duo/internal/relay"
	"github.com/vancomm/minesweeper-duo/internal/repository"
	"github.com/vancomm/minesweeper-duo/internal/session"
)

type App struct {
	logger   logrus.FieldLogger
	config   *config.Config
	router   *http.ServeMux
	registry *session.Registry
	hub      *relay.Hub
	ws       *config.WebSocket
	db       *pgxpool.Pool
}

func New(logger logrus.FieldLogger, cfg *config.Config) *App {
	return &App{
		logger:   logger,
		config:   cfg,
		router:   http.NewServeMux(),
		registry: session.NewRegistry(),
		ws:       config.NewWebSocket(),
	}
}

// setup builds the hub and the routes. recorder may be nil.
func (a *App) setup(recorder relay.Recorder) {
	a.hub = relay.NewHub(a.logger, a.registry, relay.Options{
		Token:        a.config.Token,
		OutboxSize:   a.config.OutboxSize,
		WriteTimeout: a.config.WriteTimeout,
		Recorder:     recorder,
	})
	a.loadRoutes()
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Cors(),
		middleware.Logging(a.logger),
	)
}

// openArchive connects to the archive database, when one is configured,
// and brings its schema up to date.
func (a *App) openArchive(ctx context.Context) (relay.Recorder, error) {
	url, err := a.config.DbURL()
	if err != nil {
		return nil, err
	}
	if url == "" {
		a.logger.Info("no database configured, sessions are not archived")
		return nil, nil
	}

	pool, schema, err := database.ConnectAndMigrate(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to db: %w", err)
	}
	a.logger.WithFields(logrus.Fields{
		"version": schema.Version,
		"dirty":   schema.Dirty,
	}).Info("archive schema ready")

	a.db = pool
	return repository.NewArchive(pool), nil
}

func (a *App) Start(ctx context.Context) error {
	recorder, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	if a.db != nil {
		defer a.db.Close()
	}

	a.setup(recorder)
	defer a.hub.Close()

	server := &http.Server{
		Addr:    a.config.Addr,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.logger.Infof("ready to serve @ %s", a.config.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
