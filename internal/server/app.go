// Package server wires configuration, storage backends and transports
// together and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/avast/retry-go"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/cache"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/rest"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

const dbConnectAttempts = 10

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	cache    *cache.Client
	services rest.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := waitForDB(ctx, db, logger, time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if n, err := rm.Sessions(db).DeleteExpired(ctx, time.Now()); err != nil {
		logger.Warn(ctx, "expired session purge failed", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "purged expired sessions", "count", n)
	}

	gw, err := storage.NewS3Gateway(ctx, c)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := gw.EnsureBucket(ctx); err != nil {
		// Uploads degrade to skipped images until storage comes back.
		logger.Warn(ctx, "object storage unavailable", "bucket", c.S3Bucket, "error", err)
	}

	redis := cache.New(c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err := redis.Ping(ctx); err != nil {
		logger.Warn(ctx, "session cache unavailable", "addr", c.RedisAddr, "error", err)
	}

	templates := services.NewTemplateService()

	return &App{
		config: c,
		logger: logger,
		db:     db,
		cache:  redis,
		services: rest.Services{
			Users: services.NewUserService(db, rm, c,
				cache.NewSessionCache(redis, c.SessionCacheTTL),
				services.NewLogResetNotifier(logger), logger),
			Notes:     services.NewNoteService(db, rm, gw, templates, c, logger),
			Templates: templates,
			Analytics: services.NewAnalyticsService(db, rm),
			Export:    services.NewExportService(db, rm),
		},
	}, nil
}

// waitForDB pings db with exponential backoff until it answers.
func waitForDB(ctx context.Context, db gs.Pinger, l logging.Logger, delay time.Duration) error {
	return retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(dbConnectAttempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.Warn(ctx, "database not ready", "attempt", n+1, "error", err)
		}),
	)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.services, rest.Options{
		MaxImageSize: app.config.MaxImageSize,
		MaxImages:    app.config.MaxImagesPerRequest,
	}, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.db, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a server fails, then releases the
// database and cache connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.cache.Close(); err != nil {
		app.logger.Warn(ctx, "cache close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
