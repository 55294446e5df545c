// Package server wires the CMS backend together: it opens the store, runs
// migrations, builds the services and starts the HTTP API and the gRPC
// health endpoint, stopping both on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/newsnow/internal/logging"
	"github.com/dmitrijs2005/newsnow/internal/server/auth"
	"github.com/dmitrijs2005/newsnow/internal/server/config"
	"github.com/dmitrijs2005/newsnow/internal/server/httpapi"
	"github.com/dmitrijs2005/newsnow/internal/server/ratelimit"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/newsnow/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/newsnow/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	http   *httpapi.Server
	health *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tokens, err := auth.NewTokenManager(c.SecretKey, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token manager init error: %w", err)
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var limiter services.LoginLimiter
	if c.RedisAddr != "" {
		rc, err := ratelimit.Dial(ctx, c.RedisAddr)
		if err != nil {
			// the limiter fails open, so a missing redis only disables throttling
			logger.Warn(ctx, "login limiter disabled", "error", err)
		} else {
			app.redis = rc
			limiter = ratelimit.New(rc, c.LoginRateLimit, c.LoginRateWindow)
		}
	}

	metrics := httpapi.NewMetrics()
	router := httpapi.NewRouter(httpapi.Deps{
		Sessions:   services.NewSessionService(db, rm, tokens, limiter, c),
		Users:      services.NewUserService(db, rm, c),
		Categories: services.NewCategoryService(db, rm),
		Articles:   services.NewArticleService(db, rm),
		Comments:   services.NewCommentService(db, rm),
		Settings:   services.NewSettingsService(db, rm),
		Dashboard:  services.NewDashboardService(db, rm),
		Site:       services.NewSiteService(db, rm),
		Guard:      services.NewGuard(db, rm),
		Logger:     logger,
		Metrics:    metrics,
		Cookies: httpapi.CookieOptions{
			Domain:   c.CookieDomain,
			Secure:   c.CookieSecure(),
			SameSite: c.SameSite(),
		},
		AccessTTL:      tokens.AccessTTL(),
		RefreshTTL:     tokens.RefreshTTL(),
		AllowedOrigins: c.AllowedOrigins,
		Ready:          db.PingContext,
	})

	app.http = httpapi.NewServer(c.EndpointAddrHTTP, logger, router)
	if c.EndpointAddrGRPC != "" {
		app.health = gs.NewHealthServer(c.EndpointAddrGRPC, logger, db.PingContext)
	}

	return app, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc health server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a server fails, then closes the store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
