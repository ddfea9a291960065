package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/audit"
	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/config"
	"indus/hrportal/internal/hrapi"
	"indus/hrportal/internal/httpserver"
	"indus/hrportal/internal/observability"
	"indus/hrportal/internal/screens"
)

const purgeInterval = time.Minute

type App struct {
	cfg    config.Config
	log    *logrus.Logger
	db     *sql.DB
	redis  *redis.Client
	auth   *auth.Service
	server *httpserver.Server
}

func New(cfg config.Config) (*App, error) {
	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	metrics := observability.NewMetrics()
	a := &App{cfg: cfg, log: logger}

	client, err := hrapi.New(hrapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Metrics: metrics,
		Logger:  observability.Component(logger, "hrapi"),
	})
	if err != nil {
		return nil, fmt.Errorf("create hr api client: %w", err)
	}

	store, ready, err := a.openSessionStore()
	if err != nil {
		a.close()
		return nil, err
	}

	registry := screens.NewRegistry(client, screens.Options{
		BannerTTL: cfg.BannerTTL,
		Logger:    observability.Component(logger, "screens"),
	})

	authService, err := auth.NewService(client, auth.ServiceConfig{
		SessionTTL:   cfg.Session.TTL,
		SessionStore: store,
		OnSessionEnd: func(s auth.Session) { registry.Drop(s.ID) },
		Metrics:      metrics,
		Logger:       observability.Component(logger, "auth"),
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create auth service: %w", err)
	}
	if err := authService.LoadSessionState(); err != nil {
		a.close()
		return nil, fmt.Errorf("load auth session state: %w", err)
	}
	a.auth = authService

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	server, err := httpserver.New(cfg.HTTP, httpserver.Deps{
		Auth:              authService,
		Workspaces:        registry,
		Audit:             audit.NewLogger(cfg.AuditLogFile, observability.Component(logger, "audit")),
		Metrics:           metrics,
		Logger:            observability.Component(logger, "http"),
		Ready:             ready,
		FrontendDistDir:   cfg.FrontendDistDir,
		AllowedOrigins:    cfg.AllowedOrigins,
		SignInRateLimit:   cfg.SignInRateLimit,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		MetricsPath:       metricsPath,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create http server: %w", err)
	}
	a.server = server
	return a, nil
}

// openSessionStore picks the session backend: Postgres when DATABASE_URL is
// set, then Redis, then the state file.
func (a *App) openSessionStore() (auth.SessionStore, func(context.Context) error, error) {
	switch {
	case a.cfg.DatabaseURL != "":
		db, err := sql.Open("postgres", a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		if err := db.Ping(); err != nil {
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		store, err := auth.NewPostgresSessionStore(db)
		if err != nil {
			return nil, nil, fmt.Errorf("create postgres session store: %w", err)
		}
		a.log.Info("session store: postgres")
		return store, db.PingContext, nil

	case a.cfg.RedisURL != "":
		opts, err := redis.ParseURL(a.cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		a.redis = rdb
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		store, err := auth.NewRedisSessionStore(rdb, "")
		if err != nil {
			return nil, nil, fmt.Errorf("create redis session store: %w", err)
		}
		a.log.Info("session store: redis")
		return store, func(ctx context.Context) error { return rdb.Ping(ctx).Err() }, nil

	default:
		store, err := auth.NewFileSessionStore(a.cfg.Session.StateFile)
		if err != nil {
			return nil, nil, fmt.Errorf("create session store: %w", err)
		}
		a.log.WithField("path", a.cfg.Session.StateFile).Info("session store: file")
		return store, nil, nil
	}
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)

	go func() {
		a.log.WithField("addr", a.cfg.HTTP.Addr).Info("http server starting")
		errCh <- a.server.Start()
	}()

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go a.purgeSessions(purgeCtx)

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}

func (a *App) purgeSessions(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.auth.PurgeExpired(); n > 0 {
				a.log.WithField("count", n).Info("expired sessions purged")
			}
		}
	}
}

func (a *App) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
