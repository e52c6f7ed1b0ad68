// Package application assembles the import service from configuration.
// Both the HTTP server and the CLI start here so they share one wiring of
// database, catalog and service.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/listimport/internal/config"
	"github.com/JonMunkholm/listimport/internal/core"
	_ "github.com/JonMunkholm/listimport/internal/core/collections" // Register collection types
	"github.com/JonMunkholm/listimport/internal/database"
	"github.com/JonMunkholm/listimport/internal/metrics"
	"github.com/JonMunkholm/listimport/internal/tmdb"
	"github.com/jackc/pgx/v5/pgxpool"
)

// poolStatsInterval is how often pool gauges are refreshed.
const poolStatsInterval = 15 * time.Second

// App holds the long-lived dependencies of a running process.
type App struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Catalog *tmdb.Client
	Service *core.Service

	poolStats *metrics.PoolStatsCollector
}

// Option customizes Open.
type Option func(*options)

type options struct {
	poolStats bool
}

// WithPoolStats exports connection pool gauges to Prometheus.
func WithPoolStats() Option {
	return func(o *options) { o.poolStats = true }
}

// Open connects to the database, applies the schema when configured and
// builds the import service. The caller must Close the App.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	poolConfig, err := PoolConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("connected to database", "name", databaseName(cfg.Database.URL))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		slog.Info("database schema applied")
	}

	catalog, err := NewCatalog(cfg.Catalog)
	if err != nil {
		pool.Close()
		return nil, err
	}

	service, err := core.NewService(pool, catalog, cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	app := &App{
		Config:  cfg,
		Pool:    pool,
		Catalog: catalog,
		Service: service,
	}
	if o.poolStats {
		app.poolStats = metrics.NewPoolStatsCollector(pool)
		app.poolStats.Start(poolStatsInterval)
	}

	slog.Info("collections registered", "count", core.CollectionCount())
	return app, nil
}

// Close stops background collectors and closes the pool.
func (a *App) Close() {
	if a.poolStats != nil {
		a.poolStats.Stop()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// PoolConfig parses the database URL and applies the pool limits.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	return poolConfig, nil
}

// NewCatalog builds the TMDB client with the configured pacing.
func NewCatalog(cfg config.CatalogConfig) (*tmdb.Client, error) {
	client, err := tmdb.New(cfg.APIKey, cfg.BaseURL, cfg.Language,
		tmdb.WithTimeout(cfg.Timeout),
		tmdb.WithRateLimit(float64(cfg.RequestsPerSecond), cfg.Burst),
	)
	if err != nil {
		return nil, fmt.Errorf("create TMDB client: %w", err)
	}
	return client, nil
}

// databaseName returns the database part of a connection URL for logging.
func databaseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
