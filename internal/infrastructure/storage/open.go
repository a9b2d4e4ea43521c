// Package storage selects and opens the configured backing store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"carbonyx/internal/core/tx"
	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/domain/factors"
	"carbonyx/internal/infrastructure/metrics"
	"carbonyx/internal/infrastructure/storage/postgres"
	"carbonyx/internal/infrastructure/storage/postgres/emission_repo"
	"carbonyx/internal/infrastructure/storage/postgres/factor_repo"
	"carbonyx/internal/infrastructure/storage/sqlite"
	"carbonyx/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects a driver and its settings.
type Options struct {
	Driver           string
	DatabaseURL      string
	SQLitePath       string
	MaxConns         int
	StatementTimeout time.Duration
}

// EmissionStore reads aggregated emissions and writes source records.
type EmissionStore interface {
	emissions.Repository
	emissions.Writer
}

// Stores bundles the repositories of one open database.
type Stores struct {
	Driver    string
	Emissions EmissionStore
	Factors   factors.Repository
	TxManager tx.Manager

	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	stats   func() metrics.PoolStats
	close   func() error
}

// Ping checks the database is reachable.
func (s *Stores) Ping(ctx context.Context) error { return s.ping(ctx) }

// Migrate applies the embedded migrations for the driver.
func (s *Stores) Migrate(ctx context.Context) error { return s.migrate(ctx) }

// PoolStats snapshots the connection pool for metrics.
func (s *Stores) PoolStats() metrics.PoolStats { return s.stats() }

// Close releases the underlying connections.
func (s *Stores) Close() error { return s.close() }

// Open connects to the configured database. Migrations are not applied.
func Open(ctx context.Context, opts Options) (*Stores, error) {
	switch opts.Driver {
	case DriverPostgres:
		return openPostgres(ctx, opts)
	case DriverSQLite, "":
		return openSQLite(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", opts.Driver)
	}
}

func openPostgres(ctx context.Context, opts Options) (*Stores, error) {
	pool, err := postgres.Connect(ctx, opts.DatabaseURL, opts.MaxConns)
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool, opts.StatementTimeout)
	logger.Info(ctx, "storage opened", "driver", DriverPostgres, "max_conns", pool.Config().MaxConns)

	return &Stores{
		Driver:    DriverPostgres,
		Emissions: emission_repo.NewEmissionRepo(txm),
		Factors:   factor_repo.NewFactorRepo(txm),
		TxManager: txm,
		ping:      pool.Ping,
		migrate:   func(ctx context.Context) error { return postgres.Migrate(ctx, pool) },
		stats:     func() metrics.PoolStats { return pgxPoolStats(pool.Stat()) },
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(ctx context.Context, opts Options) (*Stores, error) {
	db, err := sqlite.Open(ctx, opts.SQLitePath)
	if err != nil {
		return nil, err
	}

	txm := sqlite.NewTxManager(db)
	logger.Info(ctx, "storage opened", "driver", DriverSQLite, "path", opts.SQLitePath)

	return &Stores{
		Driver:    DriverSQLite,
		Emissions: sqlite.NewEmissionRepo(txm),
		Factors:   sqlite.NewFactorRepo(txm),
		TxManager: txm,
		ping:      db.PingContext,
		migrate:   func(ctx context.Context) error { return sqlite.Migrate(ctx, db) },
		stats:     func() metrics.PoolStats { return sqlPoolStats(db.Stats()) },
		close:     db.Close,
	}, nil
}

func pgxPoolStats(st *pgxpool.Stat) metrics.PoolStats {
	return metrics.PoolStats{
		Open:     int(st.TotalConns()),
		InUse:    int(st.AcquiredConns()),
		Idle:     int(st.IdleConns()),
		MaxOpen:  int(st.MaxConns()),
		Waits:    st.EmptyAcquireCount(),
		WaitTime: st.EmptyAcquireWaitTime(),
	}
}

func sqlPoolStats(st sql.DBStats) metrics.PoolStats {
	return metrics.PoolStats{
		Open:     st.OpenConnections,
		InUse:    st.InUse,
		Idle:     st.Idle,
		MaxOpen:  st.MaxOpenConnections,
		Waits:    st.WaitCount,
		WaitTime: st.WaitDuration,
	}
}
