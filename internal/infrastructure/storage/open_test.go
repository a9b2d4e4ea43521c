package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonyx/internal/infrastructure/metrics"
)

func TestOpen_SQLiteExportsPoolStats(t *testing.T) {
	ctx := context.Background()
	stores, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "carbonyx.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	require.NoError(t, stores.Migrate(ctx))
	require.NoError(t, stores.Ping(ctx))

	stats := stores.PoolStats()
	assert.Equal(t, 1, stats.MaxOpen)
	assert.Equal(t, 0, stats.InUse)

	reg := prometheus.NewRegistry()
	metrics.RegisterPool(reg, stores.Driver, stores.PoolStats)
	count, err := testutil.GatherAndCount(reg, "carbonyx_db_pool_max_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported storage driver")
}
