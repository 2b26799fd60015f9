//go:build integration

package integration_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/justestif/go-songplay-warehouse/internal/db"
)

// startPostgres spins up a PostgreSQL container and returns a connection
// string. The container is terminated via t.Cleanup.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("warehouse"),
		tcpostgres.WithUsername("student"),
		tcpostgres.WithPassword("student"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	url, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "get connection string")
	return url
}

// openWarehouse connects and applies schema.sql.
func openWarehouse(ctx context.Context, t *testing.T, url string) *db.DB {
	t.Helper()
	database, err := db.New(ctx, url)
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(database.Close)

	ddl, err := os.ReadFile("../../schema.sql")
	require.NoError(t, err, "read schema.sql")
	_, err = database.Pool().Exec(ctx, string(ddl))
	require.NoError(t, err, "apply schema")
	return database
}

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
