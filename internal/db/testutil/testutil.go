// Package testutil starts a throwaway Postgres for repository integration tests.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image        = "postgres:17-alpine"
	testDatabase = "video_sim_test"
	testUser     = "test"
	testPassword = "test"
)

// simTables are truncated between subtests, children first.
var simTables = []string{"job_runs", "comments", "videos", "categories"}

// TestDatabase is a migrated Postgres container and a pool connected to it.
type TestDatabase struct {
	Pool      *pgxpool.Pool
	Container *postgres.PostgresContainer
	ConnStr   string
}

// SetupTestDatabase starts Postgres with the schema from migrations/.
// Callers live three directories below the module root (internal/db/repository).
func SetupTestDatabase(t *testing.T) *TestDatabase {
	return SetupTestDatabaseWithMigrations(t, "../../../migrations")
}

// SetupTestDatabaseWithMigrations is SetupTestDatabase with a migrations
// directory relative to the calling test's package.
func SetupTestDatabaseWithMigrations(t *testing.T, migrationsDir string) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrateUp(t, connStr, migrationsDir)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	return &TestDatabase{Pool: pool, Container: container, ConnStr: connStr}
}

func migrateUp(t *testing.T, connStr, dir string) {
	t.Helper()

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)

	m, err := migrate.New("file://"+abs, connStr)
	require.NoError(t, err)
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}
}

// Cleanup closes the pool and terminates the container.
func (td *TestDatabase) Cleanup(t *testing.T) {
	if td.Pool != nil {
		td.Pool.Close()
	}
	if td.Container != nil {
		require.NoError(t, td.Container.Terminate(context.Background()))
	}
}

// TruncateTables empties every simulator table and resets the id sequences.
func (td *TestDatabase) TruncateTables(t *testing.T) {
	t.Helper()

	query := "TRUNCATE TABLE "
	for i, table := range simTables {
		if i > 0 {
			query += ", "
		}
		query += table
	}
	query += " RESTART IDENTITY CASCADE"

	_, err := td.Pool.Exec(context.Background(), query)
	require.NoError(t, err)
}

// CountRows returns the number of rows in table matching where (may be empty).
func (td *TestDatabase) CountRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*)::int FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var n int
	require.NoError(t, td.Pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}
