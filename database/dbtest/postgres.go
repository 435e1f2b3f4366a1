// Package dbtest starts a throwaway PostgreSQL container for integration tests
// and hands back a migrated database.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"yamdb/database"
	"yamdb/internal/config"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const (
	image    = "docker.io/postgres:16-alpine"
	dbName   = "yamdb_test"
	user     = "postgres"
	password = "postgres"
)

// Start spawns postgres, migrates the schema and registers cleanup on t.
// Integration tests are skipped under -short.
func Start(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx, image,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("WARNING: failed to terminate postgres container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.Connect(ctx, &config.Config{
		DatabaseURL: dsn,
		DBMaxConns:  10,
		GoEnv:       "test",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(db.Gorm, logger))
	return db.Gorm
}

// Truncate empties every application table and restarts their id sequences.
func Truncate(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec(`TRUNCATE comments, reviews, genre_titles, titles, genres, categories, users RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)
}
