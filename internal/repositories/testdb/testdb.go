// Package testdb opens a migrated Postgres database for repository tests.
package testdb

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "FERN_TEST_DATABASE_URL"

func Logger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// Open connects to the test database, applies the migrations and truncates the
// catalog tables. The test is skipped in short mode or when no DSN is set.
func Open(t *testing.T) database.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Postgres repository test in short mode")
	}
	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("Skipping Postgres repository test, %s is not set", EnvDatabaseURL)
	}

	ctx := context.Background()
	logger := Logger()

	db, err := database.Connect(ctx, "postgres", dsn, database.PoolConfig{MaxOpenConns: 5}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	instance, ok := db.(*database.DatabaseInstance)
	require.True(t, ok)
	migrate(t, instance.DB, logger)

	_, err = db.ExecContext(ctx, "TRUNCATE matg_attributes, item_masters, material_types, mat_groups, super_groups CASCADE")
	require.NoError(t, err)

	return db
}

func migrate(t *testing.T, db *sqlx.DB, logger ectologger.Logger) {
	t.Helper()

	driver, err := database.PostgresDriver(db.DB, "fern_test")
	require.NoError(t, err)

	service := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: migrationsFolder(),
	})
	require.NoError(t, service.Migrate("fern_test", driver))
}

func migrationsFolder() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "db", "pg")
}
