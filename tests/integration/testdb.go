// Package integration spins up a real PostgreSQL instance per test via
// testcontainers and runs the schema migrations against it.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a migrated PostgreSQL database backed by a disposable
// container. Each call to NewTestDB gets its own container, so tests
// never see each other's rows.
type TestDB struct {
	DB        *gorm.DB
	sqlDB     *sql.DB
	container testcontainers.Container
	t         *testing.T
}

// NewTestDB starts a PostgreSQL container, applies all migrations, and
// registers teardown on t.Cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("invoice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "resolve container DSN")

	db, sqlDB := openGorm(t, dsn)
	applyMigrations(t, sqlDB)

	testDB := &TestDB{DB: db, sqlDB: sqlDB, container: container, t: t}
	t.Cleanup(testDB.close)
	return testDB
}

func (tdb *TestDB) close() {
	if tdb.sqlDB != nil {
		tdb.sqlDB.Close()
	}
	if tdb.container != nil {
		if err := tdb.container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("terminate container: %v", err)
		}
	}
}

func openGorm(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	logLevel := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	require.NoError(t, err, "connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "unwrap sql.DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

func applyMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "locate migrations directory")

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	require.NoError(t, err, "create migrate instance")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "apply migrations")
	}
}

// findMigrationsPath walks up from this file toward the repository
// root until it hits the migrations directory.
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// CreateTestOwner inserts an owner row so billing rows can reference
// it. The password hash is a fixed bcrypt digest; these rows are never
// used for credential checks.
func (tdb *TestDB) CreateTestOwner(ownerID fmt.Stringer) {
	tdb.t.Helper()

	short := ownerID.String()[:8]
	err := tdb.DB.Exec(`
		INSERT INTO owners (id, created_at, updated_at, version, email, password_hash, name, status)
		VALUES (?, NOW(), NOW(), 1, ?, '$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW', ?, 'active')
		ON CONFLICT (id) DO NOTHING
	`, ownerID.String(), fmt.Sprintf("owner-%s@test.local", short), fmt.Sprintf("Test Owner %s", short)).Error
	require.NoError(tdb.t, err, "create test owner")
}

// CreateTestClient inserts a client row so invoices can reference it.
func (tdb *TestDB) CreateTestClient(ownerID, clientID fmt.Stringer) {
	tdb.t.Helper()

	short := clientID.String()[:8]
	err := tdb.DB.Exec(`
		INSERT INTO clients (id, created_at, updated_at, version, owner_id, name, email)
		VALUES (?, NOW(), NOW(), 1, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, clientID.String(), ownerID.String(), fmt.Sprintf("Test Client %s", short), fmt.Sprintf("client-%s@test.local", short)).Error
	require.NoError(tdb.t, err, "create test client")
}
