// Package testutil starts the throwaway Postgres and S3-compatible
// containers used by integration and end-to-end tests.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/database"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

const (
	postgresImage = "postgres:17-alpine"
	rustfsImage   = "rustfs/rustfs:latest"

	dbUser     = "dupefinder"
	dbPassword = "dupefinder"
	dbName     = "dupefinder"

	// RustFSAccessKey and RustFSSecretKey are the credentials the RustFS
	// container is started with.
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"
)

// tables lists every catalog table, children first.
var tables = []string{"searches", "dupes", "products"}

func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port string) (testcontainers.Container, string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start %s", req.Image)

	host, err := container.Host(ctx)
	require.NoError(t, err, "failed to get container host")

	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err, "failed to get mapped port %s", port)

	return container, fmt.Sprintf("%s:%s", host, mapped.Port())
}

// PostgresContainer is a running PostgreSQL container
type PostgresContainer struct {
	Container testcontainers.Container
	Addr      string
}

// NewPostgresContainer starts PostgreSQL and waits until it accepts connections.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	container, addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		// The entrypoint restarts postgres once after init, so the ready line
		// appears twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}, "5432")

	return &PostgresContainer{Container: container, Addr: addr}
}

// ConnectionString returns a DSN for the container's database
func (pc *PostgresContainer) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbUser, dbPassword),
		Host:     pc.Addr,
		Path:     dbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Terminate stops and removes the container
func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(pc.Container)
}

// NewTestPool applies the migrations in migrationsDir with the same runner
// the server uses, then opens a pool.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()
	logger := zaptest.NewLogger(t)

	require.NoError(t, database.RunMigrations(pc.ConnectionString(), migrationsDir, logger), "failed to run migrations")

	pool, err := database.NewPool(ctx, database.Config{
		URL:             pc.ConnectionString(),
		ApplicationName: "dupefinder-test",
		ConnectAttempts: 5,
		RetryDelay:      250 * time.Millisecond,
		Logger:          logger,
	})
	require.NoError(t, err, "failed to connect to test database")
	return pool
}

// TruncateAll empties every catalog table
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range tables {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SetupDatabase starts a migrated PostgreSQL container and registers cleanup
// of both the pool and the container on t.
func SetupDatabase(ctx context.Context, t *testing.T, migrationsDir string) *pgxpool.Pool {
	pc := NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(context.Background()) })

	pool := NewTestPool(ctx, t, pc, migrationsDir)
	t.Cleanup(pool.Close)

	require.NoError(t, TruncateAll(ctx, pool))
	return pool
}

// RustFSContainer is a running S3-compatible object store used for the
// page archive tests.
type RustFSContainer struct {
	Container testcontainers.Container
	Addr      string
}

// NewRustFSContainer starts RustFS with RustFSAccessKey and RustFSSecretKey.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	container, addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        rustfsImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": RustFSAccessKey,
			"RUSTFS_SECRET_KEY": RustFSSecretKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}, "9000")

	return &RustFSContainer{Container: container, Addr: addr}
}

// Endpoint returns the S3 endpoint URL
func (rc *RustFSContainer) Endpoint() string {
	return "http://" + rc.Addr
}

// Terminate stops and removes the container
func (rc *RustFSContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(rc.Container)
}
