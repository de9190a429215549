//go:build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/aevon-lab/storefront-signals/internal/catalog"
	"github.com/aevon-lab/storefront-signals/internal/core/storage/postgres"
	"github.com/aevon-lab/storefront-signals/internal/emitter"
	"github.com/aevon-lab/storefront-signals/internal/ingestion"
	"github.com/aevon-lab/storefront-signals/internal/migrations"
	"github.com/aevon-lab/storefront-signals/internal/projection"
	"github.com/aevon-lab/storefront-signals/internal/server"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type integrationHarness struct {
	baseURL    string
	tracker    *emitter.Tracker
	db         *sql.DB
	adapter    *postgres.Adapter
	cancel     context.CancelFunc
	serverDone chan error
	cleanup    func()
}

func (h *integrationHarness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case <-h.serverDone:
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}

	require.NoError(t, h.adapter.Close())
	h.cleanup()
}

// startDatabase returns a DSN from SIGNALS_TEST_DSN, or starts a throwaway
// Postgres container.
func startDatabase(t *testing.T) (string, func()) {
	t.Helper()

	if dsn := os.Getenv("SIGNALS_TEST_DSN"); dsn != "" {
		return dsn, func() {}
	}
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("Skipping integration test because Docker is unavailable: %v", err)
	}

	container, err := tcpostgres.Run(ctx, "postgres:17",
		tcpostgres.WithDatabase("signals"),
		tcpostgres.WithUsername("signals"),
		tcpostgres.WithPassword("signals"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	return dsn, func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}
}

func startHarness(t *testing.T) *integrationHarness {
	t.Helper()

	dsn, cleanup := startDatabase(t)

	adapter, err := postgres.NewAdapter(dsn, postgres.Options{MaxOpenConns: 20, MaxIdleConns: 20})
	require.NoError(t, err)
	require.NoError(t, migrations.RunMigrations(adapter.DB(), true))
	require.NoError(t, adapter.Prepare())
	require.NoError(t, resetDatabase(t, adapter.DB()))

	resolver := catalog.NewResolver(postgres.NewProductAdapter(adapter.DB(), 0), 100)
	ingestionSvc := ingestion.NewService(adapter, resolver, ingestion.Options{MaxUpsertAttempts: 5})
	projectionSvc := projection.NewService(adapter)

	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	httpServer := server.New(addr, adapter, server.Options{Mode: "release"})
	ingestionSvc.RegisterRoutes(httpServer.Engine)
	projectionSvc.RegisterRoutes(httpServer.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() { serverDone <- httpServer.Run(ctx) }()

	baseURL := "http://" + addr
	waitForHealthy(t, baseURL)

	return &integrationHarness{
		baseURL:    baseURL,
		tracker:    emitter.NewTracker(baseURL, 5*time.Second),
		db:         adapter.DB(),
		adapter:    adapter,
		cancel:     cancel,
		serverDone: serverDone,
		cleanup:    cleanup,
	}
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func resetDatabase(t *testing.T, db *sql.DB) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE user_interactions`); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE products`); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, name, category) VALUES
			('p-shoe', 'Trail Shoe', 'shoes'),
			('p-mug', 'Coffee Mug', 'kitchen'),
			('p-lamp', 'Desk Lamp', NULL)
	`)
	return err
}

func countRecords(t *testing.T, db *sql.DB, userID, productID string) int {
	t.Helper()

	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM user_interactions WHERE user_id = $1 AND product_id = $2`, userID, productID).Scan(&n)
	require.NoError(t, err)
	return n
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
