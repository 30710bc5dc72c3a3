package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestStore starts a disposable Postgres container, applies the
// embedded migrations against it, and returns a Store wired to it.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping testcontainers-backed test in -short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	store, err := Open(ctx, Config{
		Host:         host,
		Port:         port.Int(),
		User:         "test",
		Password:     "test",
		Database:     "test",
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestOpenAppliesMigrations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var exists bool
	err := store.DB().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'policyproof_runs')`,
	).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertAndGetRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := RunRecord{
		RunID:             "run-1",
		InputPDFHash:      "abc123",
		QuestionnaireHash: "def456",
		CatalogHash:       "ghi789",
		StartedAt:         now,
		FinishedAt:        now.Add(time.Minute),
		ProofSealed:       true,
		ProofHash:         "sealed-hash",
		MacroScore:        0.85,
		Band:              "SATISFACTORIO",
	}
	require.NoError(t, store.Insert(ctx, rec))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ProofHash, got.ProofHash)
	assert.InDelta(t, rec.MacroScore, got.MacroScore, 1e-9)
	assert.Equal(t, rec.Band, got.Band)
}

func TestGetMissingRunReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestListByBandFiltersAndOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, RunRecord{RunID: "a", StartedAt: base, FinishedAt: base, Band: "SATISFACTORIO"}))
	require.NoError(t, store.Insert(ctx, RunRecord{RunID: "b", StartedAt: base.Add(time.Hour), FinishedAt: base, Band: "SATISFACTORIO"}))
	require.NoError(t, store.Insert(ctx, RunRecord{RunID: "c", StartedAt: base, FinishedAt: base, Band: "DEFICIENTE"}))

	runs, err := store.ListByBand(ctx, "SATISFACTORIO")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].RunID) // most recent first
}
