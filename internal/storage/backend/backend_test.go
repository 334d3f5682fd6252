package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holder-flow/internal/config"
	"holder-flow/internal/domain"
	"holder-flow/internal/observability"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetrics("backend_test", prometheus.NewRegistry())
}

func roundTrip(t *testing.T, s *Stores) {
	t.Helper()
	ctx := context.Background()
	d := domain.MustParseDate("2025-03-01")

	snap := &domain.PositionSnapshot{HolderID: "h1", Date: d, Shares: 10, Percentage: 0.1, RecordedAt: time.Now().UTC()}
	require.NoError(t, s.Primary.Insert(ctx, snap))
	assert.NotZero(t, snap.SequenceID)

	got, err := s.Snapshots.GetByDateRange(ctx, d, d, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].Shares)

	require.NoError(t, s.Holders.Insert(ctx, &domain.Holder{ID: "h1", Name: "Alpha"}))
	h, err := s.Holders.GetByID(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", h.Name)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), config.StorageConfig{Driver: "memory", SnapshotSource: "primary"}, testMetrics(), nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Mirror)
	roundTrip(t, s)

	st, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Status{Driver: "memory", SnapshotSource: "primary"}, st)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "holder-flow.db")
	s, err := Open(context.Background(), config.StorageConfig{Driver: "sqlite", SnapshotSource: "primary", SQLitePath: path}, testMetrics(), nil)
	require.NoError(t, err)
	defer s.Close()

	roundTrip(t, s)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "mongo"}, testMetrics(), nil)
	assert.ErrorContains(t, err, `unknown storage driver "mongo"`)
}
