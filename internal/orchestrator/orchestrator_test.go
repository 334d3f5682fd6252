package orchestrator

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"holder-flow/internal/domain"
	"holder-flow/internal/ingestion"
	"holder-flow/internal/observability"
	"holder-flow/internal/storage/memory"
)

const records = `{"holder_id":"h1","holder_name":"Alpha","date":"2025-03-01","shares":100,"percentage":1}
{"holder_id":"h1","holder_name":"Alpha","date":"2025-03-02","shares":150,"percentage":1.5}
{"holder_id":"h2","holder_name":"Beta","date":"2025-03-01","shares":50,"percentage":0.5}
{"holder_id":"h3","date":"2025-03-02","shares":10,"percentage":0.1}
`

type countingCache struct {
	calls int
	err   error
}

func (c *countingCache) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func reader(s string) *ingestion.Reader {
	return ingestion.NewReader(strings.NewReader(s)).WithClock(func() time.Time {
		return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	})
}

func testMetrics() *observability.Metrics {
	return observability.NewMetrics("orchestrator_test", prometheus.NewRegistry())
}

func TestOrchestrator_Run(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	holders := memory.NewHolderStore()
	mirror := memory.NewSnapshotStore()
	cache := &countingCache{}
	m := testMetrics()

	orch := New(Options{
		Source:    reader(records),
		Snapshots: snapshots,
		Holders:   holders,
		Mirror:    mirror,
		Cache:     cache,
		Metrics:   m,
		BatchSize: 3,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Batches != 2 {
		t.Errorf("expected 2 batches, got %d", result.Batches)
	}
	if result.SnapshotsImported != 4 || result.SnapshotsMirrored != 4 {
		t.Errorf("expected 4 imported and mirrored, got %d and %d", result.SnapshotsImported, result.SnapshotsMirrored)
	}
	if result.HoldersCreated != 2 {
		t.Errorf("expected 2 holders created, got %d", result.HoldersCreated)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
	if cache.calls != 1 {
		t.Errorf("expected one cache invalidation, got %d", cache.calls)
	}
	if got := testutil.ToFloat64(m.SnapshotsImported); got != 4 {
		t.Errorf("expected snapshots_imported_total 4, got %v", got)
	}

	from, to := domain.MustParseDate("2025-03-01"), domain.MustParseDate("2025-03-31")
	primary, err := snapshots.GetByDateRange(ctx, from, to, nil)
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	mirrored, err := mirror.GetByDateRange(ctx, from, to, nil)
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(primary) != 4 || len(mirrored) != 4 {
		t.Fatalf("expected 4 snapshots in each store, got %d and %d", len(primary), len(mirrored))
	}
	for i := range primary {
		if primary[i].SequenceID == 0 || primary[i].SequenceID != mirrored[i].SequenceID {
			t.Errorf("mirror should keep primary sequence ids, got %d and %d", primary[i].SequenceID, mirrored[i].SequenceID)
		}
	}

	h, err := holders.GetByID(ctx, "h2")
	if err != nil || h.Name != "Beta" {
		t.Errorf("expected holder h2 named Beta, got %+v, %v", h, err)
	}
}

func TestOrchestrator_Run_Empty(t *testing.T) {
	cache := &countingCache{}
	orch := New(Options{
		Source:    reader("# nothing yet\n"),
		Snapshots: memory.NewSnapshotStore(),
		Cache:     cache,
		Metrics:   testMetrics(),
	})

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Batches != 0 || result.SnapshotsImported != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if cache.calls != 0 {
		t.Error("cache should not be invalidated when nothing was imported")
	}
}

func TestOrchestrator_Run_ExistingHolders(t *testing.T) {
	ctx := context.Background()
	holders := memory.NewHolderStore()
	if err := holders.Insert(ctx, &domain.Holder{ID: "h1", Name: "Alpha"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	orch := New(Options{
		Source:    reader(records),
		Snapshots: memory.NewSnapshotStore(),
		Holders:   holders,
		Metrics:   testMetrics(),
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.HoldersCreated != 1 || result.HoldersExisting != 1 {
		t.Errorf("expected 1 created and 1 existing, got %d and %d", result.HoldersCreated, result.HoldersExisting)
	}
}

type failingStore struct {
	memory.SnapshotStore
	err error
}

func (s *failingStore) InsertBulk(context.Context, []*domain.PositionSnapshot) error {
	return s.err
}

func TestOrchestrator_Run_MirrorFailureIsNotFatal(t *testing.T) {
	cache := &countingCache{err: errors.New("redis down")}
	orch := New(Options{
		Source:    reader(records),
		Snapshots: memory.NewSnapshotStore(),
		Mirror:    &failingStore{err: errors.New("clickhouse down")},
		Cache:     cache,
		Metrics:   testMetrics(),
	})

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.SnapshotsImported != 4 || result.SnapshotsMirrored != 0 {
		t.Errorf("expected 4 imported and 0 mirrored, got %d and %d", result.SnapshotsImported, result.SnapshotsMirrored)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected mirror and cache errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "clickhouse down") || !strings.Contains(result.Errors[1], "redis down") {
		t.Errorf("unexpected errors %v", result.Errors)
	}
}

func TestOrchestrator_Run_PrimaryFailureAborts(t *testing.T) {
	boom := errors.New("disk full")
	orch := New(Options{
		Source:    reader(records),
		Snapshots: &failingStore{err: boom},
		Metrics:   testMetrics(),
	})

	result, err := orch.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected primary store error, got %v", err)
	}
	if result.SnapshotsImported != 0 {
		t.Errorf("expected nothing imported, got %d", result.SnapshotsImported)
	}
}

func TestOrchestrator_Run_DecodeFailure(t *testing.T) {
	orch := New(Options{
		Source:    reader(records + "not json\n"),
		Snapshots: memory.NewSnapshotStore(),
		Metrics:   testMetrics(),
		BatchSize: 2,
	})

	result, err := orch.Run(context.Background())
	if !errors.Is(err, ingestion.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if result.SnapshotsImported != 4 {
		t.Errorf("expected earlier batches kept, got %d", result.SnapshotsImported)
	}
}

type staticSource struct {
	batches []*ingestion.Batch
}

func (s *staticSource) Next(int) (*ingestion.Batch, error) {
	if len(s.batches) == 0 {
		return nil, io.EOF
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

func TestOrchestrator_Run_RejectsUnorderedBatch(t *testing.T) {
	ctx := context.Background()
	recorded := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	d1 := domain.MustParseDate("2025-03-01")
	d2 := domain.MustParseDate("2025-03-02")
	snapshots := memory.NewSnapshotStore()

	orch := New(Options{
		Source: &staticSource{batches: []*ingestion.Batch{{
			Snapshots: []*domain.PositionSnapshot{
				{HolderID: "h1", Date: d2, Shares: 150, RecordedAt: recorded},
				{HolderID: "h1", Date: d1, Shares: 100, RecordedAt: recorded},
			},
		}}},
		Snapshots: snapshots,
		Metrics:   testMetrics(),
	})

	result, err := orch.Run(ctx)
	if !errors.Is(err, ingestion.ErrInvalidOrdering) {
		t.Fatalf("expected ErrInvalidOrdering, got %v", err)
	}
	if result.SnapshotsImported != 0 {
		t.Errorf("expected nothing imported, got %d", result.SnapshotsImported)
	}

	stored, err := snapshots.GetByDateRange(ctx, d1, d2, nil)
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("expected empty store, got %d snapshots", len(stored))
	}
}
