package observability

import (
	"context"
	"time"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

// SnapshotStore decorates a storage.SnapshotStore with query metrics.
type SnapshotStore struct {
	next     storage.SnapshotStore
	database string
	metrics  *Metrics
}

// InstrumentSnapshots wraps next; database labels the backend (postgres, clickhouse, ...).
func InstrumentSnapshots(next storage.SnapshotStore, database string, m *Metrics) *SnapshotStore {
	return &SnapshotStore{next: next, database: database, metrics: m}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) observe(op string, start time.Time, err error) {
	s.metrics.RecordDBQuery(s.database, op, time.Since(start).Seconds(), err)
}

// Insert delegates and records the call.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.PositionSnapshot) error {
	start := time.Now()
	err := s.next.Insert(ctx, snap)
	s.observe("insert", start, err)
	if err == nil {
		s.metrics.SnapshotsImported.Inc()
	}
	return err
}

// InsertBulk delegates and records the call.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PositionSnapshot) error {
	start := time.Now()
	err := s.next.InsertBulk(ctx, snapshots)
	s.observe("insert_bulk", start, err)
	if err == nil {
		s.metrics.SnapshotsImported.Add(float64(len(snapshots)))
	}
	return err
}

// GetByDateRange delegates and records the call.
func (s *SnapshotStore) GetByDateRange(ctx context.Context, start, end domain.Date, holderIDs []string) ([]*domain.PositionSnapshot, error) {
	begin := time.Now()
	snaps, err := s.next.GetByDateRange(ctx, start, end, holderIDs)
	s.observe("get_by_date_range", begin, err)
	return snaps, err
}
