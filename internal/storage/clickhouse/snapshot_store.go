package clickhouse

import (
	"context"
	"fmt"
	"time"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore over the ClickHouse mirror.
// The mirror copies rows from the primary store, so sequence ids must already be assigned.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds one snapshot.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.PositionSnapshot) error {
	return s.InsertBulk(ctx, []*domain.PositionSnapshot{snap})
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate (holder_id, date, sequence_id).
// MergeTree does not enforce uniqueness, so duplicates are checked before the batch is sent.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	type key struct {
		holderID   string
		date       domain.Date
		sequenceID int64
	}
	seen := make(map[key]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if err := storage.ValidateSnapshot(snap); err != nil {
			return err
		}
		if snap.SequenceID == 0 {
			return fmt.Errorf("%w: mirror rows need a sequence id", storage.ErrInvalidInput)
		}
		k := key{snap.HolderID, snap.Date, snap.SequenceID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO position_snapshots (
			holder_id, date, shares, percentage, recorded_at, sequence_id
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.HolderID, snap.Date.Time(), snap.Shares,
			snap.Percentage, snap.RecordedAt.UTC(), snap.SequenceID,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByDateRange retrieves snapshots within [start, end] ordered by (holder_id, date, sequence_id).
func (s *SnapshotStore) GetByDateRange(ctx context.Context, start, end domain.Date, holderIDs []string) ([]*domain.PositionSnapshot, error) {
	query := `
		SELECT holder_id, date, shares, percentage, recorded_at, sequence_id
		FROM position_snapshots
		WHERE date >= ? AND date <= ?
	`
	args := []any{start.Time(), end.Time()}
	if len(holderIDs) > 0 {
		query += ` AND has(?, holder_id)`
		args = append(args, holderIDs)
	}
	query += ` ORDER BY holder_id ASC, date ASC, sequence_id ASC`

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// DailyCount is the snapshot volume of one day.
type DailyCount struct {
	Date      domain.Date `json:"date"`
	Holders   uint64      `json:"holders"`
	Snapshots uint64      `json:"snapshots"`
}

// DailyCounts returns per-day snapshot volume within [start, end], ordered by date.
func (s *SnapshotStore) DailyCounts(ctx context.Context, start, end domain.Date) ([]DailyCount, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT date, holders, snapshots
		FROM daily_snapshot_counts
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.Time(), end.Time())
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var (
			c    DailyCount
			date time.Time
		)
		if err := rows.Scan(&date, &c.Holders, &c.Snapshots); err != nil {
			return nil, fmt.Errorf("scan daily count row: %w", err)
		}
		c.Date = domain.DateOf(date)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily count rows: %w", err)
	}
	return counts, nil
}

func (s *SnapshotStore) exists(ctx context.Context, snap *domain.PositionSnapshot) (bool, error) {
	query := `
		SELECT count(*) FROM position_snapshots
		WHERE holder_id = ? AND date = ? AND sequence_id = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, snap.HolderID, snap.Date.Time(), snap.SequenceID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanSnapshots(rows chRows) ([]*domain.PositionSnapshot, error) {
	var snapshots []*domain.PositionSnapshot

	for rows.Next() {
		var (
			snap domain.PositionSnapshot
			date time.Time
		)
		err := rows.Scan(&snap.HolderID, &date, &snap.Shares, &snap.Percentage, &snap.RecordedAt, &snap.SequenceID)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Date = domain.DateOf(date)
		snap.RecordedAt = snap.RecordedAt.UTC()
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}
