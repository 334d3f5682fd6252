package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore on SQLite.
// Dates are stored as day ordinals and recorded_at as unix nanoseconds.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a new snapshot, assigning a sequence id when it is zero.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.PositionSnapshot) error {
	return s.InsertBulk(ctx, []*domain.PositionSnapshot{snap})
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, snap := range snapshots {
		if err := storage.ValidateSnapshot(snap); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence_id), 0) FROM position_snapshots`).Scan(&next); err != nil {
		return fmt.Errorf("read last sequence id: %w", err)
	}
	for _, snap := range snapshots {
		next = max(next, snap.SequenceID)
	}

	assigned := make([]int64, len(snapshots))
	for i, snap := range snapshots {
		seq := snap.SequenceID
		if seq == 0 {
			next++
			seq = next
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO position_snapshots (sequence_id, holder_id, date, shares, percentage, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			seq, snap.HolderID, snap.Date.Ordinal(), snap.Shares, snap.Percentage, snap.RecordedAt.UnixNano(),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert snapshot: %w", err)
		}
		assigned[i] = seq
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	for i, snap := range snapshots {
		snap.SequenceID = assigned[i]
	}
	return nil
}

// GetByDateRange retrieves snapshots within [start, end] ordered by (holder_id, date, sequence_id).
func (s *SnapshotStore) GetByDateRange(ctx context.Context, start, end domain.Date, holderIDs []string) ([]*domain.PositionSnapshot, error) {
	query := `
		SELECT sequence_id, holder_id, date, shares, percentage, recorded_at
		FROM position_snapshots
		WHERE date >= ? AND date <= ?`
	args := []any{start.Ordinal(), end.Ordinal()}
	if len(holderIDs) > 0 {
		query += ` AND holder_id IN (?` + strings.Repeat(",?", len(holderIDs)-1) + `)`
		for _, id := range holderIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY holder_id, date, sequence_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by date range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]*domain.PositionSnapshot, error) {
	var snapshots []*domain.PositionSnapshot
	for rows.Next() {
		var (
			snap     domain.PositionSnapshot
			ordinal  int64
			recorded int64
		)
		if err := rows.Scan(&snap.SequenceID, &snap.HolderID, &ordinal, &snap.Shares, &snap.Percentage, &recorded); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Date = domain.Date(ordinal)
		snap.RecordedAt = time.Unix(0, recorded).UTC()
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}
