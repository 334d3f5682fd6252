package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// A zero sequence_id falls back to the BIGSERIAL sequence.
const insertSnapshotQuery = `
	INSERT INTO position_snapshots (sequence_id, holder_id, date, shares, percentage, recorded_at)
	VALUES (
		COALESCE(NULLIF($1::bigint, 0), nextval(pg_get_serial_sequence('position_snapshots', 'sequence_id'))),
		$2, $3, $4, $5, $6
	)
	RETURNING sequence_id
`

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertSnapshot(ctx context.Context, q execQuerier, s *domain.PositionSnapshot) error {
	var seq int64
	err := q.QueryRow(ctx, insertSnapshotQuery,
		s.SequenceID,
		s.HolderID,
		s.Date.Time(),
		s.Shares,
		s.Percentage,
		s.RecordedAt,
	).Scan(&seq)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return err
	}
	s.SequenceID = seq
	return nil
}

// Insert adds a new snapshot. The assigned sequence id is written back to s.
func (st *SnapshotStore) Insert(ctx context.Context, s *domain.PositionSnapshot) error {
	if err := storage.ValidateSnapshot(s); err != nil {
		return err
	}
	if err := insertSnapshot(ctx, st.pool, s); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return err
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (st *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, s := range snapshots {
		if err := storage.ValidateSnapshot(s); err != nil {
			return err
		}
	}

	tx, err := st.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	assigned := make([]int64, len(snapshots))
	for i, s := range snapshots {
		c := *s
		if err := insertSnapshot(ctx, tx, &c); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				return err
			}
			return fmt.Errorf("insert snapshot in bulk: %w", err)
		}
		assigned[i] = c.SequenceID
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	// write back only once the batch is durable
	for i, s := range snapshots {
		s.SequenceID = assigned[i]
	}
	return nil
}

// GetByDateRange retrieves snapshots within [start, end] ordered by (holder_id, date, sequence_id).
func (st *SnapshotStore) GetByDateRange(ctx context.Context, start, end domain.Date, holderIDs []string) ([]*domain.PositionSnapshot, error) {
	query := `
		SELECT sequence_id, holder_id, date, shares, percentage, recorded_at
		FROM position_snapshots
		WHERE date >= $1 AND date <= $2
		  AND (cardinality($3::text[]) = 0 OR holder_id = ANY($3::text[]))
		ORDER BY holder_id ASC, date ASC, sequence_id ASC
	`
	if holderIDs == nil {
		holderIDs = []string{}
	}

	rows, err := st.pool.Query(ctx, query, start.Time(), end.Time(), holderIDs)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by date range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func scanSnapshots(rows pgx.Rows) ([]*domain.PositionSnapshot, error) {
	var snapshots []*domain.PositionSnapshot

	for rows.Next() {
		var (
			s    domain.PositionSnapshot
			date time.Time
		)
		if err := rows.Scan(&s.SequenceID, &s.HolderID, &date, &s.Shares, &s.Percentage, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		s.Date = domain.DateOf(date)
		s.RecordedAt = s.RecordedAt.UTC()
		snapshots = append(snapshots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}
