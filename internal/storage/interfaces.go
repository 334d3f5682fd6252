package storage

import (
	"context"

	"holder-flow/internal/domain"
)

// SnapshotStore provides access to position_snapshots storage.
// Snapshots are append-only: a revision of a (holder, date) position is a new snapshot.
type SnapshotStore interface {
	// Insert adds a new snapshot. A zero SequenceID is assigned by the store and written back.
	// Returns ErrDuplicateKey if (holder_id, date, sequence_id) exists.
	Insert(ctx context.Context, s *domain.PositionSnapshot) error

	// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, snapshots []*domain.PositionSnapshot) error

	// GetByDateRange retrieves snapshots with date in [start, end] (inclusive), ordered by
	// (holder_id, date, sequence_id). An empty holderIDs means all holders.
	GetByDateRange(ctx context.Context, start, end domain.Date, holderIDs []string) ([]*domain.PositionSnapshot, error)
}

// HolderStore provides access to holders storage.
type HolderStore interface {
	// Insert adds a new holder. Returns ErrDuplicateKey if id or name exists.
	Insert(ctx context.Context, h *domain.Holder) error

	// GetByID retrieves a holder by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Holder, error)

	// GetByName retrieves a holder by display name. Returns ErrNotFound if not exists.
	GetByName(ctx context.Context, name string) (*domain.Holder, error)

	// GetByIDs retrieves the holders that exist among ids, ordered by id. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Holder, error)
}
