package postgres

import (
	"context"
	"fmt"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

// HolderStore implements storage.HolderStore using PostgreSQL.
type HolderStore struct {
	pool *Pool
}

// NewHolderStore creates a new HolderStore.
func NewHolderStore(pool *Pool) *HolderStore {
	return &HolderStore{pool: pool}
}

var _ storage.HolderStore = (*HolderStore)(nil)

// Insert adds a new holder. Returns ErrDuplicateKey if id or name exists.
func (s *HolderStore) Insert(ctx context.Context, h *domain.Holder) error {
	if err := storage.ValidateHolder(h); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `INSERT INTO holders (id, name) VALUES ($1, $2)`, h.ID, h.Name)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert holder: %w", err)
	}
	return nil
}

// GetByID retrieves a holder by ID. Returns ErrNotFound if not exists.
func (s *HolderStore) GetByID(ctx context.Context, id string) (*domain.Holder, error) {
	return s.getOne(ctx, `SELECT id, name FROM holders WHERE id = $1`, id)
}

// GetByName retrieves a holder by name. Returns ErrNotFound if not exists.
func (s *HolderStore) GetByName(ctx context.Context, name string) (*domain.Holder, error) {
	return s.getOne(ctx, `SELECT id, name FROM holders WHERE name = $1`, name)
}

func (s *HolderStore) getOne(ctx context.Context, query, arg string) (*domain.Holder, error) {
	var h domain.Holder
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&h.ID, &h.Name); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get holder: %w", err)
	}
	return &h, nil
}

// GetByIDs retrieves the known holders among ids, ordered by id.
func (s *HolderStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Holder, error) {
	if len(ids) == 0 {
		return []*domain.Holder{}, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT id, name FROM holders WHERE id = ANY($1::text[]) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get holders by ids: %w", err)
	}
	defer rows.Close()

	holders := []*domain.Holder{}
	for rows.Next() {
		var h domain.Holder
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, fmt.Errorf("scan holder row: %w", err)
		}
		holders = append(holders, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holder rows: %w", err)
	}
	return holders, nil
}
