package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

// HolderStore implements storage.HolderStore on SQLite.
type HolderStore struct {
	db *DB
}

// NewHolderStore creates a new HolderStore.
func NewHolderStore(db *DB) *HolderStore {
	return &HolderStore{db: db}
}

var _ storage.HolderStore = (*HolderStore)(nil)

// Insert adds a new holder. Returns ErrDuplicateKey if id or name exists.
func (s *HolderStore) Insert(ctx context.Context, h *domain.Holder) error {
	if err := storage.ValidateHolder(h); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO holders (id, name, created_at) VALUES (?, ?, ?)`,
		h.ID, h.Name, time.Now().UnixNano())
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
	return s.getOne(ctx, `SELECT id, name FROM holders WHERE id = ?`, id)
}

// GetByName retrieves a holder by name. Returns ErrNotFound if not exists.
func (s *HolderStore) GetByName(ctx context.Context, name string) (*domain.Holder, error) {
	return s.getOne(ctx, `SELECT id, name FROM holders WHERE name = ?`, name)
}

func (s *HolderStore) getOne(ctx context.Context, query, arg string) (*domain.Holder, error) {
	var h domain.Holder
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&h.ID, &h.Name); err != nil {
		if isNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get holder: %w", err)
	}
	return &h, nil
}

// GetByIDs retrieves the known holders among ids, ordered by id.
func (s *HolderStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Holder, error) {
	holders := []*domain.Holder{}
	if len(ids) == 0 {
		return holders, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT id, name FROM holders WHERE id IN (?` + strings.Repeat(",?", len(ids)-1) + `) ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get holders by ids: %w", err)
	}
	defer rows.Close()

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
