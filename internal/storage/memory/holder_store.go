package memory

import (
	"context"
	"sort"
	"sync"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

// HolderStore is an in-memory implementation of storage.HolderStore.
type HolderStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Holder
	byName map[string]*domain.Holder // names are unique
}

// NewHolderStore creates a new in-memory holder store.
func NewHolderStore() *HolderStore {
	return &HolderStore{
		byID:   make(map[string]*domain.Holder),
		byName: make(map[string]*domain.Holder),
	}
}

// Insert adds a new holder. Returns ErrDuplicateKey if id or name already exists.
func (s *HolderStore) Insert(_ context.Context, h *domain.Holder) error {
	if err := storage.ValidateHolder(h); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[h.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byName[h.Name]; exists {
		return storage.ErrDuplicateKey
	}

	c := *h
	s.byID[h.ID] = &c
	s.byName[h.Name] = &c
	return nil
}

// GetByID retrieves a holder by ID. Returns ErrNotFound if not exists.
func (s *HolderStore) GetByID(_ context.Context, id string) (*domain.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	c := *h
	return &c, nil
}

// GetByName retrieves a holder by name. Returns ErrNotFound if not exists.
func (s *HolderStore) GetByName(_ context.Context, name string) (*domain.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.byName[name]
	if !exists {
		return nil, storage.ErrNotFound
	}
	c := *h
	return &c, nil
}

// GetByIDs retrieves the known holders among ids, ordered by id.
func (s *HolderStore) GetByIDs(_ context.Context, ids []string) ([]*domain.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Holder, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if h, ok := s.byID[id]; ok {
			c := *h
			result = append(result, &c)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ storage.HolderStore = (*HolderStore)(nil)
