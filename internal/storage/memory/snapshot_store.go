package memory

import (
	"context"
	"sort"
	"sync"

	"holder-flow/internal/domain"
	"holder-flow/internal/storage"
)

type snapshotKey struct {
	holderID   string
	date       domain.Date
	sequenceID int64
}

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu      sync.RWMutex
	data    map[snapshotKey]*domain.PositionSnapshot
	lastSeq int64
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[snapshotKey]*domain.PositionSnapshot),
	}
}

func keyOf(s *domain.PositionSnapshot) snapshotKey {
	return snapshotKey{holderID: s.HolderID, date: s.Date, sequenceID: s.SequenceID}
}

// Insert adds a new snapshot, assigning a sequence id when it is zero.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.PositionSnapshot) error {
	if err := storage.ValidateSnapshot(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.SequenceID != 0 {
		if _, exists := s.data[keyOf(snap)]; exists {
			return storage.ErrDuplicateKey
		}
	}
	s.store(snap)
	return nil
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate and check explicit keys against stored and batch data
	batchKeys := make(map[snapshotKey]struct{}, len(snapshots))
	var maxSeq int64
	for _, snap := range snapshots {
		if err := storage.ValidateSnapshot(snap); err != nil {
			return err
		}
		if snap.SequenceID == 0 {
			continue
		}
		key := keyOf(snap)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
		maxSeq = max(maxSeq, snap.SequenceID)
	}

	// assigned ids must not collide with explicit ones later in the batch
	s.lastSeq = max(s.lastSeq, maxSeq)
	for _, snap := range snapshots {
		s.store(snap)
	}
	return nil
}

// store writes a copy of snap. Caller holds the write lock.
func (s *SnapshotStore) store(snap *domain.PositionSnapshot) {
	if snap.SequenceID == 0 {
		s.lastSeq++
		snap.SequenceID = s.lastSeq
	} else if snap.SequenceID > s.lastSeq {
		s.lastSeq = snap.SequenceID
	}
	c := *snap
	s.data[keyOf(&c)] = &c
}

// GetByDateRange retrieves snapshots within [start, end] ordered by (holder_id, date, sequence_id).
func (s *SnapshotStore) GetByDateRange(_ context.Context, start, end domain.Date, holderIDs []string) ([]*domain.PositionSnapshot, error) {
	var filter map[string]struct{}
	if len(holderIDs) > 0 {
		filter = make(map[string]struct{}, len(holderIDs))
		for _, id := range holderIDs {
			filter[id] = struct{}{}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PositionSnapshot
	for _, snap := range s.data {
		if !snap.Date.Between(start, end) {
			continue
		}
		if filter != nil {
			if _, ok := filter[snap.HolderID]; !ok {
				continue
			}
		}
		c := *snap
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.HolderID != b.HolderID {
			return a.HolderID < b.HolderID
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.SequenceID < b.SequenceID
	})

	return result, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
