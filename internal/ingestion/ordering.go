package ingestion

import (
	"errors"
	"sort"

	"holder-flow/internal/domain"
)

// ErrInvalidOrdering is returned when snapshots are not properly ordered.
var ErrInvalidOrdering = errors.New("snapshots are not in deterministic order")

// SortSnapshots orders snapshots by (date ASC, holder_id ASC, recorded_at ASC), so store-assigned
// sequence ids follow recording order within a day. The sort is stable for exact ties.
func SortSnapshots(snaps []*domain.PositionSnapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return compareSnapshots(snaps[i], snaps[j]) < 0
	})
}

// ValidateSnapshotOrdering checks if snapshots are properly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateSnapshotOrdering(snaps []*domain.PositionSnapshot) error {
	for i := 1; i < len(snaps); i++ {
		if compareSnapshots(snaps[i-1], snaps[i]) > 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareSnapshots returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (date ASC, holder_id ASC, recorded_at ASC)
func compareSnapshots(a, b *domain.PositionSnapshot) int {
	if a.Date != b.Date {
		if a.Date < b.Date {
			return -1
		}
		return 1
	}
	if a.HolderID != b.HolderID {
		if a.HolderID < b.HolderID {
			return -1
		}
		return 1
	}
	return a.RecordedAt.Compare(b.RecordedAt)
}
