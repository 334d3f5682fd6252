// Package positions resolves raw position snapshots into one canonical position per
// (holder, date) and assembles them into per-holder, date-ordered series.
package positions

import (
	"sort"

	"holder-flow/internal/domain"
)

type holderDate struct {
	holderID string
	date     domain.Date
}

// Resolve picks one snapshot per (holder, date): the latest RecordedAt wins, then the
// highest SequenceID. The result is ordered by (holder_id ASC, date ASC) and does not
// depend on input order. Nil snapshots are ignored.
func Resolve(snapshots []*domain.PositionSnapshot) []domain.ResolvedPosition {
	winners := make(map[holderDate]*domain.PositionSnapshot, len(snapshots))
	for _, s := range snapshots {
		if s == nil {
			continue
		}
		k := holderDate{s.HolderID, s.Date}
		if cur, ok := winners[k]; !ok || s.Supersedes(cur) {
			winners[k] = s
		}
	}

	resolved := make([]domain.ResolvedPosition, 0, len(winners))
	for _, s := range winners {
		resolved = append(resolved, domain.ResolvedPosition{
			HolderID:   s.HolderID,
			Date:       s.Date,
			Shares:     s.Shares,
			Percentage: s.Percentage,
		})
	}
	SortPositions(resolved)
	return resolved
}

// SortPositions orders positions by (holder_id ASC, date ASC).
func SortPositions(positions []domain.ResolvedPosition) {
	sort.Slice(positions, func(i, j int) bool {
		return comparePositions(positions[i], positions[j]) < 0
	})
}

// comparePositions returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (holder_id ASC, date ASC)
func comparePositions(a, b domain.ResolvedPosition) int {
	if a.HolderID != b.HolderID {
		if a.HolderID < b.HolderID {
			return -1
		}
		return 1
	}
	if a.Date != b.Date {
		if a.Date < b.Date {
			return -1
		}
		return 1
	}
	return 0
}
