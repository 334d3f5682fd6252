package positions

import (
	"sort"

	"holder-flow/internal/domain"
)

// Index is a holder-id-keyed table of position series, built once per request.
type Index struct {
	series  map[string]*Series
	holders []string // sorted
}

// BuildIndex groups resolved positions by holder.
func BuildIndex(resolved []domain.ResolvedPosition) *Index {
	grouped := make(map[string][]domain.ResolvedPosition)
	for _, p := range resolved {
		grouped[p.HolderID] = append(grouped[p.HolderID], p)
	}

	idx := &Index{
		series:  make(map[string]*Series, len(grouped)),
		holders: make([]string, 0, len(grouped)),
	}
	for holderID, ps := range grouped {
		idx.series[holderID] = NewSeries(holderID, ps)
		idx.holders = append(idx.holders, holderID)
	}
	sort.Strings(idx.holders)
	return idx
}

// FromSnapshots resolves snapshots and indexes the result.
func FromSnapshots(snapshots []*domain.PositionSnapshot) *Index {
	return BuildIndex(Resolve(snapshots))
}

// Series returns the series of a holder.
func (idx *Index) Series(holderID string) (*Series, bool) {
	s, ok := idx.series[holderID]
	return s, ok
}

// HolderIDs returns all indexed holder ids in ascending order.
func (idx *Index) HolderIDs() []string {
	out := make([]string, len(idx.holders))
	copy(out, idx.holders)
	return out
}

// Len returns the number of holders.
func (idx *Index) Len() int { return len(idx.holders) }
