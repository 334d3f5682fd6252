package positions

import (
	"sort"

	"holder-flow/internal/domain"
)

// Series is the date-ordered list of resolved positions of one holder.
// A Series is immutable once built.
type Series struct {
	holderID  string
	positions []domain.ResolvedPosition
}

// NewSeries builds a series from the resolved positions of one holder.
// Positions belonging to other holders are dropped; duplicate dates keep the last occurrence.
func NewSeries(holderID string, positions []domain.ResolvedPosition) *Series {
	own := make([]domain.ResolvedPosition, 0, len(positions))
	for _, p := range positions {
		if p.HolderID == holderID {
			own = append(own, p)
		}
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].Date < own[j].Date })

	// Collapse duplicate dates so lookups stay well defined.
	out := own[:0]
	for _, p := range own {
		if n := len(out); n > 0 && out[n-1].Date == p.Date {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}

	return &Series{holderID: holderID, positions: out}
}

// HolderID returns the holder the series belongs to.
func (s *Series) HolderID() string { return s.holderID }

// Len returns the number of positions.
func (s *Series) Len() int { return len(s.positions) }

// Positions returns a copy of the ordered positions.
func (s *Series) Positions() []domain.ResolvedPosition {
	out := make([]domain.ResolvedPosition, len(s.positions))
	copy(out, s.positions)
	return out
}

// At returns the i-th position in date order.
func (s *Series) At(i int) domain.ResolvedPosition { return s.positions[i] }

// PositionBefore returns the latest position strictly before d.
func (s *Series) PositionBefore(d domain.Date) (domain.ResolvedPosition, bool) {
	// first index with Date >= d
	i := sort.Search(len(s.positions), func(i int) bool { return s.positions[i].Date >= d })
	if i == 0 {
		return domain.ResolvedPosition{}, false
	}
	return s.positions[i-1], true
}

// PositionAtOrBefore returns the latest position on or before d.
func (s *Series) PositionAtOrBefore(d domain.Date) (domain.ResolvedPosition, bool) {
	return s.PositionBefore(d.AddDays(1))
}

// InRange returns the positions dated within [start, end].
func (s *Series) InRange(start, end domain.Date) []domain.ResolvedPosition {
	lo := sort.Search(len(s.positions), func(i int) bool { return s.positions[i].Date >= start })
	hi := sort.Search(len(s.positions), func(i int) bool { return s.positions[i].Date > end })
	if lo >= hi {
		return nil
	}
	out := make([]domain.ResolvedPosition, hi-lo)
	copy(out, s.positions[lo:hi])
	return out
}

// First returns the earliest position.
func (s *Series) First() (domain.ResolvedPosition, bool) {
	if len(s.positions) == 0 {
		return domain.ResolvedPosition{}, false
	}
	return s.positions[0], true
}

// Last returns the latest position.
func (s *Series) Last() (domain.ResolvedPosition, bool) {
	if len(s.positions) == 0 {
		return domain.ResolvedPosition{}, false
	}
	return s.positions[len(s.positions)-1], true
}

// LastNonZeroBefore returns the latest position strictly before d holding a positive number of shares.
func (s *Series) LastNonZeroBefore(d domain.Date) (domain.ResolvedPosition, bool) {
	i := sort.Search(len(s.positions), func(i int) bool { return s.positions[i].Date >= d })
	for j := i - 1; j >= 0; j-- {
		if s.positions[j].Shares > 0 {
			return s.positions[j], true
		}
	}
	return domain.ResolvedPosition{}, false
}
