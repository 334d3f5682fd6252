// Package delta computes signed position changes against the latest available prior position.
//
// The reference of a position is the most recent earlier resolved position of the same holder,
// regardless of reporting gaps. A position with no predecessor is an entry from an implicit
// zero baseline: it carries its full share count as change but is not a buy event.
package delta

import (
	"holder-flow/internal/domain"
	"holder-flow/internal/positions"
)

// Compute returns one delta per position of the series, in date order.
func Compute(s *positions.Series) []domain.Delta {
	n := s.Len()
	if n == 0 {
		return nil
	}

	deltas := make([]domain.Delta, 0, n)
	for i := 0; i < n; i++ {
		p := s.At(i)
		d := domain.Delta{
			HolderID: p.HolderID,
			Date:     p.Date,
			Shares:   p.Shares,
			Change:   p.Shares,
		}
		if ref, ok := s.PositionBefore(p.Date); ok {
			d.HasReference = true
			d.ReferenceDate = ref.Date
			d.ReferenceShares = ref.Shares
			d.Change = p.Shares - ref.Shares
		}
		deltas = append(deltas, d)
	}
	return deltas
}

// InRange returns the deltas dated within [start, end]. Input must be date-ordered.
func InRange(deltas []domain.Delta, start, end domain.Date) []domain.Delta {
	var out []domain.Delta
	for _, d := range deltas {
		if d.Date.After(end) {
			break
		}
		if !d.Date.Before(start) {
			out = append(out, d)
		}
	}
	return out
}

// Sum returns the sum of signed changes.
func Sum(deltas []domain.Delta) int64 {
	var total int64
	for _, d := range deltas {
		total += d.Change
	}
	return total
}

// Buys returns the buy events of deltas.
func Buys(deltas []domain.Delta) []domain.Delta {
	var out []domain.Delta
	for _, d := range deltas {
		if d.IsBuy() {
			out = append(out, d)
		}
	}
	return out
}

// Sells returns the sell events of deltas.
func Sells(deltas []domain.Delta) []domain.Delta {
	var out []domain.Delta
	for _, d := range deltas {
		if d.IsSell() {
			out = append(out, d)
		}
	}
	return out
}
