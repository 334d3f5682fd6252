// Package events aggregates per-holder deltas into period-level reports: active buyers,
// active sellers with exit status, and new entrants, each with a period summary and a
// trend series.
package events

import (
	"sort"

	"holder-flow/internal/delta"
	"holder-flow/internal/domain"
)

// BuyerReport is the active buyers result for one period.
type BuyerReport struct {
	Buyers  []domain.BuyerSummary `json:"buyers"`
	Summary domain.PeriodSummary  `json:"summary"`
	Trend   []domain.TrendPoint   `json:"trend"`
}

// SellerReport is the active sellers result for one period.
type SellerReport struct {
	Sellers []domain.SellerSummary `json:"sellers"`
	Summary domain.PeriodSummary   `json:"summary"`
	Trend   []domain.TrendPoint    `json:"trend"`
}

// EntrantReport is the new entrants result for one period.
type EntrantReport struct {
	Entrants []domain.EntrantSummary `json:"entrants"`
	Summary  domain.PeriodSummary    `json:"summary"`
	Trend    []domain.TrendPoint     `json:"trend"`
}

// baseline returns the reference position of a holder at the start of the period:
// the latest position before start, or the first position inside the period.
func baseline(a *delta.Activity, start, end domain.Date) (domain.ResolvedPosition, bool) {
	if p, ok := a.Series.PositionBefore(start); ok {
		return p, true
	}
	in := a.Series.InRange(start, end)
	if len(in) == 0 {
		return domain.ResolvedPosition{}, false
	}
	return in[0], true
}

// ActiveBuyers lists every holder with at least one buy event in the period, sorted by
// total increase descending.
func ActiveBuyers(t *delta.Table, g domain.Granularity) *BuyerReport {
	report := &BuyerReport{Buyers: []domain.BuyerSummary{}}
	trend := newTrend(g)

	for _, a := range t.Activities() {
		if len(a.Buys) == 0 {
			continue
		}
		var total int64
		for _, d := range a.Buys {
			total += d.Change
			trend.add(d.Date, a.HolderID, d.Change)
			report.Summary.LargestMove = max(report.Summary.LargestMove, d.Change)
		}
		if total <= 0 {
			continue
		}

		initial, _ := baseline(a, t.Start, t.End)
		final, _ := a.Series.PositionAtOrBefore(t.End)

		report.Buyers = append(report.Buyers, domain.BuyerSummary{
			HolderID:          a.HolderID,
			InitialShares:     initial.Shares,
			FinalShares:       final.Shares,
			InitialPercentage: initial.Percentage,
			FinalPercentage:   final.Percentage,
			TotalIncrease:     total,
			PercentIncrease:   PercentChange(initial.Shares, final.Shares),
			BuyingDays:        len(a.Buys),
			AverageIncrease:   float64(total) / float64(len(a.Buys)),
			FirstBuyDate:      a.Buys[0].Date,
			LastBuyDate:       a.Buys[len(a.Buys)-1].Date,
		})
		report.Summary.TotalChange += total
		report.Summary.TotalEvents += len(a.Buys)
	}

	sort.Slice(report.Buyers, func(i, j int) bool {
		bi, bj := report.Buyers[i], report.Buyers[j]
		if bi.TotalIncrease != bj.TotalIncrease {
			return bi.TotalIncrease > bj.TotalIncrease
		}
		return bi.HolderID < bj.HolderID
	})

	report.Summary.Start, report.Summary.End = t.Start, t.End
	report.Summary.HolderCount = len(report.Buyers)
	report.Trend = trend.points()
	return report
}

// ActiveSellers lists every holder with at least one sell event in the period, plus holders
// that were present before the period, have no position inside it, and were last seen at
// zero shares (Complete Disappearance). A disappearance counts as one event in the summary;
// it is left out of the trend because its last move is dated before the period. Sorted by
// total decrease descending.
func ActiveSellers(t *delta.Table, g domain.Granularity) *SellerReport {
	report := &SellerReport{Sellers: []domain.SellerSummary{}}
	trend := newTrend(g)

	for _, a := range t.Activities() {
		if len(a.Sells) == 0 {
			if s, ok := disappearance(a, t.Start, t.End); ok {
				report.Sellers = append(report.Sellers, s)
				report.Summary.TotalChange += s.TotalDecrease
				report.Summary.TotalEvents++
			}
			continue
		}

		var total int64
		for _, d := range a.Sells {
			total -= d.Change
			trend.add(d.Date, a.HolderID, -d.Change)
			report.Summary.LargestMove = max(report.Summary.LargestMove, -d.Change)
		}

		initial, _ := baseline(a, t.Start, t.End)
		final, _ := a.Series.PositionAtOrBefore(t.End)

		status := domain.ExitStatusPartial
		if final.Shares == 0 {
			status = domain.ExitStatusFull
		}

		report.Sellers = append(report.Sellers, domain.SellerSummary{
			HolderID:          a.HolderID,
			InitialShares:     initial.Shares,
			FinalShares:       final.Shares,
			InitialPercentage: initial.Percentage,
			FinalPercentage:   final.Percentage,
			TotalDecrease:     total,
			PercentDecrease:   PercentDecrease(initial.Shares, final.Shares),
			SellingDays:       len(a.Sells),
			AverageDecrease:   float64(total) / float64(len(a.Sells)),
			ExitStatus:        status,
			LastSeenDate:      final.Date,
		})
		report.Summary.TotalChange += total
		report.Summary.TotalEvents += len(a.Sells)
	}

	sort.Slice(report.Sellers, func(i, j int) bool {
		si, sj := report.Sellers[i], report.Sellers[j]
		if si.TotalDecrease != sj.TotalDecrease {
			return si.TotalDecrease > sj.TotalDecrease
		}
		return si.HolderID < sj.HolderID
	})

	report.Summary.Start, report.Summary.End = t.Start, t.End
	report.Summary.HolderCount = len(report.Sellers)
	report.Trend = trend.points()
	return report
}

func disappearance(a *delta.Activity, start, end domain.Date) (domain.SellerSummary, bool) {
	if len(a.Series.InRange(start, end)) > 0 {
		return domain.SellerSummary{}, false
	}
	last, ok := a.Series.PositionBefore(start)
	if !ok || last.Shares != 0 {
		return domain.SellerSummary{}, false
	}

	initial, ok := a.Series.LastNonZeroBefore(start)
	if !ok {
		return domain.SellerSummary{}, false
	}
	return domain.SellerSummary{
		HolderID:          a.HolderID,
		InitialShares:     initial.Shares,
		InitialPercentage: initial.Percentage,
		TotalDecrease:     initial.Shares,
		PercentDecrease:   PercentDecrease(initial.Shares, 0),
		ExitStatus:        domain.ExitStatusCompleteDisappearance,
		LastSeenDate:      last.Date,
	}, true
}

// NewEntrants lists holders with no position before the period whose first position inside
// the period holds shares. Sorted by current shares descending.
func NewEntrants(t *delta.Table, g domain.Granularity) *EntrantReport {
	report := &EntrantReport{Entrants: []domain.EntrantSummary{}}
	trend := newTrend(g)

	for _, a := range t.Activities() {
		if _, ok := a.Series.PositionBefore(t.Start); ok {
			continue
		}
		in := a.Series.InRange(t.Start, t.End)
		entryIdx := -1
		for i, p := range in {
			if p.Shares > 0 {
				entryIdx = i
				break
			}
		}
		if entryIdx < 0 {
			continue
		}

		entry := in[entryIdx]
		current := in[len(in)-1]
		report.Entrants = append(report.Entrants, domain.EntrantSummary{
			HolderID:          a.HolderID,
			EntryDate:         entry.Date,
			EntryShares:       entry.Shares,
			InitialShares:     0,
			CurrentShares:     current.Shares,
			CurrentPercentage: current.Percentage,
			GrowthPercent:     PercentChange(0, current.Shares),
		})
		trend.add(entry.Date, a.HolderID, entry.Shares)
		report.Summary.TotalChange += current.Shares
		report.Summary.TotalEvents++
		report.Summary.LargestMove = max(report.Summary.LargestMove, entry.Shares)
	}

	sort.Slice(report.Entrants, func(i, j int) bool {
		ei, ej := report.Entrants[i], report.Entrants[j]
		if ei.CurrentShares != ej.CurrentShares {
			return ei.CurrentShares > ej.CurrentShares
		}
		return ei.HolderID < ej.HolderID
	})

	report.Summary.Start, report.Summary.End = t.Start, t.End
	report.Summary.HolderCount = len(report.Entrants)
	report.Trend = trend.points()
	return report
}
