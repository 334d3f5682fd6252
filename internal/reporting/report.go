// Package reporting renders analytics results as markdown and CSV and writes them to disk.
package reporting

import (
	"time"

	"holder-flow/internal/analytics"
	"holder-flow/internal/domain"
	"holder-flow/internal/events"
)

// Report bundles every feature's result for one period.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Start       domain.Date
	End         domain.Date
	Granularity domain.Granularity

	Buyers   *events.BuyerReport
	Sellers  *events.SellerReport
	Entrants *events.EntrantReport
	Behavior *analytics.BehaviorResult
	Timing   *analytics.TimingResult
}

// OverviewRow is one line of the report overview table.
type OverviewRow struct {
	Category    string
	Holders     int
	Events      int
	TotalChange int64
	LargestMove int64
}

// Overview summarizes the buyer, seller and entrant categories. Missing sections are skipped.
func (r *Report) Overview() []OverviewRow {
	var rows []OverviewRow
	add := func(category string, s domain.PeriodSummary) {
		rows = append(rows, OverviewRow{
			Category:    category,
			Holders:     s.HolderCount,
			Events:      s.TotalEvents,
			TotalChange: s.TotalChange,
			LargestMove: s.LargestMove,
		})
	}
	if r.Buyers != nil {
		add("Active buyers", r.Buyers.Summary)
	}
	if r.Sellers != nil {
		add("Active sellers", r.Sellers.Summary)
	}
	if r.Entrants != nil {
		add("New entrants", r.Entrants.Summary)
	}
	return rows
}

// LabelCounts counts behavior profiles per label, ordered by label.
func (r *Report) LabelCounts() []LabelCount {
	if r.Behavior == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, p := range r.Behavior.Profiles {
		counts[string(p.Label)]++
	}
	return sortedCounts(counts)
}

// TraderTypeCounts counts timing profiles per trader type, ordered by type.
func (r *Report) TraderTypeCounts() []LabelCount {
	if r.Timing == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, p := range r.Timing.Profiles {
		counts[string(p.TraderType)]++
	}
	return sortedCounts(counts)
}

// LabelCount is a label with the number of holders carrying it.
type LabelCount struct {
	Label string
	Count int
}
