package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"holder-flow/internal/analytics"
	"holder-flow/internal/domain"
	"holder-flow/internal/events"
)

// table accumulates CSV records. Holder names are free text, so fields are quoted by
// encoding/csv when needed.
type table struct {
	sb strings.Builder
	w  *csv.Writer
}

func newTable(header ...string) *table {
	t := &table{}
	t.w = csv.NewWriter(&t.sb)
	t.row(header...)
	return t
}

func (t *table) row(fields ...string) {
	// Writes to a strings.Builder cannot fail.
	_ = t.w.Write(fields)
}

func (t *table) String() string {
	t.w.Flush()
	return t.sb.String()
}

func itoa(n int) string         { return strconv.Itoa(n) }
func i64(n int64) string        { return strconv.FormatInt(n, 10) }
func pct(f float64) string      { return strconv.FormatFloat(f, 'f', 4, 64) }
func num(f float64) string      { return strconv.FormatFloat(f, 'f', 2, 64) }
func date(d domain.Date) string { return d.String() }

func dates(ds []domain.Date) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, ";")
}

// RenderBuyersCSV renders the active buyers rows as CSV string.
func RenderBuyersCSV(r *events.BuyerReport) string {
	t := newTable("holder_id", "holder_name", "initial_shares", "final_shares",
		"initial_percentage", "final_percentage", "total_increase", "percent_increase",
		"buying_days", "average_increase", "first_buy_date", "last_buy_date")
	for _, b := range r.Buyers {
		t.row(b.HolderID, b.HolderName, i64(b.InitialShares), i64(b.FinalShares),
			pct(b.InitialPercentage), pct(b.FinalPercentage), i64(b.TotalIncrease), b.PercentIncrease,
			itoa(b.BuyingDays), num(b.AverageIncrease), date(b.FirstBuyDate), date(b.LastBuyDate))
	}
	return t.String()
}

// RenderSellersCSV renders the active sellers rows as CSV string.
func RenderSellersCSV(r *events.SellerReport) string {
	t := newTable("holder_id", "holder_name", "initial_shares", "final_shares",
		"initial_percentage", "final_percentage", "total_decrease", "percent_decrease",
		"selling_days", "average_decrease", "exit_status", "last_seen_date")
	for _, s := range r.Sellers {
		t.row(s.HolderID, s.HolderName, i64(s.InitialShares), i64(s.FinalShares),
			pct(s.InitialPercentage), pct(s.FinalPercentage), i64(s.TotalDecrease), s.PercentDecrease,
			itoa(s.SellingDays), num(s.AverageDecrease), string(s.ExitStatus), date(s.LastSeenDate))
	}
	return t.String()
}

// RenderEntrantsCSV renders the new entrants rows as CSV string.
func RenderEntrantsCSV(r *events.EntrantReport) string {
	t := newTable("holder_id", "holder_name", "entry_date", "entry_shares", "initial_shares",
		"current_shares", "current_percentage", "growth_percent")
	for _, e := range r.Entrants {
		t.row(e.HolderID, e.HolderName, date(e.EntryDate), i64(e.EntryShares), i64(e.InitialShares),
			i64(e.CurrentShares), pct(e.CurrentPercentage), e.GrowthPercent)
	}
	return t.String()
}

// RenderBehaviorCSV renders behavior profiles as CSV string. Buy and sell dates are
// semicolon-separated.
func RenderBehaviorCSV(r *analytics.BehaviorResult) string {
	t := newTable("holder_id", "holder_name", "label", "buy_count", "sell_count",
		"total_accumulated", "total_reduced", "net_change", "volatility", "buy_dates", "sell_dates")
	for _, p := range r.Profiles {
		t.row(p.HolderID, p.HolderName, string(p.Label), itoa(len(p.BuyDates)), itoa(len(p.SellDates)),
			i64(p.TotalAccumulated), i64(p.TotalReduced), i64(p.NetChange), num(p.Volatility),
			dates(p.BuyDates), dates(p.SellDates))
	}
	return t.String()
}

// RenderPairsCSV renders correlated pairs as CSV string.
func RenderPairsCSV(pairs []domain.CorrelatedPair) string {
	t := newTable("holder_a", "holder_b", "correlation", "overlapping_buy_dates", "overlapping_sell_dates")
	for _, p := range pairs {
		t.row(p.HolderA, p.HolderB, pct(p.Correlation), dates(p.OverlappingBuyDates), dates(p.OverlappingSellDates))
	}
	return t.String()
}

// RenderTimingCSV renders timing profiles as CSV string.
func RenderTimingCSV(r *analytics.TimingResult) string {
	t := newTable("holder_id", "holder_name", "trader_type", "timing_score", "buy_count", "sell_count",
		"initial_percentage", "max_percentage", "final_percentage", "entry_points", "exit_points")
	for _, p := range r.Profiles {
		t.row(p.HolderID, p.HolderName, string(p.TraderType), itoa(p.TimingScore), itoa(p.BuyCount),
			itoa(p.SellCount), pct(p.InitialPercentage), pct(p.MaxPercentage), pct(p.FinalPercentage),
			dates(p.EntryPoints), dates(p.ExitPoints))
	}
	return t.String()
}

// RenderTrendCSV renders a trend series as CSV string.
func RenderTrendCSV(points []domain.TrendPoint) string {
	t := newTable("period", "holders", "events", "total_change")
	for _, p := range points {
		t.row(p.Period, itoa(p.Holders), itoa(p.Events), i64(p.TotalChange))
	}
	return t.String()
}

// RenderSentimentCSV renders the market sentiment series as CSV string.
func RenderSentimentCSV(points []domain.SentimentPoint) string {
	t := newTable("period", "buyers", "sellers", "net_change", "ratio", "sentiment")
	for _, p := range points {
		t.row(p.Period, itoa(p.Buyers), itoa(p.Sellers), i64(p.NetChange), pct(p.Ratio), string(p.Sentiment))
	}
	return t.String()
}
