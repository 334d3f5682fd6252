package events

import (
	"context"
	"testing"

	"holder-flow/internal/delta"
	"holder-flow/internal/domain"
	"holder-flow/internal/positions"
)

type point struct {
	holder string
	date   string
	shares int64
}

func buildTable(t *testing.T, start, end string, points ...point) *delta.Table {
	t.Helper()
	resolved := make([]domain.ResolvedPosition, 0, len(points))
	for _, p := range points {
		resolved = append(resolved, domain.ResolvedPosition{
			HolderID:   p.holder,
			Date:       domain.MustParseDate(p.date),
			Shares:     p.shares,
			Percentage: float64(p.shares) / 1000,
		})
	}
	table, err := delta.BuildTable(context.Background(), positions.BuildIndex(resolved),
		domain.MustParseDate(start), domain.MustParseDate(end), 1)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}
	return table
}

func TestActiveBuyers_EntryThenSingleBuy(t *testing.T) {
	table := buildTable(t, "2024-01-01", "2024-01-03",
		point{"h", "2024-01-01", 100},
		point{"h", "2024-01-02", 100},
		point{"h", "2024-01-03", 150},
	)

	report := ActiveBuyers(table, domain.GranularityDaily)
	if len(report.Buyers) != 1 {
		t.Fatalf("expected 1 buyer, got %d", len(report.Buyers))
	}
	b := report.Buyers[0]
	if b.TotalIncrease != 50 || b.BuyingDays != 1 {
		t.Errorf("expected +50 over 1 day, got %d over %d", b.TotalIncrease, b.BuyingDays)
	}
	if b.InitialShares != 100 || b.FinalShares != 150 {
		t.Errorf("expected 100 → 150, got %d → %d", b.InitialShares, b.FinalShares)
	}
	if b.PercentIncrease != "50" {
		t.Errorf("expected percent increase 50, got %s", b.PercentIncrease)
	}
	if b.AverageIncrease != 50 {
		t.Errorf("expected average 50, got %f", b.AverageIncrease)
	}

	if len(report.Trend) != 1 || report.Trend[0].Period != "2024-01-03" {
		t.Errorf("unexpected trend %+v", report.Trend)
	}
	if report.Summary.HolderCount != 1 || report.Summary.TotalChange != 50 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
}

func TestActiveBuyers_SortedAndBaselineFromLookback(t *testing.T) {
	table := buildTable(t, "2024-02-01", "2024-02-28",
		point{"small", "2024-01-15", 1000},
		point{"small", "2024-02-10", 1010},
		point{"big", "2024-01-20", 0},
		point{"big", "2024-02-05", 400},
		point{"big", "2024-02-20", 900},
		point{"flat", "2024-02-01", 50},
		point{"flat", "2024-02-02", 50},
	)

	report := ActiveBuyers(table, domain.GranularityMonthly)
	if len(report.Buyers) != 2 {
		t.Fatalf("expected 2 buyers, got %d", len(report.Buyers))
	}
	if report.Buyers[0].HolderID != "big" || report.Buyers[1].HolderID != "small" {
		t.Errorf("unexpected order: %s, %s", report.Buyers[0].HolderID, report.Buyers[1].HolderID)
	}

	big := report.Buyers[0]
	if big.InitialShares != 0 || big.PercentIncrease != domain.GrowthSentinel {
		t.Errorf("zero baseline should report sentinel, got initial=%d pct=%s", big.InitialShares, big.PercentIncrease)
	}
	if report.Buyers[1].PercentIncrease != "1" {
		t.Errorf("expected 1%% increase, got %s", report.Buyers[1].PercentIncrease)
	}

	if len(report.Trend) != 1 || report.Trend[0].Period != "2024-02" || report.Trend[0].Events != 3 {
		t.Errorf("unexpected monthly trend %+v", report.Trend)
	}
	if report.Summary.LargestMove != 500 {
		t.Errorf("expected largest move 500, got %d", report.Summary.LargestMove)
	}
}

func TestActiveSellers_ExitStatus(t *testing.T) {
	table := buildTable(t, "2024-03-01", "2024-03-31",
		point{"full", "2024-02-20", 500},
		point{"full", "2024-03-10", 0},
		point{"partial", "2024-02-25", 800},
		point{"partial", "2024-03-05", 600},
		point{"partial", "2024-03-15", 700},
	)

	report := ActiveSellers(table, domain.GranularityDaily)
	if len(report.Sellers) != 2 {
		t.Fatalf("expected 2 sellers, got %d", len(report.Sellers))
	}

	byID := map[string]domain.SellerSummary{}
	for _, s := range report.Sellers {
		byID[s.HolderID] = s
	}
	if s := byID["full"]; s.ExitStatus != domain.ExitStatusFull || s.TotalDecrease != 500 || s.PercentDecrease != "100" {
		t.Errorf("unexpected full exit %+v", s)
	}
	if s := byID["partial"]; s.ExitStatus != domain.ExitStatusPartial || s.TotalDecrease != 200 || s.FinalShares != 700 {
		t.Errorf("unexpected partial exit %+v", s)
	}
	if s := byID["partial"]; s.PercentDecrease != "12.5" {
		t.Errorf("expected 12.5%% decrease, got %s", s.PercentDecrease)
	}
	if report.Sellers[0].HolderID != "full" {
		t.Errorf("expected largest seller first")
	}
}

func TestActiveSellers_ZeroLastPositionIsDisappearance(t *testing.T) {
	table := buildTable(t, "2024-03-01", "2024-03-31",
		point{"gone", "2024-02-01", 300},
		point{"gone", "2024-02-15", 0},
	)

	sellers := ActiveSellers(table, domain.GranularityDaily)
	if len(sellers.Sellers) != 1 {
		t.Fatalf("expected exactly one seller row, got %d", len(sellers.Sellers))
	}
	s := sellers.Sellers[0]
	if s.ExitStatus != domain.ExitStatusCompleteDisappearance {
		t.Errorf("expected Complete Disappearance, got %s", s.ExitStatus)
	}
	if s.InitialShares != 300 || s.TotalDecrease != 300 || s.FinalShares != 0 {
		t.Errorf("unexpected disappearance row %+v", s)
	}
	if sellers.Summary.TotalEvents != 1 || sellers.Summary.TotalChange != 300 {
		t.Errorf("expected disappearance counted as one event, got %+v", sellers.Summary)
	}
	if len(sellers.Trend) != 0 {
		t.Errorf("expected no in-period trend points, got %+v", sellers.Trend)
	}

	if entrants := NewEntrants(table, domain.GranularityDaily); len(entrants.Entrants) != 0 {
		t.Errorf("disappearance must not be reported as entrant")
	}
	if buyers := ActiveBuyers(table, domain.GranularityDaily); len(buyers.Buyers) != 0 {
		t.Errorf("disappearance must not be reported as buyer")
	}
}

func TestActiveSellers_ZeroOnlyHistoryIsNotDisappearance(t *testing.T) {
	table := buildTable(t, "2025-03-10", "2025-03-20",
		point{"z", "2025-03-01", 0},
		point{"z", "2025-03-05", 0},
	)
	report := ActiveSellers(table, domain.GranularityDaily)
	if len(report.Sellers) != 0 {
		t.Errorf("holder that never held shares must not be a seller, got %+v", report.Sellers)
	}
	if report.Summary.TotalEvents != 0 || report.Summary.HolderCount != 0 {
		t.Errorf("expected empty summary, got %+v", report.Summary)
	}
}

func TestActiveSellers_NonZeroGapIsNotDisappearance(t *testing.T) {
	table := buildTable(t, "2024-03-01", "2024-03-31",
		point{"quiet", "2024-02-01", 300},
	)
	if report := ActiveSellers(table, domain.GranularityDaily); len(report.Sellers) != 0 {
		t.Errorf("reporting gap must not be treated as an exit, got %+v", report.Sellers)
	}
}

func TestNewEntrants_FirstSeenInPeriod(t *testing.T) {
	table := buildTable(t, "2024-01-01", "2024-01-31",
		point{"new", "2024-01-05", 500},
		point{"old", "2023-12-01", 100},
		point{"old", "2024-01-05", 200},
	)

	report := NewEntrants(table, domain.GranularityDaily)
	if len(report.Entrants) != 1 {
		t.Fatalf("expected 1 entrant, got %d", len(report.Entrants))
	}
	e := report.Entrants[0]
	if e.HolderID != "new" || e.InitialShares != 0 || e.CurrentShares != 500 {
		t.Errorf("unexpected entrant %+v", e)
	}
	if e.GrowthPercent != "100" {
		t.Errorf("expected growth 100, got %s", e.GrowthPercent)
	}
	if e.EntryDate.String() != "2024-01-05" {
		t.Errorf("unexpected entry date %s", e.EntryDate)
	}
}

func TestNewEntrants_SkipsLeadingZero(t *testing.T) {
	table := buildTable(t, "2024-01-01", "2024-01-31",
		point{"late", "2024-01-02", 0},
		point{"late", "2024-01-09", 40},
		point{"late", "2024-01-20", 60},
	)

	report := NewEntrants(table, domain.GranularityDaily)
	if len(report.Entrants) != 1 {
		t.Fatalf("expected 1 entrant, got %d", len(report.Entrants))
	}
	e := report.Entrants[0]
	if e.EntryDate.String() != "2024-01-09" || e.EntryShares != 40 || e.CurrentShares != 60 {
		t.Errorf("unexpected entrant %+v", e)
	}
}

func TestReports_EmptyIsValid(t *testing.T) {
	table := buildTable(t, "2024-01-01", "2024-01-31")

	if r := ActiveBuyers(table, domain.GranularityDaily); r.Buyers == nil || len(r.Buyers) != 0 {
		t.Errorf("expected empty non-nil buyers")
	}
	if r := ActiveSellers(table, domain.GranularityDaily); len(r.Sellers) != 0 {
		t.Errorf("expected no sellers")
	}
	if r := NewEntrants(table, domain.GranularityDaily); len(r.Entrants) != 0 || len(r.Trend) != 0 {
		t.Errorf("expected no entrants")
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		from, to int64
		want     string
	}{
		{100, 150, "50"},
		{3, 4, "33.33"},
		{0, 10, "100"},
		{0, 0, "0"},
		{200, 100, "-50"},
	}
	for _, tt := range tests {
		if got := PercentChange(tt.from, tt.to); got != tt.want {
			t.Errorf("PercentChange(%d, %d) = %s, want %s", tt.from, tt.to, got, tt.want)
		}
	}

	if got := PercentDecrease(800, 700); got != "12.5" {
		t.Errorf("PercentDecrease(800, 700) = %s, want 12.5", got)
	}
}
