package reporting

import (
	"encoding/csv"
	"strings"
	"testing"

	"holder-flow/internal/analytics"
	"holder-flow/internal/domain"
	"holder-flow/internal/events"
)

func parseCSV(t *testing.T, s string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v\n%s", err, s)
	}
	return records
}

func TestRenderBuyersCSV(t *testing.T) {
	r := &events.BuyerReport{Buyers: []domain.BuyerSummary{{
		HolderID:        "h1",
		HolderName:      "Alpha, Inc",
		InitialShares:   100,
		FinalShares:     250,
		TotalIncrease:   150,
		PercentIncrease: "150",
		BuyingDays:      2,
		AverageIncrease: 75,
		FirstBuyDate:    domain.MustParseDate("2025-03-02"),
		LastBuyDate:     domain.MustParseDate("2025-03-09"),
	}}}

	records := parseCSV(t, RenderBuyersCSV(r))
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if len(records[0]) != 12 || len(records[1]) != 12 {
		t.Fatalf("expected 12 columns, got %d and %d", len(records[0]), len(records[1]))
	}
	row := records[1]
	if row[1] != "Alpha, Inc" {
		t.Errorf("holder name not preserved: %q", row[1])
	}
	if row[6] != "150" || row[7] != "150" || row[9] != "75.00" {
		t.Errorf("unexpected values %v", row)
	}
	if row[10] != "2025-03-02" || row[11] != "2025-03-09" {
		t.Errorf("unexpected dates %v", row[10:])
	}
}

func TestRenderSellersCSV_ExitStatus(t *testing.T) {
	r := &events.SellerReport{Sellers: []domain.SellerSummary{
		{HolderID: "a", TotalDecrease: 300, PercentDecrease: "100", ExitStatus: domain.ExitStatusCompleteDisappearance},
		{HolderID: "b", TotalDecrease: 10, PercentDecrease: "10", ExitStatus: domain.ExitStatusPartial},
	}}

	records := parseCSV(t, RenderSellersCSV(r))
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[1][10] != "Complete Disappearance" || records[2][10] != "Partial Exit" {
		t.Errorf("unexpected exit statuses %q, %q", records[1][10], records[2][10])
	}
}

func TestRenderBehaviorCSV_Dates(t *testing.T) {
	r := &analytics.BehaviorResult{Profiles: []*domain.BehaviorProfile{{
		HolderID:  "h1",
		BuyDates:  []domain.Date{domain.MustParseDate("2025-03-01"), domain.MustParseDate("2025-03-02")},
		SellDates: nil,
		Label:     domain.LabelPureAccumulator,
	}}}

	records := parseCSV(t, RenderBehaviorCSV(r))
	row := records[1]
	if row[2] != "pure_accumulator" || row[3] != "2" || row[4] != "0" {
		t.Errorf("unexpected row %v", row)
	}
	if row[9] != "2025-03-01;2025-03-02" || row[10] != "" {
		t.Errorf("unexpected date lists %q, %q", row[9], row[10])
	}
}

func TestRenderEmptyCSV(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		header string
	}{
		{"entrants", RenderEntrantsCSV(&events.EntrantReport{}), "holder_id,holder_name,entry_date"},
		{"timing", RenderTimingCSV(&analytics.TimingResult{}), "holder_id,holder_name,trader_type"},
		{"pairs", RenderPairsCSV(nil), "holder_a,holder_b,correlation"},
		{"trend", RenderTrendCSV(nil), "period,holders,events,total_change"},
		{"sentiment", RenderSentimentCSV(nil), "period,buyers,sellers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.out, tt.header) {
				t.Errorf("unexpected header %q", tt.out)
			}
			if strings.Count(tt.out, "\n") != 1 {
				t.Errorf("expected header only, got %q", tt.out)
			}
		})
	}
}
