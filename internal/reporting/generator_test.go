package reporting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"holder-flow/internal/analytics"
	"holder-flow/internal/domain"
	"holder-flow/internal/events"
	"holder-flow/internal/observability"
	"holder-flow/internal/storage/memory"
)

var fixedTime = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) *analytics.Service {
	t.Helper()
	ctx := context.Background()

	snapshots := memory.NewSnapshotStore()
	rows := []struct {
		holder string
		date   string
		shares int64
	}{
		{"acc", "2025-02-28", 100},
		{"acc", "2025-03-05", 200},
		{"acc", "2025-03-20", 260},
		{"sell", "2025-02-28", 1000},
		{"sell", "2025-03-05", 600},
		{"new", "2025-03-10", 50},
	}
	for _, r := range rows {
		err := snapshots.Insert(ctx, &domain.PositionSnapshot{
			HolderID:   r.holder,
			Date:       domain.MustParseDate(r.date),
			Shares:     r.shares,
			Percentage: float64(r.shares) / 100,
			RecordedAt: fixedTime,
		})
		if err != nil {
			t.Fatalf("Insert snapshot failed: %v", err)
		}
	}

	holders := memory.NewHolderStore()
	if err := holders.Insert(ctx, &domain.Holder{ID: "acc", Name: "Alpha, Inc"}); err != nil {
		t.Fatalf("Insert holder failed: %v", err)
	}

	return analytics.New(analytics.Options{
		Snapshots: snapshots,
		Holders:   holders,
		Config:    analytics.DefaultConfig(),
		Metrics:   observability.NewMetrics("reporting_test", prometheus.NewRegistry()),
	})
}

func marchRequest() analytics.Request {
	return analytics.Request{StartDate: "2025-03-01", EndDate: "2025-03-31"}
}

func TestGenerator_Generate(t *testing.T) {
	gen := NewGenerator(setupService(t)).WithClock(func() time.Time { return fixedTime })

	r, err := gen.Generate(context.Background(), marchRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !r.GeneratedAt.Equal(fixedTime) {
		t.Errorf("expected fixed clock, got %v", r.GeneratedAt)
	}
	if r.Start.String() != "2025-03-01" || r.End.String() != "2025-03-31" {
		t.Errorf("unexpected period %s..%s", r.Start, r.End)
	}
	if r.Granularity != domain.GranularityDaily {
		t.Errorf("expected daily granularity, got %s", r.Granularity)
	}
	if r.Buyers == nil || r.Sellers == nil || r.Entrants == nil || r.Behavior == nil || r.Timing == nil {
		t.Fatal("expected every section to be present")
	}
	if len(r.Buyers.Buyers) != 1 || r.Buyers.Buyers[0].HolderID != "acc" {
		t.Errorf("expected acc as only buyer, got %+v", r.Buyers.Buyers)
	}
	if len(r.Sellers.Sellers) != 1 || r.Sellers.Sellers[0].HolderID != "sell" {
		t.Errorf("expected sell as only seller, got %+v", r.Sellers.Sellers)
	}
	if len(r.Entrants.Entrants) != 1 || r.Entrants.Entrants[0].HolderID != "new" {
		t.Errorf("expected new as only entrant, got %+v", r.Entrants.Entrants)
	}
}

func TestGenerator_InvalidRequest(t *testing.T) {
	gen := NewGenerator(setupService(t))

	_, err := gen.Generate(context.Background(), analytics.Request{StartDate: "2025-03-31", EndDate: "2025-03-01"})
	if !errors.Is(err, analytics.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

type failingAnalytics struct{}

func (failingAnalytics) Buyers(context.Context, analytics.Request) (*events.BuyerReport, error) {
	return &events.BuyerReport{}, nil
}
func (failingAnalytics) Sellers(context.Context, analytics.Request) (*events.SellerReport, error) {
	return nil, errors.New("boom")
}
func (failingAnalytics) NewEntrants(context.Context, analytics.Request) (*events.EntrantReport, error) {
	return &events.EntrantReport{}, nil
}
func (failingAnalytics) Behavior(context.Context, analytics.Request) (*analytics.BehaviorResult, error) {
	return &analytics.BehaviorResult{}, nil
}
func (failingAnalytics) Timing(context.Context, analytics.Request) (*analytics.TimingResult, error) {
	return &analytics.TimingResult{}, nil
}

func TestGenerator_FeatureError(t *testing.T) {
	gen := NewGenerator(failingAnalytics{})

	_, err := gen.Generate(context.Background(), marchRequest())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected feature error, got %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	gen := NewGenerator(setupService(t)).WithClock(func() time.Time { return fixedTime })
	r, err := gen.Generate(context.Background(), marchRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(r)
	for _, want := range []string{
		"# Holder Flow Report",
		"Generated: 2025-04-01T12:00:00Z",
		"Period: 2025-03-01 to 2025-03-31 | Granularity: daily",
		"| Active buyers | 1 |",
		"Alpha, Inc (acc)",
		"| Partial Exit |",
		"## New Entrants",
		"## Timing",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Report{GeneratedAt: fixedTime})
	for _, want := range []string{
		"No activity data available.",
		"No buyers in period.",
		"No sellers in period.",
		"No new entrants in period.",
		"No behavior profiles available.",
		"No timing profiles available.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "### Correlated Pairs") {
		t.Error("correlated pairs section should be omitted without behavior results")
	}
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := &Report{
		GeneratedAt: fixedTime,
		Buyers:      &events.BuyerReport{},
		Timing:      &analytics.TimingResult{},
	}

	paths, err := WriteFiles(dir, r)
	if err != nil {
		t.Fatalf("WriteFiles failed: %v", err)
	}

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	want := "REPORT.md,buyers.csv,buyers_trend.csv,timing.csv,sentiment.csv"
	if strings.Join(names, ",") != want {
		t.Errorf("expected %s, got %v", want, names)
	}

	data, err := os.ReadFile(filepath.Join(dir, "buyers.csv"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "holder_id,holder_name,") {
		t.Errorf("unexpected buyers.csv header: %q", data)
	}
}
