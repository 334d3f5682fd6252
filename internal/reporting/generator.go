package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"holder-flow/internal/analytics"
	"holder-flow/internal/events"
)

// Analytics is the subset of analytics.Service the generator needs.
type Analytics interface {
	Buyers(ctx context.Context, req analytics.Request) (*events.BuyerReport, error)
	Sellers(ctx context.Context, req analytics.Request) (*events.SellerReport, error)
	NewEntrants(ctx context.Context, req analytics.Request) (*events.EntrantReport, error)
	Behavior(ctx context.Context, req analytics.Request) (*analytics.BehaviorResult, error)
	Timing(ctx context.Context, req analytics.Request) (*analytics.TimingResult, error)
}

// Generator produces full-period reports from the analytics service.
type Generator struct {
	service Analytics
	now     func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(service Analytics) *Generator {
	return &Generator{
		service: service,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate runs every feature for req concurrently and assembles the report.
// The first failing feature cancels the rest.
func (g *Generator) Generate(ctx context.Context, req analytics.Request) (*Report, error) {
	q, err := req.Validate()
	if err != nil {
		return nil, err
	}

	r := &Report{
		GeneratedAt: g.now(),
		Start:       q.Start,
		End:         q.End,
		Granularity: q.Granularity,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		r.Buyers, err = g.service.Buyers(ctx, req)
		return err
	})
	eg.Go(func() (err error) {
		r.Sellers, err = g.service.Sellers(ctx, req)
		return err
	})
	eg.Go(func() (err error) {
		r.Entrants, err = g.service.NewEntrants(ctx, req)
		return err
	})
	eg.Go(func() (err error) {
		r.Behavior, err = g.service.Behavior(ctx, req)
		return err
	})
	eg.Go(func() (err error) {
		r.Timing, err = g.service.Timing(ctx, req)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generate report %s..%s: %w", q.Start, q.End, err)
	}
	return r, nil
}

func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
