// Package analytics exposes the holder analytics features over a snapshot store.
// Each call fetches the snapshots it needs, resolves canonical positions, builds the
// per-holder delta table in parallel and runs one feature. Nothing is kept between calls.
package analytics

import (
	"context"
	"fmt"
	"time"

	"holder-flow/internal/behavior"
	"holder-flow/internal/delta"
	"holder-flow/internal/domain"
	"holder-flow/internal/events"
	"holder-flow/internal/logger"
	"holder-flow/internal/observability"
	"holder-flow/internal/positions"
	"holder-flow/internal/storage"
	"holder-flow/internal/timing"
)

// Feature names, used for metrics, cache keys and routes.
const (
	FeatureBuyers   = "buyers"
	FeatureSellers  = "sellers"
	FeatureEntrants = "entrants"
	FeatureBehavior = "behavior"
	FeatureTiming   = "timing"
)

// Service runs analytics features.
type Service struct {
	snapshots storage.SnapshotStore
	holders   storage.HolderStore
	cfg       Config
	log       *logger.Logger
	metrics   *observability.Metrics
}

// Options for creating Service.
type Options struct {
	Snapshots storage.SnapshotStore // required
	Holders   storage.HolderStore   // optional, supplies display names
	Config    Config
	Logger    *logger.Logger
	Metrics   *observability.Metrics
}

// New creates a new Service.
func New(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	return &Service{
		snapshots: opts.Snapshots,
		holders:   opts.Holders,
		cfg:       opts.Config,
		log:       opts.Logger,
		metrics:   opts.Metrics,
	}
}

// BehaviorResult bundles behavior profiles with the correlation and coordination output.
type BehaviorResult struct {
	Profiles    []*domain.BehaviorProfile    `json:"profiles"`
	Pairs       []domain.CorrelatedPair      `json:"correlated_pairs"`
	Coordinated []domain.CoordinatedActivity `json:"coordinated_activities"`
	Suspicious  []domain.SuspiciousPattern   `json:"suspicious_patterns"`
}

// TimingResult bundles timing profiles with the market sentiment series.
type TimingResult struct {
	Profiles  []*domain.TimingProfile `json:"profiles"`
	Sentiment []domain.SentimentPoint `json:"sentiment"`
}

// Buyers returns the active buyers report.
func (s *Service) Buyers(ctx context.Context, req Request) (*events.BuyerReport, error) {
	var report *events.BuyerReport
	err := s.run(ctx, FeatureBuyers, req, func(ctx context.Context, q Query, t *delta.Table) (int, error) {
		report = events.ActiveBuyers(t, q.Granularity)
		names, err := s.names(ctx, len(report.Buyers), func(i int) string { return report.Buyers[i].HolderID })
		for i := range report.Buyers {
			report.Buyers[i].HolderName = names[report.Buyers[i].HolderID]
		}
		return len(report.Buyers), err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Sellers returns the active sellers report, including complete disappearances.
func (s *Service) Sellers(ctx context.Context, req Request) (*events.SellerReport, error) {
	var report *events.SellerReport
	err := s.run(ctx, FeatureSellers, req, func(ctx context.Context, q Query, t *delta.Table) (int, error) {
		report = events.ActiveSellers(t, q.Granularity)
		names, err := s.names(ctx, len(report.Sellers), func(i int) string { return report.Sellers[i].HolderID })
		for i := range report.Sellers {
			report.Sellers[i].HolderName = names[report.Sellers[i].HolderID]
		}
		return len(report.Sellers), err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// NewEntrants returns holders first seen within the period.
func (s *Service) NewEntrants(ctx context.Context, req Request) (*events.EntrantReport, error) {
	var report *events.EntrantReport
	err := s.run(ctx, FeatureEntrants, req, func(ctx context.Context, q Query, t *delta.Table) (int, error) {
		report = events.NewEntrants(t, q.Granularity)
		names, err := s.names(ctx, len(report.Entrants), func(i int) string { return report.Entrants[i].HolderID })
		for i := range report.Entrants {
			report.Entrants[i].HolderName = names[report.Entrants[i].HolderID]
		}
		return len(report.Entrants), err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Behavior classifies holders and detects correlated and coordinated activity.
func (s *Service) Behavior(ctx context.Context, req Request) (*BehaviorResult, error) {
	var result *BehaviorResult
	err := s.run(ctx, FeatureBehavior, req, func(ctx context.Context, q Query, t *delta.Table) (int, error) {
		threshold := s.cfg.CorrelationThreshold
		if q.CorrelationThreshold != nil {
			threshold = *q.CorrelationThreshold
		}

		profiles := behavior.Classify(t, s.cfg.VolatilityThreshold)
		pairs := behavior.Correlate(profiles, threshold)
		coordinated := behavior.Coordinate(t, s.cfg.CoordinationMinParticipants)
		result = &BehaviorResult{
			Profiles:    profiles,
			Pairs:       pairs,
			Coordinated: coordinated,
			Suspicious:  behavior.Suspicious(pairs, coordinated, s.cfg.Suspicious),
		}

		names, err := s.names(ctx, len(profiles), func(i int) string { return profiles[i].HolderID })
		for _, p := range profiles {
			p.HolderName = names[p.HolderID]
		}
		return len(profiles), err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Timing scores buy/sell sequencing and builds the market sentiment series.
func (s *Service) Timing(ctx context.Context, req Request) (*TimingResult, error) {
	var result *TimingResult
	err := s.run(ctx, FeatureTiming, req, func(ctx context.Context, q Query, t *delta.Table) (int, error) {
		profiles := timing.Score(t, s.cfg.Timing)
		result = &TimingResult{
			Profiles:  profiles,
			Sentiment: timing.Sentiment(t, q.Granularity),
		}

		names, err := s.names(ctx, len(profiles), func(i int) string { return profiles[i].HolderID })
		for _, p := range profiles {
			p.HolderName = names[p.HolderID]
		}
		return len(profiles), err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type featureFunc func(ctx context.Context, q Query, t *delta.Table) (int, error)

// run validates the request, builds the delta table and runs fn, recording metrics.
func (s *Service) run(ctx context.Context, feature string, req Request, fn featureFunc) error {
	q, err := req.Validate()
	if err != nil {
		return err
	}

	start := time.Now()
	holders, err := s.compute(ctx, q, fn)
	elapsed := time.Since(start)
	s.metrics.RecordAnalytics(feature, elapsed.Seconds(), holders, err)

	if err != nil {
		s.log.Errorf("%s %s..%s failed: %v", feature, q.Start, q.End, err)
		return fmt.Errorf("%s: %w", feature, err)
	}
	s.metrics.LastSuccessfulAnalysis.SetToCurrentTime()
	s.log.Debugf("%s %s..%s: %d holders in %s", feature, q.Start, q.End, holders, elapsed)
	return nil
}

func (s *Service) compute(ctx context.Context, q Query, fn featureFunc) (int, error) {
	t, err := s.Table(ctx, q)
	if err != nil {
		return 0, err
	}
	return fn(ctx, q, t)
}

// Table fetches snapshots for the query period plus the lookback window and builds the
// per-holder delta table.
func (s *Service) Table(ctx context.Context, q Query) (*delta.Table, error) {
	from := q.Start.AddDays(-s.cfg.LookbackDays)
	snapshots, err := s.snapshots.GetByDateRange(ctx, from, q.End, nil)
	if err != nil {
		return nil, fmt.Errorf("load snapshots %s..%s: %w", from, q.End, err)
	}
	s.metrics.SnapshotsLoaded.Add(float64(len(snapshots)))

	idx := positions.FromSnapshots(snapshots)
	t, err := delta.BuildTable(ctx, idx, q.Start, q.End, s.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("build delta table: %w", err)
	}
	return t, nil
}

// names looks up display names for n holder ids. Missing holders keep an empty name.
func (s *Service) names(ctx context.Context, n int, id func(int) string) (map[string]string, error) {
	names := make(map[string]string, n)
	if s.holders == nil || n == 0 {
		return names, nil
	}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = id(i)
	}
	holders, err := s.holders.GetByIDs(ctx, ids)
	if err != nil {
		return names, fmt.Errorf("load holder names: %w", err)
	}
	for _, h := range holders {
		names[h.ID] = h.Name
	}
	return names, nil
}
