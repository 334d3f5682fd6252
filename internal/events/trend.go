package events

import (
	"sort"

	"holder-flow/internal/domain"
)

// trend buckets events by day or month.
type trend struct {
	granularity domain.Granularity
	buckets     map[string]*trendBucket
}

type trendBucket struct {
	holders map[string]struct{}
	events  int
	total   int64
}

func newTrend(g domain.Granularity) *trend {
	if !g.IsValid() {
		g = domain.GranularityDaily
	}
	return &trend{granularity: g, buckets: make(map[string]*trendBucket)}
}

func (t *trend) add(d domain.Date, holderID string, change int64) {
	key := t.granularity.Bucket(d)
	b, ok := t.buckets[key]
	if !ok {
		b = &trendBucket{holders: make(map[string]struct{})}
		t.buckets[key] = b
	}
	b.holders[holderID] = struct{}{}
	b.events++
	b.total += change
}

// points returns the buckets in chronological order.
func (t *trend) points() []domain.TrendPoint {
	keys := make([]string, 0, len(t.buckets))
	for k := range t.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys) // ISO keys sort chronologically

	out := make([]domain.TrendPoint, 0, len(keys))
	for _, k := range keys {
		b := t.buckets[k]
		out = append(out, domain.TrendPoint{
			Period:      k,
			Holders:     len(b.holders),
			Events:      b.events,
			TotalChange: b.total,
		})
	}
	return out
}
