package timing

import (
	"sort"

	"holder-flow/internal/delta"
	"holder-flow/internal/domain"
)

// SentimentBand is the ratio magnitude beyond which a bucket is bullish or bearish.
const SentimentBand = 0.2

type sentimentBucket struct {
	buyers  map[string]struct{}
	sellers map[string]struct{}
	net     int64
}

// Sentiment buckets buy and sell events by granularity and labels each bucket by the
// balance of distinct buyers versus sellers.
func Sentiment(t *delta.Table, g domain.Granularity) []domain.SentimentPoint {
	if !g.IsValid() {
		g = domain.GranularityDaily
	}

	buckets := make(map[string]*sentimentBucket)
	get := func(d domain.Date) *sentimentBucket {
		key := g.Bucket(d)
		b, ok := buckets[key]
		if !ok {
			b = &sentimentBucket{buyers: map[string]struct{}{}, sellers: map[string]struct{}{}}
			buckets[key] = b
		}
		return b
	}

	for _, a := range t.Activities() {
		for _, d := range a.Buys {
			b := get(d.Date)
			b.buyers[a.HolderID] = struct{}{}
			b.net += d.Change
		}
		for _, d := range a.Sells {
			b := get(d.Date)
			b.sellers[a.HolderID] = struct{}{}
			b.net += d.Change
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]domain.SentimentPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		buyers, sellers := len(b.buyers), len(b.sellers)
		ratio := float64(buyers-sellers) / float64(buyers+sellers)

		label := domain.SentimentNeutral
		switch {
		case ratio > SentimentBand:
			label = domain.SentimentBullish
		case ratio < -SentimentBand:
			label = domain.SentimentBearish
		}

		points = append(points, domain.SentimentPoint{
			Period:    k,
			Buyers:    buyers,
			Sellers:   sellers,
			NetChange: b.net,
			Ratio:     ratio,
			Sentiment: label,
		})
	}
	return points
}
