// Package behavior labels holders by trading style and detects holders whose buy or sell
// dates overlap: correlated pairs, same-day coordinated activity, and suspicious patterns.
package behavior

import (
	"math"

	"holder-flow/internal/delta"
	"holder-flow/internal/domain"
)

// DefaultVolatilityThreshold is the stddev, in share units, above which a mixed trader is
// labelled high_volatility_trader.
const DefaultVolatilityThreshold = 10000

// MinPositions is the number of in-range resolved positions a holder needs to be classified.
const MinPositions = 2

// Classify builds a behavior profile for every holder with at least MinPositions resolved
// positions in the period. Profiles are ordered by holder id.
func Classify(t *delta.Table, volatilityThreshold float64) []*domain.BehaviorProfile {
	profiles := []*domain.BehaviorProfile{}
	for _, a := range t.Activities() {
		if len(a.PositionsInRange(t.Start, t.End)) < MinPositions {
			continue
		}
		profiles = append(profiles, Profile(a, volatilityThreshold))
	}
	return profiles
}

// Profile summarizes one holder's in-range deltas.
func Profile(a *delta.Activity, volatilityThreshold float64) *domain.BehaviorProfile {
	p := &domain.BehaviorProfile{
		HolderID:  a.HolderID,
		BuyDates:  make([]domain.Date, 0, len(a.Buys)),
		SellDates: make([]domain.Date, 0, len(a.Sells)),
	}
	for _, d := range a.Buys {
		p.BuyDates = append(p.BuyDates, d.Date)
		p.TotalAccumulated += d.Change
	}
	for _, d := range a.Sells {
		p.SellDates = append(p.SellDates, d.Date)
		p.TotalReduced -= d.Change
	}
	p.NetChange = p.TotalAccumulated - p.TotalReduced

	var changes []float64
	for _, d := range a.InRange {
		if d.HasReference {
			changes = append(changes, float64(d.Change))
		}
	}
	p.Volatility = populationStddev(changes)
	p.Label = Label(len(p.BuyDates), len(p.SellDates), p.Volatility, volatilityThreshold)
	return p
}

// Label applies the classification rules in precedence order.
func Label(buys, sells int, volatility, volatilityThreshold float64) domain.BehaviorLabel {
	switch {
	case buys > 0 && sells == 0:
		return domain.LabelPureAccumulator
	case sells > 0 && buys == 0:
		return domain.LabelPureSeller
	case buys > 2*sells:
		return domain.LabelNetAccumulator
	case sells > 2*buys:
		return domain.LabelNetSeller
	case volatility > volatilityThreshold:
		return domain.LabelHighVolatilityTrader
	default:
		return domain.LabelBalancedTrader
	}
}

// populationStddev uses the n denominator; zero for fewer than one value.
func populationStddev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}
