// Package timing classifies the sequencing of a holder's buys and sells and assigns a
// 0-100 timing score.
//
// The score is a heuristic classifier: it compares when a holder bought and sold against
// the holder's own ownership peak. It says nothing about returns and is not a ground-truth
// measure of skill. The constants in Params are modeling choices; change them only after
// domain review.
package timing

import (
	"holder-flow/internal/delta"
	"holder-flow/internal/domain"
)

// Params holds the scorer's thresholds and scores.
type Params struct {
	// PeakMultiple: max percentage must exceed initial × PeakMultiple for smart_trader.
	PeakMultiple float64
	// ExitFraction: final percentage must be below max × ExitFraction for smart_trader.
	ExitFraction float64
	// MinDirectionalEvents: one-directional holders need more events than this to be
	// accumulator or distributor.
	MinDirectionalEvents int
	// SignificantMovePct marks a buy or sell as an entry or exit point when the change exceeds
	// this percentage of the reference shares. Flat percentage, independent of holder size.
	SignificantMovePct float64

	SmartScore       int
	SwingScore       int
	ContrarianScore  int
	AccumulatorScore int
	DistributorScore int
	HolderScore      int
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		PeakMultiple:         1.5,
		ExitFraction:         0.5,
		MinDirectionalEvents: 3,
		SignificantMovePct:   10,
		SmartScore:           80,
		SwingScore:           50,
		ContrarianScore:      30,
		AccumulatorScore:     60,
		DistributorScore:     40,
		HolderScore:          0,
	}
}

// Score builds a timing profile for every holder with at least one buy or sell event in
// the period, ordered by holder id.
func Score(t *delta.Table, params Params) []*domain.TimingProfile {
	profiles := []*domain.TimingProfile{}
	for _, a := range t.Activities() {
		if len(a.Buys)+len(a.Sells) == 0 {
			continue
		}
		profiles = append(profiles, Profile(a, t.Start, t.End, params))
	}
	return profiles
}

// Profile scores one holder.
func Profile(a *delta.Activity, start, end domain.Date, params Params) *domain.TimingProfile {
	p := &domain.TimingProfile{
		HolderID:    a.HolderID,
		BuyCount:    len(a.Buys),
		SellCount:   len(a.Sells),
		EntryPoints: significantMoves(a.Buys, params.SignificantMovePct),
		ExitPoints:  significantMoves(a.Sells, params.SignificantMovePct),
	}

	in := a.PositionsInRange(start, end)
	if len(in) > 0 {
		p.InitialPercentage = in[0].Percentage
		p.FinalPercentage = in[len(in)-1].Percentage
		for _, pos := range in {
			p.MaxPercentage = max(p.MaxPercentage, pos.Percentage)
		}
	}

	p.TraderType, p.TimingScore = classify(a, p, params)
	return p
}

func classify(a *delta.Activity, p *domain.TimingProfile, params Params) (domain.TraderType, int) {
	buys, sells := len(a.Buys), len(a.Sells)

	switch {
	case buys > 0 && sells > 0:
		meanBuy, meanSell := meanOrdinal(a.Buys), meanOrdinal(a.Sells)
		if meanBuy > meanSell {
			return domain.TraderContrarian, params.ContrarianScore
		}
		if meanSell > meanBuy &&
			p.MaxPercentage > params.PeakMultiple*p.InitialPercentage &&
			p.FinalPercentage < params.ExitFraction*p.MaxPercentage {
			return domain.TraderSmart, params.SmartScore
		}
		return domain.TraderSwing, params.SwingScore
	case buys > params.MinDirectionalEvents:
		return domain.TraderAccumulator, params.AccumulatorScore
	case sells > params.MinDirectionalEvents:
		return domain.TraderDistributor, params.DistributorScore
	default:
		return domain.TraderHolder, params.HolderScore
	}
}

func meanOrdinal(deltas []domain.Delta) float64 {
	sum := 0.0
	for _, d := range deltas {
		sum += float64(d.Date.Ordinal())
	}
	return sum / float64(len(deltas))
}

// significantMoves returns the dates whose change exceeds pct percent of the reference.
// A move from a zero reference is always significant.
func significantMoves(deltas []domain.Delta, pct float64) []domain.Date {
	out := []domain.Date{}
	for _, d := range deltas {
		change := d.Change
		if change < 0 {
			change = -change
		}
		if d.ReferenceShares == 0 || float64(change)*100 > pct*float64(d.ReferenceShares) {
			out = append(out, d.Date)
		}
	}
	return out
}
