package behavior

import (
	"fmt"
	"sort"

	"holder-flow/internal/domain"
)

// Default suspicious-pattern thresholds.
const (
	DefaultSuspiciousCorrelation  = 0.8
	DefaultSuspiciousParticipants = 5
)

// SuspiciousParams configures Suspicious.
type SuspiciousParams struct {
	MinCorrelation  float64 // pairs at or above this are flagged
	MinParticipants int     // coordinated activities with at least this many holders are flagged
}

// DefaultSuspiciousParams returns the documented defaults.
func DefaultSuspiciousParams() SuspiciousParams {
	return SuspiciousParams{
		MinCorrelation:  DefaultSuspiciousCorrelation,
		MinParticipants: DefaultSuspiciousParticipants,
	}
}

// Suspicious flags strongly correlated pairs and large same-day coordination. The flags are
// heuristics for review, not findings. Ordered by kind, then score descending.
func Suspicious(pairs []domain.CorrelatedPair, activities []domain.CoordinatedActivity, params SuspiciousParams) []domain.SuspiciousPattern {
	patterns := []domain.SuspiciousPattern{}

	for _, p := range pairs {
		if p.Correlation < params.MinCorrelation {
			continue
		}
		dates := make([]domain.Date, 0, len(p.OverlappingBuyDates)+len(p.OverlappingSellDates))
		dates = append(dates, p.OverlappingBuyDates...)
		dates = append(dates, p.OverlappingSellDates...)
		sortDates(dates)
		patterns = append(patterns, domain.SuspiciousPattern{
			Kind:    domain.PatternHighlyCorrelatedPair,
			Holders: []string{p.HolderA, p.HolderB},
			Dates:   dates,
			Score:   p.Correlation,
			Description: fmt.Sprintf("%s and %s traded in the same direction on %d shared date(s), correlation %.2f",
				p.HolderA, p.HolderB, len(dates), p.Correlation),
		})
	}

	for _, a := range activities {
		if params.MinParticipants <= 0 || len(a.Participants) < params.MinParticipants {
			continue
		}
		patterns = append(patterns, domain.SuspiciousPattern{
			Kind:        domain.PatternMassCoordination,
			Holders:     a.Participants,
			Dates:       []domain.Date{a.Date},
			Score:       float64(len(a.Participants)),
			Description: fmt.Sprintf("%d holders %s on %s", len(a.Participants), a.Kind, a.Date),
		})
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].Kind != patterns[j].Kind {
			return patterns[i].Kind < patterns[j].Kind
		}
		return patterns[i].Score > patterns[j].Score
	})
	return patterns
}
