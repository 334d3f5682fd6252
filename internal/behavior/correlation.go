package behavior

import (
	"sort"

	"holder-flow/internal/delta"
	"holder-flow/internal/domain"
)

// DefaultCorrelationThreshold is the minimum correlation reported when the caller supplies none.
const DefaultCorrelationThreshold = 0.2

// DefaultMinParticipants is the number of distinct holders acting the same way on one day
// that makes a coordinated activity.
const DefaultMinParticipants = 3

// dateIndex maps a date to the holders that bought or sold on it.
type dateIndex struct {
	buyers  map[domain.Date][]string
	sellers map[domain.Date][]string
}

// newDateIndex builds the inverted index from profiles. Holder ids within a date keep the
// order of profiles, so sorted profiles give sorted participants.
func newDateIndex(profiles []*domain.BehaviorProfile) *dateIndex {
	idx := &dateIndex{
		buyers:  make(map[domain.Date][]string),
		sellers: make(map[domain.Date][]string),
	}
	for _, p := range profiles {
		for _, d := range p.BuyDates {
			idx.buyers[d] = append(idx.buyers[d], p.HolderID)
		}
		for _, d := range p.SellDates {
			idx.sellers[d] = append(idx.sellers[d], p.HolderID)
		}
	}
	return idx
}

type pairKey struct{ a, b string }

type overlap struct {
	buys  []domain.Date
	sells []domain.Date
}

// Correlate scores every pair of profiles that share at least one same-direction date:
//
//	correlation = 2 * (|buysA ∩ buysB| + |sellsA ∩ sellsB|) / (eventsA + eventsB)
//
// Pairs without a shared date score 0 and are never candidates. Pairs at or above threshold
// are returned sorted by correlation descending, then by holder ids.
func Correlate(profiles []*domain.BehaviorProfile, threshold float64) []domain.CorrelatedPair {
	events := make(map[string]int, len(profiles))
	for _, p := range profiles {
		events[p.HolderID] = p.EventCount()
	}

	idx := newDateIndex(profiles)
	overlaps := make(map[pairKey]*overlap)
	collect := func(byDate map[domain.Date][]string, buy bool) {
		for d, holders := range byDate {
			for i := 0; i < len(holders); i++ {
				for j := i + 1; j < len(holders); j++ {
					k := orderedPair(holders[i], holders[j])
					o, ok := overlaps[k]
					if !ok {
						o = &overlap{}
						overlaps[k] = o
					}
					if buy {
						o.buys = append(o.buys, d)
					} else {
						o.sells = append(o.sells, d)
					}
				}
			}
		}
	}
	collect(idx.buyers, true)
	collect(idx.sellers, false)

	pairs := []domain.CorrelatedPair{}
	for k, o := range overlaps {
		ea, eb := events[k.a], events[k.b]
		if ea == 0 || eb == 0 {
			continue
		}
		corr := 2 * float64(len(o.buys)+len(o.sells)) / float64(ea+eb)
		if corr < threshold {
			continue
		}
		sortDates(o.buys)
		sortDates(o.sells)
		pairs = append(pairs, domain.CorrelatedPair{
			HolderA:              k.a,
			HolderB:              k.b,
			Correlation:          corr,
			OverlappingBuyDates:  o.buys,
			OverlappingSellDates: o.sells,
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Correlation != pairs[j].Correlation {
			return pairs[i].Correlation > pairs[j].Correlation
		}
		if pairs[i].HolderA != pairs[j].HolderA {
			return pairs[i].HolderA < pairs[j].HolderA
		}
		return pairs[i].HolderB < pairs[j].HolderB
	})
	return pairs
}

// Coordinate reports every date on which at least minParticipants distinct holders bought
// (kind buying) or sold (kind selling). Ordered by date, buying before selling.
func Coordinate(t *delta.Table, minParticipants int) []domain.CoordinatedActivity {
	if minParticipants <= 0 {
		minParticipants = DefaultMinParticipants
	}

	buyers := make(map[domain.Date][]string)
	sellers := make(map[domain.Date][]string)
	for _, a := range t.Activities() {
		for _, d := range a.Buys {
			buyers[d.Date] = append(buyers[d.Date], a.HolderID)
		}
		for _, d := range a.Sells {
			sellers[d.Date] = append(sellers[d.Date], a.HolderID)
		}
	}

	activities := []domain.CoordinatedActivity{}
	emit := func(byDate map[domain.Date][]string, kind domain.ActivityKind) {
		for d, holders := range byDate {
			if len(holders) < minParticipants {
				continue
			}
			participants := make([]string, len(holders))
			copy(participants, holders)
			sort.Strings(participants)
			activities = append(activities, domain.CoordinatedActivity{
				Date:         d,
				Kind:         kind,
				Participants: participants,
			})
		}
	}
	emit(buyers, domain.ActivityBuying)
	emit(sellers, domain.ActivitySelling)

	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Date != activities[j].Date {
			return activities[i].Date < activities[j].Date
		}
		return activities[i].Kind < activities[j].Kind
	})
	return activities
}

func orderedPair(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

func sortDates(dates []domain.Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
}
