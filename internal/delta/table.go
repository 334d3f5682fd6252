package delta

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"holder-flow/internal/domain"
	"holder-flow/internal/positions"
)

// Activity holds everything the classifiers need about one holder for a period.
type Activity struct {
	HolderID string
	Series   *positions.Series
	Deltas   []domain.Delta // full series, date order
	InRange  []domain.Delta // deltas dated within the period
	Buys     []domain.Delta // buy events within the period
	Sells    []domain.Delta // sell events within the period
}

// PositionsInRange returns the holder's resolved positions within the period.
func (a *Activity) PositionsInRange(start, end domain.Date) []domain.ResolvedPosition {
	return a.Series.InRange(start, end)
}

// Table is an immutable, holder-keyed table of activities for one period.
type Table struct {
	Start      domain.Date
	End        domain.Date
	activities []*Activity // sorted by holder id
	byHolder   map[string]*Activity
}

// BuildTable computes per-holder activity for [start, end]. Holders are independent, so the
// work is spread over up to workers goroutines (GOMAXPROCS when workers <= 0).
func BuildTable(ctx context.Context, idx *positions.Index, start, end domain.Date, workers int) (*Table, error) {
	holders := idx.HolderIDs()
	activities := make([]*Activity, len(holders))

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, holderID := range holders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, _ := idx.Series(holderID)
			activities[i] = newActivity(s, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := &Table{
		Start:      start,
		End:        end,
		activities: activities,
		byHolder:   make(map[string]*Activity, len(activities)),
	}
	for _, a := range activities {
		t.byHolder[a.HolderID] = a
	}
	return t, nil
}

func newActivity(s *positions.Series, start, end domain.Date) *Activity {
	all := Compute(s)
	inRange := InRange(all, start, end)
	return &Activity{
		HolderID: s.HolderID(),
		Series:   s,
		Deltas:   all,
		InRange:  inRange,
		Buys:     Buys(inRange),
		Sells:    Sells(inRange),
	}
}

// Activities returns all activities ordered by holder id.
func (t *Table) Activities() []*Activity { return t.activities }

// Get returns the activity of a holder.
func (t *Table) Get(holderID string) (*Activity, bool) {
	a, ok := t.byHolder[holderID]
	return a, ok
}

// Len returns the number of holders in the table.
func (t *Table) Len() int { return len(t.activities) }
