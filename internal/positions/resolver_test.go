package positions

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"holder-flow/internal/domain"
)

func snap(holder, date string, shares int64, recordedAt time.Time, seq int64) *domain.PositionSnapshot {
	return &domain.PositionSnapshot{
		HolderID:   holder,
		Date:       domain.MustParseDate(date),
		Shares:     shares,
		Percentage: float64(shares) / 100,
		RecordedAt: recordedAt,
		SequenceID: seq,
	}
}

func TestResolve_LatestRecordedAtWins(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	snapshots := []*domain.PositionSnapshot{
		snap("h1", "2024-03-01", 100, base, 1),
		snap("h1", "2024-03-01", 120, base.Add(2*time.Hour), 2),
		snap("h1", "2024-03-01", 110, base.Add(time.Hour), 3),
	}

	resolved := Resolve(snapshots)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved position, got %d", len(resolved))
	}
	if resolved[0].Shares != 120 {
		t.Errorf("expected shares 120, got %d", resolved[0].Shares)
	}
}

func TestResolve_SequenceBreaksTies(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	snapshots := []*domain.PositionSnapshot{
		snap("h1", "2024-03-01", 100, at, 7),
		snap("h1", "2024-03-01", 300, at, 9),
		snap("h1", "2024-03-01", 200, at, 8),
	}

	resolved := Resolve(snapshots)
	if resolved[0].Shares != 300 {
		t.Errorf("expected highest sequence (shares 300) to win, got %d", resolved[0].Shares)
	}
}

func TestResolve_OnePerHolderDate(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	snapshots := []*domain.PositionSnapshot{
		snap("h2", "2024-03-02", 10, at, 1),
		snap("h1", "2024-03-02", 20, at, 2),
		snap("h1", "2024-03-01", 30, at, 3),
		snap("h1", "2024-03-01", 40, at, 4),
		nil,
	}

	resolved := Resolve(snapshots)
	if len(resolved) != 3 {
		t.Fatalf("expected 3 resolved positions, got %d", len(resolved))
	}

	// Ordered by (holder, date)
	want := []struct {
		holder string
		date   string
		shares int64
	}{
		{"h1", "2024-03-01", 40},
		{"h1", "2024-03-02", 20},
		{"h2", "2024-03-02", 10},
	}
	for i, w := range want {
		got := resolved[i]
		if got.HolderID != w.holder || got.Date.String() != w.date || got.Shares != w.shares {
			t.Errorf("position %d: got %s/%s/%d, want %s/%s/%d",
				i, got.HolderID, got.Date, got.Shares, w.holder, w.date, w.shares)
		}
	}
}

func TestResolve_DeterministicAcrossInputOrder(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var snapshots []*domain.PositionSnapshot
	seq := int64(0)
	for _, h := range []string{"a", "b", "c"} {
		for day := 1; day <= 5; day++ {
			for rev := 0; rev < 3; rev++ {
				seq++
				snapshots = append(snapshots, &domain.PositionSnapshot{
					HolderID:   h,
					Date:       domain.NewDate(2024, time.March, day),
					Shares:     int64(day*100 + rev),
					RecordedAt: at.Add(time.Duration(rev%2) * time.Hour),
					SequenceID: seq,
				})
			}
		}
	}

	first := Resolve(snapshots)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]*domain.PositionSnapshot, len(snapshots))
		copy(shuffled, snapshots)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		again := Resolve(shuffled)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution differs after shuffle %d", i)
		}
	}

	// Re-resolving the output's snapshot set is idempotent.
	if !reflect.DeepEqual(first, Resolve(snapshots)) {
		t.Error("resolution is not idempotent")
	}
}

func TestResolve_Empty(t *testing.T) {
	if got := Resolve(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
