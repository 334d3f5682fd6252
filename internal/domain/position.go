package domain

import "time"

// Holder identifies an owner of units of the tracked asset.
// Corresponds to the holders table.
type Holder struct {
	ID   string // stable identifier
	Name string // display name, unique at ingestion
}

// PositionSnapshot is one recorded observation of a holder's position on a date.
// Several snapshots may exist for the same (holder, date), e.g. intra-day revisions.
// Corresponds to the position_snapshots table.
type PositionSnapshot struct {
	HolderID   string
	Date       Date
	Shares     int64     // units held
	Percentage float64   // ownership percentage, 0-100
	RecordedAt time.Time // when the observation was recorded
	SequenceID int64     // store-assigned, breaks RecordedAt ties
}

// Supersedes reports whether s wins over other when both describe the same (holder, date).
// Latest RecordedAt wins, then highest SequenceID.
func (s *PositionSnapshot) Supersedes(other *PositionSnapshot) bool {
	if !s.RecordedAt.Equal(other.RecordedAt) {
		return s.RecordedAt.After(other.RecordedAt)
	}
	return s.SequenceID > other.SequenceID
}

// ResolvedPosition is the canonical position of a holder on a date.
type ResolvedPosition struct {
	HolderID   string  `json:"holder_id"`
	Date       Date    `json:"date"`
	Shares     int64   `json:"shares"`
	Percentage float64 `json:"percentage"`
}

// Delta is the signed change between a resolved position and its most recent predecessor.
type Delta struct {
	HolderID        string `json:"holder_id"`
	Date            Date   `json:"date"`
	ReferenceDate   Date   `json:"reference_date"`   // zero when HasReference is false
	ReferenceShares int64  `json:"reference_shares"` // 0 when HasReference is false
	Shares          int64  `json:"shares"`
	Change          int64  `json:"change"`
	HasReference    bool   `json:"has_reference"` // false for an entry from an implicit zero baseline
}

// IsBuy reports whether the delta is a buy event.
func (d Delta) IsBuy() bool { return d.HasReference && d.Change > 0 }

// IsSell reports whether the delta is a sell event.
func (d Delta) IsSell() bool { return d.HasReference && d.Change < 0 }
