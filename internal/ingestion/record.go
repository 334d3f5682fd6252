// Package ingestion decodes pre-normalized position records for import.
//
// The input is JSON lines, one observation per line:
//
//	{"holder_id":"h1","holder_name":"Alpha","date":"2025-03-01","shares":100,"percentage":1.5,"recorded_at":"2025-03-01T10:00:00Z"}
//
// holder_name and recorded_at are optional. Records without recorded_at are stamped with
// the reader's clock so later imports supersede earlier ones for the same day. A record
// with a name but no holder_id gets an id derived from the name.
package ingestion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"holder-flow/internal/domain"
	"holder-flow/internal/idhash"
	"holder-flow/internal/storage"
)

// ErrInvalidRecord is returned for records that fail decoding or validation.
var ErrInvalidRecord = errors.New("invalid record")

// Record is one line of an import file.
type Record struct {
	HolderID   string       `json:"holder_id"`
	HolderName string       `json:"holder_name,omitempty"`
	Date       *domain.Date `json:"date"`
	Shares     int64        `json:"shares"`
	Percentage float64      `json:"percentage"`
	RecordedAt *time.Time   `json:"recorded_at,omitempty"`
}

// Snapshot converts the record into a position snapshot. now stamps records without
// recorded_at.
func (r *Record) Snapshot(now time.Time) (*domain.PositionSnapshot, error) {
	r.resolveID()
	if r.Date == nil {
		return nil, fmt.Errorf("%w: missing date for holder %q", ErrInvalidRecord, r.HolderID)
	}
	snap := &domain.PositionSnapshot{
		HolderID:   r.HolderID,
		Date:       *r.Date,
		Shares:     r.Shares,
		Percentage: r.Percentage,
		RecordedAt: now.UTC(),
	}
	if r.RecordedAt != nil {
		snap.RecordedAt = r.RecordedAt.UTC()
	}
	if err := storage.ValidateSnapshot(snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return snap, nil
}

// Holder returns the holder named by the record, or nil when the record carries no name.
func (r *Record) Holder() *domain.Holder {
	r.resolveID()
	if r.HolderName == "" {
		return nil
	}
	return &domain.Holder{ID: r.HolderID, Name: r.HolderName}
}

func (r *Record) resolveID() {
	if r.HolderID == "" && strings.TrimSpace(r.HolderName) != "" {
		r.HolderID = idhash.HolderID(r.HolderName)
	}
}
