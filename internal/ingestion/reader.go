package ingestion

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"holder-flow/internal/domain"
)

// maxLineSize bounds a single JSON line.
const maxLineSize = 1 << 20

// Batch is a decoded group of records.
type Batch struct {
	Snapshots []*domain.PositionSnapshot
	Holders   []*domain.Holder // deduplicated by id, first name wins
}

// Reader decodes JSON-lines records in batches.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	now     func() time.Time
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		scanner: s,
		now:     time.Now,
	}
}

// WithClock sets the clock used to stamp records without recorded_at.
func (r *Reader) WithClock(now func() time.Time) *Reader {
	r.now = now
	return r
}

// Next decodes up to size records. It returns io.EOF with an empty batch once the input is
// exhausted. Blank lines and lines starting with # are skipped. Decoding stops at the first
// invalid record; the error names its line.
func (r *Reader) Next(size int) (*Batch, error) {
	batch := &Batch{}
	seen := make(map[string]bool)
	stamp := r.now()

	for len(batch.Snapshots) < size && r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", r.line, ErrInvalidRecord, err)
		}
		snap, err := rec.Snapshot(stamp)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		batch.Snapshots = append(batch.Snapshots, snap)

		if h := rec.Holder(); h != nil && !seen[h.ID] {
			seen[h.ID] = true
			batch.Holders = append(batch.Holders, h)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", r.line+1, err)
	}
	if len(batch.Snapshots) == 0 {
		return batch, io.EOF
	}

	SortSnapshots(batch.Snapshots)
	return batch, nil
}
