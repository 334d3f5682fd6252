package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"holder-flow/internal/domain"
)

// ErrInvalidRequest is returned for malformed or inconsistent analytics requests.
var ErrInvalidRequest = errors.New("invalid analytics request")

// Request is the caller-facing input of every analytics feature.
// Dates are ISO-8601 strings; Granularity defaults to daily.
type Request struct {
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	Granularity          string   `json:"granularity,omitempty"`
	SingleDate           string   `json:"single_date,omitempty"`
	CorrelationThreshold *float64 `json:"correlation_threshold,omitempty"`
}

// Query is a validated Request.
type Query struct {
	Start                domain.Date
	End                  domain.Date
	Granularity          domain.Granularity
	CorrelationThreshold *float64
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Validate parses and checks the request. A SingleDate narrows the period to that day and
// takes precedence over StartDate and EndDate.
func (r Request) Validate() (Query, error) {
	var q Query

	if r.SingleDate != "" {
		d, err := domain.ParseDate(r.SingleDate)
		if err != nil {
			return q, invalid("single_date: %v", err)
		}
		q.Start, q.End = d, d
	} else {
		if r.StartDate == "" || r.EndDate == "" {
			return q, invalid("start_date and end_date are required")
		}
		start, err := domain.ParseDate(r.StartDate)
		if err != nil {
			return q, invalid("start_date: %v", err)
		}
		end, err := domain.ParseDate(r.EndDate)
		if err != nil {
			return q, invalid("end_date: %v", err)
		}
		if end.Before(start) {
			return q, invalid("end_date %s is before start_date %s", end, start)
		}
		q.Start, q.End = start, end
	}

	q.Granularity = domain.Granularity(strings.ToLower(r.Granularity))
	if q.Granularity == "" {
		q.Granularity = domain.GranularityDaily
	}
	if !q.Granularity.IsValid() {
		return q, invalid("granularity must be daily or monthly, got %q", r.Granularity)
	}

	if r.CorrelationThreshold != nil {
		t := *r.CorrelationThreshold
		if t < 0 || t > 1 {
			return q, invalid("correlation_threshold must be between 0 and 1, got %v", t)
		}
		q.CorrelationThreshold = &t
	}

	return q, nil
}

// Key identifies the query for caching; equal queries have equal keys.
func (q Query) Key() string {
	threshold := "default"
	if q.CorrelationThreshold != nil {
		threshold = strconv.FormatFloat(*q.CorrelationThreshold, 'f', -1, 64)
	}
	return fmt.Sprintf("%s:%s:%s:%s", q.Start, q.End, q.Granularity, threshold)
}
