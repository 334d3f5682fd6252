package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 layout used to render dates.
const DateFormat = "2006-01-02"

// readDateFormat is permissive and also accepts 2025-7-1.
const readDateFormat = "2006-1-2"

// MonthFormat is the layout of monthly bucket keys.
const MonthFormat = "2006-01"

// Date is a calendar day stored as the number of days since 1970-01-01 UTC.
// The zero value is the epoch; use IsZero-free comparisons through the methods below.
type Date int32

// NewDate returns the Date for the given calendar day. Out-of-range values are normalized.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t, evaluated in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(u.Unix() / 86400)
}

// ParseDate parses a Date from its ISO-8601 representation.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q want format %q: %w", s, DateFormat, err)
	}
	return DateOf(t), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Unix(int64(d)*86400, 0).UTC() }

// Ordinal returns the day number, suitable for averaging dates.
func (d Date) Ordinal() int64 { return int64(d) }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return d + Date(n) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d < x }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d > x }

// Between reports whether d lies in [start, end].
func (d Date) Between(start, end Date) bool { return d >= start && d <= end }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Time().Format(DateFormat) }

// Month returns the YYYY-MM key of the day.
func (d Date) Month() string { return d.Time().Format(MonthFormat) }

// MarshalJSON encodes the date as an ISO-8601 string.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON decodes an ISO-8601 string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date should be a string, got %s: %w", data, err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Granularity selects how trend series bucket events.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
)

// IsValid checks if the granularity is a supported value.
func (g Granularity) IsValid() bool {
	return g == GranularityDaily || g == GranularityMonthly
}

// Bucket returns the trend bucket key of d under granularity g.
func (g Granularity) Bucket(d Date) string {
	if g == GranularityMonthly {
		return d.Month()
	}
	return d.String()
}
