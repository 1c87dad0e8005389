package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time component.
type Date struct {
	t time.Time
}

// NewDate validates year/month/day; out-of-range parts (13/45/2025) are rejected
// instead of being normalised into a different day.
func NewDate(year int, month time.Month, day int) (Date, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{t: t}, true
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

func (d Date) String() string { return d.t.Format(dateLayout) }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = p
	return nil
}
