package domain

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	periodLayout    = "2006-01-02"
	periodKeyLayout = "2006-01"
)

// Period is a calendar month identified by its first day in UTC.
type Period struct {
	start time.Time
}

func NewPeriod(t time.Time) Period {
	if t.IsZero() {
		return Period{}
	}
	y, m, _ := t.Date()
	return Period{start: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)}
}

// ParsePeriod accepts YYYY-MM, YYYY-MM-DD or RFC3339 and normalizes to the first of the month.
func ParsePeriod(value string) (Period, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Period{}, ErrInvalidPeriod
	}
	for _, layout := range []string{periodKeyLayout, periodLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return NewPeriod(t), nil
		}
	}
	return Period{}, ErrInvalidPeriod
}

func (p Period) Start() time.Time { return p.start }

func (p Period) IsZero() bool { return p.start.IsZero() }

func (p Period) Next() Period { return Period{start: p.start.AddDate(0, 1, 0)} }

func (p Period) Prev() Period { return Period{start: p.start.AddDate(0, -1, 0)} }

// String is the boundary format, YYYY-MM-01.
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return p.start.Format(periodLayout)
}

// Key is used in document file names.
func (p Period) Key() string {
	if p.IsZero() {
		return ""
	}
	return p.start.Format(periodKeyLayout)
}

// Label is the human form, e.g. "March 2025".
func (p Period) Label() string {
	if p.IsZero() {
		return ""
	}
	return p.start.Format("January 2006")
}

func (p Period) Date() datatypes.Date {
	return datatypes.Date(p.start)
}

func (p Period) MarshalJSON() ([]byte, error) {
	if p.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(p.String())
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidPeriod
	}
	if raw == nil {
		*p = Period{}
		return nil
	}
	parsed, err := ParsePeriod(*raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
