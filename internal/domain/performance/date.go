package performance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day at UTC midnight. It encodes as "YYYY-MM-DD" and as
// JSON null when zero.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts "YYYY-MM-DD" or an RFC3339 timestamp.
func ParseDate(value string) (Date, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", value)
	}
	return DateOf(t), nil
}

func MustParseDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) AddDays(days int) Date {
	return Date{d.Time.AddDate(0, 0, days)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// daysBetween is floor((to - from) / 24h).
func daysBetween(from, to time.Time) int {
	diff := to.Sub(from)
	days := int(diff / (24 * time.Hour))
	if diff < 0 && diff%(24*time.Hour) != 0 {
		days--
	}
	return days
}
