package aftercare

import (
	"bytes"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date — календарная дата в JSON как "2006-01-02". RFC3339 тоже принимается.
type Date time.Time

func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.Local))
}

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) IsZero() bool { return time.Time(d).IsZero() }

// EndOfDay — граница для включающих диапазонов [from, to]
func (d Date) EndOfDay() time.Time {
	return time.Time(d).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return time.Time(d).Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*d = Date{}
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		*d = Date(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected %s", s, DateLayout)
	}
	*d = Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local))
	return nil
}
