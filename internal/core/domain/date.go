package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	DefaultWeekDays = 7
	MaxRangeDays    = 366
)

// Date is a calendar day with no time and no zone attached.
// It never goes through a timestamp, so it cannot drift across offsets.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day t falls on in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the current calendar day in the process' local zone.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate reads a strict YYYY-MM-DD string into calendar fields.
func ParseDate(s string) (Date, error) {
	if len(s) != len(DateLayout) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			if s[i] != '-' {
				return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
			}
			continue
		}
		// Atoi alone would let signs through.
		if s[i] < '0' || s[i] > '9' {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
	}

	y, errY := strconv.Atoi(s[0:4])
	m, errM := strconv.Atoi(s[5:7])
	d, errD := strconv.Atoi(s[8:10])
	if errY != nil || errM != nil || errD != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	date := Date{Year: y, Month: time.Month(m), Day: d}
	if m < 1 || m > 12 || d < 1 || NewDate(y, time.Month(m), d) != date {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return date, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) midnightUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays works on UTC midnights so DST transitions never skip or repeat a day.
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnightUTC().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.midnightUTC().Before(o.midnightUTC())
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// DaysUntil counts calendar days from d to o; negative when o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.midnightUTC().Sub(d.midnightUTC()).Hours() / 24)
}

// ExpandRange lists every date to materialize as a Day. A nil end means a
// 7 day week starting at start; otherwise the range is inclusive.
func ExpandRange(start Date, end *Date) ([]Date, error) {
	count := DefaultWeekDays
	if end != nil {
		if end.Before(start) {
			return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, end, start)
		}
		count = start.DaysUntil(*end) + 1
	}

	if count > MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days", ErrRangeTooLong, count)
	}

	dates := make([]Date, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, start.AddDays(i))
	}
	return dates, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan accepts what Postgres and SQLite drivers hand back for a DATE column.
// Drivers return midnight UTC for dates, so the calendar fields are read as-is.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
