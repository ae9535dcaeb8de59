package datemath

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateKey renders t as YYYY-MM-DD in loc (UTC when loc is nil).
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// DateOnly returns midnight UTC of the calendar day t falls on in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// Today is the current calendar day in the clock's location, as midnight UTC.
func Today(c Clock) time.Time {
	return DateOnly(Or(c).Now())
}

// IsTodayOrLater compares calendar-day keys, so time-of-day and offsets never matter.
// Lexicographic order on YYYY-MM-DD is chronological order.
func IsTodayOrLater(date time.Time, c Clock) bool {
	now := Or(c).Now()
	return DateKey(DateOnly(date), time.UTC) >= DateKey(now, now.Location())
}

func AddDays(date time.Time, n int) time.Time {
	return DateOnly(date).AddDate(0, 0, n)
}

// ShiftByDuration moves a calendar date forward by an elapsed duration, truncating to the day.
func ShiftByDuration(date time.Time, d time.Duration) time.Time {
	if d < 0 {
		d = 0
	}
	return DateOnly(DateOnly(date).Add(d))
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns the Monday..Sunday week containing date as [monday, next monday).
func WeekBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start, _ := DayBounds(date, loc)
	offset := (int(start.Weekday()) + 6) % 7
	monday := start.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 7)
}

func MonthBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, _ := date.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
