// Package calendar implements the dual-calendar support the licensing
// workflow depends on: Gregorian (AD) / Bikram Sambat (BS) conversion, ISO
// date validation, and whole-year age computation. Everything here is a pure
// function over value types; no I/O, no clocks.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"chalak/pkg/sentinel"
)

// System tags which calendar a textual date was entered in.
type System string

const (
	SystemAD System = "AD"
	SystemBS System = "BS"
)

// IsValid checks if the calendar system is one of the supported enum values.
func (s System) IsValid() bool {
	return s == SystemAD || s == SystemBS
}

// Date is a calendar date in a single calendar system. The system is carried
// by context, not by the value; the zero Date is invalid.
type Date struct {
	Year  int
	Month int
	Day   int
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse reads the canonical YYYY-MM-DD form. All three components must be
// non-zero; no range check beyond that is applied here, so a parsed value is
// well-shaped but not necessarily a real day (see ValidAD / validBS).
func Parse(s string) (Date, error) {
	if !isoDatePattern.MatchString(s) {
		return Date{}, fmt.Errorf("date %q: %w", s, sentinel.ErrInvalidState)
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	if year == 0 || month == 0 || day == 0 {
		return Date{}, fmt.Errorf("date %q has zero component: %w", s, sentinel.ErrInvalidState)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before orders two dates in the same calendar.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Time maps an AD date onto a time.Time at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// FromTime maps a time.Time back onto an AD date, discarding the clock.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// ValidAD reports whether d denotes a real Gregorian day. time.Date
// normalizes overflow (Feb 31 becomes Mar 2/3), so a round-trip comparison
// catches impossible days.
func ValidAD(d Date) bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return FromTime(d.Time()) == d
}
