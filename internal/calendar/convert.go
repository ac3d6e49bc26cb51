package calendar

import (
	"fmt"

	"chalak/pkg/sentinel"
)

// ErrOutOfRange is wrapped into conversion errors for dates the BS tables do
// not cover. Out-of-range input fails the same way as malformed input: with
// an error and a zero Date, never partial output.
var errOutOfRange = fmt.Errorf("date outside supported BS range: %w", sentinel.ErrInvalidState)

// BsToAd converts a Bikram Sambat date to its Gregorian equivalent.
func BsToAd(bs Date) (Date, error) {
	if !validBS(bs) {
		return Date{}, fmt.Errorf("bs %s: %w", bs, errOutOfRange)
	}

	days := 0
	for year := bsEpochYear; year < bs.Year; year++ {
		for month := 1; month <= 12; month++ {
			days += bsDaysInMonth(year, month)
		}
	}
	for month := 1; month < bs.Month; month++ {
		days += bsDaysInMonth(bs.Year, month)
	}
	days += bs.Day - 1

	return FromTime(adEpoch.Time().AddDate(0, 0, days)), nil
}

// AdToBs converts a Gregorian date to its Bikram Sambat equivalent.
func AdToBs(ad Date) (Date, error) {
	if !ValidAD(ad) {
		return Date{}, fmt.Errorf("ad %s: %w", ad, sentinel.ErrInvalidState)
	}

	days := int(ad.Time().Sub(adEpoch.Time()).Hours() / 24)
	if days < 0 {
		return Date{}, fmt.Errorf("ad %s: %w", ad, errOutOfRange)
	}

	year, month := bsEpochYear, 1
	for {
		monthLen := bsDaysInMonth(year, month)
		if monthLen == 0 {
			// Walked off the end of the tables.
			return Date{}, fmt.Errorf("ad %s: %w", ad, errOutOfRange)
		}
		if days < monthLen {
			return Date{Year: year, Month: month, Day: days + 1}, nil
		}
		days -= monthLen
		if month == 12 {
			year, month = year+1, 1
		} else {
			month++
		}
	}
}

// ConvertString converts a textual YYYY-MM-DD date between calendars,
// validating shape first. The empty string result mirrors the portal
// contract: malformed or unconvertible input yields "" and an error.
func ConvertString(value string, from System) (string, error) {
	parsed, err := Parse(value)
	if err != nil {
		return "", err
	}
	var converted Date
	switch from {
	case SystemAD:
		converted, err = AdToBs(parsed)
	case SystemBS:
		converted, err = BsToAd(parsed)
	default:
		return "", fmt.Errorf("calendar system %q: %w", from, sentinel.ErrInvalidState)
	}
	if err != nil {
		return "", err
	}
	return converted.String(), nil
}
