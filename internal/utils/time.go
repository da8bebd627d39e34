package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/models"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// FormatDate renders t as a YYYY-MM-DD string in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD string as midnight UTC. Use it for calendar
// arithmetic where no wall-clock instant is involved.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(constants.DateFormat, dateStr)
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}

// AddDays shifts a YYYY-MM-DD string by n calendar days.
func AddDays(dateStr string, n int) (string, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// WeekdayCode returns the three-letter weekday code (MON..SUN) of t.
func WeekdayCode(t time.Time) string {
	return models.WeekdayCodes[t.Weekday()]
}

// ParseClock parses a zero-padded HH:MM string into hour (0-23) and minute (0-59).
func ParseClock(timeStr string) (int, int, error) {
	timeStr = strings.TrimSpace(timeStr)
	if len(timeStr) != len(constants.TimeFormat) {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM: %w", timeStr, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
