// Package cli holds parsing helpers shared by commands.
package cli

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "2h ago", "7d", "3 days ago", "1mo". Data ranges only look back,
// so a bare duration means that long ago.
var relativeRegex = regexp.MustCompile(`^(\d+)\s*(mo|months?|w|weeks?|d|days?|h|hours?|m|min|minutes?)(\s+ago)?$`)

// Layouts accepted after the relative forms, in order. Dates without a zone
// are read in now's location.
var absoluteLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseRelativeTime parses human-friendly points in the past.
// Supports "now", "today", "yesterday", weekdays ("monday", "last fri"),
// durations ("2h", "7d ago", "3 days ago"), dates, "YYYY-MM-DD HH:MM[:SS]"
// and RFC3339.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	input := strings.ToLower(raw)

	switch input {
	case "now":
		return now, nil
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if t, ok := parseWeekday(input, now); ok {
		return t, nil
	}

	if matches := relativeRegex.FindStringSubmatch(input); len(matches) >= 3 {
		value, err := strconv.Atoi(matches[1])
		if err != nil || value < 1 {
			return time.Time{}, fmt.Errorf("invalid relative time %q", raw)
		}
		return ago(now, value, matches[2])
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid time expression %q", raw)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseWeekday resolves a weekday to the most recent such day. "last" skips
// today.
func parseWeekday(expr string, now time.Time) (time.Time, bool) {
	input := strings.TrimSpace(expr)
	if input == "" {
		return time.Time{}, false
	}

	last := false
	if strings.HasPrefix(input, "last ") {
		last = true
		input = strings.TrimSpace(strings.TrimPrefix(input, "last "))
	}

	weekday, ok := weekdayMap[input]
	if !ok {
		return time.Time{}, false
	}

	base := startOfDay(now)
	delta := (int(base.Weekday()) - int(weekday) + 7) % 7
	if last && delta == 0 {
		delta = 7
	}

	return base.AddDate(0, 0, -delta), true
}

var weekdayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"weds":      time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

func ago(now time.Time, value int, unit string) (time.Time, error) {
	switch {
	case unit == "mo" || strings.HasPrefix(unit, "month"):
		return now.AddDate(0, -value, 0), nil
	case strings.HasPrefix(unit, "w"):
		return now.AddDate(0, 0, -7*value), nil
	case strings.HasPrefix(unit, "d"):
		return now.AddDate(0, 0, -value), nil
	case strings.HasPrefix(unit, "h"):
		return agoDuration(now, value, time.Hour, "hours")
	case strings.HasPrefix(unit, "m"):
		return agoDuration(now, value, time.Minute, "minutes")
	default:
		return time.Time{}, fmt.Errorf("invalid relative time unit %q", unit)
	}
}

// agoDuration subtracts value units from now. time.Duration holds about 292
// years, so larger counts are rejected instead of wrapping around.
func agoDuration(now time.Time, value int, unit time.Duration, name string) (time.Time, error) {
	if limit := int64(math.MaxInt64 / unit); int64(value) > limit {
		return time.Time{}, fmt.Errorf("relative time out of range: must be at most %d %s", limit, name)
	}
	return now.Add(-time.Duration(value) * unit), nil
}
