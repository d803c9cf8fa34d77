package adapters

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Season names the four schedule keys a care string may carry.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// SeasonSchedule is a parsed care schedule: days between care, per season.
// The stored form is a comma list like "summer:3,winter:10"; it is parsed
// here, once, at the adapter boundary, never re-parsed at evaluation sites.
type SeasonSchedule map[Season]int

// ParseSeasonSchedule parses "summer:3,winter:10" into a typed schedule.
// Unknown season names and non-positive intervals are errors; an empty string
// parses to an empty schedule (the plant is unscheduled for that care kind).
func ParseSeasonSchedule(s string) (SeasonSchedule, error) {
	sched := SeasonSchedule{}
	s = strings.TrimSpace(s)
	if s == "" {
		return sched, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("schedule entry %q: missing ':'", part)
		}
		season := Season(strings.ToLower(strings.TrimSpace(key)))
		switch season {
		case SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter:
		default:
			return nil, fmt.Errorf("schedule entry %q: unknown season", part)
		}
		days, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("schedule entry %q: %w", part, err)
		}
		if days <= 0 {
			return nil, fmt.Errorf("schedule entry %q: interval must be positive", part)
		}
		sched[season] = days
	}
	return sched, nil
}

// SeasonOf maps a timestamp to its meteorological season.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// IntervalDaysAt returns the interval applicable at t, or 0 when the schedule
// has no entry for that season.
func (s SeasonSchedule) IntervalDaysAt(t time.Time) int {
	return s[SeasonOf(t)]
}
