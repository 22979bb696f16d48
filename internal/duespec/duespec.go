// Package duespec resolves command-line time and date arguments into the
// absolute instant a countdown targets.
//
// Supported time forms:
//   - 12-hour clock: "10:30pm", "7:05AM", "10:30 pm"
//   - 24-hour clock: "19:30", "7:05"
//   - "now"
//   - Relative offset from now: "1h30m", "30m1h", "45m", "2h"
//
// Supported date forms: "M-D-YYYY" (e.g. "3-14-2026") or "today". A relative
// offset ignores the date.
package duespec

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidTime   = errors.New("invalid time")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidOffset = errors.New("invalid offset")
)

const (
	layout12h  = "3:04PM"
	layout24h  = "15:04"
	layoutDate = "1-2-2006"
)

var (
	reHM = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)
	reMH = regexp.MustCompile(`^(\d+)m(\d+)h$`)
)

// ParseOffset parses a relative "<N>h<N>m" duration. Hours and minutes may
// appear in either order and either may be omitted, but the result must be
// positive.
func ParseOffset(raw string) (time.Duration, error) {
	s := strings.ToLower(strings.Join(strings.Fields(raw), ""))

	var hh, mm string
	if m := reHM.FindStringSubmatch(s); m != nil {
		hh, mm = m[1], m[2]
	} else if m := reMH.FindStringSubmatch(s); m != nil {
		mm, hh = m[1], m[2]
	} else {
		return 0, fmt.Errorf("%w %q: use forms like '1h30m', '45m' or '2h'", ErrInvalidOffset, raw)
	}

	hours, err := atoiOrZero(hh)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidOffset, raw, err)
	}
	minutes, err := atoiOrZero(mm)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidOffset, raw, err)
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if d <= 0 {
		return 0, fmt.Errorf("%w %q: must contain a non-zero 'h' or 'm' part", ErrInvalidOffset, raw)
	}
	return d, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Resolve combines a time argument and an optional date argument into an
// absolute instant in now's location.
func Resolve(timeArg, dateArg string, now time.Time) (time.Time, error) {
	t := strings.ToLower(strings.TrimSpace(timeArg))
	if t == "" {
		return time.Time{}, fmt.Errorf("%w: time required", ErrInvalidTime)
	}

	if t == "now" {
		day, err := ParseDate(dateArg, now)
		if err != nil {
			return time.Time{}, err
		}
		return combine(day, now.Hour(), now.Minute(), now.Second(), now.Nanosecond()), nil
	}

	if hour, minute, ok := parseClock(t); ok {
		day, err := ParseDate(dateArg, now)
		if err != nil {
			return time.Time{}, err
		}
		return combine(day, hour, minute, 0, 0), nil
	}

	// Relative offsets are anchored to now and may roll past midnight, so
	// the date argument is ignored.
	off, err := ParseOffset(t)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: use 'H:MMam/pm', 'H:MM', 'now' or '<N>h<N>m'", ErrInvalidTime, timeArg)
	}
	return now.Add(off), nil
}

// ParseDate parses "M-D-YYYY" or "today" (also the empty string) relative
// to now. Only the calendar date of the result is meaningful.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "today" {
		return now, nil
	}
	d, err := time.ParseInLocation(layoutDate, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: use 'M-D-YYYY' or 'today'", ErrInvalidDate, raw)
	}
	return d, nil
}

func parseClock(s string) (hour, minute int, ok bool) {
	compact := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if v, err := time.Parse(layout12h, compact); err == nil {
		return v.Hour(), v.Minute(), true
	}
	if v, err := time.Parse(layout24h, compact); err == nil {
		return v.Hour(), v.Minute(), true
	}
	return 0, 0, false
}

func combine(day time.Time, hour, minute, sec, nsec int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, sec, nsec, day.Location())
}
