// Package display turns a remaining duration into the short number shown on
// the countdown badge.
//
// Tiers, evaluated in order:
//
//	days > 0                         -> whole days
//	hours > 9.9                      -> hours rounded to an integer
//	minutes < 100 and baseline < 100 -> whole minutes
//	hours > 1                        -> hours with one decimal
//	otherwise                        -> whole minutes
//
// The baseline is the remaining minutes captured when the current countdown
// segment began, so a countdown that started days out never drops into the
// minutes tier while it still has more than an hour left.
package display

import (
	"math"
	"strconv"
	"time"
)

// Tier identifies which rule produced a Value.
type Tier int

const (
	TierDays Tier = iota
	TierRoundedHours
	TierMinutes
	TierFractionalHours
)

func (t Tier) String() string {
	switch t {
	case TierDays:
		return "days"
	case TierRoundedHours:
		return "hours"
	case TierMinutes:
		return "minutes"
	case TierFractionalHours:
		return "fractional_hours"
	default:
		return "unknown"
	}
}

// minutesTierLimit bounds both the current and baseline minutes for the
// minutes tier.
const minutesTierLimit = 100

// Value is a formatted display value. It is a plain value type and safe to
// hand between goroutines by copy.
type Value struct {
	Tier Tier
	// Int holds the number for every tier except TierFractionalHours.
	Int int64
	// Tenths holds the fractional-hours reading scaled by ten (2.3h -> 23).
	Tenths int64
}

// Float returns the numeric value.
func (v Value) Float() float64 {
	if v.Tier == TierFractionalHours {
		return float64(v.Tenths) / 10
	}
	return float64(v.Int)
}

// IsFractional reports whether the value renders with one decimal place.
func (v Value) IsFractional() bool { return v.Tier == TierFractionalHours }

// String renders the value: integers plainly, fractional hours always with
// exactly one decimal ("2.3", "2.0").
func (v Value) String() string {
	if v.Tier != TierFractionalHours {
		return strconv.FormatInt(v.Int, 10)
	}
	sign := ""
	t := v.Tenths
	if t < 0 {
		sign, t = "-", -t
	}
	return sign + strconv.FormatInt(t/10, 10) + "." + strconv.FormatInt(t%10, 10)
}

// WholeSeconds truncates remaining toward zero.
func WholeSeconds(remaining time.Duration) int64 {
	return int64(remaining / time.Second)
}

// Expired reports whether remaining has run out. Expiry is judged on whole
// seconds, so a sub-second remainder already counts as expired.
func Expired(remaining time.Duration) bool {
	return WholeSeconds(remaining) <= 0
}

// Format picks the display tier for remaining given the segment's baseline
// minutes. It is pure; callers only pass non-expired durations.
func Format(remaining time.Duration, baselineMinutes int) Value {
	diffSeconds := WholeSeconds(remaining)
	diffMinutes := floorDiv(diffSeconds, 60)
	diffHours := float64(diffMinutes) / 60
	diffDays := int64(math.Floor(diffHours / 24))

	switch {
	case diffDays > 0:
		return Value{Tier: TierDays, Int: diffDays}
	case diffHours > 9.9:
		return Value{Tier: TierRoundedHours, Int: int64(math.RoundToEven(diffHours))}
	case diffMinutes < minutesTierLimit && baselineMinutes < minutesTierLimit:
		return Value{Tier: TierMinutes, Int: diffMinutes}
	case diffHours > 1:
		return Value{Tier: TierFractionalHours, Tenths: roundTenths(diffHours)}
	default:
		return Value{Tier: TierMinutes, Int: diffMinutes}
	}
}

// roundTenths rounds h to one decimal using the exact binary value of h,
// so 1.15 (stored just below 1.15) becomes 1.1 rather than 1.2.
func roundTenths(h float64) int64 {
	s := strconv.FormatFloat(h, 'f', 1, 64)
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return int64(math.Round(h * 10))
	}
	return int64(math.Round(r * 10))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
