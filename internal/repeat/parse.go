package repeat

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"countdowntray/internal/duespec"
)

// Spec is a repeat string after classification but before it is bound to
// an anchor.
//
// Supported forms:
//   - Empty or "none": no repetition
//   - Cron (5-field): "*/5 * * * *", "30 9 * * 1-5", "@daily", "@every 55m"
//   - Offset grammar: "1h30m", "30m1h", "45m"
//   - Interval HH:MM: "00:50" (50 minutes), "02:30" (2 hours 30 minutes)
//   - Go duration: "90s", "1h15m30s"
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "interval:" or "every:" forces interval parsing
type Spec struct {
	Kind   Kind
	Cron   string
	Every  time.Duration
	Source string // "none" | "cron" | "offset" | "hhmm" | "duration"
}

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// ParseSpec classifies raw without binding it to an anchor.
func ParseSpec(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	low := strings.ToLower(s)
	if s == "" || low == "none" {
		return Spec{Kind: KindNone, Source: "none"}, nil
	}

	if strings.HasPrefix(low, "cron:") {
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return Spec{}, fmt.Errorf("%w: cron expression required after 'cron:'", ErrInvalidSpec)
		}
		return Spec{Kind: KindCron, Cron: expr, Source: "cron"}, nil
	}
	for _, p := range []string{"interval:", "every:"} {
		if strings.HasPrefix(low, p) {
			d, src, err := parseInterval(s[len(p):])
			if err != nil {
				return Spec{}, err
			}
			return Spec{Kind: KindInterval, Every: d, Source: src}, nil
		}
	}

	// any whitespace or a leading '@' means cron
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return Spec{Kind: KindCron, Cron: s, Source: "cron"}, nil
	}

	d, src, err := parseInterval(s)
	if err != nil {
		return Spec{}, fmt.Errorf(
			"%w %q (use cron like '*/5 * * * *', offset like '1h30m', HH:MM like '02:30', or duration like '55m')",
			ErrInvalidSpec, raw,
		)
	}
	return Spec{Kind: KindInterval, Every: d, Source: src}, nil
}

// Parse classifies raw and builds the matching Rule. Cron rules are anchored
// at anchor and evaluated in loc.
func Parse(raw string, anchor time.Time, loc *time.Location) (Rule, error) {
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, err
	}
	return spec.Rule(anchor, loc)
}

// Rule builds the Rule described by s.
func (s Spec) Rule(anchor time.Time, loc *time.Location) (Rule, error) {
	switch s.Kind {
	case KindNone:
		return None{}, nil
	case KindInterval:
		r, err := NewInterval(s.Every)
		if err != nil {
			return nil, err
		}
		return r, nil
	case KindCron:
		r, err := NewCron(s.Cron, anchor, loc)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: unsupported kind %s", ErrInvalidSpec, s.Kind)
	}
}

func parseInterval(v string) (time.Duration, string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, "", fmt.Errorf("%w: interval required", ErrInvalidSpec)
	}
	if reHHMM.MatchString(v) {
		return parseHHMMDuration(v)
	}
	if d, err := duespec.ParseOffset(v); err == nil {
		return d, "offset", nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, "", fmt.Errorf("%w: invalid interval %q (use '1h30m', HH:MM or a Go duration)", ErrInvalidSpec, v)
	}
	if d <= 0 {
		return 0, "", fmt.Errorf("%w: interval must be > 0", ErrInvalidSpec)
	}
	return d, "duration", nil
}

func parseHHMMDuration(v string) (time.Duration, string, error) {
	m := reHHMM.FindStringSubmatch(v)
	if len(m) != 3 {
		return 0, "", fmt.Errorf("%w: invalid HH:MM %q", ErrInvalidSpec, v)
	}
	var hh int
	for i := 0; i < len(m[1]); i++ {
		hh = hh*10 + int(m[1][i]-'0')
	}
	mm := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	if mm > 59 {
		return 0, "", fmt.Errorf("%w: invalid minutes in %q", ErrInvalidSpec, v)
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	if d <= 0 {
		return 0, "", fmt.Errorf("%w: interval must be > 0", ErrInvalidSpec)
	}
	return d, "hhmm", nil
}
