package repeat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/robfig/cron/v3"
)

var (
	ErrInvalidSpec = errors.New("invalid repeat spec")
	ErrNeverFires  = errors.New("cron expression never fires")
)

// Kind is the variant of a Rule, fixed at construction.
type Kind int

const (
	KindNone Kind = iota
	KindInterval
	KindCron
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInterval:
		return "interval"
	case KindCron:
		return "cron"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rule produces the next due instant after the current one has expired.
//
// Next must be called exactly once per detected expiry. The returned instant
// is strictly after due. ok is false when the rule has nothing further to
// offer, which callers treat the same as no repetition.
//
// Rules carry a cursor and are not safe for concurrent use; the scheduler
// goroutine owns them.
type Rule interface {
	Next(due time.Time) (next time.Time, ok bool)
	Kind() Kind
	String() string
}

// None is the single-shot rule.
type None struct{}

func (None) Next(time.Time) (time.Time, bool) { return time.Time{}, false }
func (None) Kind() Kind                       { return KindNone }
func (None) String() string                   { return "none" }

// IsNone reports whether r repeats at all. A nil Rule is treated as None.
func IsNone(r Rule) bool {
	return r == nil || r.Kind() == KindNone
}

// Interval rolls the due instant forward by a fixed step. The step is
// applied to the running due instant, not to the wall clock, so successive
// occurrences are D0+every, D0+2*every, ... no matter how late each expiry
// was observed.
type Interval struct {
	every time.Duration
}

// NewInterval returns an Interval rule. every must be positive.
func NewInterval(every time.Duration) (*Interval, error) {
	if every <= 0 {
		return nil, fmt.Errorf("%w: interval must be > 0, got %s", ErrInvalidSpec, every)
	}
	return &Interval{every: every}, nil
}

func (r *Interval) Next(due time.Time) (time.Time, bool) { return due.Add(r.every), true }
func (r *Interval) Kind() Kind                           { return KindInterval }
func (r *Interval) Every() time.Duration                 { return r.every }
func (r *Interval) String() string                       { return "every " + r.every.String() }

// standard 5-field parser plus descriptors ("@daily", "@every 1h").
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// reachHorizon bounds the construction-time "does it ever fire" probe. Four
// years covers every leap-day expression.
const reachHorizon = 4 * 366 * 24 * time.Hour

// Cron yields successive matches of a cron expression. The cursor starts at
// the anchor (normally the first due instant) and moves to each returned
// instant, so the sequence is lazy and unbounded.
type Cron struct {
	expr   string
	sched  cron.Schedule
	loc    *time.Location
	anchor time.Time
}

// NewCron parses expr and anchors it at anchor. Matching is evaluated in
// loc (anchor's location when loc is nil). Malformed expressions and
// expressions with no occurrence after the anchor are rejected here, never
// at Next time.
func NewCron(expr string, anchor time.Time, loc *time.Location) (*Cron, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: cron expression required", ErrInvalidSpec)
	}
	if loc == nil {
		loc = anchor.Location()
	}
	norm := normalizeDow(expr)
	sched, err := cronParser.Parse(norm)
	if err != nil {
		return nil, fmt.Errorf("%w: cron %q: %v", ErrInvalidSpec, expr, err)
	}

	anchor = anchor.In(loc)
	first := sched.Next(anchor)
	if first.IsZero() {
		return nil, fmt.Errorf("%w: %q has no occurrence after %s", ErrNeverFires, expr, anchor.Format(time.RFC3339))
	}
	if plainCron(norm) {
		next, err := gronx.NextTickAfter(norm, anchor, false)
		if err != nil || next.Sub(anchor) > reachHorizon {
			return nil, fmt.Errorf("%w: %q has no occurrence within 4 years of %s", ErrNeverFires, expr, anchor.Format(time.RFC3339))
		}
	}

	return &Cron{expr: expr, sched: sched, loc: loc, anchor: anchor}, nil
}

// plainCron reports whether expr is a bare five-field expression, the only
// form gronx and robfig/cron agree on. Descriptors and TZ prefixes are
// checked by the robfig probe alone.
func plainCron(expr string) bool {
	if strings.HasPrefix(expr, "@") || strings.Contains(expr, "TZ=") {
		return false
	}
	return len(strings.Fields(expr)) == 5
}

// normalizeDow rewrites weekday 7 (Sunday, as most crons accept it) into
// the 0-6 range robfig/cron parses: "7" becomes "0" and "N-7" becomes
// "N-6,0". Descriptors and other fields pass through untouched.
func normalizeDow(expr string) string {
	fields := strings.Fields(expr)
	i := 4
	if len(fields) > 0 && strings.Contains(fields[0], "TZ=") {
		i = 5
	}
	if len(fields) != i+1 || strings.HasPrefix(fields[0], "@") {
		return expr
	}
	items := strings.Split(fields[i], ",")
	out := make([]string, 0, len(items)+1)
	for _, item := range items {
		out = append(out, normalizeDowItem(item)...)
	}
	fields[i] = strings.Join(out, ",")
	return strings.Join(fields, " ")
}

func normalizeDowItem(item string) []string {
	rng, step, hasStep := strings.Cut(item, "/")
	if rng == "7" && !hasStep {
		return []string{"0"}
	}
	lo, hi, isRange := strings.Cut(rng, "-")
	if !isRange || hi != "7" {
		return []string{item}
	}
	start, err := strconv.Atoi(lo)
	if err != nil || start < 0 || start > 7 {
		return []string{item}
	}
	every := 1
	if hasStep {
		if every, err = strconv.Atoi(step); err != nil || every <= 0 {
			return []string{item}
		}
	}
	var out []string
	if start <= 6 {
		r := lo + "-6"
		if hasStep {
			r += "/" + step
		}
		out = append(out, r)
	}
	if (7-start)%every == 0 {
		out = append(out, "0")
	}
	return out
}

// Next returns the earliest match strictly after both due and the cursor,
// then moves the cursor there.
func (r *Cron) Next(due time.Time) (time.Time, bool) {
	from := r.anchor
	if due.After(from) {
		from = due
	}
	next := r.sched.Next(from.In(r.loc))
	if next.IsZero() {
		return time.Time{}, false
	}
	r.anchor = next
	return next, true
}

func (r *Cron) Kind() Kind        { return KindCron }
func (r *Cron) Expr() string      { return r.expr }
func (r *Cron) Anchor() time.Time { return r.anchor }
func (r *Cron) String() string    { return "cron " + r.expr }
