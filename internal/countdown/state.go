package countdown

import (
	"math"
	"time"

	"countdowntray/internal/repeat"
)

// State is the running countdown: the instant it targets, the baseline
// minutes of the current segment, and the rule that rolls it forward.
//
// State is owned by the scheduler goroutine and is not safe for concurrent
// use. Other goroutines observe the countdown through pushed display values.
type State struct {
	due      time.Time
	baseline int
	rule     repeat.Rule
}

// NewState starts a countdown to due. A nil rule means no repetition.
func NewState(due time.Time, rule repeat.Rule, now time.Time) *State {
	if rule == nil {
		rule = repeat.None{}
	}
	s := &State{due: due, rule: rule}
	s.baseline = baselineMinutes(s.Remaining(now))
	return s
}

// Remaining returns due - now. Zero or negative means the countdown expired.
func (s *State) Remaining(now time.Time) time.Duration {
	return s.due.Sub(now)
}

// Advance moves to the next occurrence and resets the baseline. It reports
// false, leaving the state untouched, when there is nothing to repeat.
func (s *State) Advance(now time.Time) bool {
	if repeat.IsNone(s.rule) {
		return false
	}
	next, ok := s.rule.Next(s.due)
	if !ok {
		return false
	}
	s.due = next
	s.baseline = baselineMinutes(s.Remaining(now))
	return true
}

// Due returns the current due instant.
func (s *State) Due() time.Time { return s.due }

// Baseline returns the whole minutes left when the current segment began.
func (s *State) Baseline() int { return s.baseline }

// Rule returns the repeat rule the state advances with.
func (s *State) Rule() repeat.Rule { return s.rule }

// baselineMinutes floors d to whole minutes.
func baselineMinutes(d time.Duration) int {
	return int(math.Floor(d.Seconds() / 60))
}
