package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countdowntray/internal/repeat"
)

var t0 = time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)

func TestNewStateBaselineFloorsMinutes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   time.Duration
		want int
	}{
		{"whole minutes", 3 * time.Minute, 3},
		{"partial minute floors", 90*time.Second + 500*time.Millisecond, 1},
		{"under a minute", 59 * time.Second, 0},
		{"already past floors down", -30 * time.Second, -1},
		{"three days", 72 * time.Hour, 4320},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewState(t0.Add(tt.in), nil, t0)
			assert.Equal(t, tt.want, s.Baseline())
			assert.Equal(t, repeat.KindNone, s.Rule().Kind())
		})
	}
}

func TestStateRemaining(t *testing.T) {
	t.Parallel()
	s := NewState(t0.Add(time.Hour), repeat.None{}, t0)
	assert.Equal(t, time.Hour, s.Remaining(t0))
	assert.Equal(t, -time.Minute, s.Remaining(t0.Add(61*time.Minute)))
}

func TestStateAdvanceNoneLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	due := t0.Add(time.Minute)
	s := NewState(due, repeat.None{}, t0)

	assert.False(t, s.Advance(due))
	assert.True(t, s.Due().Equal(due))
	assert.Equal(t, 1, s.Baseline())
}

func TestStateAdvanceIntervalResetsBaseline(t *testing.T) {
	t.Parallel()
	every, err := repeat.NewInterval(2 * time.Hour)
	require.NoError(t, err)

	due := t0.Add(5 * time.Minute)
	s := NewState(due, every, t0)
	require.Equal(t, 5, s.Baseline())

	now := due.Add(500 * time.Millisecond)
	require.True(t, s.Advance(now))
	assert.True(t, s.Due().Equal(due.Add(2*time.Hour)))
	// 2h minus half a second floors to 119 minutes.
	assert.Equal(t, 119, s.Baseline())
}

func TestStateAdvanceCronExhaustedActsAsNone(t *testing.T) {
	t.Parallel()
	s := NewState(t0, exhausted{}, t0)
	assert.False(t, s.Advance(t0))
	assert.True(t, s.Due().Equal(t0))
}

// exhausted is a repeating rule that has run out of occurrences.
type exhausted struct{}

func (exhausted) Next(time.Time) (time.Time, bool) { return time.Time{}, false }
func (exhausted) Kind() repeat.Kind                { return repeat.KindCron }
func (exhausted) String() string                   { return "exhausted" }

func TestTokenCancelIsIdempotent(t *testing.T) {
	t.Parallel()
	tok := NewToken()
	assert.False(t, tok.Cancelled())

	assert.True(t, tok.Cancel())
	assert.False(t, tok.Cancel())
	assert.True(t, tok.Cancelled())

	select {
	case <-tok.Done():
	default:
		t.Fatal("Done not closed after Cancel")
	}
}
