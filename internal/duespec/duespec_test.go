package duespec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 26, 53, 589, time.UTC)

func TestParseOffset(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"1h30m", 90 * time.Minute},
		{"30m1h", 90 * time.Minute},
		{"45m", 45 * time.Minute},
		{"2h", 2 * time.Hour},
		{"90m", 90 * time.Minute},
		{"1H 5M", 65 * time.Minute},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOffset(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOffsetInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "5", "0h0m", "0m", "1d", "h", "1m2m", "abc"} {
		_, err := ParseOffset(raw)
		require.Errorf(t, err, "ParseOffset(%q)", raw)
		assert.True(t, errors.Is(err, ErrInvalidOffset), "ParseOffset(%q) = %v", raw, err)
	}
}

func TestResolveClockForms(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		timeArg    string
		dateArg    string
		wantHour   int
		wantMinute int
		wantDay    int
	}{
		{"12h pm", "10:30pm", "", 22, 30, 14},
		{"12h upper", "7:05AM", "today", 7, 5, 14},
		{"12h spaced", "12:15 am", "", 0, 15, 14},
		{"24h", "19:30", "", 19, 30, 14},
		{"24h single digit hour", "7:05", "", 7, 5, 14},
		{"explicit date", "8:00pm", "3-20-2026", 20, 0, 20},
		{"zero padded date", "08:00", "03-02-2026", 8, 0, 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Resolve(tt.timeArg, tt.dateArg, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, got.Hour())
			assert.Equal(t, tt.wantMinute, got.Minute())
			assert.Equal(t, 0, got.Second())
			assert.Equal(t, tt.wantDay, got.Day())
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestResolveNowKeepsTimeOfDay(t *testing.T) {
	t.Parallel()
	got, err := Resolve("NOW", "", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now), "got %v", got)

	got, err = Resolve("now", "3-15-2026", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now.AddDate(0, 0, 1)), "got %v", got)
}

func TestResolveOffsetIgnoresDate(t *testing.T) {
	t.Parallel()
	got, err := Resolve("15h", "1-1-2030", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now.Add(15*time.Hour)), "got %v", got)
}

func TestResolveInvalid(t *testing.T) {
	t.Parallel()
	_, err := Resolve("25:00", "", now)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = Resolve("13:30pm", "", now)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = Resolve("", "", now)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = Resolve("10:00", "2026-03-14", now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Resolve("10:00", "13-1-2026", now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
