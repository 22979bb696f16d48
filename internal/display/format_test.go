package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTiers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		remaining time.Duration
		baseline  int
		want      string
		tier      Tier
	}{
		{"two days three hours", 51 * time.Hour, 3060, "2", TierDays},
		{"exactly one day", 24 * time.Hour, 1440, "1", TierDays},
		{"just under a day", 23*time.Hour + 59*time.Minute, 1440, "24", TierRoundedHours},
		{"fifteen point two hours", 15*time.Hour + 12*time.Minute, 1000, "15", TierRoundedHours},
		{"half hour ties to even down", 10*time.Hour + 30*time.Minute, 1000, "10", TierRoundedHours},
		{"half hour ties to even up", 11*time.Hour + 30*time.Minute, 1000, "12", TierRoundedHours},
		{"nine point nine stays fractional", 9*time.Hour + 54*time.Minute, 1000, "9.9", TierFractionalHours},
		{"five point two hours long baseline", 5*time.Hour + 12*time.Minute, 500, "5.2", TierFractionalHours},
		{"fifty minutes short baseline", 50 * time.Minute, 80, "50", TierMinutes},
		{"two point three hours", 2*time.Hour + 18*time.Minute, 500, "2.3", TierFractionalHours},
		{"thirty minutes", 30 * time.Minute, 30, "30", TierMinutes},
		{"fractional keeps trailing zero", 2*time.Hour + 1*time.Minute, 500, "2.0", TierFractionalHours},
		{"exactly one hour long baseline", time.Hour, 500, "60", TierMinutes},
		{"exact binary rounding 1.15", 69 * time.Minute, 500, "1.1", TierFractionalHours},
		{"exact binary rounding 1.05", 63 * time.Minute, 500, "1.1", TierFractionalHours},
		{"seconds truncate to minutes", 59*time.Second + 900*time.Millisecond, 5, "0", TierMinutes},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Format(tt.remaining, tt.baseline)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.tier, got.Tier)
		})
	}
}

func TestFormatLongBaselineFallsThrough(t *testing.T) {
	t.Parallel()
	// Started three days out, now 80 minutes left: the minutes tier is
	// off-limits because the baseline was well over 100 minutes.
	baseline := 3 * 24 * 60
	got := Format(80*time.Minute, baseline)
	assert.Equal(t, TierFractionalHours, got.Tier)
	assert.Equal(t, "1.3", got.String())
	assert.InDelta(t, 1.3, got.Float(), 1e-9)

	// Same remaining time with a short baseline shows minutes.
	got = Format(80*time.Minute, 90)
	assert.Equal(t, TierMinutes, got.Tier)
	assert.Equal(t, "80", got.String())

	// At or under an hour the long-baseline countdown shows minutes too.
	got = Format(45*time.Minute, baseline)
	assert.Equal(t, TierMinutes, got.Tier)
	assert.Equal(t, "45", got.String())
}

func TestFormatBaselineBoundary(t *testing.T) {
	t.Parallel()
	assert.Equal(t, TierMinutes, Format(99*time.Minute, 99).Tier)
	assert.Equal(t, TierFractionalHours, Format(99*time.Minute, 100).Tier)
	assert.Equal(t, TierFractionalHours, Format(100*time.Minute, 99).Tier)
}

func TestExpired(t *testing.T) {
	t.Parallel()
	assert.True(t, Expired(0))
	assert.True(t, Expired(-time.Minute))
	assert.True(t, Expired(999*time.Millisecond))
	assert.False(t, Expired(time.Second))
	assert.False(t, Expired(48*time.Hour))
}

func TestValueFloat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2.0, Value{Tier: TierDays, Int: 2}.Float())
	assert.InDelta(t, 2.3, Value{Tier: TierFractionalHours, Tenths: 23}.Float(), 1e-9)
	assert.False(t, Value{Tier: TierMinutes, Int: 5}.IsFractional())
	assert.True(t, Value{Tier: TierFractionalHours, Tenths: 23}.IsFractional())
}
