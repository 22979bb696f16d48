package sink

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countdowntray/internal/countdown"
	"countdowntray/internal/display"
	logx "countdowntray/pkg/logx"
)

func TestModelShowsLatestValue(t *testing.T) {
	t.Parallel()
	m := NewModel("standup", nil)
	assert.Contains(t, m.View(), "…")

	next, cmd := m.Update(valueMsg(display.Value{Tier: display.TierFractionalHours, Tenths: 23}))
	assert.Nil(t, cmd)
	view := next.View()
	assert.Contains(t, view, "standup")
	assert.Contains(t, view, "2.3")
	assert.Contains(t, view, "hours")
	assert.Contains(t, view, "q exit")

	due := time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)
	next, _ = next.Update(dueMsg(due))
	assert.Contains(t, next.View(), "due Thu Oct 15 14:30")
}

func TestModelQuitKeyRunsExitAction(t *testing.T) {
	t.Parallel()
	called := make(chan struct{})
	m := NewModel("", func() { close(called) })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("exit action not invoked")
	}
}

func TestModelIgnoresOtherKeys(t *testing.T) {
	t.Parallel()
	m := NewModel("", func() { t.Error("exit action invoked") })
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}

func TestModelStopQuits(t *testing.T) {
	t.Parallel()
	_, cmd := NewModel("", nil).Update(stopMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPlainDedupesAndStops(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := NewPlain(&buf, "")
	p.Show(display.Value{Tier: display.TierMinutes, Int: 5})
	p.Show(display.Value{Tier: display.TierMinutes, Int: 5})
	p.Show(display.Value{Tier: display.TierMinutes, Int: 4})
	p.Stop()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "5")
	assert.Contains(t, lines[1], "4")
	assert.Equal(t, "done", lines[2])
}

func TestLogSinkWritesStructuredLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := Log{L: logx.NewWriter(&buf, "info")}
	l.Show(display.Value{Tier: display.TierDays, Int: 2})
	l.Stop()

	out := buf.String()
	assert.Contains(t, out, `"value":"2"`)
	assert.Contains(t, out, `"tier":"days"`)
	assert.Contains(t, out, "countdown stopped")
}

func TestSystemdSendsReadyOnceThenStatus(t *testing.T) {
	t.Parallel()
	var states []string
	s := &Systemd{
		notify: func(state string) (bool, error) {
			states = append(states, state)
			return true, nil
		},
	}
	s.Show(display.Value{Tier: display.TierMinutes, Int: 10})
	s.Show(display.Value{Tier: display.TierMinutes, Int: 9})
	s.Stop()

	assert.Equal(t, []string{
		"READY=1",
		"STATUS=10 min left",
		"STATUS=9 min left",
		"STOPPING=1",
	}, states)
}

type countingSink struct {
	shows, stops atomic.Int32
}

func (c *countingSink) Show(display.Value) { c.shows.Add(1) }
func (c *countingSink) Stop()              { c.stops.Add(1) }

func TestMultiFansOut(t *testing.T) {
	t.Parallel()
	a, b := &countingSink{}, &countingSink{}
	var m countdown.Sink = Multi{a, b}

	m.Show(display.Value{})
	m.Stop()

	assert.EqualValues(t, 1, a.shows.Load())
	assert.EqualValues(t, 1, b.shows.Load())
	assert.EqualValues(t, 1, a.stops.Load())
	assert.EqualValues(t, 1, b.stops.Load())
}
