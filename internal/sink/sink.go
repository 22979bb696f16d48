// Package sink holds the places a countdown value can be shown: a terminal
// badge, a plain line writer, the log, and the service manager's status
// line. Every sink satisfies countdown.Sink.
package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"countdowntray/internal/countdown"
	"countdowntray/internal/display"
	logx "countdowntray/pkg/logx"
)

var (
	_ countdown.Sink = (*TUI)(nil)
	_ countdown.Sink = (*Plain)(nil)
	_ countdown.Sink = Log{}
	_ countdown.Sink = (*Systemd)(nil)
	_ countdown.Sink = Multi(nil)
)

// Multi fans every call out to each sink in order.
type Multi []countdown.Sink

func (m Multi) Show(v display.Value) {
	for _, s := range m {
		s.Show(v)
	}
}

func (m Multi) Stop() {
	for _, s := range m {
		s.Stop()
	}
}

// Plain writes one line per value, for pipes and dumb terminals.
type Plain struct {
	mu    sync.Mutex
	w     io.Writer
	title string
	style lipgloss.Style
	last  string
}

func NewPlain(w io.Writer, title string) *Plain {
	return &Plain{w: w, title: title, style: lipgloss.NewStyle().Bold(true)}
}

// Show skips values equal to the previous one.
func (p *Plain) Show(v display.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := v.String()
	if s == p.last {
		return
	}
	p.last = s
	if p.title != "" {
		fmt.Fprintf(p.w, "%s %s\n", p.title, p.style.Render(s))
		return
	}
	fmt.Fprintln(p.w, p.style.Render(s))
}

func (p *Plain) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, "done")
}

// Log reports values through the structured logger.
type Log struct {
	L logx.Logger
}

func (l Log) Show(v display.Value) {
	l.L.Info("countdown", logx.Stringer("value", v), logx.Stringer("tier", v.Tier))
}

func (l Log) Stop() { l.L.Info("countdown stopped") }
