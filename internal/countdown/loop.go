package countdown

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"countdowntray/internal/clock"
	"countdowntray/internal/display"
	"countdowntray/internal/eventbus"
	logx "countdowntray/pkg/logx"
)

// DefaultTick is the wake interval between display updates.
const DefaultTick = 60 * time.Second

// Event types published on the bus.
const (
	EventTick       = "countdown.tick"
	EventRollover   = "countdown.rollover"
	EventTerminated = "countdown.terminated"
	EventCancelled  = "countdown.cancelled"
)

// TickEvent is the payload of EventTick.
type TickEvent struct {
	Due       time.Time
	Remaining time.Duration
	Value     display.Value
}

// RolloverEvent is the payload of EventRollover.
type RolloverEvent struct {
	Previous time.Time
	Next     time.Time
	Baseline int
}

// Status is the loop's lifecycle state.
type Status int32

const (
	StatusIdle Status = iota
	StatusRunning
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var ErrAlreadyRun = errors.New("countdown: loop already started")

// Loop drives a State: it wakes every tick, pushes a display value while
// time remains, rolls the state forward on expiry, and stops the sink once
// the countdown is over or the host asks it to exit.
type Loop struct {
	clock clock.Clock
	tick  time.Duration
	log   logx.Logger
	noisy logx.Logger
	bus   eventbus.Bus

	state *State
	sink  Sink
	token *Token

	// sinkMu serialises Show and Stop so no value is pushed after the exit
	// action ran.
	sinkMu   sync.Mutex
	sinkDone bool

	started atomic.Bool
	status  atomic.Int32
	last    atomic.Pointer[display.Value]
	done    chan struct{}
}

type Option func(*Loop)

func WithClock(c clock.Clock) Option { return func(l *Loop) { l.clock = c } }

// WithTick overrides the wake interval. Non-positive values are ignored.
func WithTick(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.tick = d
		}
	}
}

func WithLogger(log logx.Logger) Option { return func(l *Loop) { l.log = log } }
func WithBus(bus eventbus.Bus) Option   { return func(l *Loop) { l.bus = bus } }

// WithToken shares an externally owned cancellation token.
func WithToken(t *Token) Option { return func(l *Loop) { l.token = t } }

// NewLoop wires a loop around state and sink. A nil sink discards values.
func NewLoop(state *State, sink Sink, opts ...Option) *Loop {
	l := &Loop{
		clock: clock.Real(),
		tick:  DefaultTick,
		state: state,
		sink:  sink,
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(l)
	}
	if l.sink == nil {
		l.sink = SinkFuncs{}
	}
	if l.token == nil {
		l.token = NewToken()
	}
	if l.log.IsZero() {
		l.log = logx.Nop()
	}
	// Rollovers can fire back to back while a stale due instant catches up.
	l.noisy = l.log.Limited(rate.NewLimiter(rate.Every(time.Second), 5))
	return l
}

// Run blocks until the countdown terminates or is cancelled through ctx,
// the token, or Exit. Neither outcome is an error.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer close(l.done)

	l.status.Store(int32(StatusRunning))
	l.log.Info("countdown started",
		logx.Time("due", l.state.Due()),
		logx.Stringer("repeat", l.state.Rule()),
		logx.Int("baseline_min", l.state.Baseline()),
		logx.Duration("tick", l.tick),
	)

	for {
		if ctx.Err() != nil || l.token.Cancelled() {
			l.finish(EventCancelled)
			return nil
		}

		now := l.clock.Now()
		remaining := l.state.Remaining(now)

		if display.Expired(remaining) {
			prev := l.state.Due()
			if l.state.Advance(now) {
				l.noisy.Info("rolled over",
					logx.Time("previous", prev),
					logx.Time("next", l.state.Due()),
					logx.Int("baseline_min", l.state.Baseline()),
				)
				l.publish(EventRollover, RolloverEvent{Previous: prev, Next: l.state.Due(), Baseline: l.state.Baseline()})
				// No sleep: the old segment's value is stale.
				continue
			}
			l.finish(EventTerminated)
			return nil
		}

		v := display.Format(remaining, l.state.Baseline())
		if !l.show(v) {
			l.finish(EventCancelled)
			return nil
		}
		l.noisy.Debug("tick", logx.Duration("remaining", remaining), logx.Stringer("display", v), logx.Stringer("tier", v.Tier))
		l.publish(EventTick, TickEvent{Due: l.state.Due(), Remaining: remaining, Value: v})

		select {
		case <-ctx.Done():
		case <-l.token.Done():
		case <-l.clock.After(l.tick):
		}
	}
}

// Exit requests shutdown from the host side. It wakes a sleeping loop
// immediately and runs the sink's exit action unless it already ran. Safe
// to call from any goroutine, any number of times, before or after Run.
func (l *Loop) Exit() {
	l.token.Cancel()
	l.stopSink()
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Status reports the lifecycle state.
func (l *Loop) Status() Status { return Status(l.status.Load()) }

// Last returns the most recently pushed value.
func (l *Loop) Last() (display.Value, bool) {
	p := l.last.Load()
	if p == nil {
		return display.Value{}, false
	}
	return *p, true
}

func (l *Loop) show(v display.Value) bool {
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()
	if l.sinkDone {
		return false
	}
	l.last.Store(&v)
	l.sink.Show(v)
	return true
}

func (l *Loop) stopSink() {
	l.sinkMu.Lock()
	defer l.sinkMu.Unlock()
	if l.sinkDone {
		return
	}
	l.sinkDone = true
	l.sink.Stop()
}

func (l *Loop) finish(reason string) {
	l.status.Store(int32(StatusTerminated))
	l.token.Cancel()
	l.stopSink()

	fields := []logx.Field{logx.Time("due", l.state.Due())}
	if last, ok := l.Last(); ok {
		fields = append(fields, logx.Stringer("last", last))
	}
	if reason == EventTerminated {
		l.log.Info("countdown finished", fields...)
	} else {
		l.log.Info("countdown cancelled", fields...)
	}
	l.publish(reason, nil)
}

func (l *Loop) publish(typ string, data any) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(eventbus.Event{Type: typ, Time: l.clock.Now(), Data: data})
}
