package countdown

import "countdowntray/internal/display"

// Sink is where display values go: a terminal, a log, a service manager.
//
// Show is called from the scheduler goroutine for every non-expired tick.
// Stop is the exit action; the loop guarantees it is called at most once,
// whether the exit came from terminal expiry or from the host.
type Sink interface {
	Show(v display.Value)
	Stop()
}

// SinkFuncs adapts plain functions to Sink. Nil fields are no-ops.
type SinkFuncs struct {
	ShowFunc func(v display.Value)
	StopFunc func()
}

func (f SinkFuncs) Show(v display.Value) {
	if f.ShowFunc != nil {
		f.ShowFunc(v)
	}
}

func (f SinkFuncs) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
