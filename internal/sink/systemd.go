package sink

import (
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"countdowntray/internal/display"
	logx "countdowntray/pkg/logx"
)

// Systemd mirrors the countdown into the unit's status line via sd_notify.
// Outside a notify-type unit every call is a silent no-op.
type Systemd struct {
	notify func(state string) (bool, error)
	log    logx.Logger

	mu    sync.Mutex
	ready bool
}

func NewSystemd(log logx.Logger) *Systemd {
	return &Systemd{
		notify: func(state string) (bool, error) { return daemon.SdNotify(false, state) },
		log:    log,
	}
}

func (s *Systemd) Show(v display.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.send(daemon.SdNotifyReady)
		s.ready = true
	}
	s.send("STATUS=" + v.String() + " " + unitLabel(v.Tier) + " left")
}

func (s *Systemd) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send(daemon.SdNotifyStopping)
}

func (s *Systemd) send(state string) {
	sent, err := s.notify(state)
	if err != nil {
		s.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if !sent {
		s.log.Trace("sd_notify skipped: no notify socket", logx.String("state", state))
	}
}
