package eventbus

import (
	"strings"
	"sync"
	"time"
)

// Event is an in-memory notification from the countdown loop to whoever
// watches it (the app's log relay, tests, a status sink).
//
// Publish never blocks. When a subscriber's buffer is full the oldest queued
// event is dropped to make room, so a slow reader always ends up holding the
// most recent state.
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	// Subscribe registers a buffered receiver. A non-empty prefix limits
	// delivery to events whose Type starts with it.
	Subscribe(prefix string, buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns an in-memory fanout bus. It owns no goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]*sub{}}
}

type sub struct {
	prefix string
	ch     chan Event
}

type memBus struct {
	mu   sync.Mutex
	subs map[uint64]*sub
	seq  uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Held for the whole fanout: sends are non-blocking and unsubscribe
	// closes channels under the same lock.
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if s.prefix != "" && !strings.HasPrefix(e.Type, s.prefix) {
			continue
		}
		deliver(s.ch, e)
	}
}

func deliver(ch chan Event, e Event) {
	select {
	case ch <- e:
		return
	default:
	}
	// Full: drop oldest, then retry once.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- e:
	default:
	}
}

func (b *memBus) Subscribe(prefix string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[id] = &sub{prefix: prefix, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, unsub
}
