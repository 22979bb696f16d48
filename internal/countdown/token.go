package countdown

import "sync"

// Token is a one-shot cancellation signal shared between the host and the
// scheduler goroutine. Cancel may be called any number of times from any
// goroutine; only the first call has an effect.
type Token struct {
	once sync.Once
	ch   chan struct{}
}

func NewToken() *Token {
	return &Token{ch: make(chan struct{})}
}

// Cancel sets the token. It reports whether this call was the one that set it.
func (t *Token) Cancel() bool {
	first := false
	t.once.Do(func() {
		close(t.ch)
		first = true
	})
	return first
}

// Done is closed once the token is set.
func (t *Token) Done() <-chan struct{} { return t.ch }

// Cancelled reports whether the token has been set.
func (t *Token) Cancelled() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}
