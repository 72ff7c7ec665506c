// Package session models session-change notification as a cancellable
// subscription: listeners see the current state on subscribe and every
// change after it, until they unsubscribe.
package session

import (
	"sync"

	"github.com/Lllllllleong/healthportal/internal/models"
)

// Listener receives the session after each change. A nil session means
// nobody is signed in.
type Listener func(*models.Session)

// Source is anything that reports session changes.
type Source interface {
	// Subscribe registers fn and immediately delivers the current state to it.
	// The returned function removes fn; calling it more than once is a no-op.
	Subscribe(fn Listener) (unsubscribe func())
}

// Notifier is an in-process Source. The zero value is ready to use.
type Notifier struct {
	mu        sync.Mutex
	current   *models.Session
	listeners map[uint64]Listener
	nextID    uint64

	// deliverMu serializes deliveries so every listener observes publish order.
	deliverMu sync.Mutex
}

// NewNotifier returns a Notifier with no session.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe implements Source.
func (n *Notifier) Subscribe(fn Listener) func() {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()

	n.mu.Lock()
	if n.listeners == nil {
		n.listeners = make(map[uint64]Listener)
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	current := n.current
	n.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, id)
			n.mu.Unlock()
		})
	}
}

// Publish records s as the current session and delivers it to every listener.
func (n *Notifier) Publish(s *models.Session) {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()

	n.mu.Lock()
	n.current = s
	ids := make([]uint64, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	n.mu.Unlock()

	for _, id := range ids {
		n.mu.Lock()
		fn, ok := n.listeners[id]
		n.mu.Unlock()
		// Skip listeners removed by an earlier listener in this round.
		if ok {
			fn(s)
		}
	}
}

// Current returns the last published session, or nil.
func (n *Notifier) Current() *models.Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// ListenerCount reports how many listeners are registered.
func (n *Notifier) ListenerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
