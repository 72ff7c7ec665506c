package session

import (
	"context"

	"github.com/Lllllllleong/healthportal/internal/models"
)

// Event is one observation of the session state.
type Event struct {
	Session *models.Session
}

// SignedIn reports whether the event carries a session.
func (e Event) SignedIn() bool {
	return e.Session != nil && e.Session.UID != ""
}

const watchBuffer = 16

// Watch turns src into a channel of events. The first event is the state at
// subscription time. When ctx ends the subscription is released and the
// channel closed.
func Watch(ctx context.Context, src Source) <-chan Event {
	in := make(chan Event, watchBuffer)
	out := make(chan Event)

	unsubscribe := src.Subscribe(func(s *models.Session) {
		select {
		case in <- Event{Session: s}:
		case <-ctx.Done():
		}
	})

	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-in:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
