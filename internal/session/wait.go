package session

import (
	"context"
	"time"

	"github.com/Lllllllleong/healthportal/internal/models"
)

// DefaultWaitTimeout bounds how long callers wait for a session to appear.
const DefaultWaitTimeout = 8 * time.Second

// WaitForSession subscribes to src and returns the first non-nil session it
// reports. It gives up after timeout or when ctx ends. The subscription is
// released exactly once on every path.
func WaitForSession(ctx context.Context, src Source, timeout time.Duration) (*models.Session, bool) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}

	// The listener never blocks: it may run inside Subscribe itself or inside
	// a Publish racing with the timer.
	found := make(chan *models.Session, 1)
	unsubscribe := src.Subscribe(func(s *models.Session) {
		if s == nil || s.UID == "" {
			return
		}
		select {
		case found <- s:
		default:
		}
	})
	defer unsubscribe()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s := <-found:
		return s, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}
