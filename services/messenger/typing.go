// File: services/messenger/typing.go
package messenger

import (
	"context"
	"math/rand"
	"time"
)

// TypingSender shapes outbound sends with a randomized delay so replies
// read as typed rather than instantaneous. It wraps the real transport;
// independent conversations are not blocked because each handler runs in
// its own goroutine.
type TypingSender struct {
	Transport Messenger
	MinDelay  time.Duration
	MaxDelay  time.Duration
}

func (s *TypingSender) SendText(ctx context.Context, phone, text string) error {
	delay := s.MinDelay
	if s.MaxDelay > s.MinDelay {
		delay += time.Duration(rand.Int63n(int64(s.MaxDelay - s.MinDelay)))
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Transport.SendText(ctx, phone, text)
}
