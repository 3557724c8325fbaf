package body

import (
	"context"
	"fmt"
	"time"
)

// TimeoutError is yielded when no frame arrives before the armed deadline
// elapses, per §4.2's timeout adapter.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("body: no frame within %s", e.Timeout)
}

// Timeout wraps inner with a deadline that rearms on every successful
// frame: the sleep is armed on creation, and again after each frame is
// delivered. If the sleep elapses before the next frame arrives, Next
// returns a *TimeoutError.
func Timeout(inner Body, d time.Duration) Body {
	return &timeoutBody{inner: inner, d: d, deadline: time.Now().Add(d)}
}

type timeoutBody struct {
	inner    Body
	d        time.Duration
	deadline time.Time
	expired  bool
}

func (b *timeoutBody) Next(ctx context.Context) (Frame, error) {
	if b.expired {
		return Frame{}, &TimeoutError{Timeout: b.d}
	}

	type result struct {
		frame Frame
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		f, err := b.inner.Next(ctx)
		ch <- result{f, err}
	}()

	timer := time.NewTimer(time.Until(b.deadline))
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err == nil {
			b.deadline = time.Now().Add(b.d)
		}
		return r.frame, r.err
	case <-timer.C:
		b.expired = true
		return Frame{}, &TimeoutError{Timeout: b.d}
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

func (b *timeoutBody) IsEndStream() bool  { return b.expired || b.inner.IsEndStream() }
func (b *timeoutBody) SizeHint() SizeHint { return b.inner.SizeHint() }
func (b *timeoutBody) Close() error       { return b.inner.Close() }
