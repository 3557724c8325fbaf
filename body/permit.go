package body

import (
	"context"
	"sync"
)

// WithPermit wraps inner, calling release exactly once — on EOF, on error,
// or on Close, whichever happens first, so a permit tied to a streaming body
// stays held for as long as the body is being read and is returned only
// when the body is fully drained, fails, or is closed.
// headers.ConcurrencyLimiter does not use it: it releases its permit in a
// defer around next.ServeHTTP.
func WithPermit(inner Body, release func()) Body {
	return &permitBody{inner: inner, release: release}
}

type permitBody struct {
	inner   Body
	release func()
	once    sync.Once
}

func (b *permitBody) releaseOnce() {
	b.once.Do(func() {
		if b.release != nil {
			b.release()
		}
	})
}

func (b *permitBody) Next(ctx context.Context) (Frame, error) {
	frame, err := b.inner.Next(ctx)
	if err != nil {
		b.releaseOnce()
	}
	return frame, err
}

func (b *permitBody) IsEndStream() bool  { return b.inner.IsEndStream() }
func (b *permitBody) SizeHint() SizeHint { return b.inner.SizeHint() }

func (b *permitBody) Close() error {
	b.releaseOnce()
	return b.inner.Close()
}
