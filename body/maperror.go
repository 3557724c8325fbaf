package body

import (
	"context"
	"errors"
	"io"
)

// MapError wraps inner, replacing any non-nil, non-EOF error it yields via
// f. Frames are passed through unchanged. This is the adapter §4.2 calls
// "map-error": it lets an outer layer normalize an inner body's error type
// without touching the data path.
func MapError(inner Body, f func(error) error) Body {
	return &mapErrorBody{inner: inner, f: f}
}

type mapErrorBody struct {
	inner Body
	f     func(error) error
}

func (b *mapErrorBody) Next(ctx context.Context) (Frame, error) {
	frame, err := b.inner.Next(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return frame, b.f(err)
	}
	return frame, err
}

func (b *mapErrorBody) IsEndStream() bool  { return b.inner.IsEndStream() }
func (b *mapErrorBody) SizeHint() SizeHint { return b.inner.SizeHint() }
func (b *mapErrorBody) Close() error       { return b.inner.Close() }
