package body

import (
	"context"
	"fmt"
)

// LengthLimitError is yielded by Limit once the cumulative emitted data
// would exceed the configured byte count. Enclosing middleware (see
// headers.RequestBodyLimit) catches it and converts it to a 413 response.
type LengthLimitError struct {
	Limit int64
}

func (e *LengthLimitError) Error() string {
	return fmt.Sprintf("body: length limit of %d bytes exceeded", e.Limit)
}

// Limit wraps inner, rejecting data beyond max cumulative bytes. On the
// frame that would cross the limit, Limit truncates to the limit boundary
// is NOT performed — instead it yields a single *LengthLimitError and
// yields nothing more, per spec §4.2's "truncates and appends a single
// error" invariant.
func Limit(inner Body, max int64) Body {
	return &limitBody{inner: inner, max: max}
}

type limitBody struct {
	inner    Body
	max      int64
	seen     int64
	overflow bool
}

func (b *limitBody) Next(ctx context.Context) (Frame, error) {
	if b.overflow {
		return Frame{}, &LengthLimitError{Limit: b.max}
	}
	frame, err := b.inner.Next(ctx)
	if err != nil {
		return frame, err
	}
	if frame.IsTrailer() {
		return frame, nil
	}
	b.seen += int64(len(frame.Data))
	if b.seen > b.max {
		b.overflow = true
		return Frame{}, &LengthLimitError{Limit: b.max}
	}
	return frame, nil
}

func (b *limitBody) IsEndStream() bool { return b.overflow || b.inner.IsEndStream() }

func (b *limitBody) SizeHint() SizeHint {
	hint := b.inner.SizeHint()
	if hint.Upper != nil && *hint.Upper > uint64(b.max) {
		capped := uint64(b.max)
		hint.Upper = &capped
	}
	return hint
}

func (b *limitBody) Close() error { return b.inner.Close() }
