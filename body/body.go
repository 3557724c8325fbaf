// Package body models HTTP bodies as a lazy, single-shot sequence of
// frames — data chunks plus an optional trailing header map emitted at end
// of stream — the way spec §3/§4.2 requires. Adapters (MapError, Limit,
// Timeout, WithPermit) wrap a Body and transform or observe frames without
// buffering the whole stream, mirroring the teacher's streaming-aware
// response handling in internal/proxy/proxy.go and internal/proxy/stream_capture.go.
package body

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// Frame is either a data chunk or, for the final frame only, a trailer
// header map. Exactly one of Data/Trailer is meaningful per frame.
type Frame struct {
	Data    []byte
	Trailer http.Header
}

// IsTrailer reports whether this frame carries trailers rather than data.
func (f Frame) IsTrailer() bool { return f.Trailer != nil }

// SizeHint mirrors the Rust trait's { lower, upper } pair. Upper is nil when
// the total size is unknown (e.g. after compression).
type SizeHint struct {
	Lower uint64
	Upper *uint64
}

// Exact reports a size hint with a known exact size.
func Exact(n uint64) SizeHint { return SizeHint{Lower: n, Upper: &n} }

// Unknown reports a size hint with no known upper bound.
func Unknown() SizeHint { return SizeHint{} }

// Body is the lazy frame sequence every adapter in this module wraps.
// Once Next returns io.EOF or a non-nil error, it must return the same
// terminal result on every subsequent call (single-shot, not restartable).
type Body interface {
	// Next blocks (honoring ctx cancellation) until the next frame is
	// available, returns io.EOF after the last frame (trailer or data).
	Next(ctx context.Context) (Frame, error)
	// IsEndStream is a hint: true means Next will return io.EOF without
	// producing further frames. Never required to be accurate.
	IsEndStream() bool
	// SizeHint reports the body's known or estimated size in bytes.
	SizeHint() SizeHint
	// Close releases any resources the body holds (e.g. an open file, a
	// held concurrency permit) without reading to completion.
	Close() error
}

// Empty is a Body with zero frames.
func Empty() Body { return empty{} }

type empty struct{}

func (empty) Next(context.Context) (Frame, error) { return Frame{}, io.EOF }
func (empty) IsEndStream() bool                   { return true }
func (empty) SizeHint() SizeHint                  { return Exact(0) }
func (empty) Close() error                        { return nil }

// chunkSize is the buffer size used by FromReader when chunking a plain
// io.Reader into frames.
const chunkSize = 32 * 1024

// readerBody adapts an io.Reader (optionally an io.Closer) into a Body,
// chunking it into fixed-size data frames followed by a single trailer
// frame if a non-nil trailer source is supplied.
type readerBody struct {
	r        io.Reader
	c        io.Closer
	hint     SizeHint
	trailer  func() http.Header
	done     bool
	trailerD bool
	closed   bool
	err      error
}

// FromReader builds a Body over r. If r also implements io.Closer, Close
// forwards to it. trailer, if non-nil, is called once after the underlying
// reader is exhausted to produce the final trailer frame.
func FromReader(r io.Reader, hint SizeHint, trailer func() http.Header) Body {
	c, _ := r.(io.Closer)
	return &readerBody{r: r, c: c, hint: hint, trailer: trailer}
}

func (b *readerBody) Next(ctx context.Context) (Frame, error) {
	if b.done {
		if b.err != nil {
			return Frame{}, b.err
		}
		if b.trailer != nil && !b.trailerD {
			b.trailerD = true
			if h := b.trailer(); h != nil {
				return Frame{Trailer: h}, nil
			}
		}
		return Frame{}, io.EOF
	}
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	default:
	}
	buf := make([]byte, chunkSize)
	n, err := b.r.Read(buf)
	if n > 0 {
		frame := Frame{Data: buf[:n]}
		if err == io.EOF {
			b.done = true
			err = nil
		} else if err != nil {
			b.done = true
			b.err = err
			return frame, nil // deliver the chunk; surface err on next call
		}
		return frame, err
	}
	if err == io.EOF || err == nil {
		b.done = true
		return b.Next(ctx)
	}
	b.done = true
	b.err = err
	return Frame{}, err
}

func (b *readerBody) IsEndStream() bool  { return b.done && b.trailerD }
func (b *readerBody) SizeHint() SizeHint { return b.hint }
func (b *readerBody) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.c != nil {
		return b.c.Close()
	}
	return nil
}

// ToReader flattens a Body back into an io.ReadCloser for handing to code
// that only understands the stdlib streaming types (e.g. http.Response.Body,
// a compression codec's input). Trailers, if any, are delivered through
// trailerOut (called once, possibly with a nil header if the body had none)
// after the returned reader hits EOF.
func ToReader(b Body, trailerOut func(http.Header)) io.ReadCloser {
	return &bodyReader{b: b, trailerOut: trailerOut}
}

type bodyReader struct {
	b          Body
	trailerOut func(http.Header)
	buf        []byte
	done       bool
}

func (r *bodyReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.done {
			return 0, io.EOF
		}
		f, err := r.b.Next(context.Background())
		if err != nil {
			r.done = true
			if errors.Is(err, io.EOF) {
				if r.trailerOut != nil {
					r.trailerOut(nil)
				}
				return 0, io.EOF
			}
			return 0, err
		}
		if f.IsTrailer() {
			r.done = true
			if r.trailerOut != nil {
				r.trailerOut(f.Trailer)
			}
			return 0, io.EOF
		}
		r.buf = f.Data
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *bodyReader) Close() error { return r.b.Close() }
