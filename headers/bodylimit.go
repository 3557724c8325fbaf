package headers

import (
	"errors"
	"io"
	"net/http"

	"github.com/sofatutor/httpmw/body"
)

// RequestBodyLimit rejects requests whose Content-Length declares more than
// max bytes with an immediate 413, and otherwise wraps the request body in
// a length-limit adapter (body.Limit): if the declared length under-counts
// and the stream itself exceeds max, the *body.LengthLimitError surfaces to
// whatever reads r.Body. When the handler has not yet written a response
// header by the time it returns, that overflow is caught here and turned
// into a 413, matching spec §4.8's "caught and converted to 413"; a
// handler that already started writing a response before exhausting the
// body keeps whatever it wrote, the same limitation the original's
// service-level enforcement has once bytes are already in flight.
func RequestBodyLimit(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > max {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}

			tracker := &overflowTracker{}
			limitedBody := body.Limit(body.FromReader(r.Body, body.Unknown(), nil), max)
			r.Body = &overflowReader{ReadCloser: body.ToReader(limitedBody, nil), tracker: tracker}

			rw := &headerTrackingWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			if !rw.wroteHeader && tracker.overflowed {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte("request body too large"))
			}
		})
	}
}

// overflowTracker records whether a wrapped body ever yielded a
// LengthLimitError.
type overflowTracker struct {
	overflowed bool
}

// overflowReader wraps the io.ReadCloser produced by body.ToReader,
// recording into tracker whenever a read surfaces a *body.LengthLimitError.
type overflowReader struct {
	io.ReadCloser
	tracker *overflowTracker
}

func (r *overflowReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	var lim *body.LengthLimitError
	if err != nil && errors.As(err, &lim) {
		r.tracker.overflowed = true
	}
	return n, err
}

// headerTrackingWriter records whether the inner handler ever wrote a
// response header, so RequestBodyLimit knows it is still safe to write its
// own 413 after the handler returns.
type headerTrackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerTrackingWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerTrackingWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(p)
}
