package headers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// IDFactory produces a new request id. UUIDFactory is the default,
// matching the teacher's use of google/uuid for token/project ids
// (internal/token, internal/database).
type IDFactory func() string

// UUIDFactory returns an IDFactory backed by a random UUID per call.
func UUIDFactory() IDFactory {
	return func() string { return uuid.NewString() }
}

// SetRequestID stamps header on the request with an id from factory,
// unless it is already present, and stores the id as a RequestId
// extension (a context value, the idiomatic Go rendition of the
// original's typed extension) so downstream handlers and
// PropagateRequestID can read it back without re-parsing the header.
func SetRequestID(header string, factory IDFactory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if id == "" {
				id = factory()
				r.Header.Set(header, id)
			}
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id stashed by SetRequestID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// PropagateRequestID copies the RequestId extension (falling back to the
// request header itself) onto the response under header.
func PropagateRequestID(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := RequestIDFromContext(r.Context()); ok && id != "" {
				w.Header().Set(header, id)
			} else if id := r.Header.Get(header); id != "" {
				w.Header().Set(header, id)
			}
			next.ServeHTTP(w, r)
		})
	}
}
