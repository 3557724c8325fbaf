package headers

import (
	"context"
	"net/http"
)

const redacted = "[REDACTED]"

type sensitiveKey struct{}

type sensitiveSets struct {
	request  map[string]bool
	response map[string]bool
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[http.CanonicalHeaderKey(n)] = true
	}
	return set
}

// SensitiveHeaders marks requestHeaders and responseHeaders as sensitive
// for the duration of the request, so any logging layer that calls
// RedactedRequestHeaders/RedactedResponseHeaders (an access log, say)
// hides their values instead of emitting them verbatim. It does not
// alter the headers themselves — only downstream logging's view of them —
// mirroring the original's header::Extensions-based sensitivity marker.
func SensitiveHeaders(requestHeaders, responseHeaders []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sets := sensitiveSets{request: toSet(requestHeaders), response: toSet(responseHeaders)}
			ctx := context.WithValue(r.Context(), sensitiveKey{}, sets)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sets(ctx context.Context) (sensitiveSets, bool) {
	s, ok := ctx.Value(sensitiveKey{}).(sensitiveSets)
	return s, ok
}

func redact(h http.Header, marked map[string]bool) http.Header {
	if len(marked) == 0 {
		return h
	}
	out := h.Clone()
	for name := range marked {
		if _, present := out[name]; present {
			out[name] = []string{redacted}
		}
	}
	return out
}

// RedactedRequestHeaders returns h with any header named by a preceding
// SensitiveHeaders layer's requestHeaders replaced by a fixed placeholder.
// If no SensitiveHeaders layer ran, h is returned unchanged.
func RedactedRequestHeaders(ctx context.Context, h http.Header) http.Header {
	s, ok := sets(ctx)
	if !ok {
		return h
	}
	return redact(h, s.request)
}

// RedactedResponseHeaders is RedactedRequestHeaders for the response side.
func RedactedResponseHeaders(ctx context.Context, h http.Header) http.Header {
	s, ok := sets(ctx)
	if !ok {
		return h
	}
	return redact(h, s.response)
}
