// Package headers implements the short, focused header-manipulating layers
// of spec §4.8: set/propagate request and response headers, request-id
// stamping, path normalization, fixed-status rewrite, request body limits,
// a concurrency limiter, and panic recovery. Each layer is a
// func(http.Handler) http.Handler, matching the root package's Layer type.
package headers

import "net/http"

// ValueFunc computes a header value from the in-flight request. Returning
// ("", false) means "no value" — the layer then does nothing for that
// request.
type ValueFunc func(r *http.Request) (string, bool)

// Static builds a ValueFunc that always returns value.
func Static(value string) ValueFunc {
	return func(*http.Request) (string, bool) { return value, true }
}

// Mode selects how SetRequestHeader/SetResponseHeader applies a computed
// value against an existing header.
type Mode int

const (
	// Override removes any existing values for the header, then inserts one.
	Override Mode = iota
	// Append adds the value without removing existing ones.
	Append
	// IfNotPresent inserts only when the header is currently absent.
	IfNotPresent
)

func apply(h http.Header, name, value string, mode Mode) {
	switch mode {
	case Append:
		h.Add(name, value)
	case IfNotPresent:
		if h.Get(name) == "" {
			h.Set(name, value)
		}
	default:
		h.Set(name, value)
	}
}

// SetRequestHeader sets name on the incoming request per mode, computing
// the value from fn for each request. A false ok return from fn skips the
// request entirely.
func SetRequestHeader(name string, mode Mode, fn ValueFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if value, ok := fn(r); ok {
				apply(r.Header, name, value, mode)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetResponseHeader sets name on the outgoing response per mode. fn is
// evaluated against the request, matching the source contract ("a per-call
// function over the request/response"); since Go headers must be set
// before WriteHeader, the value is computed up front rather than lazily at
// flush time.
func SetResponseHeader(name string, mode Mode, fn ValueFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if value, ok := fn(r); ok {
				apply(w.Header(), name, value, mode)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PropagateHeader copies name from the request to the response, if present.
func PropagateHeader(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v := r.Header.Get(name); v != "" {
				w.Header().Set(name, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NormalizePath trims a single trailing slash from the request path,
// leaving the root path "/" untouched.
func NormalizePath() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := r.URL.Path; len(p) > 1 && p[len(p)-1] == '/' {
				r.URL.Path = p[:len(p)-1]
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetStatus rewrites every response from next to a fixed status code,
// regardless of what next itself wrote.
func SetStatus(code int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&statusOverrideWriter{ResponseWriter: w, code: code}, r)
		})
	}
}

type statusOverrideWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusOverrideWriter) WriteHeader(int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(w.code)
}

func (w *statusOverrideWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(w.code)
	}
	return w.ResponseWriter.Write(p)
}
