package headers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// PanicHandler produces the response for a recovered panic. recovered is
// whatever was passed to panic (often an error, but not required to be).
type PanicHandler func(w http.ResponseWriter, r *http.Request, recovered any)

// DefaultPanicHandler writes a 500 with a plain-text body, matching the
// spec's documented default.
func DefaultPanicHandler(w http.ResponseWriter, _ *http.Request, recovered any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "internal server error: %v", recovered)
}

// CatchPanic recovers panics raised by next (synchronous panics in the
// handler, and, since Go has no separate response-future type, any panic
// that would otherwise occur while the handler is writing the response),
// logs them, and produces a response via handler instead of letting the
// panic unwind into the server's own recovery (which would close the
// connection without a response). A nil logger defaults to zap.NewNop(),
// matching the teacher's constructor convention. A nil handler defaults to
// DefaultPanicHandler.
func CatchPanic(logger *zap.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if handler == nil {
		handler = DefaultPanicHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &headerTrackingWriter{ResponseWriter: w}
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("recovered panic in handler",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)
					if !rw.wroteHeader {
						handler(rw, r, rec)
					}
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
