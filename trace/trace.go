// Package trace implements the lifecycle-hook middleware of spec §4.6: a
// configurable Sink observes each request's head, body chunks, end of
// stream, and failures, with an in-flight counter guaranteed to release
// exactly once per request regardless of which exit path it takes.
package trace

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sofatutor/httpmw/classify"
)

// FailurePoint names which phase of the exchange produced an on_failure
// call, per spec §4.6 step 5.
type FailurePoint int

const (
	FailedAtResponse FailurePoint = iota
	FailedAtBody
	FailedAtTrailers
)

func (p FailurePoint) String() string {
	switch p {
	case FailedAtResponse:
		return "response"
	case FailedAtBody:
		return "body"
	case FailedAtTrailers:
		return "trailers"
	default:
		return "unknown"
	}
}

// SpanContext carries the per-request state threaded through every hook:
// the fields of the span contract (method, route, version, client_ip,
// user_agent, request_id) plus timing state a Sink needs to compute
// durations.
type SpanContext struct {
	Method     string
	Route      string
	Version    string
	ClientIP   string
	UserAgent  string
	RequestID  string
	StartedAt  time.Time
	StreamedAt time.Time

	mu          sync.Mutex
	lastChunkAt time.Time
}

// Sink observes the lifecycle of one request. Implementations must be safe
// for concurrent use across requests; a single SpanContext is never shared
// across requests.
type Sink interface {
	OnRequest(ctx *SpanContext)
	OnResponse(ctx *SpanContext, result classify.Result)
	OnBodyChunk(ctx *SpanContext, n int, latency time.Duration)
	OnEndOfStream(ctx *SpanContext, trailer http.Header, failure classify.FailureClass)
	OnFailure(ctx *SpanContext, at FailurePoint, failure classify.FailureClass)
}

// Config configures the Middleware.
type Config struct {
	Classifier classify.MakeClassifier
	Sink       Sink
	// Route, if set, resolves the matched route template (e.g. "/users/:id")
	// for a request; defaults to r.URL.Path when nil or returning "".
	Route func(*http.Request) string
}

func (c Config) classifier() classify.MakeClassifier {
	if c.Classifier != nil {
		return c.Classifier
	}
	return classify.MakeHTTPServerErrors()
}

func (c Config) route(r *http.Request) string {
	if c.Route != nil {
		if route := c.Route(r); route != "" {
			return route
		}
	}
	return r.URL.Path
}

// inFlightGuard releases the in-flight counter exactly once, from whichever
// exit path reaches it first (normal completion, deferred EOS, failure, or
// client disconnect).
type inFlightGuard struct {
	once    sync.Once
	counter *int64
}

func (g *inFlightGuard) release() {
	g.once.Do(func() { atomic.AddInt64(g.counter, -1) })
}

// Counter is an in-flight request counter a Middleware increments/decrements;
// callers may read it (e.g. to export as a gauge).
type Counter struct{ n int64 }

// InFlight returns the current in-flight request count.
func (c *Counter) InFlight() int64 { return atomic.LoadInt64(&c.n) }

// Middleware returns a layer implementing spec §4.6 against counter (a
// fresh *Counter if nil is passed is still valid but unobservable from
// outside).
func Middleware(cfg Config, counter *Counter) func(http.Handler) http.Handler {
	if counter == nil {
		counter = &Counter{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			span := &SpanContext{
				Method:    r.Method,
				Route:     cfg.route(r),
				Version:   r.Proto,
				ClientIP:  clientIP(r),
				UserAgent: r.UserAgent(),
				RequestID: r.Header.Get("X-Request-Id"),
				StartedAt: time.Now(),
			}
			sink := cfg.Sink
			if sink == nil {
				sink = NopSink{}
			}
			sink.OnRequest(span)

			atomic.AddInt64(&counter.n, 1)
			guard := &inFlightGuard{counter: &counter.n}

			responseClassifier := cfg.classifier().MakeClassifier(r)
			rw := &tracingWriter{
				ResponseWriter: w,
				span:           span,
				sink:           sink,
				classifier:     responseClassifier,
			}

			defer func() {
				if rec := recover(); rec != nil {
					failure := classifyPanic(responseClassifier, rec)
					at := FailedAtResponse
					if rw.wroteHeader {
						at = FailedAtBody
					}
					sink.OnFailure(span, at, failure)
					guard.release()
					panic(rec)
				}
			}()

			next.ServeHTTP(rw, r)

			if !rw.wroteHeader {
				if err := r.Context().Err(); err != nil {
					// The client went away (or the request was otherwise
					// cancelled) before any response head was produced:
					// treated as a dropped response, not a synthesized 200.
					sink.OnFailure(span, FailedAtResponse, responseClassifier.ClassifyError(err))
					guard.release()
					return
				}
				// Handler returned without writing anything; net/http will
				// send an implicit 200 with an empty body.
				rw.WriteHeader(http.StatusOK)
			}

			if rw.result.Outcome == classify.NeedsEndOfStream && rw.result.EndOfStream != nil {
				trailer := collectTrailers(w.Header())
				failure := rw.result.EndOfStream.ClassifyEndOfStream(trailer)
				sink.OnEndOfStream(span, trailer, failure)
			}
			guard.release()
		})
	}
}

func classifyPanic(c classify.ResponseClassifier, rec any) classify.FailureClass {
	if err, ok := rec.(error); ok {
		return c.ClassifyError(err)
	}
	return c.ClassifyError(panicError{rec})
}

type panicError struct{ v any }

func (p panicError) Error() string { return "panic: " + toString(p.v) }

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "non-error panic value"
}

// collectTrailers reads back any response trailers the handler announced
// via the stdlib http.TrailerPrefix convention.
func collectTrailers(h http.Header) http.Header {
	var trailer http.Header
	for k, values := range h {
		if len(k) <= len(http.TrailerPrefix) || k[:len(http.TrailerPrefix)] != http.TrailerPrefix {
			continue
		}
		if trailer == nil {
			trailer = http.Header{}
		}
		name := k[len(http.TrailerPrefix):]
		for _, v := range values {
			trailer.Add(name, v)
		}
	}
	return trailer
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}

// tracingWriter wraps http.ResponseWriter to capture the response head for
// classification and to time body chunks.
type tracingWriter struct {
	http.ResponseWriter
	span        *SpanContext
	sink        Sink
	classifier  classify.ResponseClassifier
	wroteHeader bool
	result      classify.Result
}

func (w *tracingWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.span.StreamedAt = time.Now()
	w.span.mu.Lock()
	w.span.lastChunkAt = w.span.StreamedAt
	w.span.mu.Unlock()

	head := &http.Response{StatusCode: status, Header: w.Header()}
	w.result = w.classifier.ClassifyResponse(head)
	w.sink.OnResponse(w.span, w.result)
	w.ResponseWriter.WriteHeader(status)
}

func (w *tracingWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(p)
	if n > 0 {
		w.span.mu.Lock()
		now := time.Now()
		latency := now.Sub(w.span.lastChunkAt)
		w.span.lastChunkAt = now
		w.span.mu.Unlock()
		w.sink.OnBodyChunk(w.span, n, latency)
	}
	return n, err
}

func (w *tracingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// NopSink discards every hook; useful as a default or in tests.
type NopSink struct{}

func (NopSink) OnRequest(*SpanContext)                                  {}
func (NopSink) OnResponse(*SpanContext, classify.Result)                {}
func (NopSink) OnBodyChunk(*SpanContext, int, time.Duration)            {}
func (NopSink) OnEndOfStream(*SpanContext, http.Header, classify.FailureClass) {}
func (NopSink) OnFailure(*SpanContext, FailurePoint, classify.FailureClass)    {}
