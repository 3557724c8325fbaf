// Package classify answers, for tracing/metrics/retry purposes, whether an
// HTTP exchange was a failure — independent of the transport-level error
// a handler or round-tripper might also return. It mirrors the two-phase
// make-classifier/response-classifier split from the original request
// tracing layer: a response classifier inspects the response head and
// either decides immediately or defers to an end-of-stream classifier
// invoked once trailers (if any) arrive.
package classify

import "net/http"

// Outcome is the three-way result of inspecting a response head.
type Outcome int

const (
	// Success means the response head alone settles it: no failure.
	Success Outcome = iota
	// Failure means the response head alone settles it: a failure class is
	// already known.
	Failure
	// NeedsEndOfStream defers the decision to the matching EndOfStream
	// classifier, invoked once the body (and any trailers) finish.
	NeedsEndOfStream
)

// FailureClass is any value describing why an exchange failed. Built-in
// classifiers return *StatusFailure, *GRPCFailure or *ErrorFailure; custom ones may
// return anything meaningful to their own tracing sink.
type FailureClass interface {
	// Reason is a short, log-friendly description of the failure.
	Reason() string
}

// StatusFailure is the failure class HTTPServerErrors returns.
type StatusFailure struct {
	StatusCode int
}

func (f *StatusFailure) Reason() string { return http.StatusText(f.StatusCode) }

// ErrorFailure wraps a transport/handler error as a failure class, used by
// every classifier's error path (classify_error in the original terms).
type ErrorFailure struct {
	Err error
}

func (f *ErrorFailure) Reason() string { return f.Err.Error() }
func (f *ErrorFailure) Unwrap() error  { return f.Err }

// Result is what ClassifyResponse returns: an Outcome, plus whichever of
// Failure/EndOfStream is meaningful for that outcome. Bundling both into
// one return value (rather than a stateful "call EndOfStream next" method)
// keeps ResponseClassifier instances safely shareable across concurrent
// requests.
type Result struct {
	Outcome Outcome
	// Failure is set when Outcome == Failure.
	Failure FailureClass
	// EndOfStream is set when Outcome == NeedsEndOfStream; the caller
	// invokes it once with the final trailers once the stream completes.
	EndOfStream EndOfStreamClassifier
}

// ResponseClassifier inspects a response head (status + headers) and
// decides the Outcome, deferring to an EndOfStreamClassifier when the
// decision needs trailers.
type ResponseClassifier interface {
	ClassifyResponse(resp *http.Response) Result
	// ClassifyError converts a transport/handler error (one that prevented
	// a response from completing at all) into a failure class.
	ClassifyError(err error) FailureClass
}

// EndOfStreamClassifier is invoked exactly once, with the final trailers
// (nil if the response carried none), to resolve a deferred classification.
type EndOfStreamClassifier interface {
	ClassifyEndOfStream(trailer http.Header) FailureClass
	ClassifyError(err error) FailureClass
}

// MakeClassifier produces a fresh ResponseClassifier per request. Most
// classifiers are stateless and can share one instance (see Shared), but
// the interface allows per-request state when a classifier needs it.
type MakeClassifier interface {
	MakeClassifier(req *http.Request) ResponseClassifier
}

// MakeClassifierFunc adapts a plain function to MakeClassifier.
type MakeClassifierFunc func(req *http.Request) ResponseClassifier

func (f MakeClassifierFunc) MakeClassifier(req *http.Request) ResponseClassifier { return f(req) }

// Shared wraps a single stateless ResponseClassifier so it can serve as a
// MakeClassifier, for classifiers (like HTTPServerErrors and GRPCStatus)
// that carry no per-request state.
func Shared(c ResponseClassifier) MakeClassifier {
	return MakeClassifierFunc(func(*http.Request) ResponseClassifier { return c })
}
