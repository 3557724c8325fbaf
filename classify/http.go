package classify

import "net/http"

// HTTPServerErrors classifies any 5xx response as a failure; everything
// else (including 4xx) is a success, since a client error is not the
// server's fault for tracing/retry purposes. It never defers to
// end-of-stream — the status line alone is always enough.
type HTTPServerErrors struct{}

func (HTTPServerErrors) ClassifyResponse(resp *http.Response) Result {
	if resp.StatusCode >= 500 {
		return Result{Outcome: Failure, Failure: &StatusFailure{StatusCode: resp.StatusCode}}
	}
	return Result{Outcome: Success}
}

func (HTTPServerErrors) ClassifyError(err error) FailureClass {
	return &ErrorFailure{Err: err}
}

// MakeHTTPServerErrors is the MakeClassifier for HTTPServerErrors.
func MakeHTTPServerErrors() MakeClassifier { return Shared(HTTPServerErrors{}) }
