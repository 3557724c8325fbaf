// Package validate implements the request-admission layer of SPEC_FULL §4.13:
// reject a request, before the wrapped handler ever runs, when it fails a
// caller-supplied predicate over its headers. It mirrors the original
// tower-http ValidateRequestHeaderLayer/ValidateRequest contract (the same
// "boolean gate with an optional canned error response" shape `auth` and
// `cors` already use in this module).
package validate

import "net/http"

// Rejection is the response written when a Validator rejects a request.
// A nil Body writes no body.
type Rejection struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Rejection) write(w http.ResponseWriter) {
	for k, vv := range r.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	status := r.StatusCode
	if status == 0 {
		status = http.StatusBadRequest
	}
	w.WriteHeader(status)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}

// Validator decides whether a request is admissible. Returning ok == false
// short-circuits the chain with resp (nil means a bare default rejection).
type Validator interface {
	Validate(r *http.Request) (ok bool, resp *Rejection)
}

// Func adapts a plain function to a Validator, matching the original's
// blanket impl of ValidateRequest for any FnMut closure.
type Func func(r *http.Request) (bool, *Rejection)

func (f Func) Validate(r *http.Request) (bool, *Rejection) { return f(r) }

// Middleware builds the layer enforcing v against every request.
func Middleware(v Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, resp := v.Validate(r)
			if !ok {
				if resp == nil {
					resp = &Rejection{StatusCode: http.StatusBadRequest}
				}
				resp.write(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
