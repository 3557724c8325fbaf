package auth

import (
	"context"
	"net/http"
	"time"
)

// AsyncValidator implements a custom authorization scheme whose decision
// requires I/O (a database lookup, a call to an identity provider). It
// takes a context so callers can bound the lookup with CustomAsync's
// timeout, per the original's require_authorization_async.rs, which the
// distilled spec's §4.9 "Custom asynchronous" implies but doesn't spell
// out explicitly.
type AsyncValidator interface {
	Authorize(ctx context.Context, r *http.Request) (output any, ok bool, err error)
}

// AsyncValidatorFunc adapts a plain function to AsyncValidator.
type AsyncValidatorFunc func(ctx context.Context, r *http.Request) (any, bool, error)

func (f AsyncValidatorFunc) Authorize(ctx context.Context, r *http.Request) (any, bool, error) {
	return f(ctx, r)
}

// CustomAsync authorizes requests with validator, holding the request
// (blocking the serving goroutine, Go's equivalent of the original "middleware
// holds the request while awaiting") until Authorize returns. A positive
// timeout bounds that wait via context.WithTimeout; zero means no deadline
// beyond the request's own context. unauthorized builds the rejection
// response for both a false ok and a non-nil err (e.g. a timed-out lookup);
// it defaults to a bare 401 if nil.
func CustomAsync(validator AsyncValidator, timeout time.Duration, unauthorized func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	if unauthorized == nil {
		unauthorized = UnauthorizedResponse("")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			output, ok, err := validator.Authorize(ctx, r)
			if err != nil || !ok {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, withOutput(r, output))
		})
	}
}
