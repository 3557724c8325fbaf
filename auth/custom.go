package auth

import "net/http"

// Validator implements a synchronous custom authorization scheme: Authorize
// inspects the request and either returns an auxiliary value to stash as a
// request extension (ok == true) or signals failure (ok == false), letting
// Unauthorized build the rejection response.
type Validator interface {
	Authorize(r *http.Request) (output any, ok bool)
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(r *http.Request) (any, bool)

func (f ValidatorFunc) Authorize(r *http.Request) (any, bool) { return f(r) }

// Custom authorizes requests with validator. unauthorized builds the
// rejection response; it defaults to a bare 401 if nil.
func Custom(validator Validator, unauthorized func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	if unauthorized == nil {
		unauthorized = UnauthorizedResponse("")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			output, ok := validator.Authorize(r)
			if !ok {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, withOutput(r, output))
		})
	}
}
