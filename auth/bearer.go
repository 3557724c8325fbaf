package auth

import (
	"crypto/subtle"
	"net/http"
)

// Bearer requires the Authorization header to equal "Bearer "+token
// byte-for-byte. A constant-time comparison is used for the token itself
// to avoid leaking its value through response-timing side channels, a
// property the original's plain equality check doesn't need in Rust but
// is cheap to add in Go's stdlib.
func Bearer(token string) func(http.Handler) http.Handler {
	want := "Bearer " + token
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("Authorization")
			if len(got) != len(want) || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				UnauthorizedResponse("")(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
