package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

// Basic requires the Authorization header to equal
// "Basic "+base64(user+":"+pass) byte-for-byte, returning 401 with a
// WWW-Authenticate: Basic challenge on mismatch, per spec §4.9.
func Basic(user, pass string) func(http.Handler) http.Handler {
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("Authorization")
			if len(got) != len(want) || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				UnauthorizedResponse("Basic")(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
