// Package cors implements the preflight and actual-request CORS middleware
// of spec §4.10: origin validation, preflight responses, and response
// post-processing, matching the original tower-http Cors service's
// responsibilities one for one.
package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// OriginPolicy decides whether origin is allowed to make a cross-origin
// request against r.
type OriginPolicy interface {
	Allowed(origin string, r *http.Request) bool
}

type originPolicyFunc func(origin string, r *http.Request) bool

func (f originPolicyFunc) Allowed(origin string, r *http.Request) bool { return f(origin, r) }

// anyOriginPolicy is a distinct type (rather than originPolicyFunc) so
// responseOrigin can tell "allow any origin" apart from a user predicate
// that merely happens to always return true, and echo "*" only for the
// former.
type anyOriginPolicy struct{}

func (anyOriginPolicy) Allowed(string, *http.Request) bool { return true }

// AnyOrigin allows every origin, echoing "*" (or the request's own Origin
// when AllowCredentials is set, since the Fetch spec forbids "*" alongside
// credentialed requests).
func AnyOrigin() OriginPolicy { return anyOriginPolicy{} }

// ExactOrigin allows only origin, compared byte-for-byte.
func ExactOrigin(origin string) OriginPolicy {
	return originPolicyFunc(func(o string, _ *http.Request) bool { return o == origin })
}

// ListOrigin allows any origin in origins.
func ListOrigin(origins ...string) OriginPolicy {
	set := make(map[string]bool, len(origins))
	for _, o := range origins {
		set[o] = true
	}
	return originPolicyFunc(func(o string, _ *http.Request) bool { return set[o] })
}

// PredicateOrigin allows an origin exactly when predicate(origin, r) is
// true, matching the original's Origin::predicate closure signature
// (origin, request-head).
func PredicateOrigin(predicate func(origin string, r *http.Request) bool) OriginPolicy {
	return originPolicyFunc(predicate)
}

// MethodsPolicy selects the allowed preflight request methods.
type MethodsPolicy struct {
	Any     bool
	Methods []string
}

func (p MethodsPolicy) allows(method string) bool {
	if p.Any {
		return true
	}
	for _, m := range p.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func (p MethodsPolicy) header() string {
	if p.Any {
		return "*"
	}
	return strings.Join(p.Methods, ", ")
}

// Config configures the CORS layer. A zero Config rejects every
// cross-origin request (AllowOrigin is nil).
type Config struct {
	AllowOrigin      OriginPolicy
	AllowMethods     MethodsPolicy
	AllowHeaders     []string
	AllowCredentials bool
	ExposeHeaders    []string
	MaxAge           time.Duration
}

// Middleware builds the CORS layer from cfg.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Not a CORS request.
				next.ServeHTTP(w, r)
				return
			}

			if cfg.AllowOrigin == nil || !cfg.AllowOrigin.Allowed(origin, r) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			if r.Method == http.MethodOptions {
				handlePreflight(w, r, cfg, origin)
				return
			}

			crw := &corsResponseWriter{ResponseWriter: w, cfg: cfg, origin: origin}
			next.ServeHTTP(crw, r)
		})
	}
}

func handlePreflight(w http.ResponseWriter, r *http.Request, cfg Config, origin string) {
	requestMethod := r.Header.Get("Access-Control-Request-Method")
	if requestMethod == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !cfg.AllowMethods.allows(requestMethod) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", responseOrigin(cfg, origin))
	h.Set("Access-Control-Allow-Methods", cfg.AllowMethods.header())
	h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
	if cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds())))
	}
	if cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if len(cfg.ExposeHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
	}
	w.WriteHeader(http.StatusOK)
}

// responseOrigin is "*" only when allow-origin is wide open and
// credentials aren't requested; AllowCredentials forces echoing the
// concrete origin, since browsers reject "*" alongside credentialed
// requests.
func responseOrigin(cfg Config, origin string) string {
	if cfg.allowsAnyOrigin() && !cfg.AllowCredentials {
		return "*"
	}
	return origin
}

// allowsAnyOrigin reports whether AllowOrigin is the AnyOrigin() policy.
func (cfg Config) allowsAnyOrigin() bool {
	_, ok := cfg.AllowOrigin.(anyOriginPolicy)
	return ok
}

// corsResponseWriter post-processes an actual (non-preflight) CORS
// response, adding Access-Control-Allow-Origin and friends once the
// handler writes its response head.
type corsResponseWriter struct {
	http.ResponseWriter
	cfg         Config
	origin      string
	wroteHeader bool
}

func (w *corsResponseWriter) writeCORSHeaders() {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", responseOrigin(w.cfg, w.origin))
	if w.cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if len(w.cfg.ExposeHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(w.cfg.ExposeHeaders, ", "))
	}
}

func (w *corsResponseWriter) WriteHeader(code int) {
	w.writeCORSHeaders()
	w.ResponseWriter.WriteHeader(code)
}

func (w *corsResponseWriter) Write(p []byte) (int, error) {
	w.writeCORSHeaders()
	return w.ResponseWriter.Write(p)
}
