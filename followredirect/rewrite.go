package followredirect

import (
	"io"
	"net/http"
	"net/url"
)

// BodyCloner is an optional Policy capability: when the original request's
// body can't be cloned via the stdlib GetBody mechanism, rewriteForRedirect
// asks any Policy implementing this interface for a substitute.
type BodyCloner interface {
	CloneBody(req *http.Request) (io.ReadCloser, bool)
}

// rewriteForRedirect applies spec §4.7's method/body/header rewrite rules
// for status against orig, producing the request to re-issue at next. ok is
// false if the body isn't cloneable and no substitute is available, per the
// "body cloning policy" paragraph — the caller must then return the
// original 3xx response unchanged.
func rewriteForRedirect(orig *http.Request, status int, next *url.URL, policy Policy) (*http.Request, bool) {
	method := orig.Method
	dropBody := false
	stripHeaders := false

	switch status {
	case http.StatusMovedPermanently, http.StatusFound:
		if orig.Method == http.MethodPost {
			method = http.MethodGet
			dropBody = true
		}
		// spec §4.7: drop Content-Type/Content-Length/Content-Encoding/
		// Transfer-Encoding in both cases, not just when the body is
		// dropped — a non-POST method keeps its body but loses these,
		// since the body may be re-read by GetBody and its framing
		// headers no longer describe what's about to be sent.
		stripHeaders = true
	case http.StatusSeeOther:
		if orig.Method != http.MethodHead {
			method = http.MethodGet
		}
		dropBody = true
		stripHeaders = true
	case http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		// keep method, body, and headers
	default:
		return nil, false
	}

	req := orig.Clone(orig.Context())
	req.URL = next
	req.Host = ""
	req.Method = method
	req.RequestURI = ""

	if dropBody {
		req.Body = http.NoBody
		req.GetBody = nil
		req.ContentLength = 0
	} else if orig.Body != nil && orig.Body != http.NoBody {
		body, ok := cloneBody(orig, policy)
		if !ok {
			return nil, false
		}
		req.Body = body
	}

	if stripHeaders {
		req.Header = orig.Header.Clone()
		req.Header.Del("Content-Type")
		req.Header.Del("Content-Length")
		req.Header.Del("Content-Encoding")
		req.Header.Del("Transfer-Encoding")
		req.ContentLength = 0
	}

	return req, true
}

// cloneBody prefers the stdlib GetBody mechanism (set by http.NewRequest
// for common body types); it falls back to an empty body when the size
// hint is known-zero, matching the original's "Default body" fallback.
func cloneBody(orig *http.Request, policy Policy) (io.ReadCloser, bool) {
	if orig.GetBody != nil {
		b, err := orig.GetBody()
		if err != nil {
			return nil, false
		}
		return b, true
	}
	if cloner, ok := policy.(BodyCloner); ok {
		if b, ok := cloner.CloneBody(orig); ok {
			return b, true
		}
	}
	if orig.ContentLength == 0 {
		return http.NoBody, true
	}
	return nil, false
}
