// Package followredirect implements a client-side RoundTripper that
// consumes 3xx responses and re-issues the request against the resolved
// Location, per spec §4.7. It mirrors the stdlib http.Client's own
// redirect handling (method/body rewrite rules, GetBody-based body
// cloning) but is expressed as a composable http.RoundTripper so it can
// be stacked with the rest of this module's client-side layers
// (compression.DecompressingTransport, gateway).
package followredirect

import (
	"fmt"
	"net/http"
	"net/url"
)

// Action is a Policy's verdict on whether to follow a redirect.
type Action int

const (
	// Follow re-issues the request against the resolved Location.
	Follow Action = iota
	// Stop returns the 3xx response to the caller unchanged.
	Stop
)

// Attempt describes one redirect hop a Policy is asked to judge.
type Attempt struct {
	StatusCode       int
	CurrentURL       *url.URL
	NextURL          *url.URL
	PreviousAttempts int
}

// Policy governs whether and how redirects are followed.
type Policy interface {
	// Redirect decides Follow or Stop for attempt, or returns an error to
	// abort the whole request with that error.
	Redirect(attempt Attempt) (Action, error)
	// OnRequest is called against the rewritten request just before it is
	// re-issued, letting a policy stamp or strip headers (e.g. drop
	// Authorization on a cross-origin hop).
	OnRequest(req *http.Request)
}

// Transport wraps Next, following redirects per Policy (default: Limited
// to 10 hops). The final response's Request field is the request that
// actually produced it — the idiomatic Go rendition of spec §4.7's
// "effective URI" response extension; EffectiveURI reads it back.
type Transport struct {
	Next   http.RoundTripper
	Policy Policy
}

func (t *Transport) next() http.RoundTripper {
	if t.Next != nil {
		return t.Next
	}
	return http.DefaultTransport
}

func (t *Transport) policy() Policy {
	if t.Policy != nil {
		return t.Policy
	}
	return Limited(10)
}

// EffectiveURI returns the URI of the request that actually produced resp,
// after any redirects were followed.
func EffectiveURI(resp *http.Response) *url.URL {
	if resp.Request == nil {
		return nil
	}
	return resp.Request.URL
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	policy := t.policy()
	current := req
	attempts := 0

	for {
		resp, err := t.next().RoundTrip(current)
		if err != nil {
			return nil, err
		}
		resp.Request = current

		if !isRedirect(resp.StatusCode) {
			return resp, nil
		}
		loc := resp.Header.Get("Location")
		if loc == "" {
			return resp, nil
		}
		nextURL, err := current.URL.Parse(loc)
		if err != nil {
			return resp, nil
		}

		action, err := policy.Redirect(Attempt{
			StatusCode:       resp.StatusCode,
			CurrentURL:       current.URL,
			NextURL:          nextURL,
			PreviousAttempts: attempts,
		})
		if err != nil {
			return nil, fmt.Errorf("followredirect: %w", err)
		}
		if action != Follow {
			return resp, nil
		}

		nextReq, ok := rewriteForRedirect(current, resp.StatusCode, nextURL, policy)
		if !ok {
			return resp, nil
		}
		policy.OnRequest(nextReq)
		_ = resp.Body.Close()

		current = nextReq
		attempts++
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
