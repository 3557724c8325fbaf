package followredirect

import (
	"fmt"
	"net/http"
)

// PolicyFunc adapts a plain Redirect function into a Policy with a no-op
// OnRequest.
type PolicyFunc func(attempt Attempt) (Action, error)

func (f PolicyFunc) Redirect(attempt Attempt) (Action, error) { return f(attempt) }
func (PolicyFunc) OnRequest(*http.Request)                    {}

// TooManyRedirectsError is returned by Limited once its cap is exceeded.
type TooManyRedirectsError struct{ Max int }

func (e *TooManyRedirectsError) Error() string {
	return fmt.Sprintf("followredirect: stopped after %d redirects", e.Max)
}

type limited struct{ max int }

// Limited follows at most max redirects, then errors.
func Limited(max int) Policy { return limited{max: max} }

func (l limited) Redirect(attempt Attempt) (Action, error) {
	if attempt.PreviousAttempts >= l.max {
		return Stop, &TooManyRedirectsError{Max: l.max}
	}
	return Follow, nil
}

func (limited) OnRequest(*http.Request) {}

type sameOrigin struct{}

// SameOrigin follows only redirects that keep the same scheme+host+port;
// cross-origin redirects are returned to the caller unchanged (Stop, no
// error) rather than followed blindly — relevant because the default
// method/body rewrite rules otherwise carry credentials across origins.
func SameOrigin() Policy { return sameOrigin{} }

func (sameOrigin) Redirect(attempt Attempt) (Action, error) {
	if attempt.CurrentURL.Scheme == attempt.NextURL.Scheme && attempt.CurrentURL.Host == attempt.NextURL.Host {
		return Follow, nil
	}
	return Stop, nil
}

func (sameOrigin) OnRequest(*http.Request) {}

// Filter follows only redirects whose next URL satisfies predicate.
func Filter(predicate func(attempt Attempt) bool) Policy {
	return PolicyFunc(func(attempt Attempt) (Action, error) {
		if predicate(attempt) {
			return Follow, nil
		}
		return Stop, nil
	})
}

type andPolicy struct{ policies []Policy }

// And follows only if every policy in policies agrees to Follow; the first
// policy to say Stop or error wins. OnRequest runs every policy's hook in
// order.
func And(policies ...Policy) Policy { return andPolicy{policies: policies} }

func (p andPolicy) Redirect(attempt Attempt) (Action, error) {
	for _, policy := range p.policies {
		action, err := policy.Redirect(attempt)
		if err != nil || action != Follow {
			return action, err
		}
	}
	return Follow, nil
}

func (p andPolicy) OnRequest(req *http.Request) {
	for _, policy := range p.policies {
		policy.OnRequest(req)
	}
}

type orPolicy struct{ policies []Policy }

// Or follows if any policy in policies agrees to Follow, trying each in
// order and returning Follow as soon as one does. Otherwise it returns Stop
// together with the last error any policy returned (nil if none erred).
func Or(policies ...Policy) Policy { return orPolicy{policies: policies} }

func (p orPolicy) Redirect(attempt Attempt) (Action, error) {
	var lastErr error
	for _, policy := range p.policies {
		action, err := policy.Redirect(attempt)
		if err != nil {
			lastErr = err
			continue
		}
		if action == Follow {
			return Follow, nil
		}
	}
	if lastErr != nil {
		return Stop, lastErr
	}
	return Stop, nil
}

func (p orPolicy) OnRequest(req *http.Request) {
	for _, policy := range p.policies {
		policy.OnRequest(req)
	}
}

// RedirectFunc builds a Policy whose Redirect is fn and whose OnRequest is
// a no-op, named to match the original crate's redirect_fn combinator.
func RedirectFunc(fn func(attempt Attempt) (Action, error)) Policy {
	return PolicyFunc(fn)
}
