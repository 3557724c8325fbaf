package validate

import (
	"net/http"
	"strings"
)

// acceptValidator enforces the original's AcceptHeader rule: if the
// request carries no Accept header at all, it passes; otherwise at least
// one comma-separated value (across possibly-repeated Accept header
// instances) must be "*/*", "<type>/*", or an exact match for want.
type acceptValidator struct {
	want    string
	primary string
}

// Accept requires the request's Accept header (when present) to be
// satisfied by want — "*/*", "<type>/*", or want itself — rejecting
// anything else with 406 Not Acceptable, per the original's
// ValidateRequestHeaderLayer::accept.
func Accept(want string) Validator {
	primary := want
	if i := strings.IndexByte(want, '/'); i >= 0 {
		primary = want[:i] + "/*"
	}
	return acceptValidator{want: want, primary: primary}
}

func (a acceptValidator) Validate(r *http.Request) (bool, *Rejection) {
	values := r.Header.Values("Accept")
	if len(values) == 0 {
		return true, nil
	}
	for _, v := range values {
		for _, typ := range strings.Split(v, ",") {
			typ = strings.TrimSpace(typ)
			if typ == "*/*" || typ == a.primary || typ == a.want {
				return true, nil
			}
		}
	}
	return false, &Rejection{StatusCode: http.StatusNotAcceptable}
}
