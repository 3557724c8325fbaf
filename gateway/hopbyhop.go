package gateway

import (
	"net/http"
	"strings"
)

// bodyFramingHeaders lists the headers spec §4.12 singles out: hop-by-hop
// by default, but kept when the client explicitly enumerated them in
// Connection, since they affect body framing this layer does not alter.
var bodyFramingHeaders = map[string]bool{
	"Te":                true,
	"Transfer-Encoding": true,
	"Trailer":           true,
}

// alwaysHopByHop is stripped unconditionally (after the
// bodyFramingHeaders exception is applied).
var alwaysHopByHop = []string{
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Upgrade",
	"Te",
	"Transfer-Encoding",
	"Trailer",
}

// stripHopByHop removes Connection, every header it names, and the
// standard hop-by-hop set, preserving TE/Transfer-Encoding/Trailer when
// the client named them in Connection.
func stripHopByHop(h http.Header) {
	named := map[string]bool{}
	for _, v := range h.Values("Connection") {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				named[http.CanonicalHeaderKey(tok)] = true
			}
		}
	}

	for _, name := range alwaysHopByHop {
		if bodyFramingHeaders[name] && named[name] {
			continue
		}
		h.Del(name)
	}
	for name := range named {
		if bodyFramingHeaders[name] {
			continue
		}
		h.Del(name)
	}
	h.Del("Connection")
}
