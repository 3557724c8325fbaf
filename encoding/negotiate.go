package encoding

import "strings"

// Entry is one parsed, syntactically valid element of an Accept-Encoding
// header: either a concrete encoding or the "*" wildcard, with its qvalue.
type Entry struct {
	Encoding   Encoding
	IsWildcard bool
	Q          QValue
}

// ParseAcceptEncoding parses a (possibly comma-joined, possibly
// multi-header) Accept-Encoding value. Unknown tokens and elements with
// malformed qvalues are silently dropped, per spec §4.3 — the header as a
// whole never fails to parse.
func ParseAcceptEncoding(header string) []Entry {
	var entries []Entry
	for _, raw := range strings.Split(header, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ";")
		tok := strings.TrimSpace(parts[0])
		enc, wildcard, ok := parseToken(tok)
		if !ok {
			continue
		}
		q := QValueMax
		valid := true
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			name, val, found := strings.Cut(p, "=")
			if !found || strings.TrimSpace(strings.ToLower(name)) != "q" {
				continue
			}
			parsed, err := ParseQValue(strings.TrimSpace(val))
			if err != nil {
				valid = false
				break
			}
			q = parsed
		}
		if !valid {
			continue
		}
		entries = append(entries, Entry{Encoding: enc, IsWildcard: wildcard, Q: q})
	}
	return entries
}

// Policy selects one Encoding from a set of Accept-Encoding entries and the
// server's supported set. Implementations must be deterministic for a fixed
// input, per spec §4.3's tie-break rule.
type Policy interface {
	Select(entries []Entry, supported []Encoding) Encoding
}

// DefaultPriority is the implementation-defined ranking used by the
// Default policy: zstd > br > gzip > deflate > identity.
var DefaultPriority = []Encoding{Zstd, Brotli, Gzip, Deflate, Identity}

func supportsOf(supported []Encoding) map[Encoding]bool {
	m := make(map[Encoding]bool, len(supported))
	for _, e := range supported {
		m[e] = true
	}
	return m
}

// effectiveQ resolves the qvalue of every server-supported encoding that
// the client actually mentioned, either by an explicit token or by "*".
// Encodings absent from the header (and not covered by a wildcard) are
// left out of the map entirely: per the original negotiation algorithm
// this module is grounded on, an unmentioned encoding is never a
// candidate to beat an explicitly preferred one — it only matters for the
// final "nothing matched, fall back to identity" step, which Select
// performs after consulting this map.
func effectiveQ(entries []Entry, supported []Encoding) map[Encoding]QValue {
	result := make(map[Encoding]QValue, len(supported))
	explicit := make(map[Encoding]QValue)
	var wildcardQ *QValue
	for _, e := range entries {
		if e.IsWildcard {
			q := e.Q
			wildcardQ = &q
			continue
		}
		explicit[e.Encoding] = e.Q
	}
	for _, enc := range supported {
		if q, ok := explicit[enc]; ok {
			result[enc] = q
			continue
		}
		if wildcardQ != nil {
			result[enc] = *wildcardQ
		}
	}
	return result
}

// identityForbidden reports whether identity's effective qvalue (explicit
// or wildcard-derived) is exactly 0.
func identityForbidden(eq map[Encoding]QValue) bool {
	q, mentioned := eq[Identity]
	return mentioned && q == 0
}

// isAcceptable reports whether the request, taken as a whole, allows any
// encoding at all. It is false only when identity is explicitly forbidden
// (q=0, directly or via a "*;q=0" catch-all) and no other supported
// encoding has a positive qvalue either — spec §4.3's "not acceptable"
// edge case.
func isAcceptable(eq map[Encoding]QValue) bool {
	if !identityForbidden(eq) {
		return true
	}
	for enc, q := range eq {
		if enc != Identity && q > 0 {
			return true
		}
	}
	return false
}

// bestMentionedQ returns the highest qvalue among encodings the client
// actually mentioned (positive entries only); ok is false if none did.
func bestMentionedQ(eq map[Encoding]QValue) (best QValue, ok bool) {
	for _, q := range eq {
		if q > 0 && (!ok || q > best) {
			best, ok = q, true
		}
	}
	return best, ok
}

// FirstSupportedPolicy picks, among entries at the highest qvalue whose
// token is server-supported, the first one listed in the header.
type FirstSupportedPolicy struct{}

func (FirstSupportedPolicy) Select(entries []Entry, supported []Encoding) Encoding {
	eq := effectiveQ(entries, supported)
	if !isAcceptable(eq) {
		return NotAcceptable
	}
	best, ok := bestMentionedQ(eq)
	if !ok {
		return Identity
	}
	sset := supportsOf(supported)
	for _, e := range entries {
		if e.IsWildcard {
			continue
		}
		if sset[e.Encoding] && eq[e.Encoding] == best {
			return e.Encoding
		}
	}
	// Only a wildcard produced the winning qvalue; fall back to server
	// preference order among encodings at that qvalue for determinism.
	for _, enc := range DefaultPriority {
		if sset[enc] && eq[enc] == best {
			return enc
		}
	}
	return Identity
}

// ServerPreferencePolicy ranks each supported encoding by a priority table
// (lower index = higher priority) and, among entries at the highest
// qvalue, picks the one with the highest server priority.
type ServerPreferencePolicy struct {
	Priority []Encoding
}

func (p ServerPreferencePolicy) Select(entries []Entry, supported []Encoding) Encoding {
	eq := effectiveQ(entries, supported)
	if !isAcceptable(eq) {
		return NotAcceptable
	}
	best, ok := bestMentionedQ(eq)
	if !ok {
		return Identity
	}
	for _, enc := range p.Priority {
		if eq[enc] == best {
			return enc
		}
	}
	return Identity
}

// DefaultPolicy selects using DefaultPriority (zstd > br > gzip > deflate >
// identity).
type DefaultPolicy struct{}

func (DefaultPolicy) Select(entries []Entry, supported []Encoding) Encoding {
	return ServerPreferencePolicy{Priority: DefaultPriority}.Select(entries, supported)
}

// Negotiate parses header and applies policy against supported, the
// library's single entry point for §4.3 end to end.
func Negotiate(header string, supported []Encoding, policy Policy) Encoding {
	entries := ParseAcceptEncoding(header)
	if len(entries) == 0 {
		return Identity
	}
	return policy.Select(entries, supported)
}
