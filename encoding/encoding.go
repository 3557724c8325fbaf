// Package encoding parses Accept-Encoding headers and selects a
// content-coding per spec §4.3. It is deliberately free of any actual
// compression code (see package compression) so it can be reused by both
// server-side response compression and client-side request negotiation.
package encoding

import "strings"

// Encoding is one of the closed set of content-codings this module knows
// about, plus NotAcceptable for "no encoding satisfies the request".
type Encoding int

const (
	Identity Encoding = iota
	Gzip
	Deflate
	Brotli
	Zstd
	NotAcceptable
)

// String returns the canonical Content-Encoding / Accept-Encoding token.
func (e Encoding) String() string {
	switch e {
	case Identity:
		return "identity"
	case Gzip:
		return "gzip"
	case Deflate:
		return "deflate"
	case Brotli:
		return "br"
	case Zstd:
		return "zstd"
	default:
		return "not-acceptable"
	}
}

// ParseToken matches a single case-insensitive content-coding token (e.g. a
// Content-Encoding header value), including the gzip alias "x-gzip" and the
// wildcard "*". ok is false for unknown tokens. Exported for packages that
// parse a single token rather than a full Accept-Encoding list (compression,
// fileserver).
func ParseToken(tok string) (enc Encoding, isWildcard bool, ok bool) {
	return parseToken(tok)
}

// parseToken matches a case-insensitive Accept-Encoding token, including the
// gzip alias "x-gzip" and the wildcard "*". ok is false for unknown tokens,
// which callers must ignore rather than reject.
func parseToken(tok string) (enc Encoding, isWildcard bool, ok bool) {
	switch strings.ToLower(tok) {
	case "identity":
		return Identity, false, true
	case "gzip", "x-gzip":
		return Gzip, false, true
	case "deflate":
		return Deflate, false, true
	case "br":
		return Brotli, false, true
	case "zstd":
		return Zstd, false, true
	case "*":
		return 0, true, true
	default:
		return 0, false, false
	}
}
