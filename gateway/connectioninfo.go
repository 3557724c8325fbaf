package gateway

import (
	"net"
	"net/http"
	"strings"
)

// connectionInfo holds the actor identities used to build the Forwarded,
// Via and X-Forwarded-* headers for one request, derived from the actual
// peer socket address (r.RemoteAddr) and the configured local address —
// adapted from the original's connection_info.rs, minus its generic
// obfuscated-identifier machinery, which this layer has no caller for.
type connectionInfo struct {
	peerIP, peerPort   string
	localIP, localPort string
}

func peerInfo(r *http.Request, cfg Config) connectionInfo {
	var info connectionInfo
	info.peerIP, info.peerPort = splitHostPort(r.RemoteAddr)
	info.localIP, info.localPort = splitHostPort(cfg.LocalAddr)
	return info
}

func splitHostPort(addr string) (host, port string) {
	if addr == "" {
		return "", ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, ""
	}
	return host, port
}

// quoteIfIPv6 wraps a literal IPv6 address (containing ':') in brackets,
// as required by the Forwarded header's node ABNF and by Host.
func quoteIfIPv6(host string) string {
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		return "[" + host + "]"
	}
	return host
}
