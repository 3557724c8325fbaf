package gateway

import (
	"net/http"
	"strings"
)

// addVia appends a Via entry if a received-by string is configured or
// derivable from the local address, per spec §4.12. The protocol portion
// defaults to the request's own HTTP version with the conventional
// "HTTP/" prefix stripped.
func addVia(req *http.Request, cfg Config, info connectionInfo) {
	receivedBy := cfg.ReceivedBy
	if receivedBy == "" {
		if info.localIP == "" && info.localPort == "" {
			return
		}
		receivedBy = byNodeValue(info)
	}

	protocol := cfg.ViaProtocol
	if protocol == "" {
		protocol = req.Proto
	}
	protocol = strings.TrimPrefix(protocol, "HTTP/")

	entry := protocol + " " + receivedBy
	if existing := req.Header.Get("Via"); existing != "" {
		req.Header.Set("Via", existing+", "+entry)
	} else {
		req.Header.Set("Via", entry)
	}
}
