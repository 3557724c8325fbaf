// Package gateway implements the reverse-proxy layer of spec §4.12: URI
// rebase onto a configured base URL, hop-by-hop header stripping,
// Forwarded/Via/X-Forwarded-* construction, and CONNECT rejection.
//
// It forwards through an explicit RoundTrip call rather than
// net/http/httputil.ReverseProxy (the approach the teacher's
// TransparentProxy, internal/proxy/proxy.go, takes via a Director
// function): ReverseProxy's own ServeHTTP unconditionally strips every
// hop-by-hop header after the Director runs, which would silently
// override this layer's one deliberate exception — preserving TE,
// Transfer-Encoding and Trailer when the client named them in
// Connection. Everything else here — Director-style request rewriting,
// streaming response copy, logging/header conventions — follows the
// teacher's shape.
package gateway

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config controls a gateway instance.
type Config struct {
	// BaseURL is the upstream the gateway forwards to. Its scheme and
	// host replace the incoming request's; its path is joined with the
	// incoming request's path (normalizing the joining slash).
	BaseURL *url.URL

	// Transport is the RoundTripper used to reach BaseURL. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper

	// FlushInterval, if positive, periodically flushes the response
	// body being copied to the client, for streaming upstream
	// responses (SSE, chunked transfer).
	FlushInterval time.Duration

	// EnableXForwarded additionally emits X-Forwarded-For,
	// X-Forwarded-Host and X-Forwarded-Proto mirroring the Forwarded
	// header's fields. Forwarded itself is always emitted.
	EnableXForwarded bool

	// ReceivedBy is the Via header's received-by token (e.g. a
	// hostname or "gateway"; the protocol is prepended separately, see
	// ViaProtocol). If empty, LocalAddr is used instead;
	// if both are empty, no Via header is added.
	ReceivedBy string

	// LocalAddr is this gateway's own address, used both for the
	// Forwarded header's "by=" directive and, absent ReceivedBy, the
	// Via header's received-by token. Accepts "host", "host:port", or
	// a bracketed IPv6 literal.
	LocalAddr string

	// ViaProtocol overrides the protocol portion of the Via header
	// (e.g. "HTTP/1.1"). If empty, it is derived from the incoming
	// request's protocol (req.Proto), per convention stripping the
	// "HTTP/" prefix.
	ViaProtocol string
}

// New builds a reverse-proxy handler forwarding to cfg.BaseURL.
func New(cfg Config) http.Handler {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &handler{cfg: cfg, transport: transport}
}

type handler struct {
	cfg       Config
	transport http.RoundTripper
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		http.Error(w, "CONNECT is not supported", http.StatusBadRequest)
		return
	}

	outReq := r.Clone(r.Context())
	outReq.RequestURI = ""
	outReq.Close = false

	info := peerInfo(r, h.cfg)
	rebaseURI(outReq, h.cfg.BaseURL)
	stripHopByHop(outReq.Header)
	addForwarded(outReq, h.cfg, info)
	addVia(outReq, h.cfg, info)

	resp, err := h.transport.RoundTrip(outReq)
	if err != nil {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	stripHopByHop(resp.Header)
	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	copyBody(w, resp.Body, h.cfg.FlushInterval)
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// copyBody streams resp.Body to w, flushing periodically when
// flushInterval is positive and w supports it, so long-lived or
// streamed upstream responses (SSE, chunked) reach the client promptly
// rather than waiting for the copy to buffer up or finish.
func copyBody(w http.ResponseWriter, body io.Reader, flushInterval time.Duration) {
	flusher, canFlush := w.(http.Flusher)
	if flushInterval <= 0 || !canFlush {
		_, _ = io.Copy(w, body)
		return
	}

	done := make(chan struct{})
	defer close(done)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				flusher.Flush()
			case <-done:
				return
			}
		}
	}()
	_, _ = io.Copy(w, body)
	flusher.Flush()
}

// rebaseURI strips the incoming scheme/authority and replaces them with
// base's, joining base's path onto the request's path.
func rebaseURI(req *http.Request, base *url.URL) {
	req.URL.Scheme = base.Scheme
	req.URL.Host = base.Host
	req.Host = base.Host
	req.URL.Path, req.URL.RawPath = joinPath(base.EscapedPath(), req.URL.EscapedPath())
	req.URL.RawQuery = joinQuery(base.RawQuery, req.URL.RawQuery)
}

func joinPath(basePath, reqPath string) (path, rawPath string) {
	switch {
	case strings.HasSuffix(basePath, "/") && strings.HasPrefix(reqPath, "/"):
		rawPath = basePath + reqPath[1:]
	case !strings.HasSuffix(basePath, "/") && !strings.HasPrefix(reqPath, "/"):
		rawPath = basePath + "/" + reqPath
	default:
		rawPath = basePath + reqPath
	}
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return rawPath, rawPath
	}
	return unescaped, rawPath
}

func joinQuery(baseQuery, reqQuery string) string {
	switch {
	case baseQuery == "":
		return reqQuery
	case reqQuery == "":
		return baseQuery
	default:
		return baseQuery + "&" + reqQuery
	}
}
