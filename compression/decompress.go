package compression

import (
	"io"
	"net/http"
	"strings"

	"github.com/sofatutor/httpmw/encoding"
)

// Decompress returns a layer that transparently decodes an incoming
// request body whose Content-Encoding names a supported, enabled encoding,
// per spec §4.4's server-side half. An unrecognized encoding passes through
// unchanged, or is rejected with 415 if Config.RejectUnsupported is set.
func Decompress(cfg Config) func(http.Handler) http.Handler {
	supported := supportedSet(cfg.Supported)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Content-Encoding")
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			enc, _, ok := encoding.ParseToken(token)
			if !ok || enc == encoding.Identity || !supported[enc] {
				if cfg.RejectUnsupported {
					http.Error(w, "unsupported content-encoding: "+token, http.StatusUnsupportedMediaType)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			factory, ok := decoders[enc]
			if !ok {
				if cfg.RejectUnsupported {
					http.Error(w, "unsupported content-encoding: "+token, http.StatusUnsupportedMediaType)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			decoder, err := factory(r.Body)
			if err != nil {
				http.Error(w, "malformed "+token+" request body", http.StatusBadRequest)
				return
			}
			orig := r.Body
			r.Body = &decodeBody{ReadCloser: decoder, orig: orig}
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1
			next.ServeHTTP(w, r)
		})
	}
}

// decodeBody closes both the decoder and the original request body it
// reads from.
type decodeBody struct {
	io.ReadCloser
	orig io.ReadCloser
}

func (b *decodeBody) Close() error {
	err1 := b.ReadCloser.Close()
	err2 := b.orig.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func supportedSet(list []encoding.Encoding) map[encoding.Encoding]bool {
	m := make(map[encoding.Encoding]bool, len(list))
	for _, e := range list {
		m[e] = true
	}
	return m
}

// AcceptEncodingHeader builds the Accept-Encoding value a decompressing
// client should advertise: every enabled decoder, in cfg.Supported order.
func AcceptEncodingHeader(cfg Config) string {
	tokens := make([]string, 0, len(cfg.Supported))
	for _, e := range cfg.Supported {
		if e == encoding.Identity {
			continue
		}
		tokens = append(tokens, e.String())
	}
	return strings.Join(tokens, ", ")
}

// DecompressingTransport wraps next, advertising Accept-Encoding on every
// outbound request (unless it already carries a Range header, which is
// incompatible with whole-body decompression per spec §4.4) and
// transparently decoding the response body when Content-Encoding names a
// supported encoding.
type DecompressingTransport struct {
	Next http.RoundTripper
	Cfg  Config
}

func (t *DecompressingTransport) transport() http.RoundTripper {
	if t.Next != nil {
		return t.Next
	}
	return http.DefaultTransport
}

func (t *DecompressingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Range") == "" && req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", AcceptEncodingHeader(t.Cfg))
	}

	resp, err := t.transport().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	token := resp.Header.Get("Content-Encoding")
	if token == "" {
		return resp, nil
	}
	enc, _, ok := encoding.ParseToken(token)
	if !ok || enc == encoding.Identity {
		return resp, nil
	}
	factory, ok := decoders[enc]
	if !ok {
		return resp, nil
	}
	decoder, err := factory(resp.Body)
	if err != nil {
		return resp, nil
	}
	resp.Body = &decodeBody{ReadCloser: decoder, orig: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	return resp, nil
}
