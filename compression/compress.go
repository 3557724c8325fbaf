// Package compression implements the codec pipeline: negotiated response
// compression, request/response decompression, and the streaming codec body
// wrapper (CompressBody/DecompressBody) that other packages (gateway) build
// on when they already hold a body.Body rather than a raw net/http stream.
package compression

import (
	"io"
	"net/http"
	"strconv"

	"github.com/sofatutor/httpmw/encoding"
)

// Config controls both the compression and decompression middlewares.
type Config struct {
	// MinSize is the smallest response body (by Content-Length, when known)
	// worth compressing. Default 32 bytes per spec §4.4.
	MinSize int
	// Supported lists the encodings this instance may produce or accept, in
	// no particular order; Policy breaks ties.
	Supported []encoding.Encoding
	// Policy selects among Supported given a request's Accept-Encoding.
	// Defaults to encoding.DefaultPolicy{}.
	Policy encoding.Policy
	// RejectUnsupported, for decompression, makes an unrecognized
	// Content-Encoding a 415 instead of a pass-through.
	RejectUnsupported bool
}

func (c Config) policy() encoding.Policy {
	if c.Policy != nil {
		return c.Policy
	}
	return encoding.DefaultPolicy{}
}

func (c Config) minSize() int {
	if c.MinSize > 0 {
		return c.MinSize
	}
	return 32
}

// Compress returns a layer that compresses response bodies using the
// encoding negotiated from the request's Accept-Encoding header, per
// spec §4.4. It does nothing if the handler already set Content-Encoding,
// or if the handler declared a Content-Length smaller than Config.MinSize;
// a response without a declared Content-Length is compressed whatever its
// size.
func Compress(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enc := encoding.Negotiate(r.Header.Get("Accept-Encoding"), cfg.Supported, cfg.policy())
			cw := &compressWriter{
				ResponseWriter: w,
				enc:            enc,
				minSize:        cfg.minSize(),
			}
			defer cw.Close()
			next.ServeHTTP(cw, r)
		})
	}
}

// compressWriter defers the compress/don't-compress decision until the
// first Write (or an explicit WriteHeader), mirroring the teacher's
// buffered-decision response wrapping in internal/proxy/stream_capture.go.
type compressWriter struct {
	http.ResponseWriter
	enc         encoding.Encoding
	minSize     int
	decided     bool
	compress    bool
	encoder     io.WriteCloser
	wroteHeader bool
	statusCode  int
}

func (w *compressWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.statusCode = status
	w.decide()
	w.ResponseWriter.WriteHeader(status)
}

func (w *compressWriter) decide() {
	if w.decided {
		return
	}
	w.decided = true

	if w.statusCode == http.StatusNoContent || w.statusCode == http.StatusNotModified {
		return
	}
	h := w.Header()
	if h.Get("Content-Encoding") != "" {
		return
	}
	if w.enc == encoding.Identity || w.enc == encoding.NotAcceptable {
		return
	}
	factory, ok := encoders[w.enc]
	if !ok {
		return
	}
	if cl := h.Get("Content-Length"); cl != "" {
		if n, err := strconv.Atoi(cl); err == nil && n < w.minSize {
			return
		}
	}

	encoder, err := factory(w.ResponseWriter)
	if err != nil {
		return
	}
	w.compress = true
	w.encoder = encoder
	h.Del("Content-Length")
	h.Set("Content-Encoding", w.enc.String())
	h.Add("Vary", "Accept-Encoding")
}

func (w *compressWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.compress {
		return w.encoder.Write(p)
	}
	return w.ResponseWriter.Write(p)
}

// Flush satisfies http.Flusher, flushing the codec's internal buffer (if it
// exposes one) before flushing the underlying writer.
func (w *compressWriter) Flush() {
	if f, ok := w.encoder.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Close finalizes the codec stream, if one was started. Safe to call
// multiple times.
func (w *compressWriter) Close() error {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.compress && w.encoder != nil {
		err := w.encoder.Close()
		w.encoder = nil
		return err
	}
	return nil
}
