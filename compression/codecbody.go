package compression

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sofatutor/httpmw/body"
	"github.com/sofatutor/httpmw/encoding"
)

// CodecError tags an error raised by the codec stream itself — malformed
// compressed input, an encoder write failure — as opposed to one forwarded
// verbatim from the body being compressed or decompressed. Callers that
// need to tell "upstream broke" from "the bytes were garbage" switch on
// errors.As against this type.
type CodecError struct {
	Encoding encoding.Encoding
	Err      error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("compression: %s codec error: %v", e.Encoding, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// attributingReader records the last non-EOF error Read returned, so the
// caller can later tell whether a failure reported by a consumer (a codec's
// internal Copy) originated here or further downstream.
type attributingReader struct {
	r   io.Reader
	err error
}

func (a *attributingReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		a.err = err
	}
	return n, err
}

// pipeBody is a Body whose Close also closes a second resource (the reader
// over the inner body feeding the codec), so an early abort by the consumer
// unblocks and releases the producer side too. CompressBody uses it over
// an io.PipeReader fed by a goroutine; DecompressBody over the decoder.
type pipeBody struct {
	body.Body
	extra io.Closer
}

func (b *pipeBody) Close() error {
	err1 := b.Body.Close()
	err2 := b.extra.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// CompressBody returns a Body that streams inner through the compressor
// for enc, without buffering the whole body in memory. Trailers observed on
// inner are forwarded after the compressed stream ends. This is the "codec
// body wrapper" of spec §4.4, used directly by packages that already hold a
// body.Body (gateway); the net/http Compress layer uses compressWriter
// instead, since it already has a push-based io.Writer to drive.
func CompressBody(inner body.Body, enc encoding.Encoding) (body.Body, error) {
	factory, ok := encoders[enc]
	if !ok {
		return nil, fmt.Errorf("compression: no encoder registered for %s", enc)
	}

	var trailer http.Header
	innerReader := body.ToReader(inner, func(h http.Header) { trailer = h })
	src := &attributingReader{r: innerReader}

	pr, pw := io.Pipe()
	compressor, err := factory(pw)
	if err != nil {
		_ = innerReader.Close()
		return nil, err
	}

	go func() {
		_, copyErr := io.Copy(compressor, src)
		if copyErr != nil {
			if src.err != nil && errors.Is(copyErr, src.err) {
				pw.CloseWithError(copyErr)
				return
			}
			pw.CloseWithError(&CodecError{Encoding: enc, Err: copyErr})
			return
		}
		if closeErr := compressor.Close(); closeErr != nil {
			pw.CloseWithError(&CodecError{Encoding: enc, Err: closeErr})
			return
		}
		pw.Close()
	}()

	out := body.FromReader(pr, body.Unknown(), func() http.Header { return trailer })
	return &pipeBody{Body: out, extra: innerReader}, nil
}

// DecompressBody returns a Body that streams inner through the decompressor
// for enc. Unlike encoding, decoders in this package read directly from the
// source (no goroutine/pipe is needed since every decoderFactory here
// accepts an io.Reader it pulls from lazily).
func DecompressBody(inner body.Body, enc encoding.Encoding) (body.Body, error) {
	factory, ok := decoders[enc]
	if !ok {
		return nil, fmt.Errorf("compression: no decoder registered for %s", enc)
	}

	var trailer http.Header
	innerReader := body.ToReader(inner, func(h http.Header) { trailer = h })
	src := &attributingReader{r: innerReader}

	decoder, err := factory(src)
	if err != nil {
		_ = innerReader.Close()
		if src.err != nil && errors.Is(err, src.err) {
			return nil, err
		}
		return nil, &CodecError{Encoding: enc, Err: err}
	}

	wrapped := body.FromReader(decoder, body.Unknown(), func() http.Header { return trailer })
	attributed := body.MapError(wrapped, func(err error) error {
		if src.err != nil && errors.Is(err, src.err) {
			return err
		}
		return &CodecError{Encoding: enc, Err: err}
	})
	return &pipeBody{Body: attributed, extra: innerReader}, nil
}
