package compression

import (
	"compress/flate"
	"compress/gzip"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/sofatutor/httpmw/encoding"
)

// encoderFactory builds a streaming compressor writing to w.
type encoderFactory func(w io.Writer) (io.WriteCloser, error)

// decoderFactory builds a streaming decompressor reading from r.
type decoderFactory func(r io.Reader) (io.ReadCloser, error)

var encoders = map[encoding.Encoding]encoderFactory{
	encoding.Gzip: func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	},
	encoding.Deflate: func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	},
	encoding.Brotli: func(w io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriter(w), nil
	},
	encoding.Zstd: func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	},
}

var decoders = map[encoding.Encoding]decoderFactory{
	encoding.Gzip: func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	encoding.Deflate: func(r io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(r), nil
	},
	encoding.Brotli: func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
	encoding.Zstd: func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &zstdDecoderCloser{dec}, nil
	},
}

// zstdDecoderCloser adapts *zstd.Decoder (Close() with no return value) to
// io.ReadCloser.
type zstdDecoderCloser struct{ *zstd.Decoder }

func (z *zstdDecoderCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// Supported reports whether enc has a registered encoder/decoder pair, or
// is Identity (which needs none).
func Supported(enc encoding.Encoding) bool {
	_, ok := encoders[enc]
	return ok || enc == encoding.Identity
}
