package compression

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofatutor/httpmw/body"
	"github.com/sofatutor/httpmw/encoding"
)

func drain(t *testing.T, b body.Body) ([]byte, http.Header, error) {
	t.Helper()
	var out bytes.Buffer
	var trailer http.Header
	for {
		f, err := b.Next(context.Background())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out.Bytes(), trailer, nil
			}
			return out.Bytes(), trailer, err
		}
		if f.IsTrailer() {
			trailer = f.Trailer
			continue
		}
		out.Write(f.Data)
	}
}

func TestCompressBody_GzipRoundTrip(t *testing.T) {
	inner := body.FromReader(bytes.NewReader([]byte("the quick brown fox")), body.Unknown(), nil)
	out, err := CompressBody(inner, encoding.Gzip)
	require.NoError(t, err)

	compressed, _, err := drain(t, out)
	require.NoError(t, err)

	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	plain, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", string(plain))
}

func TestDecompressBody_GzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("payload data"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	inner := body.FromReader(bytes.NewReader(buf.Bytes()), body.Unknown(), nil)
	out, err := DecompressBody(inner, encoding.Gzip)
	require.NoError(t, err)

	plain, _, err := drain(t, out)
	require.NoError(t, err)
	assert.Equal(t, "payload data", string(plain))
}

func TestCompressBody_ForwardsTrailer(t *testing.T) {
	trailer := http.Header{"X-Checksum": []string{"abc"}}
	inner := body.FromReader(bytes.NewReader([]byte("trailer test")), body.Unknown(), func() http.Header { return trailer })
	out, err := CompressBody(inner, encoding.Gzip)
	require.NoError(t, err)

	_, gotTrailer, err := drain(t, out)
	require.NoError(t, err)
	assert.Equal(t, "abc", gotTrailer.Get("X-Checksum"))
}

type failingBody struct {
	failErr error
}

func (b *failingBody) Next(context.Context) (body.Frame, error) { return body.Frame{}, b.failErr }
func (b *failingBody) IsEndStream() bool                        { return false }
func (b *failingBody) SizeHint() body.SizeHint                  { return body.Unknown() }
func (b *failingBody) Close() error                             { return nil }

func TestCompressBody_AttributesInnerBodyError(t *testing.T) {
	innerErr := errors.New("upstream read failed")
	inner := &failingBody{failErr: innerErr}
	out, err := CompressBody(inner, encoding.Gzip)
	require.NoError(t, err)

	_, _, err = drain(t, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, innerErr))
	var codecErr *CodecError
	assert.False(t, errors.As(err, &codecErr))
}

func TestDecompressBody_AttributesInnerBodyError(t *testing.T) {
	innerErr := errors.New("upstream read failed")
	inner := &failingBody{failErr: innerErr}
	_, err := DecompressBody(inner, encoding.Gzip)
	require.Error(t, err)
	assert.True(t, errors.Is(err, innerErr))
	var codecErr *CodecError
	assert.False(t, errors.As(err, &codecErr))
}

func TestDecompressBody_MalformedInputYieldsCodecError(t *testing.T) {
	inner := body.FromReader(bytes.NewReader([]byte("not gzip data at all")), body.Unknown(), nil)
	out, err := DecompressBody(inner, encoding.Gzip)
	if err != nil {
		var codecErr *CodecError
		assert.True(t, errors.As(err, &codecErr))
		return
	}
	_, _, err = drain(t, out)
	require.Error(t, err)
	var codecErr *CodecError
	assert.True(t, errors.As(err, &codecErr))
}
