package gateway

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHopByHop_RemovesDefaultSet(t *testing.T) {
	h := http.Header{}
	h.Set("Keep-Alive", "timeout=5")
	h.Set("Proxy-Authenticate", "Basic")
	h.Set("Proxy-Authorization", "Basic abc")
	h.Set("Upgrade", "websocket")
	h.Set("Te", "trailers")
	h.Set("Transfer-Encoding", "chunked")
	h.Set("Trailer", "X-Checksum")
	h.Set("Connection", "close")
	h.Set("Content-Type", "text/plain")

	stripHopByHop(h)

	for _, name := range []string{"Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
		"Upgrade", "Te", "Transfer-Encoding", "Trailer", "Connection"} {
		assert.Empty(t, h.Get(name), name)
	}
	assert.Equal(t, "text/plain", h.Get("Content-Type"))
}

func TestStripHopByHop_RemovesHeadersNamedInConnection(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "X-Foo, X-Bar")
	h.Set("X-Foo", "1")
	h.Set("X-Bar", "2")
	h.Set("X-Baz", "3")

	stripHopByHop(h)

	assert.Empty(t, h.Get("X-Foo"))
	assert.Empty(t, h.Get("X-Bar"))
	assert.Equal(t, "3", h.Get("X-Baz"))
}

func TestStripHopByHop_PreservesBodyFramingHeadersWhenNamedInConnection(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "Transfer-Encoding, Trailer")
	h.Set("Transfer-Encoding", "chunked")
	h.Set("Trailer", "X-Checksum")
	h.Set("Te", "trailers")

	stripHopByHop(h)

	assert.Equal(t, "chunked", h.Get("Transfer-Encoding"))
	assert.Equal(t, "X-Checksum", h.Get("Trailer"))
	assert.Empty(t, h.Get("Te"))
}
