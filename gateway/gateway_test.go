package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_RebasesPathAndForwardsBody(t *testing.T) {
	var gotPath, gotQuery, gotHost, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHost = r.Host
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("upstream response"))
	}))
	defer upstream.Close()

	base, err := url.Parse(upstream.URL + "/api")
	require.NoError(t, err)

	h := New(Config{BaseURL: base})
	req := httptest.NewRequest(http.MethodPost, "/widgets?x=1", strings.NewReader("payload"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "upstream response", rec.Body.String())
	assert.Equal(t, "yes", rec.Header().Get("X-Upstream"))
	assert.Equal(t, "/api/widgets", gotPath)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, base.Host, gotHost)
	assert.Equal(t, "payload", gotBody)
}

func TestGateway_RejectsConnect(t *testing.T) {
	base, _ := url.Parse("http://upstream.example")
	h := New(Config{BaseURL: base})
	req := httptest.NewRequest(http.MethodConnect, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGateway_AddsForwardedHeader(t *testing.T) {
	var gotForwarded string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotForwarded = r.Header.Get("Forwarded")
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base, LocalAddr: "10.0.0.1:9000"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	req.Host = "original.example"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	elements := ParseForwarded(gotForwarded)
	require.Len(t, elements, 1)
	assert.Equal(t, "203.0.113.5:54321", elements[0].For)
	assert.Equal(t, "10.0.0.1:9000", elements[0].By)
	assert.Equal(t, "original.example", elements[0].Host)
	assert.Equal(t, "http", elements[0].Proto)
}

func TestGateway_AddsXForwardedHeadersWhenEnabled(t *testing.T) {
	var xff, xfh, xfp string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xff = r.Header.Get("X-Forwarded-For")
		xfh = r.Header.Get("X-Forwarded-Host")
		xfp = r.Header.Get("X-Forwarded-Proto")
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base, EnableXForwarded: true})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:1111"
	req.Host = "original.example"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "203.0.113.5", xff)
	assert.Equal(t, "original.example", xfh)
	assert.Equal(t, "http", xfp)
}

func TestGateway_OmitsXForwardedWhenDisabled(t *testing.T) {
	var sawXFF bool
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawXFF = r.Header.Get("X-Forwarded-For") != ""
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:1111"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, sawXFF)
}

func TestGateway_AddsViaHeader(t *testing.T) {
	var gotVia string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVia = r.Header.Get("Via")
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base, ReceivedBy: "gw1.internal"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Proto = "HTTP/1.1"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "1.1 gw1.internal", gotVia)
}

func TestGateway_NoViaWhenNothingConfigured(t *testing.T) {
	var sawVia bool
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawVia = r.Header.Get("Via") != ""
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, sawVia)
}

func TestGateway_StripsHopByHopHeadersByDefault(t *testing.T) {
	var gotKeepAlive, gotTE string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeepAlive = r.Header.Get("Keep-Alive")
		gotTE = r.Header.Get("Te")
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Keep-Alive", "timeout=5")
	req.Header.Set("Te", "trailers")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, gotKeepAlive)
	assert.Empty(t, gotTE)
}

func TestGateway_PreservesTEWhenNamedInConnection(t *testing.T) {
	var gotTE string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTE = r.Header.Get("Te")
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Connection", "Te")
	req.Header.Set("Te", "trailers")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "trailers", gotTE)
}

func TestGateway_StripsArbitraryHeaderNamedInConnection(t *testing.T) {
	var gotCustom string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCustom = r.Header.Get("X-Custom")
	}))
	defer upstream.Close()
	base, _ := url.Parse(upstream.URL)

	h := New(Config{BaseURL: base})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Connection", "X-Custom")
	req.Header.Set("X-Custom", "should-be-removed")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, gotCustom)
}
