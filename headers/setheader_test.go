package headers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSetRequestHeader_Override(t *testing.T) {
	var seen string
	h := SetRequestHeader("X-Tenant", Override, Static("acme"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Tenant")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant", "other")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "acme", seen)
}

func TestSetRequestHeader_IfNotPresent(t *testing.T) {
	var seen string
	h := SetRequestHeader("X-Tenant", IfNotPresent, Static("acme"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Tenant")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant", "other")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "other", seen)
}

func TestSetRequestHeader_Append(t *testing.T) {
	var seen []string
	h := SetRequestHeader("X-Tag", Append, Static("b"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Values("X-Tag")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Add("X-Tag", "a")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestSetResponseHeader(t *testing.T) {
	h := SetResponseHeader("X-Served-By", Override, Static("app-1"))(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "app-1", rec.Header().Get("X-Served-By"))
}

func TestPropagateHeader_CopiesWhenPresent(t *testing.T) {
	h := PropagateHeader("X-Request-Id")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-Id"))
}

func TestPropagateHeader_SkipsWhenAbsent(t *testing.T) {
	h := PropagateHeader("X-Request-Id")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
}

func TestNormalizePath_TrimsTrailingSlash(t *testing.T) {
	var seen string
	h := NormalizePath()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	}))
	req := httptest.NewRequest(http.MethodGet, "/foo/bar/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "/foo/bar", seen)
}

func TestNormalizePath_LeavesRootAlone(t *testing.T) {
	var seen string
	h := NormalizePath()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "/", seen)
}

func TestSetStatus_OverridesHandlerStatus(t *testing.T) {
	h := SetStatus(http.StatusTeapot)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hi"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
}
