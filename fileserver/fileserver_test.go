package fileserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofatutor/httpmw/encoding"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestServeDir_ServesPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.txt", "hello world")

	h := ServeDir(dir, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello.txt", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
}

func TestServeDir_RejectsDotDot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.txt", "hello world")

	h := ServeDir(dir, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/../hello.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeDir_MethodNotAllowed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.txt", "hi")

	h := ServeDir(dir, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hello.txt", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeDir_DirectoryWithoutTrailingSlashRedirects(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub/index.html", "index")

	h := ServeDir(dir, Config{AppendIndexHTML: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sub", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/sub/", rec.Header().Get("Location"))
}

func TestServeDir_DirectoryAppendsIndexHTML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub/index.html", "index")

	h := ServeDir(dir, Config{AppendIndexHTML: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sub/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", rec.Body.String())
}

func TestServeDir_DirectoryWithoutIndexIs404(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	h := ServeDir(dir, Config{AppendIndexHTML: false})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sub/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeDir_MissingFileUsesFallback(t *testing.T) {
	dir := t.TempDir()
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	h := ServeDir(dir, Config{Fallback: fallback})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.txt", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestServeDir_PrecompressedGzipPreferred(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "plain")
	writeFile(t, dir, "app.js.gz", "gzipped-bytes")

	h := ServeDir(dir, Config{PrecompressedEncodings: []encoding.Encoding{encoding.Gzip, encoding.Brotli}})
	req := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "gzipped-bytes", rec.Body.String())
}

func TestServeDir_PrecompressedFallsBackToIdentityWhenMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "plain")

	h := ServeDir(dir, Config{PrecompressedEncodings: []encoding.Encoding{encoding.Gzip}})
	req := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "plain", rec.Body.String())
}

func TestServeDir_IfModifiedSinceReturns304(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "hello.txt", "hi")
	future := time.Now().Add(time.Hour).UTC()
	require.NoError(t, os.Chtimes(p, future, future))

	h := ServeDir(dir, Config{})
	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	req.Header.Set("If-Modified-Since", future.Format(http.TimeFormat))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestServeDir_IfUnmodifiedSinceReturns412(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "hello.txt", "hi")
	future := time.Now().Add(time.Hour).UTC()
	require.NoError(t, os.Chtimes(p, future, future))

	h := ServeDir(dir, Config{})
	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	req.Header.Set("If-Unmodified-Since", time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestServeDir_SingleRangeReturns206(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.bin", "0123456789")

	h := ServeDir(dir, Config{})
	req := httptest.NewRequest(http.MethodGet, "/data.bin", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "2345", rec.Body.String())
	assert.Equal(t, "bytes 2-5/10", rec.Header().Get("Content-Range"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
}

func TestServeDir_SuffixRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.bin", "0123456789")

	h := ServeDir(dir, Config{})
	req := httptest.NewRequest(http.MethodGet, "/data.bin", nil)
	req.Header.Set("Range", "bytes=-3")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "789", rec.Body.String())
}

func TestServeDir_MultiRangeReturns416(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.bin", "0123456789")

	h := ServeDir(dir, Config{})
	req := httptest.NewRequest(http.MethodGet, "/data.bin", nil)
	req.Header.Set("Range", "bytes=0-1,3-4")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */10", rec.Header().Get("Content-Range"))
}

func TestServeDir_UnsatisfiableRangeReturns416(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.bin", "0123456789")

	h := ServeDir(dir, Config{})
	req := httptest.NewRequest(http.MethodGet, "/data.bin", nil)
	req.Header.Set("Range", "bytes=100-200")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
}

func TestServeFile_ServesFixedFileIgnoringPath(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "only.txt", "content")

	h := ServeFile(p, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatever", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "content", rec.Body.String())
}

func TestServeDir_HeadOmitsBody(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.txt", "hello world")

	h := ServeDir(dir, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/hello.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "11", rec.Header().Get("Content-Length"))
}
