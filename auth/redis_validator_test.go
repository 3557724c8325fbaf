package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniredisValidator(t *testing.T) (*RedisTokenValidator, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &RedisTokenValidator{Client: client, KeyPrefix: "token:"}, s
}

func TestRedisTokenValidator_AuthorizesKnownToken(t *testing.T) {
	validator, mr := newMiniredisValidator(t)
	require.NoError(t, mr.Set("token:abc123", "user-42"))

	h := CustomAsync(validator, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		output, _ := OutputFromContext(r.Context())
		if output != "user-42" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRedisTokenValidator_RejectsUnknownToken(t *testing.T) {
	validator, _ := newMiniredisValidator(t)

	h := CustomAsync(validator, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedisTokenValidator_RejectsMissingAuthorizationHeader(t *testing.T) {
	validator, _ := newMiniredisValidator(t)

	h := CustomAsync(validator, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
