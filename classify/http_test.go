package classify

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPServerErrors_SuccessOn2xx(t *testing.T) {
	c := HTTPServerErrors{}
	r := c.ClassifyResponse(&http.Response{StatusCode: 200})
	assert.Equal(t, Success, r.Outcome)
}

func TestHTTPServerErrors_SuccessOn4xx(t *testing.T) {
	c := HTTPServerErrors{}
	r := c.ClassifyResponse(&http.Response{StatusCode: 404})
	assert.Equal(t, Success, r.Outcome)
}

func TestHTTPServerErrors_FailureOn5xx(t *testing.T) {
	c := HTTPServerErrors{}
	r := c.ClassifyResponse(&http.Response{StatusCode: 503})
	assert.Equal(t, Failure, r.Outcome)
	sf, ok := r.Failure.(*StatusFailure)
	assert.True(t, ok)
	assert.Equal(t, 503, sf.StatusCode)
}

func TestHTTPServerErrors_ClassifyError(t *testing.T) {
	c := HTTPServerErrors{}
	f := c.ClassifyError(errors.New("connection reset"))
	assert.Equal(t, "connection reset", f.Reason())
}
