package classify

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGRPCStatus_SuccessInHead(t *testing.T) {
	c := NewGRPCStatus()
	resp := &http.Response{Header: http.Header{"Grpc-Status": []string{"0"}}}
	r := c.ClassifyResponse(resp)
	assert.Equal(t, Success, r.Outcome)
}

func TestGRPCStatus_FailureInHeadCarriesMessage(t *testing.T) {
	c := NewGRPCStatus()
	resp := &http.Response{Header: http.Header{
		"Grpc-Status":  []string{"5"},
		"Grpc-Message": []string{"not found"},
	}}
	r := c.ClassifyResponse(resp)
	require.Equal(t, Failure, r.Outcome)
	gf, ok := r.Failure.(*GRPCFailure)
	require.True(t, ok)
	assert.Equal(t, 5, gf.Code)
	assert.Equal(t, "not found", gf.Message)
}

func TestGRPCStatus_MissingHeaderDefersToEndOfStream(t *testing.T) {
	c := NewGRPCStatus()
	resp := &http.Response{Header: http.Header{}}
	r := c.ClassifyResponse(resp)
	require.Equal(t, NeedsEndOfStream, r.Outcome)
	require.NotNil(t, r.EndOfStream)

	failure := r.EndOfStream.ClassifyEndOfStream(http.Header{"Grpc-Status": []string{"13"}})
	gf, ok := failure.(*GRPCFailure)
	require.True(t, ok)
	assert.Equal(t, 13, gf.Code)
}

func TestGRPCStatus_NoTrailersIsSuccess(t *testing.T) {
	c := NewGRPCStatus()
	resp := &http.Response{Header: http.Header{}}
	r := c.ClassifyResponse(resp)
	require.Equal(t, NeedsEndOfStream, r.Outcome)

	failure := r.EndOfStream.ClassifyEndOfStream(nil)
	assert.Nil(t, failure)
}

func TestGRPCStatus_NonIntHeaderIsSuccess(t *testing.T) {
	c := NewGRPCStatus()
	resp := &http.Response{Header: http.Header{"Grpc-Status": []string{"not-a-number"}}}
	r := c.ClassifyResponse(resp)
	assert.Equal(t, Success, r.Outcome)
}

func TestGRPCStatus_ExtraSuccessCodes(t *testing.T) {
	c := NewGRPCStatus(5, 3) // NOT_FOUND, INVALID_ARGUMENT
	resp := &http.Response{Header: http.Header{"Grpc-Status": []string{"5"}}}
	r := c.ClassifyResponse(resp)
	assert.Equal(t, Success, r.Outcome)
}

func TestGRPCStatus_OKAlwaysSuccessEvenIfNotListed(t *testing.T) {
	c := NewGRPCStatus(5)
	resp := &http.Response{Header: http.Header{"Grpc-Status": []string{"0"}}}
	r := c.ClassifyResponse(resp)
	assert.Equal(t, Success, r.Outcome)
}
