package classify

import (
	"fmt"
	"net/http"
	"strconv"
)

// GRPCFailure is the failure class GRPCStatus and its end-of-stream
// counterpart return. Message carries the grpc-message trailer value when
// one accompanied the status, a detail the original classifier's Code
// variant didn't carry but that is worth keeping for tracing/logging.
type GRPCFailure struct {
	Code    int
	Message string
}

func (f *GRPCFailure) Reason() string {
	if f.Message != "" {
		return fmt.Sprintf("grpc-status %d: %s", f.Code, f.Message)
	}
	return fmt.Sprintf("grpc-status %d", f.Code)
}

// GRPCStatus classifies gRPC responses by the grpc-status pseudo-trailer,
// which servers may send as a regular header (trailers-only response) or
// as an actual HTTP trailer. The header form is checked first; if absent,
// classification defers to end-of-stream. A header present but not a valid
// integer is treated as success, matching the original classifier's
// leniency (it only ever rejects a parseable, non-success code).
type GRPCStatus struct {
	successCodes map[int]bool
}

// NewGRPCStatus builds a GRPCStatus whose success set always includes code
// 0 (OK) plus any additional codes given.
func NewGRPCStatus(extraSuccessCodes ...int) GRPCStatus {
	m := map[int]bool{0: true}
	for _, c := range extraSuccessCodes {
		m[c] = true
	}
	return GRPCStatus{successCodes: m}
}

func (c GRPCStatus) classify(h http.Header) (outcome Outcome, failure FailureClass) {
	raw := h.Get("grpc-status")
	if raw == "" {
		return NeedsEndOfStream, nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return Success, nil
	}
	if c.successCodes[code] {
		return Success, nil
	}
	return Failure, &GRPCFailure{Code: code, Message: h.Get("grpc-message")}
}

func (c GRPCStatus) ClassifyResponse(resp *http.Response) Result {
	outcome, failure := c.classify(resp.Header)
	if outcome == NeedsEndOfStream {
		return Result{Outcome: NeedsEndOfStream, EndOfStream: grpcEndOfStream{c}}
	}
	return Result{Outcome: outcome, Failure: failure}
}

func (c GRPCStatus) ClassifyError(err error) FailureClass {
	return &ErrorFailure{Err: err}
}

// MakeGRPCStatus is the MakeClassifier for GRPCStatus.
func MakeGRPCStatus(extraSuccessCodes ...int) MakeClassifier {
	return Shared(NewGRPCStatus(extraSuccessCodes...))
}

type grpcEndOfStream struct{ c GRPCStatus }

func (e grpcEndOfStream) ClassifyEndOfStream(trailer http.Header) FailureClass {
	if trailer == nil {
		return nil
	}
	_, failure := e.c.classify(trailer)
	return failure
}

func (e grpcEndOfStream) ClassifyError(err error) FailureClass {
	return &ErrorFailure{Err: err}
}
