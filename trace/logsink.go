package trace

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sofatutor/httpmw/classify"
	"github.com/sofatutor/httpmw/internal/logging"
)

// LogSink emits the span contract of spec §4.6 as structured zap fields,
// following the teacher's canonical field-name constants
// (internal/logging.Field*) so trace output lines up with every other
// component's logs.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

func (s LogSink) OnRequest(ctx *SpanContext) {
	s.logger().Debug("request started", s.baseFields(ctx)...)
}

func (s LogSink) OnResponse(ctx *SpanContext, result classify.Result) {
	fields := append(s.baseFields(ctx), zap.Duration(logging.FieldDurationMs, time.Since(ctx.StartedAt)))
	switch result.Outcome {
	case classify.Failure:
		fields = append(fields, zap.String(logging.FieldErrorMessage, result.Failure.Reason()))
		s.logger().Warn("request failed", fields...)
	case classify.NeedsEndOfStream:
		s.logger().Debug("request response head received, awaiting end of stream", fields...)
	default:
		s.logger().Info("request completed", fields...)
	}
}

func (s LogSink) OnBodyChunk(ctx *SpanContext, n int, latency time.Duration) {
	s.logger().Debug("response chunk",
		zap.String(logging.FieldRequestID, ctx.RequestID),
		zap.Int("chunk_bytes", n),
		zap.Duration("chunk_latency_ms", latency),
	)
}

func (s LogSink) OnEndOfStream(ctx *SpanContext, trailer http.Header, failure classify.FailureClass) {
	fields := append(s.baseFields(ctx), zap.Duration("stream_duration_ms", time.Since(ctx.StreamedAt)))
	if failure != nil {
		fields = append(fields, zap.String(logging.FieldErrorMessage, failure.Reason()))
		s.logger().Warn("stream ended in failure", fields...)
		return
	}
	s.logger().Info("stream completed", fields...)
}

func (s LogSink) OnFailure(ctx *SpanContext, at FailurePoint, failure classify.FailureClass) {
	fields := append(s.baseFields(ctx),
		zap.String("failed_at", at.String()),
		zap.String(logging.FieldErrorMessage, failure.Reason()),
	)
	s.logger().Error("request exchange failed", fields...)
}

func (s LogSink) baseFields(ctx *SpanContext) []zap.Field {
	return []zap.Field{
		zap.String(logging.FieldMethod, ctx.Method),
		zap.String(logging.FieldRoute, ctx.Route),
		zap.String(logging.FieldVersion, ctx.Version),
		zap.String(logging.FieldClientIP, ctx.ClientIP),
		zap.String(logging.FieldUserAgent, ctx.UserAgent),
		zap.String(logging.FieldRequestID, ctx.RequestID),
	}
}

var _ Sink = LogSink{}
