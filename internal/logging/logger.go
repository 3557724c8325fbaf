// Package logging provides the structured logger shared by every httpmw
// layer and the example binaries under cmd/. Layers never construct their
// own zap.Logger; they accept one (defaulting to zap.NewNop() when absent)
// so applications control format, level, and destination in one place.
package logging

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyRoute     ctxKey = "route"
	ctxKeyClientIP  ctxKey = "client_ip"
	ctxKeyUserAgent ctxKey = "user_agent"
)

// Canonical field names used by the trace package's LogSink so that
// every emission point agrees on a vocabulary (see spec §4.6's span
// contract: method, route, version, client_ip, user_agent, status_code,
// request_id, error_message).
const (
	FieldMethod        = "method"
	FieldRoute         = "route"
	FieldVersion       = "version"
	FieldStatusCode    = "status_code"
	FieldDurationMs    = "duration_ms"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldUserAgent     = "user_agent"
	FieldErrorMessage  = "error_message"
	FieldEncoding      = "encoding"
	FieldGRPCStatus    = "grpc_status"
	FieldRedirectCount = "redirect_count"
)

// Config controls level, encoding, and destination for NewLogger.
type Config struct {
	Level      string // debug, info, warn, error (default info)
	Format     string // json or console (default json)
	FilePath   string // empty writes to stdout
	MaxSizeMB  int    // file rotation threshold, default 10MB
	MaxBackups int    // rotated files kept, default 5
}

// NewLogger builds a zap.Logger from cfg. A zero-value Config yields an
// info-level JSON logger on stdout.
func NewLogger(cfg Config) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
	}

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	ws, err := newSink(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxBackups)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, ws, lvl)
	return zap.New(core), nil
}

// WithContext appends any request-scoped fields carried in ctx.
func WithContext(logger *zap.Logger, ctx context.Context) *zap.Logger {
	fields := ExtractContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// ExtractContextFields reads request-id/route/client-ip/user-agent out of ctx.
func ExtractContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok && v != "" {
		fields = append(fields, zap.String(FieldRequestID, v))
	}
	if v, ok := ctx.Value(ctxKeyRoute).(string); ok && v != "" {
		fields = append(fields, zap.String(FieldRoute, v))
	}
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok && v != "" {
		fields = append(fields, zap.String(FieldClientIP, v))
	}
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok && v != "" {
		fields = append(fields, zap.String(FieldUserAgent, v))
	}
	return fields
}

// WithRequestID stashes the request id for later ExtractContextFields calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// WithRoute stashes the matched route template.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

// WithClientIP stashes the resolved client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// WithUserAgent stashes the request's User-Agent.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// GetRequestID extracts a request id previously stored with WithRequestID.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}
