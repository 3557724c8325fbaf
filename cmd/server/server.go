// Package main's server.go builds the demo HTTP server: a gin.Engine
// carrying the routes (health check, static assets, reverse-proxied
// gateway) wrapped in the full httpmw layer stack, mirroring the
// teacher's internal/server.Server (a *http.Server plus a thin
// Start/Shutdown lifecycle) and internal/admin.Server's gin.New() +
// engine.Use(...) wiring style.
package main

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sofatutor/httpmw"
	"github.com/sofatutor/httpmw/auth"
	"github.com/sofatutor/httpmw/classify"
	"github.com/sofatutor/httpmw/compression"
	"github.com/sofatutor/httpmw/cors"
	"github.com/sofatutor/httpmw/encoding"
	"github.com/sofatutor/httpmw/fileserver"
	"github.com/sofatutor/httpmw/followredirect"
	"github.com/sofatutor/httpmw/gateway"
	"github.com/sofatutor/httpmw/headers"
	"github.com/sofatutor/httpmw/internal/config"
	"github.com/sofatutor/httpmw/trace"
	"github.com/sofatutor/httpmw/validate"
)

// Version is the demo server's reported version, echoed in the health
// response.
const Version = "0.1.0"

// Server wraps an *http.Server with the lifecycle methods runServer
// expects (mirroring the teacher's internal/server.Server).
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	logger     *zap.Logger
}

// newServer builds the routed, fully-wrapped demo server from cfg.
func newServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"version":   Version,
		})
	})

	if cfg.StaticRoot != "" {
		static := fileserver.ServeDir(cfg.StaticRoot, fileserver.Config{
			AppendIndexHTML:        cfg.StaticIndexHTML,
			PrecompressedEncodings: precompressedEncodings(cfg.EnabledEncodings),
		})
		engine.Any("/static/*filepath", gin.WrapH(http.StripPrefix("/static", static)))
	}

	if cfg.GatewayTargetURL != "" {
		base, err := url.Parse(cfg.GatewayTargetURL)
		if err != nil {
			return nil, err
		}
		proxy := gateway.New(gateway.Config{
			BaseURL:          base,
			Transport:        &followredirect.Transport{Policy: followredirect.Limited(cfg.MaxRedirects)},
			FlushInterval:    100 * time.Millisecond,
			EnableXForwarded: true,
			ReceivedBy:       cfg.GatewayViaName,
			LocalAddr:        cfg.ListenAddr,
			ViaProtocol:      "HTTP/" + httpVersionFor(cfg),
		})
		guarded := validate.Middleware(validate.Accept("application/json"))(http.StripPrefix("/proxy", proxy))
		engine.Any("/proxy/*path", gin.WrapH(guarded))
	}

	handler := wrapLayers(engine, cfg, logger)

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      handler,
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
			IdleTimeout:  cfg.RequestTimeout * 2,
		},
		logger: logger,
	}, nil
}

// httpVersionFor returns the protocol version the Via header should claim
// for proxied requests; the demo always speaks HTTP/1.1 to upstreams.
func httpVersionFor(_ *config.Config) string { return "1.1" }

// precompressedEncodings maps cfg.EnabledEncodings (plain string tokens
// from the environment) onto the encoding.Encoding values fileserver
// looks for ".<ext>"-suffixed sibling files of, skipping identity and any
// token fileserver wouldn't recognize.
func precompressedEncodings(tokens []string) []encoding.Encoding {
	var out []encoding.Encoding
	for _, tok := range tokens {
		enc, isWildcard, ok := encoding.ParseToken(tok)
		if !ok || isWildcard || enc == encoding.Identity {
			continue
		}
		out = append(out, enc)
	}
	return out
}

// wrapLayers assembles the full inbound middleware stack around inner
// (the gin engine), outermost first: panic recovery, request id,
// sensitive-header marking, request tracing, body-size limiting,
// concurrency limiting, CORS, authorization, then compression closest to
// the handler so it sees the final response body.
func wrapLayers(inner http.Handler, cfg *config.Config, logger *zap.Logger) http.Handler {
	layers := []httpmw.Layer{
		headers.CatchPanic(logger, nil),
		headers.SetRequestID("X-Request-Id", headers.UUIDFactory()),
		headers.PropagateRequestID("X-Request-Id"),
		headers.SensitiveHeaders([]string{"Authorization", "Cookie"}, []string{"Set-Cookie"}),
		trace.Middleware(trace.Config{
			Classifier: classify.MakeHTTPServerErrors(),
			Sink:       trace.LogSink{Logger: logger},
		}, &trace.Counter{}),
		headers.RequestBodyLimit(cfg.MaxRequestSize),
	}

	if cfg.MaxConcurrentRequests > 0 {
		layers = append(layers, headers.NewConcurrencyLimiter(cfg.MaxConcurrentRequests).Layer())
	}

	layers = append(layers, cors.Middleware(corsConfig(cfg)))

	if cfg.BearerToken != "" {
		layers = append(layers, auth.Bearer(cfg.BearerToken))
	}

	layers = append(layers,
		compression.Decompress(compressionConfig(cfg)),
		compression.Compress(compressionConfig(cfg)),
	)

	return httpmw.Wrap(inner, layers...)
}

func corsConfig(cfg *config.Config) cors.Config {
	methods := cors.MethodsPolicy{Methods: cfg.CORSAllowedMethods}
	for _, m := range cfg.CORSAllowedMethods {
		if m == "*" {
			methods = cors.MethodsPolicy{Any: true}
			break
		}
	}

	var origin cors.OriginPolicy
	allowAny := false
	for _, o := range cfg.CORSAllowedOrigins {
		if o == "*" {
			allowAny = true
			break
		}
	}
	if allowAny {
		origin = cors.AnyOrigin()
	} else {
		origin = cors.ListOrigin(cfg.CORSAllowedOrigins...)
	}

	return cors.Config{
		AllowOrigin:   origin,
		AllowMethods:  methods,
		AllowHeaders:  cfg.CORSAllowedHeaders,
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        cfg.CORSMaxAge,
	}
}

func compressionConfig(cfg *config.Config) compression.Config {
	supported := make([]encoding.Encoding, 0, len(cfg.EnabledEncodings))
	for _, tok := range cfg.EnabledEncodings {
		enc, isWildcard, ok := encoding.ParseToken(tok)
		if !ok || isWildcard {
			continue
		}
		supported = append(supported, enc)
	}
	return compression.Config{
		MinSize:   cfg.CompressionMinSize,
		Supported: supported,
	}
}

// Start begins serving; it blocks until the server stops, returning
// http.ErrServerClosed on a clean Shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.cfg.ListenAddr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
