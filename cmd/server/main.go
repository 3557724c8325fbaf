// Command server is a worked example wiring every httpmw layer into one
// gin-routed HTTP server: request tracing, header manipulation,
// authorization, CORS, compression, static file serving and a reverse
// proxy. It follows the teacher's cmd/proxy: a cobra command that loads
// a .env file, applies flag overrides onto the environment, then hands
// off to internal/config and internal/logging for the rest.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sofatutor/httpmw/internal/config"
	"github.com/sofatutor/httpmw/internal/logging"
)

var (
	envFile    string
	listenAddr string
	logLevel   string
	logFile    string
	debugMode  bool
)

// For testing: allow overriding process-exit and signal wiring the way
// the teacher's cmd/proxy does (osExit, signalNotifyFunc).
var (
	osExit           = os.Exit
	signalNotifyFunc = signal.Notify
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the httpmw demo server",
	Long:  `Start an HTTP server exercising every httpmw layer: tracing, headers, auth, CORS, compression, static files and a reverse proxy.`,
	Run:   runServer,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env", config.EnvOrDefault("ENV", ".env"), "Path to .env file")
	rootCmd.Flags().StringVar(&listenAddr, "addr", "", "Address to listen on (overrides LISTEN_ADDR)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file (overrides LOG_FILE, default: stdout)")
	rootCmd.Flags().BoolVarP(&debugMode, "debug", "v", false, "Enable debug logging (overrides log-level)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("warning: error loading %s: %v", envFile, err)
		} else {
			log.Printf("loaded environment from %s", envFile)
		}
	}

	if listenAddr != "" {
		_ = os.Setenv("LISTEN_ADDR", listenAddr)
	}
	if logLevel != "" {
		_ = os.Setenv("LOG_LEVEL", logLevel)
	}
	if logFile != "" {
		_ = os.Setenv("LOG_FILE", logFile)
	}
	if debugMode || os.Getenv("DEBUG") == "1" {
		_ = os.Setenv("LOG_LEVEL", "debug")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logging.NewLogger(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if ln, err := net.Listen("tcp", cfg.ListenAddr); err != nil {
		zapLogger.Fatal("listen address unavailable", zap.String("addr", cfg.ListenAddr), zap.Error(err))
	} else {
		_ = ln.Close()
	}

	srv, err := newServer(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build server", zap.Error(err))
	}

	done := make(chan os.Signal, 1)
	signalNotifyFunc(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	zapLogger.Info("press ctrl+c to stop")
	<-done
	zapLogger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("server exited gracefully")
}
