package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/logger"

	"log/slog"
)

// App is the minimal interface required to serve the webhook runtime.
type App interface {
	Handler() http.Handler
	Shutdown(ctx context.Context) error
}

// Options describe how to load configuration, build the app, and run it.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (*coreconfig.Config, error)
	Build      func(cfg *coreconfig.Config) (App, error)

	ShutdownLogger  func() error
	ShutdownTimeout time.Duration
}

// Run loads configuration, builds the application, and serves it until
// an interrupt or termination signal arrives.
func Run(opts Options) error {
	if opts.LoadConfig == nil {
		return fmt.Errorf("cmd: LoadConfig is required")
	}
	if opts.Build == nil {
		return fmt.Errorf("cmd: Build is required")
	}

	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}
	if cfgPath == "" {
		return fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := opts.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	startedAt := time.Now()
	application, err := opts.Build(cfg)
	if err != nil {
		return fmt.Errorf("cmd: build failed: %w", err)
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Listen, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "app", "ready",
			slog.String("listen", addr),
			slog.Duration("duration_ms", logger.RoundMS(time.Since(startedAt))),
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("cmd: serve failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "app", "shutdown")

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	stopCtx, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()

	if err := server.Shutdown(stopCtx); err != nil {
		logger.Warn(stopCtx, "app", "shutdown.http",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	if err := application.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("cmd: app shutdown failed: %w", err)
	}
	return nil
}
