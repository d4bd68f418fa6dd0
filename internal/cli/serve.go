package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/provquery/internal/config"
	logpkg "github.com/kailas-cloud/provquery/internal/logger"
	"github.com/kailas-cloud/provquery/internal/metrics"
	chiTransport "github.com/kailas-cloud/provquery/internal/transport/chi"
	compileuc "github.com/kailas-cloud/provquery/internal/usecase/compile"
	"github.com/kailas-cloud/provquery/internal/version"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
	Port       int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the query compilation HTTP API",
		Long: `Start the HTTP API that compiles query plans to query strings.

Configuration is read from config/<env>.yaml unless --config is given.

Example:
  ENV=prod provquery serve
  provquery serve --config ./config/local.yaml --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to config file (overrides --env lookup)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "HTTP port (overrides config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	env := resolveEnv(opts.RootOptions)

	var (
		cfg config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFile(opts.ConfigPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Port > 0 {
		cfg.HTTP.Port = opts.Port
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting provquery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("default_per_page", cfg.Query.DefaultPerPage),
		zap.Int("max_per_page", cfg.Query.MaxPerPage),
	)

	metrics.RegisterQueryMetrics()

	compiler := compileuc.New(compileuc.Defaults{
		PerPage:    cfg.Query.DefaultPerPage,
		MaxPerPage: cfg.Query.MaxPerPage,
		Sort:       cfg.Query.DefaultSort,
	}, compileuc.SourceHTTP)
	server := chiTransport.NewServer(compiler, cfg.HTTP.MaxBodyBytes, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
