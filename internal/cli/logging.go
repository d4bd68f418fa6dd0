package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/provquery/internal/config"
	logpkg "github.com/kailas-cloud/provquery/internal/logger"
)

func resolveEnv(opts *RootOptions) string {
	if opts.Env != "" {
		return opts.Env
	}
	return config.GetEnv()
}

// newLogger builds the CLI logger. Without an explicit level only warnings are shown.
func newLogger(opts *RootOptions) (*zap.Logger, error) {
	level := opts.LogLevel
	if level == "" {
		level = "warn"
	}
	l, err := logpkg.NewLogger(resolveEnv(opts), level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return l, nil
}
