package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/provquery/internal/domain/query/plan"
	logpkg "github.com/kailas-cloud/provquery/internal/logger"
	"github.com/kailas-cloud/provquery/internal/metrics"
	compileuc "github.com/kailas-cloud/provquery/internal/usecase/compile"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	PerPage    int
	MaxPerPage int
	Sort       string
}

// buildOutput is the JSON shape printed by build --format json.
type buildOutput struct {
	Query        string   `json:"query"`
	FilterFields []string `json:"filter_fields"`
	Vector       string   `json:"vector,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <plan.yaml|->",
		Short: "Compile a query plan file to a query string",
		Long: `Compile a YAML or JSON query plan and print the resulting query string.

Use "-" to read the plan from stdin.

Example:
  provquery build ./plans/cardiology.yaml
  echo '{"ops":[{"op":"vector","field":"name","value":"Smith"}]}' | provquery build -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "per_page applied when the plan sets none (0 = none)")
	cmd.Flags().IntVar(&opts.MaxPerPage, "max-per-page", 0, "upper bound for per_page (0 = unbounded)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort applied when the plan sets none")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *BuildOptions, path string) error {
	logger, err := newLogger(opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := readPlan(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	p, err := plan.Decode(data)
	if err != nil {
		return fmt.Errorf("decode plan %s: %w", path, err)
	}

	metrics.RegisterQueryMetrics()
	svc := compileuc.New(compileuc.Defaults{
		PerPage:    opts.PerPage,
		MaxPerPage: opts.MaxPerPage,
		Sort:       opts.Sort,
	}, compileuc.SourceCLI)

	ctx := logpkg.WithFields(logpkg.ContextWithLogger(cmd.Context(), logger), zap.String("plan", path))
	res, err := svc.Compile(ctx, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		fields := res.FilterFields
		if fields == nil {
			fields = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(buildOutput{Query: res.Query, FilterFields: fields, Vector: res.Vector})
	}
	_, err = fmt.Fprintln(out, res.Query)
	return err
}

func readPlan(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read plan from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return data, nil
}
