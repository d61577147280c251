package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"BillAnalyzer/internal/config"
	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
	"BillAnalyzer/internal/usecase"
)

// Runtime is the part of the composition root the commands drive.
type Runtime interface {
	Lookup(ctx context.Context, id domain.BillIdentifier) (usecase.LookupResult, error)
	RunBatch(ctx context.Context, ids []domain.BillIdentifier, progress ports.ProgressReporter) ([]domain.BatchRow, error)
	Serve(ctx context.Context, addr string) error
}

// Factory builds a Runtime from the effective configuration.
type Factory func(cfg config.Config, log *slog.Logger) (Runtime, error)

type rootOptions struct {
	configPath string
	logLevel   string
	factory    Factory
}

// NewRootCommand assembles the billanalyzer command tree.
func NewRootCommand(factory Factory) *cobra.Command {
	opts := &rootOptions{factory: factory}

	root := &cobra.Command{
		Use:   "billanalyzer",
		Short: "Look up ALESP bills and analyze them with Gemini",
		Long: `Looks up bills of the São Paulo State Legislative Assembly by number and year,
downloads the bill PDF and asks Gemini for a structured legislative opinion.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newLookupCommand(opts), newBatchCommand(opts), newServeCommand(opts))
	return root
}

// loadConfig reads the config file named by --config and applies --log-level.
func (o *rootOptions) loadConfig() config.Config {
	cfg := config.LoadFile(o.configPath)
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg
}

// runtime builds a Runtime whose logs go to the command's stderr.
func (o *rootOptions) runtime(cmd *cobra.Command, cfg config.Config) (Runtime, error) {
	if o.factory == nil {
		return nil, fmt.Errorf("runtime factory is not configured")
	}
	logger := logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	return o.factory(cfg, logger)
}
