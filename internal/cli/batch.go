package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/infrastructure/tabular"
	"BillAnalyzer/internal/ports"
)

type batchOptions struct {
	in          string
	out         string
	concurrency int
}

func newBatchCommand(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every bill listed in a CSV file",
		Long: `Reads a CSV with "numero" and "ano" columns and writes it back with the
five analysis columns appended. The output format follows the --out extension (.csv or .xlsx).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "", "input CSV path")
	cmd.Flags().StringVar(&opts.out, "out", "", "output path (.csv or .xlsx)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "rows processed in parallel (default from config)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *batchOptions) error {
	table, err := tabular.ReadFile(opts.in)
	if err != nil {
		return err
	}

	cfg := root.loadConfig()
	if cmd.Flags().Changed("concurrency") && opts.concurrency > 0 {
		cfg.Batch.Concurrency = opts.concurrency
	}
	rt, err := root.runtime(cmd, cfg)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	progress := ports.ProgressFunc(func(processed, total int) {
		fmt.Fprintf(stderr, "\rprocessed %d/%d", processed, total)
		if processed == total {
			fmt.Fprintln(stderr)
		}
	})

	rows, err := rt.RunBatch(cmd.Context(), table.Identifiers(), progress)
	if err != nil {
		return fmt.Errorf("batch aborted: %w", err)
	}

	out, err := table.Merge(rows)
	if err != nil {
		return err
	}
	if err := tabular.WriteFile(opts.out, out); err != nil {
		return err
	}

	summary := domain.Summarize(rows)
	cmd.Printf("%d rows, %d analyzed, %d failed -> %s\n", summary.Total, summary.Succeeded, summary.Total-summary.Succeeded, opts.out)
	return nil
}
