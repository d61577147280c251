package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"BillAnalyzer/internal/app"
	"BillAnalyzer/internal/cli"
	"BillAnalyzer/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(func(cfg config.Config, logger *slog.Logger) (cli.Runtime, error) {
		application, err := app.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		return application, nil
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
