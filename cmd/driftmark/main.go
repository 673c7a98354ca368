// Package main provides the entry point for the driftmark CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	driftmarkcmd "github.com/mverett/driftmark/internal/cmd/driftmark"
	"github.com/mverett/driftmark/internal/platform/otel"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	shutdown, err := otel.Setup(ctx, "driftmark")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "otel shutdown: %v\n", err)
		}
	}()

	rootCmd, err := driftmarkcmd.NewRoot(version)
	if err != nil {
		return err
	}
	return rootCmd.ExecuteContext(ctx)
}
