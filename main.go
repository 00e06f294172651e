package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "chartclient",
		Short:        "Live candlestick chart for the trading mini-game",
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newSimCmd(),
	)
	return root
}
