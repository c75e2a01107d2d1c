package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthurdotwork/signaling/cmd"
	"github.com/arthurdotwork/signaling/internal/infrastructure/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Config(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sig
		slog.DebugContext(ctx, "received signal, initiating shutdown")
		cancel()
	}()

	root := &cobra.Command{
		Use:          "signaling",
		Short:        "Room and presence signaling server for the collaborative IDE",
		SilenceUsage: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Server(ctx, c)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "server",
		Short: "Run the signaling server",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Server(ctx, c)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "client",
		Short: "Interactive client for manual testing",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Client(ctx, c)
		},
	})

	if err := root.ExecuteContext(ctx); err != nil {
		slog.ErrorContext(ctx, "error running command", "error", err)
		os.Exit(1)
	}
}
