package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quorumkit/quorum/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the comparison HTTP API",
	Long: `Start an HTTP server exposing POST /compare, GET /models, a health
endpoint, and Prometheus metrics.`,
	RunE: runServeCommand,
}

func initServeCommand(root *cobra.Command) {
	serveCmd.Flags().String("addr", ":8000", "listen address")
	root.AddCommand(serveCmd)
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	cfg := server.DefaultConfig()
	cfg.Addr = addr

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(buildEngine(), cfg).ListenAndServe(ctx)
}
