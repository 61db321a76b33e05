package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the points ledger over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if addr == "" {
				addr = e.cfg.ServerAddr
			}
			srv := server.New(e.ledger, e.bus, e.logger)
			return srv.Run(ctx, addr)
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8787)")
}
