package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stockdash/internal/logger"
	"stockdash/internal/server"
)

func newServeCmd(rc *RootConfig) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				rc.Config.Server.Port = port
			}
			srv, err := server.New(rc.Config, logger.Component(rc.Log, "server"))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, ":"+rc.Config.Server.Port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}
