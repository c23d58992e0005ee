package cli

import (
	"github.com/spf13/cobra"

	"github.com/gfdmit/web-forum/board-service/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the retention sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := setup(cmd)
			if err != nil {
				return err
			}

			if err := app.Run(cmd.Context(), *conf, log); err != nil {
				return err
			}
			log.Info("[SHUTDOWN] service shut down gracefully")
			return nil
		},
	}
}
