package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gfdmit/web-forum/board-service/internal/app"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired posts once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := setup(cmd)
			if err != nil {
				return err
			}

			deleted, err := app.Sweep(cmd.Context(), *conf, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d posts\n", deleted)
			return nil
		},
	}
}
