package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/logger"
)

// NewRootCmd creates the root cobra command for the board-service binary.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "board-service",
		Short:         "Bulletin board API server",
		Long:          "Bulletin board API server: posts with comments, expired after a retention period.\n\nConfiguration is read from the environment and an optional .env file.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("env", ".env", "path to an optional .env file")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newServeCmd())
	root.AddCommand(newSweepCmd())

	return root
}

// setup reads configuration and builds the logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env")

	conf, err := config.New(envFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(conf.Log, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}
	return conf, log, nil
}
