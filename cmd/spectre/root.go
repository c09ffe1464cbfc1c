package main

import (
	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	dbPath     string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "spectre",
		Short: "Capture JSON API traffic and serve it back as a queryable REST API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(flags.logLevel, flags.logFormat)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to spectre.yaml")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database path (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "console", "log format (console, json)")

	cmd.AddCommand(
		newWatchCmd(flags),
		newAnalyzeCmd(flags),
		newServeCmd(flags),
		newCleanCmd(flags),
		newInitCmd(flags),
		newMCPCmd(flags),
		newVersionCmd(),
	)

	return cmd
}
