package main

import (
	"os"

	"github.com/JonMunkholm/listimport/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	envFile  string
	logLevel string
	json     bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "listimport",
		Short:         "Import movie and TV lists into collections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so stdout stays clean for --json.
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
			if opts.envFile != "" {
				if _, err := os.Stat(opts.envFile); err == nil {
					return godotenv.Load(opts.envFile)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load when present")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newDetectCommand(opts))
	rootCmd.AddCommand(newRunCommand(opts))

	return rootCmd
}
