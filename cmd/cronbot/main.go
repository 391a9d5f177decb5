// Package main is the entry point for the cronbot CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/flemzord/cronbot/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("cronbot failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cronbot",
		Short:         "Triggers snapshot and cleanup jobs and reports them on Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to an optional YAML configuration file")
	root.PersistentFlags().StringSlice("env-file", []string{".env"}, "Dotenv files loaded before reading the environment")
	root.AddCommand(versionCmd(), startCmd(), configCmd(), serviceCmd())
	return root
}

// runParams collects the persistent flags.
func runParams(cmd *cobra.Command) app.RunParams {
	cfgPath, _ := cmd.Flags().GetString("config")
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	return app.RunParams{
		ConfigPath: cfgPath,
		EnvFiles:   envFiles,
		Version:    version,
		Commit:     commit,
		Date:       date,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cronbot %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler and the Telegram bot in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(context.Background(), runParams(cmd))
		},
	}
}
