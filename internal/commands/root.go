package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campaign-data/donagg/internal/buildinfo"
	"github.com/campaign-data/donagg/internal/config"
)

const flagConfig = "config"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "donagg",
		Short:   "Aggregate political donations by organization, recipient and month",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().String(config.FlagLogLevel, "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAggregateCommand())
	rootCmd.AddCommand(newScoreCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// loadConfig builds the effective config for cmd: defaults, then the
// --config file if given, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
