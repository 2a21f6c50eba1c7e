// Package cli implements the skrbnik command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/erazemk/skrbnik/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	LogPath    string
}

// NewRootCommand creates the root command for the skrbnik CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "skrbnik",
		Short: "skrbnik - supply chain custody ledger",
		Long: `skrbnik records the custody chain of physical items: who produced them,
who holds them, where they have been and which certifications they carry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.DBPath, "db", "d", "", "SQLite database path (overrides config)")
	cmd.PersistentFlags().StringVarP(&opts.LogPath, "log", "l", "", "log file path (overrides config)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAccountCommand(opts))

	return cmd
}

// load resolves the effective configuration: file and environment first,
// then any global flags the user set.
func (o *RootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.DBPath
	}
	if flags.Changed("log") {
		cfg.LogPath = o.LogPath
	}
	return cfg, cfg.Validate()
}
