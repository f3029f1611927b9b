package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// defaultConfigPath is used when neither --config nor HOMEHUB_CONFIG is set
// and the file exists.
const defaultConfigPath = "configs/config.yaml"

// NewRootCmd creates the root command for the HomeHub CLI. Run without a
// subcommand it behaves like serve.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "homehub",
		Short: "HomeHub Core - home automation backend",
		Long: `HomeHub Core manages user accounts, locations, rooms and lights
behind a token-authenticated HTTP API backed by SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file path (default $HOMEHUB_CONFIG, then "+defaultConfigPath+" if present)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewKeygenCmd())

	return cmd
}

// resolveConfigPath picks the YAML file to load. An empty result means
// configuration comes from the environment alone.
func resolveConfigPath() string {
	if configFile != "" {
		return configFile
	}
	if path := os.Getenv("HOMEHUB_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}
