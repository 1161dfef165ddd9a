/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/ssargent/pxdb/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with a generated API key",
	Long: `Write a pxdb configuration file with a freshly generated API key.

Examples:
  pxdb init --tables-dir=/srv/paradox
  pxdb init --config=./pxdb.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tablesDir, _ := cmd.Flags().GetString("tables-dir")
		force, _ := cmd.Flags().GetBool("force")
		_, err := initializeConfig(cmd.OutOrStdout(), configPath, tablesDir, force)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("tables-dir", "", "Directory holding the .db files (default ./tables)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

// initializeConfig bootstraps the configuration at path unless one exists.
// It returns the configuration that is in effect afterwards.
func initializeConfig(w io.Writer, path, tablesDir string, force bool) (*config.Config, error) {
	if config.ConfigExists(path) && !force {
		color.New(color.FgYellow).Fprintf(w, "Configuration already exists at %s. Use --force to overwrite.\n", path)
		return config.LoadConfig(path)
	}

	cfg, err := config.BootstrapConfig(path, tablesDir)
	if err != nil {
		return nil, err
	}

	color.New(color.FgGreen).Fprintf(w, "Configuration written to %s\n", path)
	color.New(color.Reset).Fprintf(w, "Tables directory: %s\nMirror directory: %s\nAPI key: %s\n", cfg.TablesDir, cfg.MirrorDir, cfg.APIKey)
	return cfg, nil
}
