/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/ssargent/pxdb/pkg/api"
	"github.com/ssargent/pxdb/pkg/config"
	"github.com/ssargent/pxdb/pkg/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the read-only REST API over the tables directory.

Examples:
  pxdb serve
  pxdb serve --port=9090 --bind=0.0.0.0
  pxdb serve --no-mirror`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noMirror, _ := cmd.Flags().GetBool("no-mirror")
		serverConfig, err := serverSettings(cmd, settings)
		if err != nil {
			return err
		}

		var mirror api.Mirror
		if !noMirror {
			m, err := store.OpenMirror(store.MirrorConfig{Dir: settings.MirrorDir, Logger: logger})
			if err != nil {
				return err
			}
			defer m.Close()
			mirror = m
		}

		if serverConfig.APIKey == "" {
			logger.Warn().Msg("no API key configured, authentication is disabled")
		}
		return api.StartServer(cmd.Context(), serverConfig, mirror, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides the configuration)")
	cmd.Flags().String("bind", "", "Address to bind to (overrides the configuration)")
	cmd.Flags().String("tables-dir", "", "Directory holding the .db files (overrides the configuration)")
	cmd.Flags().Bool("no-mirror", false, "Serve without the mirror endpoints")
}

// autoAPIKey asks for a fresh key on every start.
const autoAPIKey = "auto"

// serverSettings applies the command's flags on top of cfg.
func serverSettings(cmd *cobra.Command, cfg *config.Config) (api.ServerConfig, error) {
	c := *cfg
	if cmd.Flags().Changed("port") {
		c.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		c.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("tables-dir") {
		c.TablesDir, _ = cmd.Flags().GetString("tables-dir")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return api.ServerConfig{}, errors.Newf("invalid port %d", c.Port)
	}
	if c.TablesDir == "" {
		return api.ServerConfig{}, errors.New("no tables directory configured")
	}
	if c.APIKey == autoAPIKey {
		key, err := config.GenerateSecureKey(32)
		if err != nil {
			return api.ServerConfig{}, err
		}
		c.APIKey = key
		logger.Info().Str("api_key", key).Msg("generated API key for this session; run pxdb init to persist one")
	}
	return api.ServerConfig{Addr: c.Addr(), APIKey: c.APIKey, TablesDir: c.TablesDir}, nil
}
