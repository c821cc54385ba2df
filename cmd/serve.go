package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/meghashyamc/migemosearch/api"
	"github.com/meghashyamc/migemosearch/logger"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the index daemon (HTTP search and indexing API)",
	Long: `Run the index daemon that owns the filename index.

Launchers configured with backend.mode=remote query this daemon.

Examples:
  migemosearch serve
  migemosearch serve --port 9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Set("PORT", servePort)
		}

		return api.Run(cmd.Context(), cfg, logger.NewWithLevel(os.Stdout, cfg.GetLogLevel()))
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (overrides config)")
}
