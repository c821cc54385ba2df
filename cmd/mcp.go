package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/mcp"
	"github.com/meghashyamc/migemosearch/plugin"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the file search to agents over MCP (stdio)",
	Long: `Serve the file search to agents over the Model Context Protocol on stdio.

Provides the find_files tool. Logs go to stderr; stdout carries protocol messages only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.NewWithLevel(os.Stderr, cfg.GetLogLevel())

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		p := plugin.New()
		if err := p.Init(ctx, plugin.InitContext{Config: cfg, Logger: log}); err != nil {
			return err
		}
		defer p.Close()

		return mcp.NewServer(log, p).Serve(ctx)
	},
}
