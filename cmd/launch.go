package main

import (
	"github.com/spf13/cobra"

	"github.com/meghashyamc/migemosearch/plugin"
	"github.com/meghashyamc/migemosearch/ui/launcher"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Open the interactive search launcher",
	Long: `Open the interactive search launcher in the terminal.

Keys:
  enter    open the selected file or folder
  ctrl+k   context menu for the selected file
  ctrl+o   settings
  esc      close`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logFile, log, err := openLogFile(cfg)
		if err != nil {
			return err
		}
		defer logFile.Close()

		notifier := launcher.NewNotifier()
		p := plugin.New()
		if err := p.Init(cmd.Context(), plugin.InitContext{
			Config:   cfg,
			Logger:   log,
			Notifier: notifier,
		}); err != nil {
			return err
		}
		defer p.Close()

		return launcher.Run(p, notifier)
	},
}
