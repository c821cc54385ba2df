package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/meghashyamc/migemosearch/config"
	"github.com/meghashyamc/migemosearch/logger"
)

const logFileName = "migemosearch.log"

var (
	env       string
	pluginDir string
)

var rootCmd = &cobra.Command{
	Use:   "migemosearch",
	Short: "Find files by name with romaji (migemo) input",
	Long: `migemosearch - find files by name with romaji input
  - typing "kaisha" also matches 会社 and かいしゃ
  - prefix a query with @ to search with a regular expression`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "config environment (defaults to $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&pluginDir, "plugin-dir", "", "directory holding the bundled MigemoSDK dictionary")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(dictCmd)
}

func main() {
	godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if pluginDir != "" {
		cfg.Set("plugin.directory", pluginDir)
	}
	return cfg, nil
}

// openLogFile is for commands that own stdout; logs go to storage instead.
func openLogFile(cfg *config.Config) (*os.File, logger.Logger, error) {
	if err := os.MkdirAll(cfg.GetStoragePath(), 0o755); err != nil {
		return nil, nil, fmt.Errorf("could not create storage directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(cfg.GetStoragePath(), logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open log file: %w", err)
	}
	return file, logger.NewWithLevel(file, cfg.GetLogLevel()), nil
}
