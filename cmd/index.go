package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/services/index"
)

const indexPollInterval = 200 * time.Millisecond

var indexExclude []string

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index the file and folder names under a directory",
	Long: `Index the file and folder names under a directory into the local index.

Only entries changed since the last run are re-indexed; removed entries are dropped.
Stop the index daemon first, it holds the same databases.

Examples:
  migemosearch index ~/Documents
  migemosearch index ~/src --exclude ~/src/vendor`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.NewWithLevel(os.Stderr, cfg.GetLogLevel())

		rootPath, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		excludeFolders := make([]string, 0, len(indexExclude))
		for _, folder := range indexExclude {
			abs, err := filepath.Abs(folder)
			if err != nil {
				return err
			}
			excludeFolders = append(excludeFolders, abs)
		}

		kvDB, err := kvdb.New(log, cfg)
		if err != nil {
			return err
		}
		defer kvDB.Close()
		searchDB, err := searchdb.New(log, cfg)
		if err != nil {
			return err
		}
		defer searchDB.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		service := index.New(ctx, log, searchDB, kvDB)
		requestID := uuid.NewString()
		if err := service.Build(rootPath, excludeFolders, requestID); err != nil {
			return err
		}

		return waitForIndex(ctx, cmd, service, requestID)
	},
}

func init() {
	indexCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "folders to leave out of the index")
}

func waitForIndex(ctx context.Context, cmd *cobra.Command, service *index.Service, requestID string) error {
	ticker := time.NewTicker(indexPollInterval)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		progress, err := service.GetStatus(requestID)
		if err != nil {
			return err
		}
		switch {
		case progress < 0:
			return errors.New("indexing failed, see the log for details")
		case progress != last:
			fmt.Fprintf(cmd.OutOrStdout(), "indexing %s: %d%%\n", requestID, progress)
			last = progress
		}
		if progress >= 100 {
			return nil
		}
	}
}
