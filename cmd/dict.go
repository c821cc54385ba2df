package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/services/expand"
)

var dictEncoding string

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage the migemo dictionary",
}

var dictImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a migemo dictionary file",
	Long: `Import a migemo dictionary file (reading<TAB>word<TAB>word... per line).

Readings already in the store are replaced by the ones in the file.

Examples:
  migemosearch dict import MigemoSDK/dict/cp932/migemo-dict
  migemosearch dict import migemo-dict --encoding utf-8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.NewWithLevel(os.Stderr, cfg.GetLogLevel())

		encoding := dictEncoding
		if encoding == "" {
			encoding = cfg.GetDictEncoding()
		}

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not open dictionary: %w", err)
		}
		defer file.Close()

		kvDB, err := kvdb.New(log, cfg)
		if err != nil {
			return err
		}
		defer kvDB.Close()

		count, err := expand.NewDictionary(log, kvDB, cfg.GetMaxDictionaryWords()).Import(file, encoding)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d readings\n", count)
		return nil
	},
}

func init() {
	dictImportCmd.Flags().StringVar(&dictEncoding, "encoding", "", "file encoding: cp932, euc-jp or utf-8 (defaults to config)")
	dictCmd.AddCommand(dictImportCmd)
}
