// Package main implements annvdb, the command-line front end for the
// embeddable ANN vector database: a package-level rootCmd, persistent flags
// shared by every subcommand, and a PersistentPreRunE that loads
// configuration and builds the logger once before any subcommand runs.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/logging"
)

var (
	flagDir         string
	flagDim         int
	flagMetric      int
	flagIndexKey    string
	flagQueryParams string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "annvdb",
	Short: "Embeddable approximate nearest-neighbor vector database",
	Long: `annvdb manages one ANN vector database working directory: an
append-only base store of (id, vector) rows plus an optional trained
index covering a prefix of it.

Examples:
  # Add vectors
  annvdb add --dir ./db --dim 128 ids.txt vectors.txt

  # Build and activate an index over everything added so far
  annvdb build --dir ./db --dim 128 --index-key hnsw

  # Search
  annvdb search --dir ./db --dim 128 query.txt`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = logging.NewLogger(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		return nil
	},
}

// Execute runs rootCmd; its child commands are attached in init. Called
// once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "database working directory (required)")
	rootCmd.PersistentFlags().IntVar(&flagDim, "dim", 0, "vector dimension")
	rootCmd.PersistentFlags().IntVar(&flagMetric, "metric", int(core.MetricInnerProduct), "0=inner product, 1=L2")
	rootCmd.PersistentFlags().StringVar(&flagIndexKey, "index-key", "Flat", "kernel family (Flat, hnsw)")
	rootCmd.PersistentFlags().StringVar(&flagQueryParams, "query-params", "", "opaque kernel tuning string, e.g. \"m=16,efsearch=64\"")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func requireDir() error {
	if flagDir == "" {
		return fmt.Errorf("--dir is required")
	}
	return nil
}
