package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	annvdb "github.com/23skdu/annvdb"
	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/parquetio"
)

var importCmd = &cobra.Command{
	Use:   "import <in.parquet>",
	Short: "Append vectors from a Parquet file to the base store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := requireDir(); err != nil {
		return err
	}
	if flagDim <= 0 {
		return fmt.Errorf("--dim is required")
	}

	ids, xb, err := parquetio.ReadVectorsFile(args[0], flagDim)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	db, err := annvdb.Open(flagDir, flagDim, core.Metric(flagMetric), flagIndexKey, flagQueryParams, annvdb.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.AddWithIds(ids, xb); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	logger.Info("imported vectors", zap.Int("n", len(ids)), zap.String("path", args[0]))
	fmt.Printf("imported %d vectors (base store size now %d)\n", len(ids), db.Size())
	return nil
}
