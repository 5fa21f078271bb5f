package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/23skdu/annvdb/internal/basestore"
	"github.com/23skdu/annvdb/internal/parquetio"
)

var exportCmd = &cobra.Command{
	Use:   "export <out.parquet>",
	Short: "Export the base store to a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := requireDir(); err != nil {
		return err
	}
	if flagDim <= 0 {
		return fmt.Errorf("--dim is required")
	}

	store, err := basestore.Open(flagDir, flagDim)
	if err != nil {
		return fmt.Errorf("open base store: %w", err)
	}
	defer func() { _ = store.Close() }()

	snap := store.SnapshotPtr(0)
	if err := parquetio.WriteVectorsFile(args[0], snap.IDs, snap.Data, flagDim); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("exported vectors", zap.Int("n", snap.N), zap.String("path", args[0]))
	fmt.Printf("exported %d vectors to %s\n", snap.N, args[0])
	return nil
}
