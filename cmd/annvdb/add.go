package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	annvdb "github.com/23skdu/annvdb"
	"github.com/23skdu/annvdb/internal/core"
)

var addCmd = &cobra.Command{
	Use:   "add <ids-file> <vectors-file>",
	Short: "Append vectors to the base store",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireDir(); err != nil {
		return err
	}
	if flagDim <= 0 {
		return fmt.Errorf("--dim is required")
	}

	ids, err := readIDs(args[0])
	if err != nil {
		return err
	}
	xb, nb, err := readVectors(args[1], flagDim)
	if err != nil {
		return err
	}
	if nb != len(ids) {
		return fmt.Errorf("id count %d does not match vector row count %d", len(ids), nb)
	}

	db, err := annvdb.Open(flagDir, flagDim, core.Metric(flagMetric), flagIndexKey, flagQueryParams, annvdb.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.AddWithIds(ids, xb); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	logger.Info("added vectors", zap.Int("n", nb))
	fmt.Printf("added %d vectors (base store size now %d)\n", nb, db.Size())
	return nil
}
