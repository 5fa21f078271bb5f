package main

import (
	"fmt"

	"github.com/spf13/cobra"

	annvdb "github.com/23skdu/annvdb"
	"github.com/23skdu/annvdb/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print N, ntrain, ntotal, and flat-tail size for --dir",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := requireDir(); err != nil {
		return err
	}
	if flagDim <= 0 {
		return fmt.Errorf("--dim is required")
	}

	db, err := annvdb.Open(flagDir, flagDim, core.Metric(flagMetric), flagIndexKey, flagQueryParams, annvdb.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = db.Close() }()

	n, ntrain, ntotal, tail := db.Stats()
	fmt.Printf("n=%d ntrain=%d ntotal=%d flat_tail=%d\n", n, ntrain, ntotal, tail)
	return nil
}
