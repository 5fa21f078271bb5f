package main

import (
	"fmt"

	"github.com/spf13/cobra"

	annvdb "github.com/23skdu/annvdb"
	"github.com/23skdu/annvdb/internal/core"
)

var searchCmd = &cobra.Command{
	Use:   "search <query-file>",
	Short: "Search the base store and active index for the nearest neighbor of each query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireDir(); err != nil {
		return err
	}
	if flagDim <= 0 {
		return fmt.Errorf("--dim is required")
	}

	xq, nq, err := readVectors(args[0], flagDim)
	if err != nil {
		return err
	}

	db, err := annvdb.Open(flagDir, flagDim, core.Metric(flagMetric), flagIndexKey, flagQueryParams, annvdb.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = db.Close() }()

	distances, ids, err := db.Search(nq, xq)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	for i := 0; i < nq; i++ {
		if ids[i] < 0 {
			fmt.Printf("query %d: no match\n", i)
			continue
		}
		uid, _ := db.RowToUid(ids[i])
		fmt.Printf("query %d: row=%d id=%d distance=%g\n", i, ids[i], uid, distances[i])
	}
	return nil
}
