package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	annvdb "github.com/23skdu/annvdb"
	"github.com/23skdu/annvdb/internal/core"
)

var flagExhaustThreshold int

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build and activate an index over the current base store",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().IntVar(&flagExhaustThreshold, "exhaust-threshold", 0,
		"skip the build if the untrained tail is at most this many rows")
}

func runBuild(cmd *cobra.Command, args []string) error {
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

	cand, err := db.TryBuildIndex(flagExhaustThreshold)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if cand == nil || cand.Index == nil {
		logger.Info("build skipped, nothing new to train")
		fmt.Println("build skipped: untrained tail at or below --exhaust-threshold, or nothing new to train")
		return nil
	}

	if err := db.ActivateIndex(cand); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	logger.Info("index built and activated", zap.Int("ntrain", cand.NTrain))
	fmt.Printf("built and activated index (ntrain=%d, ntotal=%d)\n", cand.NTrain, cand.Index.Count())
	return nil
}
