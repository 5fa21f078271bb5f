package main

import (
	"fmt"

	"github.com/spf13/cobra"

	annvdb "github.com/23skdu/annvdb"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the base store and every index file under --dir",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	if err := requireDir(); err != nil {
		return err
	}
	if err := annvdb.ClearWorkDir(flagDir); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	logger.Info("work directory cleared")
	fmt.Printf("cleared %s\n", flagDir)
	return nil
}
