package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stormatter/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the format result cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the format result cache",
	Long:  "Remove the on-disk cache of format results. The next run rebuilds it.",
	Args:  cobra.NoArgs,
	RunE:  runCacheClean,
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}

func runCacheClean(_ *cobra.Command, _ []string) error {
	cache, err := driver.OpenFileCache()
	if err != nil {
		return err
	}
	path := cache.Path()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stdout, "format cache not found\n")
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", path)
	return nil
}
