package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rlefko/semindex/internal/parsecache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the parse-result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show parse-result cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := parsecache.New(cacheDir(), 10000)
		stats := cache.Stats()
		fmt.Printf("Entries: %d / %d max\n", stats.Entries, stats.MaxEntries)
		fmt.Printf("Hits: %d\n", stats.Hits)
		fmt.Printf("Misses: %d\n", stats.Misses)
		fmt.Printf("Hit ratio: %.2f%%\n", stats.HitRatio*100)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the parse-result cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := parsecache.New(cacheDir(), 10000)
		cache.Clear()
		fmt.Println("Cache cleared")
		return nil
	},
}

func cacheDir() string {
	return filepath.Join(projectPath, ".semindex", "cache")
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
