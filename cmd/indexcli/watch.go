package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rlefko/semindex/internal/chunkindex"
	"github.com/rlefko/semindex/internal/graphindex"
	"github.com/rlefko/semindex/internal/ignore"
	"github.com/rlefko/semindex/internal/logging"
	"github.com/rlefko/semindex/internal/parsecache"
	"github.com/rlefko/semindex/internal/registry"
	"github.com/rlefko/semindex/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and reindex changed files continuously",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		resolver := ignore.NewResolver(projectPath)
		if err := resolver.Load(); err != nil {
			return fmt.Errorf("load ignore patterns: %w", err)
		}

		cache := parsecache.New(filepath.Join(projectPath, ".semindex", "cache"), 10000)
		reg := registry.Default(cache)
		ci, err := chunkindex.New()
		if err != nil {
			return fmt.Errorf("build chunk index: %w", err)
		}
		defer ci.Close()
		gi := graphindex.New()

		w := watch.New(projectPath, resolver, log)
		log.Info("watching for changes", logging.FilePath(projectPath))

		return w.Watch(ctx, func(paths []string) {
			runID := uuid.New().String()
			stats := runIndexPass(reg, ci, gi, projectPath, paths, runID)
			log.Info("reindexed changed files", logging.RunID(runID), logging.EntityCount(stats.entities))
		})
	},
}
