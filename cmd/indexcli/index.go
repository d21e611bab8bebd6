package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rlefko/semindex/internal/changedetect"
	"github.com/rlefko/semindex/internal/chunkindex"
	"github.com/rlefko/semindex/internal/graphindex"
	"github.com/rlefko/semindex/internal/logging"
	"github.com/rlefko/semindex/internal/parsecache"
	"github.com/rlefko/semindex/internal/registry"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index every file in the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		detector := changedetect.New(projectPath)
		changes := detector.DetectChanges("", nil)
		files := changes.FilesToIndex()

		cache := parsecache.New(filepath.Join(projectPath, ".semindex", "cache"), 10000)
		reg := registry.Default(cache)
		ci, err := chunkindex.New()
		if err != nil {
			return fmt.Errorf("build chunk index: %w", err)
		}
		defer ci.Close()
		gi := graphindex.New()

		stats := runIndexPass(reg, ci, gi, projectPath, files, uuid.New().String())

		fmt.Printf("Indexed %d file(s): %d entities, %d relations, %d chunks\n",
			stats.filesIndexed, stats.entities, stats.relations, stats.chunks)
		return nil
	},
}

type indexStats struct {
	filesIndexed int
	entities     int
	relations    int
	chunks       int
}

// newIndexProgressBar mirrors the teacher's CLIProgressReporter file bar:
// a throttled, rate-annotated bar that stays silent under --quiet.
func newIndexProgressBar(total int) *progressbar.ProgressBar {
	if cfgQuiet || total == 0 {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Indexing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)
}

// runIndexPass parses every path in files (relative to root), folding
// results into ci and gi as it goes. It accumulates entity names across
// files in indexing order, so CALLS resolution benefits from files parsed
// earlier in the pass but not later ones — an accepted simplification for
// this harness, not a guarantee of the core ParserRegistry/Linker contract.
// runID tags every log line emitted during the pass so concurrent index
// and watch-triggered passes can be told apart in the log stream.
func runIndexPass(reg *registry.Registry, ci *chunkindex.Index, gi *graphindex.Index, root string, files []string, runID string) indexStats {
	var stats indexStats
	globalNames := make(map[string]struct{})
	bar := newIndexProgressBar(len(files))

	for _, rel := range files {
		start := time.Now()
		full := filepath.Join(root, rel)

		result, err := reg.ParseFile(full, globalNames)
		if err != nil {
			log.Warn("parse failed", logging.RunID(runID), logging.FilePath(rel), logging.Err(err))
			bar.Add(1)
			continue
		}
		if result == nil {
			bar.Add(1)
			continue
		}

		for _, e := range result.Entities {
			globalNames[e.Name] = struct{}{}
		}
		if err := ci.Index(result.ImplementationChunks); err != nil {
			log.Warn("chunk index failed", logging.RunID(runID), logging.FilePath(rel), logging.Err(err))
		}
		gi.AddResult(result)

		stats.filesIndexed++
		stats.entities += len(result.Entities)
		stats.relations += len(result.Relations)
		stats.chunks += len(result.ImplementationChunks)

		log.Debug("parsed file", logging.RunID(runID), logging.Operation("index"), logging.FilePath(rel),
			logging.EntityCount(len(result.Entities)), logging.DurationMS(float64(time.Since(start).Microseconds())/1000))
		bar.Add(1)
	}

	return stats
}
