package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlefko/semindex/internal/logging"
	"github.com/rlefko/semindex/internal/semconfig"
)

var (
	projectPath string
	cfgVerbose  bool
	cfgQuiet    bool

	cfg *semconfig.Config
	log logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "indexcli",
	Short: "Semantic code indexer CLI",
	Long: `indexcli runs the semantic indexer over a project tree, producing
entities, relations, and progressive-disclosure chunks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader := semconfig.NewLoader(projectPath, cmd.Root())
		loaded, err := loader.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		level := logging.Level(cfg.Logging.Level)
		if cfgVerbose {
			level = logging.LevelDebug
		}
		log = logging.New(level, os.Stderr)
		return nil
	},
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectPath, "project", ".", "project root to index")
	rootCmd.PersistentFlags().BoolVarP(&cfgVerbose, "verbose", "v", false, "verbose (debug) logging")
	rootCmd.PersistentFlags().BoolVarP(&cfgQuiet, "quiet", "q", false, "suppress the progress bar")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cacheCmd)
}
