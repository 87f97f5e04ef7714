package cmd

import (
	"fmt"

	"github.com/abhisek/mathlearn/internal/config"
	"github.com/abhisek/mathlearn/internal/logging"
	"github.com/abhisek/mathlearn/internal/store"
	"github.com/spf13/cobra"
)

// cfg is loaded once per invocation in PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mathlearn",
	Short: "Progressive curriculum trainer",
	Long: `mathlearn trains learners through a prerequisite graph of algorithmic math
topics, choosing what to practice next from each learner's mastery state.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to YAML config file (overrides MATHLEARN_CONFIG)")
	pf.String("db", "", "Path to SQLite database file (overrides MATHLEARN_DB)")
	pf.String("curriculum", "", "Path to a curriculum YAML file (default: built-in)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides and initializes
// logging. Flags beat environment variables, which beat the config file.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		c.Database.Driver = "sqlite"
		c.Database.Path = v
	}
	if v, _ := cmd.Flags().GetString("curriculum"); v != "" {
		c.CurriculumPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		c.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		c.Log.Format = v
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, c.Log.Format)

	cfg = c
	return nil
}

// resolveDBPath returns the SQLite path from config, falling back to the
// default XDG path.
func resolveDBPath() (string, error) {
	if p := cfg.Database.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
