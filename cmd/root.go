package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	dbPath       string
	sectionsPath string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notewriter",
	Short: "Edit-delta tracking and prompt personalization for AI clinical notes",
	Long: `Tools around the note-writer feedback engine: inspect stored edit
sessions, run feedback analysis, generate personalized prompts, and manage
prompt A/B experiments.

The engine observes a clinician editing an AI-generated note, classifies
each change by document section, aggregates sessions and ratings into
feedback patterns, and turns those patterns into ranked prompt
adjustments.

Quick Start:
  notewriter sessions                    # List stored edit sessions
  notewriter show <session-id>           # View one session's change log
  notewriter analyze --user <id>         # Analyze a user's feedback
  notewriter personalize --user <id>     # Generate a personalized prompt`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the engine database (default: ~/.notewriter/engine.db)")
	rootCmd.PersistentFlags().StringVar(&sectionsPath, "sections", "", "Path to a YAML section-vocabulary file")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// resolveDBPath returns the database location, creating its directory.
func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".notewriter")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return filepath.Join(dir, "engine.db"), nil
}

// openEngine builds an Engine over the configured database and section
// vocabulary.
func openEngine() (*internal.Engine, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	db, err := internal.OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	store := internal.NewStore(db)

	rules := internal.DefaultSectionRules()
	if sectionsPath != "" {
		rules, err = internal.LoadSectionRules(sectionsPath)
		if err != nil {
			return nil, err
		}
	}
	table, err := internal.NewSectionTable(rules)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(store, internal.WithSections(table)), nil
}
