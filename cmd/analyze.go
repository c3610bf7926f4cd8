package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
	"github.com/rufusmd/ai-medical-note-writer-sub003/internal/export"
	"github.com/spf13/cobra"
)

var (
	analyzeUser   string
	analyzeFormat string
)

// analyzeCmd runs the feedback pattern analyzer over a user's stored
// feedback
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a user's feedback history",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		analysis, err := engine.AnalyzeFeedback(analyzeUser)
		if err != nil {
			var insufficient *internal.InsufficientDataError
			if errors.As(err, &insufficient) {
				fmt.Printf("Not enough feedback to analyze: %v\n", err)
				return nil
			}
			return err
		}

		exporter, err := export.NewExporter(analyzeFormat)
		if err != nil {
			return err
		}
		return exporter.ExportAnalysis(analysis, os.Stdout)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "User whose feedback to analyze")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "md", "Output format (json, yaml, md, jsonl)")
	_ = analyzeCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(analyzeCmd)
}
