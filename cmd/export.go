package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
	"github.com/rufusmd/ai-medical-note-writer-sub003/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd exports stored sessions in a chosen format
var exportCmd = &cobra.Command{
	Use:   "export [session-id...]",
	Short: "Export edit sessions (all sessions when no id is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		var sessions []*internal.EditSession
		if len(args) == 0 {
			sessions, err = engine.Store().Sessions()
			if err != nil {
				return err
			}
		} else {
			for _, id := range args {
				s, err := engine.Store().Session(id)
				if err != nil {
					return err
				}
				sessions = append(sessions, s)
			}
		}
		if len(sessions) == 0 {
			fmt.Println("Nothing to export.")
			return nil
		}

		if exportOutput == "" {
			for _, s := range sessions {
				if err := exporter.ExportSession(s, os.Stdout); err != nil {
					return &internal.ExportError{Format: exportFormat, Path: "stdout", Err: err}
				}
			}
			return nil
		}

		if err := os.MkdirAll(exportOutput, 0755); err != nil {
			return err
		}
		for _, s := range sessions {
			path := filepath.Join(exportOutput, fmt.Sprintf("session-%s.%s", s.ID, exporter.Extension()))
			f, err := os.Create(path)
			if err != nil {
				return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
			}
			if err := exporter.ExportSession(s, f); err != nil {
				f.Close()
				return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
			}
			if err := f.Close(); err != nil {
				return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
			}
			fmt.Printf("Exported %s\n", path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, jsonl, yaml, md)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (stdout when empty)")
	rootCmd.AddCommand(exportCmd)
}
