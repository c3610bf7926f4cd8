package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))
)

// sessionsCmd lists stored edit sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored edit sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		sessions, err := engine.Store().Sessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No edit sessions found.")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Edit Sessions (%d)", len(sessions))))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOTE\tSTARTED\tCHANGES\tSTATUS")
		for _, s := range sessions {
			status := "open"
			if s.EndTime != nil {
				status = "closed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				idStyle.Render(shortID(s.ID)),
				s.NoteID,
				dateStyle.Render(s.StartTime.Format(time.RFC3339)),
				countStyle.Render(fmt.Sprintf("%d", s.TotalChanges)),
				status)
		}
		return w.Flush()
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
