package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// showCmd prints one session's change log
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's classified changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		session, err := engine.Store().Session(args[0])
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Session %s", session.ID)))
		fmt.Printf("Note: %s\n", session.NoteID)
		fmt.Printf("Started: %s\n", session.StartTime)
		if session.EndTime != nil {
			fmt.Printf("Ended: %s\n", session.EndTime)
		}
		fmt.Printf("Changes: %d\n\n", session.TotalChanges)

		for i, ch := range session.Changes {
			section := ch.Section
			if section == "" {
				section = "Unknown"
			}
			fmt.Printf("%d. %s %s @%d\n", i+1, countStyle.Render(string(ch.Type)), sectionStyle.Render(section), ch.Position)
			if ch.Content != "" {
				fmt.Printf("   %q\n", ch.Content)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
