package cmd

import (
	"errors"
	"fmt"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
	"github.com/spf13/cobra"
)

var (
	personalizeUser     string
	personalizeBase     string
	personalizeTemplate string
	personalizeProvider string
	personalizeTone     string
	verbosityPreference string
)

// personalizeCmd generates a personalized prompt from a user's feedback
// history
var personalizeCmd = &cobra.Command{
	Use:   "personalize",
	Short: "Generate a personalized prompt for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		profile := internal.StyleProfile{
			Tone:      personalizeTone,
			Verbosity: verbosityPreference,
		}
		ctx := internal.GenerationContext{
			UserID:     personalizeUser,
			BasePrompt: personalizeBase,
			Template:   personalizeTemplate,
			Provider:   personalizeProvider,
		}

		prompt, err := engine.GeneratePersonalizedPrompt(personalizeUser, profile, ctx)
		if err != nil {
			var insufficient *internal.InsufficientDataError
			if errors.As(err, &insufficient) {
				fmt.Printf("Not enough feedback to personalize (%v); using base prompt.\n\n%s\n", err, personalizeBase)
				return nil
			}
			return err
		}

		fmt.Println(headerStyle.Render("Personalizations"))
		if len(prompt.Personalizations) == 0 {
			fmt.Println("(none applied)")
		}
		for i, p := range prompt.Personalizations {
			fmt.Printf("%d. [%s] impact=%.2f confidence=%.2f\n   %s\n   %s\n",
				i+1, p.Type, p.Impact, p.Confidence, p.Text, dateStyle.Render(p.Reasoning))
		}
		fmt.Printf("\n%s\n", prompt.BaselineComparison)
		fmt.Println(headerStyle.Render("Prompt"))
		fmt.Println(prompt.Prompt)
		return nil
	},
}

func init() {
	personalizeCmd.Flags().StringVar(&personalizeUser, "user", "", "User to personalize for")
	personalizeCmd.Flags().StringVar(&personalizeBase, "base", "Generate a clinical note from the encounter transcript.", "Base prompt")
	personalizeCmd.Flags().StringVar(&personalizeTemplate, "template", "", "Template in use")
	personalizeCmd.Flags().StringVar(&personalizeProvider, "provider", "", "Generation provider in use")
	personalizeCmd.Flags().StringVar(&personalizeTone, "tone", "", "Preferred tone")
	personalizeCmd.Flags().StringVar(&verbosityPreference, "verbosity", "", "Preferred verbosity (concise, detailed)")
	_ = personalizeCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(personalizeCmd)
}
