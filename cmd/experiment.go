package cmd

import (
	"fmt"
	"strconv"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
	"github.com/spf13/cobra"
)

var (
	experimentUser string
	experimentBase string
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Manage prompt A/B experiments",
}

var experimentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an experiment from a base prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		exp, err := engine.CreateExperiment(experimentBase, internal.GenerationContext{
			UserID:     experimentUser,
			BasePrompt: experimentBase,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created experiment %s with %d variants:\n", exp.ID, len(exp.Variants))
		for _, v := range exp.Variants {
			fmt.Printf("  %s  %s\n", idStyle.Render(v.ID), v.Label)
		}
		return nil
	},
}

var experimentRecordCmd = &cobra.Command{
	Use:   "record <experiment-id> <variant-id> <rating> <processing-ms>",
	Short: "Record an outcome against a variant",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.Atoi(args[2])
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("rating must be an integer 1-5: %q", args[2])
		}
		processing, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid processing time: %q", args[3])
		}

		engine, err := openEngine()
		if err != nil {
			return err
		}
		// Rehydrate the stored experiment into the controller before
		// recording so the CLI works across invocations.
		exp, err := engine.Store().Experiment(args[0])
		if err != nil {
			return err
		}
		if err := engine.Experiments().Adopt(exp); err != nil {
			return err
		}
		if err := engine.RecordExperimentOutcome(args[0], args[1], rating, processing); err != nil {
			return err
		}
		fmt.Println("Recorded.")
		return nil
	},
}

var experimentShowCmd = &cobra.Command{
	Use:   "show <experiment-id>",
	Short: "Show an experiment's variants and results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		exp, err := engine.Store().Experiment(args[0])
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Experiment %s (%s)", exp.ID, exp.Status)))
		for _, v := range exp.Variants {
			var result internal.VariantResult
			for _, r := range exp.Results {
				if r.VariantID == v.ID {
					result = r
					break
				}
			}
			fmt.Printf("%s  %-16s notes=%d avg=%.2f avgMs=%.0f\n",
				idStyle.Render(shortID(v.ID)), v.Label, result.NoteCount, result.AverageRating, result.AverageProcessingTime)
		}
		return nil
	},
}

var experimentConcludeCmd = &cobra.Command{
	Use:   "conclude <experiment-id>",
	Short: "Conclude an experiment and report its leader",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		exp, err := engine.Store().Experiment(args[0])
		if err != nil {
			return err
		}
		if err := engine.Experiments().Adopt(exp); err != nil {
			return err
		}
		leader, result, err := engine.Experiments().Conclude(args[0])
		if err != nil {
			return err
		}
		concluded, err := engine.Experiments().Get(args[0])
		if err != nil {
			return err
		}
		if err := engine.Store().SaveExperiment(concluded); err != nil {
			return err
		}
		if leader == nil {
			fmt.Println("Concluded with no leader: no variant has enough samples.")
			return nil
		}
		fmt.Printf("Leader: %s (%s) avg=%.2f over %d notes\n", leader.Label, leader.ID, result.AverageRating, result.NoteCount)
		fmt.Println("Promoting the leader's prompt is a separate, explicit step.")
		return nil
	},
}

func init() {
	experimentCreateCmd.Flags().StringVar(&experimentUser, "user", "", "User the experiment belongs to")
	experimentCreateCmd.Flags().StringVar(&experimentBase, "base", "", "Base prompt to perturb")
	_ = experimentCreateCmd.MarkFlagRequired("user")
	_ = experimentCreateCmd.MarkFlagRequired("base")

	experimentCmd.AddCommand(experimentCreateCmd, experimentRecordCmd, experimentShowCmd, experimentConcludeCmd)
	rootCmd.AddCommand(experimentCmd)
}
