package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// healthcheckCmd verifies the engine database is reachable and schema'd
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Verify the engine database is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		if err := engine.Store().Healthcheck(); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
