package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every recorded workout",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			n := len(controller.Workouts())
			return fmt.Errorf("this deletes %d workouts; rerun with --confirm", n)
		}

		if err := controller.Reset(ctxOf(cmd)); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
		color.Yellow("✓ All workouts deleted")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("confirm", false, "skip the safety check")
	rootCmd.AddCommand(resetCmd)
}
