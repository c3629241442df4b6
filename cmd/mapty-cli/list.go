package main

import (
	"fmt"

	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded workouts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind models.Kind
		if t, _ := cmd.Flags().GetString("type"); t != "" {
			k, err := models.ParseKind(t)
			if err != nil {
				return err
			}
			kind = k
		}

		workouts := controller.Workouts()
		shown := 0
		for i := len(workouts) - 1; i >= 0; i-- {
			w := workouts[i]
			if kind != "" && w.Kind != kind {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatWorkout(w))
			shown++
		}

		if shown == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No workouts yet. Use 'mapty-cli add' or click the map to add one.")
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("type", "t", "", "only show running or cycling")
	rootCmd.AddCommand(listCmd)
}
