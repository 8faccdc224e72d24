package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
	"habitquest/internal/model"
)

func newAddCmd() *cobra.Command {
	var freq string
	var category string
	var xp int

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			frequency, err := model.ParseFrequency(freq)
			if err != nil {
				return err
			}
			habit, err := app.svc.AddHabit(ctx, engine.AddHabitParams{
				Title:        args[0],
				Frequency:    frequency,
				Category:     category,
				XPOnComplete: xp,
				IsRecurring:  true,
			}, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q (%s, +%d xp per completion)\n", habit.Title, habit.Frequency, habit.XPOnComplete)
			return nil
		},
	}

	cmd.Flags().StringVarP(&freq, "freq", "f", "daily", "Frequency (daily|weekly|monthly|yearly)")
	cmd.Flags().StringVarP(&category, "cat", "c", "", "Category name")
	cmd.Flags().IntVar(&xp, "xp", 0, "XP per completion (default 10)")

	return cmd
}
