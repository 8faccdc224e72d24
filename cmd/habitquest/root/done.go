package root

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
	"habitquest/internal/model"
)

func newDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <habit>",
		Short: "Toggle a habit complete for the current period",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("habit title or id is required")
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

			habit, err := findHabit(ctx, app.svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			res, err := app.svc.ToggleComplete(ctx, habit.ID, time.Now())
			if err != nil {
				return err
			}
			if res.Done {
				fmt.Fprintf(cmd.OutOrStdout(), "%s done for %s: +%d xp, +%d pts\n", res.Habit.Title, res.PeriodKey, res.XPDelta, res.PointsDelta)
				if res.LevelUp {
					fmt.Fprintf(cmd.OutOrStdout(), "level up! you are now level %d\n", res.LevelAfter)
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s undone for %s: %d xp, %d pts\n", res.Habit.Title, res.PeriodKey, res.XPDelta, res.PointsDelta)
			}
			return nil
		},
	}
	return cmd
}

func findHabit(ctx context.Context, svc *engine.Service, target string) (model.Habit, error) {
	habits, err := svc.ListHabits(ctx)
	if err != nil {
		return model.Habit{}, err
	}
	for _, h := range habits {
		if h.ID == target || strings.EqualFold(h.Title, target) {
			return h, nil
		}
	}
	return model.Habit{}, fmt.Errorf("no habit matching %q", target)
}
