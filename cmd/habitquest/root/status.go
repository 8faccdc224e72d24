package root

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, points, and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			profile, err := app.svc.Profile(ctx)
			if err != nil {
				return err
			}
			level := engine.LevelForTotalXP(profile.TotalXP)
			nextReq := engine.XPRequiredForLevel(level + 1)
			toNext := nextReq - profile.TotalXP
			if toNext < 0 {
				toNext = 0
			}

			now := time.Now()
			streak, err := app.svc.OverallStreak(ctx, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "level: %d\n", level)
			fmt.Fprintf(out, "total xp: %d (next level at %d, %d to go)\n", profile.TotalXP, nextReq, toNext)
			fmt.Fprintf(out, "points: %d\n", profile.Points)
			fmt.Fprintf(out, "overall streak: %d day(s)\n", streak)

			byCategory, err := app.svc.GetCategoryXP(ctx, now)
			if err != nil {
				return err
			}
			if len(byCategory) > 0 {
				fmt.Fprintln(out, "\ncategory xp this month:")
				names := make([]string, 0, len(byCategory))
				for name := range byCategory {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "- %s: %d xp\n", name, byCategory[name])
				}
			}

			atRisk, err := app.svc.HabitsAtRisk(ctx, now, 3)
			if err != nil {
				return err
			}
			if len(atRisk) > 0 {
				fmt.Fprintln(out, "\nstreaks at risk today:")
				for _, h := range atRisk {
					fmt.Fprintf(out, "- %s (streak %d)\n", h.Title, h.Streak)
				}
			}
			return nil
		},
	}
	return cmd
}
