package root

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits with today's completion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			habits, err := app.svc.ListHabits(ctx)
			if err != nil {
				return err
			}
			sort.SliceStable(habits, func(i, j int) bool { return habits[i].CreatedAt.Before(habits[j].CreatedAt) })

			now := time.Now()
			shown := 0
			for _, h := range habits {
				if category != "" && !strings.EqualFold(h.Category, category) {
					continue
				}
				check := "[ ]"
				if h.DoneFor(now) {
					check = "[x]"
				}
				line := fmt.Sprintf("%s %s (%s, +%d xp)", check, h.Title, h.Frequency, h.XPOnComplete)
				if h.Category != "" {
					line += " #" + h.Category
				}
				if h.Streak > 0 {
					line += fmt.Sprintf(" streak:%d best:%d", h.Streak, h.BestStreak)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no habits yet; try 'habitquest add'")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "cat", "c", "", "Only habits in this category")

	return cmd
}
