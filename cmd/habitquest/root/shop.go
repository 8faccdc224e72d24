package root

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"habitquest/internal/engine"
	"habitquest/internal/model"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "List rewards and redeemed inventory",
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
			rewards, err := app.svc.ListRewards(ctx)
			if err != nil {
				return err
			}
			sort.SliceStable(rewards, func(i, j int) bool { return rewards[i].Cost < rewards[j].Cost })

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "points: %d\n\nshop:\n", profile.Points)
			for _, r := range rewards {
				marker := ""
				if r.Cost > profile.Points {
					marker = " (not enough points)"
				}
				fmt.Fprintf(out, "- %s: %d pts%s\n", r.Name, r.Cost, marker)
			}

			inventory, err := app.svc.ListInventory(ctx)
			if err != nil {
				return err
			}
			if len(inventory) > 0 {
				fmt.Fprintln(out, "\ninventory:")
				for _, item := range inventory {
					fmt.Fprintf(out, "- %s (redeemed %s)\n", item.Name, item.RedeemedAt.Format("2006-01-02"))
				}
			}
			return nil
		},
	}
	return cmd
}

func newRedeemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem <reward>",
		Short: "Spend points on a reward",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("reward name or id is required")
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

			reward, err := findReward(ctx, app.svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			item, err := app.svc.RedeemReward(ctx, reward.ID, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "redeemed %s for %d pts\n", item.Name, item.Cost)
			return nil
		},
	}
	return cmd
}

func findReward(ctx context.Context, svc *engine.Service, target string) (model.Reward, error) {
	rewards, err := svc.ListRewards(ctx)
	if err != nil {
		return model.Reward{}, err
	}
	for _, r := range rewards {
		if r.ID == target || strings.EqualFold(r.Name, target) {
			return r, nil
		}
	}
	return model.Reward{}, fmt.Errorf("no reward matching %q", target)
}
