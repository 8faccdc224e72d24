package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"habitquest/internal/notify"
)

func newNotifyCmd() *cobra.Command {
	var test bool

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Check desktop notification permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res := notify.CheckAndRequestPermissions(notify.ExecNotifier{})
			if res.Granted {
				fmt.Fprintf(out, "notifications are available on %s\n", res.Platform)
				if test {
					ctx := context.Background()
					app, err := openApp(ctx)
					if err != nil {
						return err
					}
					defer app.close()
					notifier := notify.NewFallbackNotifier(app.logger, notify.ExecNotifier{})
					_ = notifier.Send("HabitQuest", "Test notification: everything works.")
					fmt.Fprintln(out, "test notification sent")
				}
				return nil
			}

			fmt.Fprintf(out, "notifications need manual setup on %s:\n", res.Platform)
			for i, step := range res.Instructions {
				fmt.Fprintf(out, "%d. %s\n", i+1, step)
			}
			fmt.Fprintln(out, "\nrun 'habitquest notify' again after setup to re-check")
			return nil
		},
	}

	cmd.Flags().BoolVar(&test, "test", false, "Send a test notification when permitted")

	return cmd
}
