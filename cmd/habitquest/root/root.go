package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"habitquest/internal/notify"
	"habitquest/internal/scheduler"
	"habitquest/internal/update"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "habitquest",
	Short:         "Gamified habit tracker with XP, streaks, and a reward shop",
	Long:          "HabitQuest tracks daily, weekly, monthly, and yearly habits, awards XP and points for completions, and reminds you before a streak dies.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return errors.New("interactive mode needs a terminal; see 'habitquest --help' for subcommands")
		}
		return runTUI(cmd.Context())
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoneCmd(),
		newListCmd(),
		newStatusCmd(),
		newShopCmd(),
		newRedeemCmd(),
		newExportCmd(),
		newImportCmd(),
		newNotifyCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "habitquest:", err)
		os.Exit(1)
	}
}

func runTUI(ctx context.Context) error {
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	now := time.Now()
	desktop := notify.Notifier(notify.NoopNotifier{})
	if app.cfg.DesktopNotifications {
		desktop = notify.NewFallbackNotifier(app.logger, notify.ExecNotifier{})
	}
	ui := update.NewUINotifier(desktop)

	ncfg := app.svc.LoadNotificationConfig(ctx)
	sched := scheduler.NewService(
		ncfg,
		app.cfg.SchedulerBuffer,
		scheduler.NewPlanner(now.UnixNano()),
		scheduler.NewActivityTracker(app.cfg.ActivityPath, now),
		ui,
		app.logger,
	)
	sched.Start(now)
	defer sched.Stop()

	program := tea.NewProgram(update.NewModelWithScheduler(app.svc, sched, ui))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
