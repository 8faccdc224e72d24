package scheduler

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"habitquest/internal/model"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureNotifier) Send(title, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, title)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func newTestScheduler(cfg model.NotificationConfig, lastActivity time.Time) (*Service, *captureNotifier) {
	notifier := &captureNotifier{}
	svc := NewService(cfg, 64, NewPlanner(1), NewActivityTracker("", lastActivity), notifier, zap.NewNop())
	return svc, notifier
}

func TestScheduleRandomRemindersNeverExceedsDailyCap(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	cfg.MaxRemindersPerDay = 2
	now := time.Date(2024, time.March, 5, 0, 30, 0, 0, time.Local)
	svc, _ := newTestScheduler(cfg, now)

	total := 0
	for i := 0; i < 10; i++ {
		total += svc.ScheduleRandomReminders(now)
	}
	if total > cfg.MaxRemindersPerDay {
		t.Fatalf("scheduled %d random reminders, cap is %d", total, cfg.MaxRemindersPerDay)
	}
	if total != 2 {
		t.Fatalf("expected the full cap of 2 to be planned, got %d", total)
	}
}

func TestScheduleRandomRemindersCapResetsNextDay(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	now := time.Date(2024, time.March, 5, 0, 30, 0, 0, time.Local)
	svc, _ := newTestScheduler(cfg, now)

	if got := svc.ScheduleRandomReminders(now); got != 2 {
		t.Fatalf("expected 2 planned on day one, got %d", got)
	}
	if got := svc.ScheduleRandomReminders(now); got != 0 {
		t.Fatalf("expected cap to hold on repeat call, got %d", got)
	}

	nextDay := now.AddDate(0, 0, 1)
	if got := svc.ScheduleRandomReminders(nextDay); got != 2 {
		t.Fatalf("expected cap reset next day, got %d", got)
	}
}

func TestHandleSuppressesReminderWhenRecentlyActive(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local)
	svc, notifier := newTestScheduler(cfg, now.Add(-10*time.Minute))

	svc.handle(Event{
		ID:        "n1",
		Type:      model.NotificationStreakProtection,
		Title:     "Keep your streak alive",
		TriggerAt: now,
	}, now)
	if notifier.count() != 0 {
		t.Fatalf("expected reminder suppressed for active user")
	}
}

func TestHandleDeliversReminderAfterInactivityGate(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local)
	svc, notifier := newTestScheduler(cfg, now.Add(-5*time.Hour))

	svc.handle(Event{
		ID:        "n1",
		Type:      model.NotificationStreakProtection,
		Title:     "Keep your streak alive",
		TriggerAt: now,
	}, now)
	if notifier.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", notifier.count())
	}
	if got := svc.activity.SentToday(now); got != 1 {
		t.Fatalf("expected sent counter to advance, got %d", got)
	}
}

func TestHandleRolloverReplansNextDay(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	now := time.Date(2024, time.March, 6, 0, 0, 1, 0, time.Local)
	svc, notifier := newTestScheduler(cfg, now.Add(-time.Hour))

	svc.handle(rolloverEvent(now), now)
	// 3 streak-protection hours + 2 random reminders + the next rollover.
	if got := svc.engine.Pending(); got != 6 {
		t.Fatalf("expected 6 pending after rollover replan, got %d", got)
	}
	if notifier.count() != 0 {
		t.Fatalf("rollover must not reach the notifier")
	}
}

func TestHandleDropsEverythingWhenDisabled(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	cfg.Enabled = false
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local)
	svc, notifier := newTestScheduler(cfg, now.Add(-24*time.Hour))

	svc.handle(Event{
		ID:        "n1",
		Type:      model.NotificationStreakProtection,
		Title:     "Keep your streak alive",
		TriggerAt: now,
	}, now)
	if notifier.count() != 0 {
		t.Fatalf("expected no delivery while disabled")
	}
}

func TestNotifyNowBypassesInactivityGate(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	now := time.Now()
	svc, notifier := newTestScheduler(cfg, now)

	svc.NotifyNow(model.NotificationLevelUp, "Level up!", "You reached level 2")
	if notifier.count() != 1 {
		t.Fatalf("expected immediate delivery, got %d", notifier.count())
	}
}

func TestBackgroundCheckNudgesLongIdleUser(t *testing.T) {
	cfg := model.DefaultNotificationConfig()
	now := time.Date(2024, time.March, 5, 14, 0, 0, 0, time.Local)

	svc, notifier := newTestScheduler(cfg, now.Add(-13*time.Hour))
	svc.backgroundCheck(now)
	if notifier.count() != 1 {
		t.Fatalf("expected background nudge for idle user, got %d", notifier.count())
	}

	// Recently active users are left alone.
	svc, notifier = newTestScheduler(cfg, now.Add(-time.Hour))
	svc.backgroundCheck(now)
	if notifier.count() != 0 {
		t.Fatalf("expected no nudge for active user, got %d", notifier.count())
	}

	// Outside the configured hours nothing fires either.
	late := time.Date(2024, time.March, 5, 23, 30, 0, 0, time.Local)
	svc, notifier = newTestScheduler(cfg, late.Add(-13*time.Hour))
	svc.backgroundCheck(late)
	if notifier.count() != 0 {
		t.Fatalf("expected no nudge outside reminder hours, got %d", notifier.count())
	}
}
