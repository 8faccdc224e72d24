package scheduler

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/model"
)

// Inactivity gates applied at fire time. Immediate notifications bypass
// them entirely.
const (
	streakInactivityGate     = 4 * time.Hour
	randomInactivityGate     = 2 * time.Hour
	backgroundInactivityGate = 12 * time.Hour
)

// jitterMinutes bounds the +/- jitter applied to streak-protection hours.
const jitterMinutes = 59

// Planner computes the day's notification plan from config. It owns its
// randomness so tests can seed it.
type Planner struct {
	rng *rand.Rand
}

func NewPlanner(seed int64) *Planner {
	return &Planner{rng: rand.New(rand.NewSource(seed))}
}

// PlanStreakReminders lays out one reminder per configured protection hour,
// each shifted by up to +/-59 minutes. Times already in the past are
// skipped, never back-filled.
func (p *Planner) PlanStreakReminders(cfg model.NotificationConfig, now time.Time) []model.ScheduledNotification {
	if !cfg.Enabled || !cfg.StreakReminders {
		return nil
	}
	out := make([]model.ScheduledNotification, 0, len(cfg.StreakProtectionHours))
	for _, hour := range cfg.StreakProtectionHours {
		base := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		jitter := time.Duration(p.rng.Intn(2*jitterMinutes+1)-jitterMinutes) * time.Minute
		at := base.Add(jitter)
		if !at.After(now) {
			continue
		}
		out = append(out, model.ScheduledNotification{
			ID:            uuid.NewString(),
			ScheduledTime: at,
			Type:          model.NotificationStreakProtection,
			Title:         "Keep your streak alive",
			Body:          "A quick check-in now protects your streaks.",
		})
	}
	return out
}

// PlanRandomReminders picks up to `remaining` uniformly random times inside
// the configured hour range. The caller accounts for the per-day cap;
// remaining is how many slots today still has.
func (p *Planner) PlanRandomReminders(cfg model.NotificationConfig, now time.Time, remaining int) []model.ScheduledNotification {
	if !cfg.Enabled || !cfg.RandomReminders || remaining <= 0 {
		return nil
	}
	spanHours := cfg.ReminderEndHour - cfg.ReminderStartHour + 1
	if spanHours <= 0 {
		return nil
	}
	out := make([]model.ScheduledNotification, 0, remaining)
	for i := 0; i < remaining; i++ {
		hour := cfg.ReminderStartHour + p.rng.Intn(spanHours)
		minute := p.rng.Intn(60)
		at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !at.After(now) {
			continue
		}
		out = append(out, model.ScheduledNotification{
			ID:            uuid.NewString(),
			ScheduledTime: at,
			Type:          model.NotificationRandomReminder,
			Title:         "Habit check-in",
			Body:          "Got a minute? One of your habits is waiting.",
		})
	}
	return out
}

// inactivityGate returns the minimum idle time required before a scheduled
// notification of this type may fire. Zero means no gate.
func inactivityGate(t model.NotificationType) time.Duration {
	switch t {
	case model.NotificationStreakProtection:
		return streakInactivityGate
	case model.NotificationRandomReminder:
		return randomInactivityGate
	default:
		return 0
	}
}

// nextMidnight returns the first instant of the next local calendar day.
func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}

func eventFromScheduled(n model.ScheduledNotification) Event {
	return Event{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		TriggerAt: n.ScheduledTime,
	}
}

func rolloverEvent(at time.Time) Event {
	return Event{
		ID:        fmt.Sprintf("rollover-%s", at.Format("2006-01-02")),
		Type:      rolloverType,
		TriggerAt: at,
	}
}

// rolloverType is internal to the scheduler; it never reaches a notifier.
const rolloverType model.NotificationType = "midnight_rollover"
