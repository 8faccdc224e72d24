package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"habitquest/internal/model"
)

// Notifier delivers a notification to the user. Implementations live in the
// notify package; delivery failures are logged here and never retried.
type Notifier interface {
	Send(title, body string) error
}

// Service drives the daily notification plan: it computes today's reminders
// at startup, replans at each local midnight, applies the inactivity gates
// at fire time, and hands deliverable notifications to the Notifier.
type Service struct {
	engine   *Engine
	planner  *Planner
	activity *ActivityTracker
	notifier Notifier
	logger   *zap.Logger

	mu            sync.Mutex
	cfg           model.NotificationConfig
	randomDay     string
	randomPlanned int

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewService(cfg model.NotificationConfig, buffer int, planner *Planner, activity *ActivityTracker, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Service{
		engine:   NewEngine(buffer),
		planner:  planner,
		activity: activity,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start computes today's plan and begins dispatching. Safe to call once.
func (s *Service) Start(now time.Time) {
	s.startOnce.Do(func() {
		s.engine.Start()
		s.planToday(now)
		go s.run()
	})
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.engine.Stop()
		<-s.doneCh
	})
}

// RecordActivity feeds the inactivity gate. Call on any tracked input event
// or window focus.
func (s *Service) RecordActivity(now time.Time) {
	s.activity.RecordActivity(now)
}

func (s *Service) RecordHabitCompletion(habitID string, now time.Time) {
	s.activity.RecordHabitCompletion(habitID, now)
}

// NotifyNow sends an immediate notification through the normal delivery
// path, bypassing the inactivity gate.
func (s *Service) NotifyNow(t model.NotificationType, title, body string) {
	s.deliver(t, title, body, time.Now())
}

// UpdateConfig swaps the live config. Disabling notifications clears every
// pending entry; enabling replans the remainder of today.
func (s *Service) UpdateConfig(cfg model.NotificationConfig, now time.Time) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.engine.Clear()
	if cfg.Enabled {
		s.planToday(now)
	}
}

func (s *Service) Config() model.NotificationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// ScheduleRandomReminders plans up to the per-day cap of random reminders
// for the rest of today. Repeat calls within the same day never push the
// total past the cap.
func (s *Service) ScheduleRandomReminders(now time.Time) int {
	s.mu.Lock()
	cfg := s.cfg
	day := now.Format("2006-01-02")
	if s.randomDay != day {
		s.randomDay = day
		s.randomPlanned = 0
	}
	remaining := cfg.MaxRemindersPerDay - s.randomPlanned
	s.mu.Unlock()

	planned := s.planner.PlanRandomReminders(cfg, now, remaining)
	scheduled := 0
	for _, n := range planned {
		if err := s.engine.Schedule(eventFromScheduled(n)); err != nil {
			s.logger.Warn("schedule random reminder", zap.Error(err))
			continue
		}
		scheduled++
	}
	if scheduled > 0 {
		s.mu.Lock()
		s.randomPlanned += scheduled
		s.mu.Unlock()
	}
	return scheduled
}

func (s *Service) planToday(now time.Time) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	for _, n := range s.planner.PlanStreakReminders(cfg, now) {
		if err := s.engine.Schedule(eventFromScheduled(n)); err != nil {
			s.logger.Warn("schedule streak reminder", zap.Error(err))
		}
	}
	s.ScheduleRandomReminders(now)

	if err := s.engine.Schedule(rolloverEvent(nextMidnight(now))); err != nil {
		s.logger.Warn("schedule midnight rollover", zap.Error(err))
	}
	s.logger.Info("notification plan computed",
		zap.Int("pending", s.engine.Pending()),
		zap.Time("nextRollover", nextMidnight(now)))
}

func (s *Service) run() {
	defer close(s.doneCh)
	// The original background service polled hourly even with an empty
	// plan, nudging long-idle users back into the app.
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-s.engine.C():
			if !ok {
				return
			}
			s.handle(ev, time.Now())
		case <-ticker.C:
			s.backgroundCheck(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *Service) handle(ev Event, now time.Time) {
	if ev.Type == rolloverType {
		s.engine.Clear()
		s.planToday(now)
		return
	}

	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	if !cfg.Enabled {
		return
	}

	if gate := inactivityGate(ev.Type); gate > 0 {
		if !s.activity.HasBeenInactiveFor(gate, now) {
			s.logger.Debug("reminder suppressed by activity",
				zap.String("id", ev.ID),
				zap.String("type", string(ev.Type)))
			return
		}
	}
	s.deliver(ev.Type, ev.Title, ev.Body, now)
}

func (s *Service) backgroundCheck(now time.Time) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	if !cfg.Enabled {
		return
	}
	hour := now.Hour()
	if hour < cfg.ReminderStartHour || hour > cfg.ReminderEndHour {
		return
	}
	if s.activity.SentToday(now) >= cfg.MaxRemindersPerDay {
		return
	}
	if !s.activity.HasBeenInactiveFor(backgroundInactivityGate, now) {
		return
	}
	s.deliver(model.NotificationRandomReminder,
		"HabitQuest reminder",
		"Don't forget to check in with your habits today! Your streaks are waiting for you.",
		now)
}

// deliver hands the notification to the notifier. Failures are logged and
// swallowed; there is no retry and no error surfaces to the user.
func (s *Service) deliver(t model.NotificationType, title, body string, now time.Time) {
	if err := s.notifier.Send(title, body); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("type", string(t)),
			zap.Error(err))
		return
	}
	s.activity.MarkSent(now)
	s.logger.Info("notification sent",
		zap.String("type", string(t)),
		zap.String("title", title))
}
