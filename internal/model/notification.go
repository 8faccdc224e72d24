package model

import (
	"errors"
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationStreakProtection NotificationType = "streak_protection"
	NotificationRandomReminder   NotificationType = "random_reminder"
	NotificationStreakWarning    NotificationType = "streak_warning"
	NotificationLevelUp          NotificationType = "level_up"
	NotificationHabit            NotificationType = "habit"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationStreakProtection, NotificationRandomReminder,
		NotificationStreakWarning, NotificationLevelUp, NotificationHabit:
		return true
	default:
		return false
	}
}

// Immediate reports whether the notification bypasses the inactivity gate.
func (t NotificationType) Immediate() bool {
	switch t {
	case NotificationStreakWarning, NotificationLevelUp, NotificationHabit:
		return true
	default:
		return false
	}
}

// ScheduledNotification is in-memory only; pending entries are recomputed
// from config at startup rather than persisted.
type ScheduledNotification struct {
	ID            string
	ScheduledTime time.Time
	Type          NotificationType
	Title         string
	Body          string
}

// NotificationConfig controls scheduling windows, caps and toggles. It is
// persisted alongside the rest of the app state and reloaded at startup.
type NotificationConfig struct {
	Enabled               bool  `json:"enabled"`
	StreakReminders       bool  `json:"streakReminders"`
	RandomReminders       bool  `json:"randomReminders"`
	ReminderStartHour     int   `json:"reminderStartHour"`
	ReminderEndHour       int   `json:"reminderEndHour"`
	MaxRemindersPerDay    int   `json:"maxRemindersPerDay"`
	StreakWarningDays     int   `json:"streakWarningThreshold"`
	SoundEnabled          bool  `json:"soundEnabled"`
	IntelligentTiming     bool  `json:"intelligentTiming"`
	AdaptiveFrequency     bool  `json:"adaptiveFrequency"`
	StreakProtectionHours []int `json:"streakProtectionHours"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Enabled:               true,
		StreakReminders:       true,
		RandomReminders:       true,
		ReminderStartHour:     8,
		ReminderEndHour:       22,
		MaxRemindersPerDay:    2,
		StreakWarningDays:     3,
		SoundEnabled:          false,
		IntelligentTiming:     true,
		AdaptiveFrequency:     true,
		StreakProtectionHours: []int{12, 18, 20},
	}
}

func (c NotificationConfig) Validate() error {
	if c.ReminderStartHour < 0 || c.ReminderStartHour > 23 {
		return fmt.Errorf("model: reminder start hour out of range: %d", c.ReminderStartHour)
	}
	if c.ReminderEndHour < 0 || c.ReminderEndHour > 23 {
		return fmt.Errorf("model: reminder end hour out of range: %d", c.ReminderEndHour)
	}
	if c.ReminderEndHour < c.ReminderStartHour {
		return errors.New("model: reminder end hour before start hour")
	}
	if c.MaxRemindersPerDay < 0 {
		return errors.New("model: max reminders per day must not be negative")
	}
	for _, h := range c.StreakProtectionHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("model: streak protection hour out of range: %d", h)
		}
	}
	return nil
}
