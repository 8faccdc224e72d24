package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ActivityTracker remembers when the user last interacted with the app and
// how many reminders went out today. It backs the inactivity gate and the
// per-day reminder cap, and survives restarts via a small JSON file.
type ActivityTracker struct {
	mu               sync.Mutex
	lastActivity     time.Time
	sessions         []time.Time
	habitCompletions map[string]time.Time
	sentToday        int
	lastSentDate     time.Time
	filePath         string
}

type activityState struct {
	LastActivity     time.Time            `json:"lastActivity"`
	Sessions         []time.Time          `json:"dailySessions"`
	HabitCompletions map[string]time.Time `json:"habitCompletions"`
	SentToday        int                  `json:"notificationsSentToday"`
	LastSentDate     *time.Time           `json:"lastNotificationDate,omitempty"`
}

// NewActivityTracker loads prior state from filePath when present; a missing
// or unreadable file just means a fresh tracker. filePath may be empty to
// disable persistence.
func NewActivityTracker(filePath string, now time.Time) *ActivityTracker {
	t := &ActivityTracker{
		lastActivity:     now,
		habitCompletions: make(map[string]time.Time),
		filePath:         filePath,
	}
	t.load()
	return t
}

func (t *ActivityTracker) load() {
	if t.filePath == "" {
		return
	}
	raw, err := os.ReadFile(t.filePath)
	if err != nil {
		return
	}
	var state activityState
	if err := json.Unmarshal(raw, &state); err != nil {
		return
	}
	if !state.LastActivity.IsZero() {
		t.lastActivity = state.LastActivity
	}
	t.sessions = state.Sessions
	if state.HabitCompletions != nil {
		t.habitCompletions = state.HabitCompletions
	}
	t.sentToday = state.SentToday
	if state.LastSentDate != nil {
		t.lastSentDate = *state.LastSentDate
	}
}

func (t *ActivityTracker) persistLocked() {
	if t.filePath == "" {
		return
	}
	state := activityState{
		LastActivity:     t.lastActivity,
		Sessions:         t.sessions,
		HabitCompletions: t.habitCompletions,
		SentToday:        t.sentToday,
	}
	if !t.lastSentDate.IsZero() {
		d := t.lastSentDate
		state.LastSentDate = &d
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}
	dir := filepath.Dir(t.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
	}
	tmp := t.filePath + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, t.filePath)
}

// RecordActivity notes a tracked input event or window focus, and prunes
// sessions older than 24 hours.
func (t *ActivityTracker) RecordActivity(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastActivity = now
	t.sessions = append(t.sessions, now)
	kept := t.sessions[:0]
	for _, session := range t.sessions {
		if now.Sub(session) <= 24*time.Hour {
			kept = append(kept, session)
		}
	}
	t.sessions = kept
	t.persistLocked()
}

func (t *ActivityTracker) RecordHabitCompletion(habitID string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.habitCompletions[habitID] = now
	t.persistLocked()
}

// HasBeenInactiveFor reports whether no activity has been recorded for at
// least the given duration.
func (t *ActivityTracker) HasBeenInactiveFor(d time.Duration, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return now.Sub(t.lastActivity) >= d
}

func (t *ActivityTracker) LastActivity() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActivity
}

// SentToday returns the reminder count for the calendar day containing now,
// resetting the counter when the day has rolled over.
func (t *ActivityTracker) SentToday(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollDayLocked(now)
	return t.sentToday
}

// MarkSent increments today's reminder counter.
func (t *ActivityTracker) MarkSent(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollDayLocked(now)
	t.sentToday++
	t.lastSentDate = now
	t.persistLocked()
}

func (t *ActivityTracker) rollDayLocked(now time.Time) {
	if t.lastSentDate.IsZero() {
		return
	}
	ly, lm, ld := t.lastSentDate.Date()
	ny, nm, nd := now.Date()
	if ly != ny || lm != nm || ld != nd {
		t.sentToday = 0
		t.lastSentDate = now
	}
}
