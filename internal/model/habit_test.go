package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseFrequency(t *testing.T) {
	cases := map[string]Frequency{
		"daily":    FrequencyDaily,
		" Weekly ": FrequencyWeekly,
		"MONTHLY":  FrequencyMonthly,
		"yearly":   FrequencyYearly,
	}
	for input, want := range cases {
		got, err := ParseFrequency(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q = %s, want %s", input, got, want)
		}
	}
	if _, err := ParseFrequency("fortnightly"); err == nil {
		t.Fatalf("expected error for unknown frequency")
	}
}

func TestCompletionJSONVariants(t *testing.T) {
	at := time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)
	raw, err := json.Marshal(CompletionAt(at))
	if err != nil {
		t.Fatalf("marshal timestamp completion: %v", err)
	}
	var decoded Completion
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal timestamp completion: %v", err)
	}
	if decoded.CompletedAt == nil || !decoded.CompletedAt.Equal(at) {
		t.Fatalf("timestamp lost in round trip: %+v", decoded)
	}

	var legacy Completion
	if err := json.Unmarshal([]byte("true"), &legacy); err != nil {
		t.Fatalf("unmarshal legacy completion: %v", err)
	}
	if legacy.CompletedAt != nil || !legacy.LegacyDone {
		t.Fatalf("unexpected legacy completion: %+v", legacy)
	}

	var bad Completion
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Fatalf("expected error for malformed completion value")
	}
}

func TestCompletionResolveDate(t *testing.T) {
	at := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	resolved, err := CompletionAt(at).ResolveDate("2024-05-20")
	if err != nil {
		t.Fatalf("resolve timestamped completion: %v", err)
	}
	if !resolved.Equal(at) {
		t.Fatalf("expected stored timestamp, got %s", resolved)
	}

	legacy := Completion{LegacyDone: true}
	resolved, err = legacy.ResolveDate("2024-05")
	if err != nil {
		t.Fatalf("resolve legacy completion: %v", err)
	}
	if got := resolved.Format("2006-01-02"); got != "2024-05-01" {
		t.Fatalf("expected key-inferred date 2024-05-01, got %s", got)
	}
}

func TestHabitDoneFor(t *testing.T) {
	habit := Habit{
		Frequency: FrequencyDaily,
		Completions: map[string]Completion{
			"2024-01-02": CompletionAt(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)),
		},
	}
	if !habit.DoneFor(time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected habit done for 2024-01-02")
	}
	if habit.DoneFor(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected habit not done for 2024-01-03")
	}
}

func TestHabitValidate(t *testing.T) {
	valid := Habit{
		ID:           "habit-1",
		Title:        "Workout",
		Frequency:    FrequencyDaily,
		XPOnComplete: DefaultXPOnComplete,
		CreatedAt:    time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid habit, got %v", err)
	}

	bad := valid
	bad.Frequency = "hourly"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for invalid frequency")
	}

	bad = valid
	bad.Streak = 5
	bad.BestStreak = 3
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error when best streak is below current streak")
	}
}

func TestNotificationConfigValidate(t *testing.T) {
	cfg := DefaultNotificationConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	cfg.ReminderEndHour = 3
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when end hour precedes start hour")
	}
}
