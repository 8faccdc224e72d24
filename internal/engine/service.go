package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/model"
	"habitquest/internal/storage"
)

var (
	ErrHabitNotFound      = errors.New("engine: habit not found")
	ErrRewardNotFound     = errors.New("engine: reward not found")
	ErrInsufficientPoints = errors.New("engine: not enough points")
)

const notificationConfigKey = "notification_config"

// Service is the habit/XP/streak state machine over the persistent store.
// It is constructed once at startup and handed to every component that needs
// it; there are no package-level singletons.
type Service struct {
	repo storage.Repository
}

func NewService(repo storage.Repository) *Service {
	return &Service{repo: repo}
}

// Seed initializes an empty store with default categories and shop entries.
// Called at startup; a store that already has a profile is left alone.
func (s *Service) Seed(ctx context.Context, now time.Time) error {
	if _, err := s.repo.GetProfile(ctx); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err := s.repo.SaveProfile(ctx, storage.Profile{}); err != nil {
		return err
	}
	for _, cat := range []storage.Category{
		{Name: "Health", MonthlyTargetXP: 300},
		{Name: "Productivity", MonthlyTargetXP: 300},
		{Name: "Learning", MonthlyTargetXP: 200},
	} {
		if err := s.repo.UpsertCategory(ctx, cat); err != nil {
			return err
		}
	}
	for _, reward := range []storage.Reward{
		{ID: uuid.NewString(), Name: "Movie night", Cost: 100, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Takeout dinner", Cost: 200, CreatedAt: now},
	} {
		if err := s.repo.CreateReward(ctx, reward); err != nil {
			return err
		}
	}
	return nil
}

type AddHabitParams struct {
	Title        string
	Frequency    model.Frequency
	Category     string
	XPOnComplete int
	IsRecurring  bool
	SpecificDate *time.Time
}

// AddHabit creates a habit with generated id and defaults. Duplicate titles
// are allowed.
func (s *Service) AddHabit(ctx context.Context, params AddHabitParams, now time.Time) (model.Habit, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return model.Habit{}, errors.New("engine: habit title is required")
	}
	freq := params.Frequency
	if freq == "" {
		freq = model.FrequencyDaily
	}
	if !freq.IsValid() {
		return model.Habit{}, fmt.Errorf("%w: %q", model.ErrInvalidFrequency, freq)
	}
	xp := params.XPOnComplete
	if xp <= 0 {
		xp = model.DefaultXPOnComplete
	}
	habit := model.Habit{
		ID:           uuid.NewString(),
		Title:        title,
		Frequency:    freq,
		Category:     strings.TrimSpace(params.Category),
		XPOnComplete: xp,
		Completions:  map[string]model.Completion{},
		IsRecurring:  params.IsRecurring,
		SpecificDate: params.SpecificDate,
		CreatedAt:    now,
	}
	if err := s.repo.CreateHabit(ctx, toStorageHabit(habit)); err != nil {
		return model.Habit{}, err
	}
	return habit, nil
}

func (s *Service) GetHabit(ctx context.Context, id string) (model.Habit, error) {
	stored, err := s.repo.GetHabit(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Habit{}, ErrHabitNotFound
		}
		return model.Habit{}, err
	}
	return s.assembleHabit(ctx, stored)
}

func (s *Service) ListHabits(ctx context.Context) ([]model.Habit, error) {
	stored, err := s.repo.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Habit, 0, len(stored))
	for _, h := range stored {
		habit, err := s.assembleHabit(ctx, h)
		if err != nil {
			return nil, err
		}
		out = append(out, habit)
	}
	return out, nil
}

// DeleteHabit removes the habit and its completion history. No tombstoning.
func (s *Service) DeleteHabit(ctx context.Context, id string) error {
	if err := s.repo.DeleteHabit(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrHabitNotFound
		}
		return err
	}
	return nil
}

type ToggleResult struct {
	Habit       model.Habit
	Done        bool
	PeriodKey   string
	XPDelta     int
	PointsDelta int
	TotalXP     int
	Points      int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
}

// ToggleComplete marks the habit done for the period containing date, or
// undoes it when already done. XP and points are floored at zero on undo.
// The streak only moves on a fresh completion in a new period; undo leaves
// it alone.
func (s *Service) ToggleComplete(ctx context.Context, habitID string, date time.Time) (ToggleResult, error) {
	stored, err := s.repo.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ToggleResult{}, ErrHabitNotFound
		}
		return ToggleResult{}, err
	}
	profile, err := s.repo.GetProfile(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return ToggleResult{}, err
	}

	key := model.PeriodKey(model.Frequency(stored.Frequency), date)
	existing, err := s.repo.ListCompletions(ctx, storage.CompletionListFilter{HabitID: habitID, PeriodKey: key})
	if err != nil {
		return ToggleResult{}, err
	}

	result := ToggleResult{
		PeriodKey:   key,
		LevelBefore: LevelForTotalXP(profile.TotalXP),
	}

	if len(existing) > 0 {
		// Undo: remove the entry and subtract the deltas, floored at zero.
		if err := s.repo.DeleteCompletion(ctx, habitID, key); err != nil {
			return ToggleResult{}, err
		}
		result.Done = false
		result.XPDelta = -stored.XPOnComplete
		result.PointsDelta = -PointsPerXP * stored.XPOnComplete
		profile.TotalXP = max(0, profile.TotalXP-stored.XPOnComplete)
		profile.Points = max(0, profile.Points-PointsPerXP*stored.XPOnComplete)
	} else {
		at := date
		if err := s.repo.UpsertCompletion(ctx, storage.Completion{
			HabitID:     habitID,
			PeriodKey:   key,
			CompletedAt: &at,
		}); err != nil {
			return ToggleResult{}, err
		}
		result.Done = true
		result.XPDelta = stored.XPOnComplete
		result.PointsDelta = PointsPerXP * stored.XPOnComplete
		profile.TotalXP += stored.XPOnComplete
		profile.Points += PointsPerXP * stored.XPOnComplete

		// A completion in a new period extends the streak; re-completing the
		// same period (after an undo) does not.
		prevKey := ""
		if stored.LastCompletedAt != nil {
			prevKey = model.PeriodKey(model.Frequency(stored.Frequency), *stored.LastCompletedAt)
		}
		if prevKey != key {
			stored.Streak++
		}
		if stored.Streak > stored.BestStreak {
			stored.BestStreak = stored.Streak
		}
		stored.LastCompletedAt = &at
		if err := s.repo.UpdateHabit(ctx, stored); err != nil {
			return ToggleResult{}, err
		}
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return ToggleResult{}, err
	}

	result.TotalXP = profile.TotalXP
	result.Points = profile.Points
	result.LevelAfter = LevelForTotalXP(profile.TotalXP)
	result.LevelUp = result.LevelAfter > result.LevelBefore

	habit, err := s.assembleHabit(ctx, stored)
	if err != nil {
		return ToggleResult{}, err
	}
	result.Habit = habit
	return result, nil
}

// GetCategoryXP sums habit XP over completions falling inside the calendar
// month of selectedDate, grouped by category name. Legacy boolean entries are
// dated from their period key.
func (s *Service) GetCategoryXP(ctx context.Context, selectedDate time.Time) (map[string]int, error) {
	habits, err := s.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, habit := range habits {
		for key, completion := range habit.Completions {
			resolved, err := completion.ResolveDate(key)
			if err != nil {
				continue
			}
			if resolved.Year() == selectedDate.Year() && resolved.Month() == selectedDate.Month() {
				out[habit.Category] += habit.XPOnComplete
			}
		}
	}
	return out, nil
}

// HabitsAtRisk returns habits whose streak is at or above the warning
// threshold and which have no completion yet for the current period.
func (s *Service) HabitsAtRisk(ctx context.Context, now time.Time, threshold int) ([]model.Habit, error) {
	habits, err := s.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Habit, 0)
	for _, habit := range habits {
		if habit.Streak >= threshold && !habit.DoneFor(now) {
			out = append(out, habit)
		}
	}
	return out, nil
}

func (s *Service) Profile(ctx context.Context) (storage.Profile, error) {
	profile, err := s.repo.GetProfile(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.Profile{}, err
	}
	return profile, nil
}

// LoadNotificationConfig reads the persisted config, falling back to
// defaults when the setting is missing or unreadable.
func (s *Service) LoadNotificationConfig(ctx context.Context) model.NotificationConfig {
	raw, err := s.repo.GetSetting(ctx, notificationConfigKey)
	if err != nil {
		return model.DefaultNotificationConfig()
	}
	var cfg model.NotificationConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return model.DefaultNotificationConfig()
	}
	if err := cfg.Validate(); err != nil {
		return model.DefaultNotificationConfig()
	}
	return cfg
}

func (s *Service) SaveNotificationConfig(ctx context.Context, cfg model.NotificationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.repo.SetSetting(ctx, notificationConfigKey, string(raw))
}

func (s *Service) assembleHabit(ctx context.Context, stored storage.Habit) (model.Habit, error) {
	completions, err := s.repo.ListCompletions(ctx, storage.CompletionListFilter{HabitID: stored.ID})
	if err != nil {
		return model.Habit{}, err
	}
	habit := model.Habit{
		ID:              stored.ID,
		Title:           stored.Title,
		Frequency:       model.Frequency(stored.Frequency),
		Category:        stored.Category,
		XPOnComplete:    stored.XPOnComplete,
		Streak:          stored.Streak,
		BestStreak:      stored.BestStreak,
		LastCompletedAt: stored.LastCompletedAt,
		Completions:     make(map[string]model.Completion, len(completions)),
		IsRecurring:     stored.IsRecurring,
		SpecificDate:    stored.SpecificDate,
		CreatedAt:       stored.CreatedAt,
	}
	for _, c := range completions {
		habit.Completions[c.PeriodKey] = model.Completion{
			CompletedAt: c.CompletedAt,
			LegacyDone:  c.LegacyDone,
		}
	}
	return habit, nil
}

func toStorageHabit(h model.Habit) storage.Habit {
	return storage.Habit{
		ID:              h.ID,
		Title:           h.Title,
		Frequency:       string(h.Frequency),
		Category:        h.Category,
		XPOnComplete:    h.XPOnComplete,
		Streak:          h.Streak,
		BestStreak:      h.BestStreak,
		LastCompletedAt: h.LastCompletedAt,
		IsRecurring:     h.IsRecurring,
		SpecificDate:    h.SpecificDate,
		CreatedAt:       h.CreatedAt,
	}
}
