package engine

import (
	"context"
	"time"
)

const dayLayout = "2006-01-02"

// OverallStreak counts consecutive calendar days, walking backward from
// today, on which any habit has at least one completion. Today gets a grace
// day: an empty today is skipped without breaking the chain. The walk stops
// at the first other day with no completions.
func (s *Service) OverallStreak(ctx context.Context, today time.Time) (int, error) {
	habits, err := s.ListHabits(ctx)
	if err != nil {
		return 0, err
	}

	days := make(map[string]bool)
	for _, habit := range habits {
		for key, completion := range habit.Completions {
			resolved, err := completion.ResolveDate(key)
			if err != nil {
				continue
			}
			days[resolved.Format(dayLayout)] = true
		}
	}

	streak := 0
	if days[today.Format(dayLayout)] {
		streak++
	}
	day := today.AddDate(0, 0, -1)
	for days[day.Format(dayLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}
