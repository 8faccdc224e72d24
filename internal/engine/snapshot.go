package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"habitquest/internal/model"
	"habitquest/internal/storage"
)

// StateDocument is the export/import interchange format: the whole app state
// as one JSON document.
type StateDocument struct {
	Habits        []model.Habit             `json:"habits"`
	Points        int                       `json:"points"`
	TotalXP       int                       `json:"totalXP"`
	Categories    []model.Category          `json:"categories"`
	Shop          []model.Reward            `json:"shop"`
	Inventory     []model.InventoryItem     `json:"inventory"`
	Notifications *model.NotificationConfig `json:"notifications,omitempty"`
}

// Export serializes the full store to an indented JSON document.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	doc := StateDocument{}
	var err error
	if doc.Habits, err = s.ListHabits(ctx); err != nil {
		return nil, err
	}
	if doc.Categories, err = s.ListCategories(ctx); err != nil {
		return nil, err
	}
	if doc.Shop, err = s.ListRewards(ctx); err != nil {
		return nil, err
	}
	if doc.Inventory, err = s.ListInventory(ctx); err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	doc.Points = profile.Points
	doc.TotalXP = profile.TotalXP
	cfg := s.LoadNotificationConfig(ctx)
	doc.Notifications = &cfg
	return json.MarshalIndent(doc, "", "  ")
}

// Import parses a backup document and wholesale-replaces the store. A parse
// failure applies nothing; there is no partial merge.
func (s *Service) Import(ctx context.Context, data []byte) error {
	var doc StateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("engine: parse backup: %w", err)
	}

	snap := storage.Snapshot{
		Profile:  storage.Profile{Points: doc.Points, TotalXP: doc.TotalXP},
		Settings: map[string]string{},
	}
	for _, habit := range doc.Habits {
		snap.Habits = append(snap.Habits, toStorageHabit(habit))
		for key, completion := range habit.Completions {
			snap.Completions = append(snap.Completions, storage.Completion{
				HabitID:     habit.ID,
				PeriodKey:   key,
				CompletedAt: completion.CompletedAt,
				LegacyDone:  completion.LegacyDone,
			})
		}
	}
	for _, cat := range doc.Categories {
		snap.Categories = append(snap.Categories, storage.Category(cat))
	}
	for _, reward := range doc.Shop {
		snap.Rewards = append(snap.Rewards, storage.Reward(reward))
	}
	for _, item := range doc.Inventory {
		snap.Inventory = append(snap.Inventory, storage.InventoryItem(item))
	}
	if doc.Notifications != nil {
		raw, err := json.Marshal(doc.Notifications)
		if err != nil {
			return err
		}
		snap.Settings[notificationConfigKey] = string(raw)
	}
	return s.repo.ReplaceAll(ctx, snap)
}
