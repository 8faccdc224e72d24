package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateHabit(ctx context.Context, in Habit) error
	GetHabit(ctx context.Context, id string) (Habit, error)
	UpdateHabit(ctx context.Context, in Habit) error
	DeleteHabit(ctx context.Context, id string) error
	ListHabits(ctx context.Context) ([]Habit, error)

	UpsertCompletion(ctx context.Context, in Completion) error
	DeleteCompletion(ctx context.Context, habitID, periodKey string) error
	ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error)

	CreateReward(ctx context.Context, in Reward) error
	GetReward(ctx context.Context, id string) (Reward, error)
	DeleteReward(ctx context.Context, id string) error
	ListRewards(ctx context.Context) ([]Reward, error)

	AddInventoryItem(ctx context.Context, in InventoryItem) error
	ListInventory(ctx context.Context) ([]InventoryItem, error)

	UpsertCategory(ctx context.Context, in Category) error
	DeleteCategory(ctx context.Context, name string) error
	ListCategories(ctx context.Context) ([]Category, error)

	GetProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, in Profile) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	ExportSnapshot(ctx context.Context) (Snapshot, error)
	ReplaceAll(ctx context.Context, snap Snapshot) error
}
