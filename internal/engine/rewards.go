package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/model"
	"habitquest/internal/storage"
)

func (s *Service) AddReward(ctx context.Context, name string, cost int, now time.Time) (model.Reward, error) {
	reward := model.Reward{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Cost:      cost,
		CreatedAt: now,
	}
	if err := reward.Validate(); err != nil {
		return model.Reward{}, err
	}
	if err := s.repo.CreateReward(ctx, storage.Reward(reward)); err != nil {
		return model.Reward{}, err
	}
	return reward, nil
}

func (s *Service) DeleteReward(ctx context.Context, id string) error {
	if err := s.repo.DeleteReward(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRewardNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListRewards(ctx context.Context) ([]model.Reward, error) {
	stored, err := s.repo.ListRewards(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reward, 0, len(stored))
	for _, r := range stored {
		out = append(out, model.Reward(r))
	}
	return out, nil
}

// RedeemReward spends points on a reward and records an inventory item.
// Redeeming with insufficient points changes nothing and reports
// ErrInsufficientPoints for the UI to show.
func (s *Service) RedeemReward(ctx context.Context, rewardID string, now time.Time) (model.InventoryItem, error) {
	stored, err := s.repo.GetReward(ctx, rewardID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.InventoryItem{}, ErrRewardNotFound
		}
		return model.InventoryItem{}, err
	}
	profile, err := s.repo.GetProfile(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return model.InventoryItem{}, err
	}
	if profile.Points < stored.Cost {
		return model.InventoryItem{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientPoints, profile.Points, stored.Cost)
	}

	item := model.InventoryItem{
		ID:         uuid.NewString(),
		RewardID:   stored.ID,
		Name:       stored.Name,
		Cost:       stored.Cost,
		RedeemedAt: now,
	}
	if err := s.repo.AddInventoryItem(ctx, storage.InventoryItem(item)); err != nil {
		return model.InventoryItem{}, err
	}
	profile.Points -= stored.Cost
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return model.InventoryItem{}, err
	}
	return item, nil
}

func (s *Service) ListInventory(ctx context.Context) ([]model.InventoryItem, error) {
	stored, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.InventoryItem, 0, len(stored))
	for _, item := range stored {
		out = append(out, model.InventoryItem(item))
	}
	return out, nil
}

func (s *Service) UpsertCategory(ctx context.Context, category model.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	return s.repo.UpsertCategory(ctx, storage.Category(category))
}

// DeleteCategory removes the label only; habits naming the category keep it.
func (s *Service) DeleteCategory(ctx context.Context, name string) error {
	if err := s.repo.DeleteCategory(ctx, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	stored, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(stored))
	for _, c := range stored {
		out = append(out, model.Category(c))
	}
	return out, nil
}
