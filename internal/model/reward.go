package model

import (
	"errors"
	"strings"
	"time"
)

type Reward struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cost      int       `json:"cost"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r Reward) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: reward id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("model: reward name is required")
	}
	if r.Cost < 0 {
		return errors.New("model: reward cost must not be negative")
	}
	return nil
}

// InventoryItem is a redeemed reward. Immutable once created.
type InventoryItem struct {
	ID         string    `json:"id"`
	RewardID   string    `json:"rewardId"`
	Name       string    `json:"name"`
	Cost       int       `json:"cost"`
	RedeemedAt time.Time `json:"redeemedAt"`
}

// Category is a user-defined label joined to habits by name, not by id.
// Deleting a category does not cascade to habits that still name it.
type Category struct {
	Name            string `json:"name"`
	MonthlyTargetXP int    `json:"monthlyTargetXP"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("model: category name is required")
	}
	if c.MonthlyTargetXP < 0 {
		return errors.New("model: category monthly target must not be negative")
	}
	return nil
}
