package storage

import "time"

type Habit struct {
	ID              string
	Title           string
	Frequency       string
	Category        string
	XPOnComplete    int
	Streak          int
	BestStreak      int
	LastCompletedAt *time.Time
	IsRecurring     bool
	SpecificDate    *time.Time
	CreatedAt       time.Time
}

type Completion struct {
	HabitID     string
	PeriodKey   string
	CompletedAt *time.Time
	LegacyDone  bool
}

type Reward struct {
	ID        string
	Name      string
	Cost      int
	CreatedAt time.Time
}

type InventoryItem struct {
	ID         string
	RewardID   string
	Name       string
	Cost       int
	RedeemedAt time.Time
}

type Category struct {
	Name            string
	MonthlyTargetXP int
}

type Profile struct {
	Points  int
	TotalXP int
}

type CompletionListFilter struct {
	HabitID   string
	PeriodKey string
}

// Snapshot is the full persisted state in relational form. Import replaces
// the whole store with one of these inside a single transaction.
type Snapshot struct {
	Habits      []Habit
	Completions []Completion
	Rewards     []Reward
	Inventory   []InventoryItem
	Categories  []Category
	Profile     Profile
	Settings    map[string]string
}
