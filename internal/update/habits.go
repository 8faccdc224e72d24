package update

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"habitquest/internal/engine"
	"habitquest/internal/model"
)

func (m *Model) refreshAll() {
	ctx := context.Background()
	m.refreshHabits(ctx)
	m.refreshShop(ctx)
	m.refreshStats(ctx)
}

func (m *Model) refreshHabits(ctx context.Context) {
	habits, err := m.svc.ListHabits(ctx)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	sort.SliceStable(habits, func(i, j int) bool { return habits[i].CreatedAt.Before(habits[j].CreatedAt) })
	m.Habits = habits
	m.clampHabitCursor()
	m.syncSelectedHabit()
}

func (m *Model) refreshShop(ctx context.Context) {
	rewards, err := m.svc.ListRewards(ctx)
	if err != nil {
		m.LastError = err
		return
	}
	sort.SliceStable(rewards, func(i, j int) bool { return rewards[i].Cost < rewards[j].Cost })
	m.Rewards = rewards

	inventory, err := m.svc.ListInventory(ctx)
	if err != nil {
		m.LastError = err
		return
	}
	m.Inventory = inventory

	if m.ShopCursor >= len(m.Rewards) {
		m.ShopCursor = max(0, len(m.Rewards)-1)
	}
}

func (m *Model) refreshStats(ctx context.Context) {
	profile, err := m.svc.Profile(ctx)
	if err != nil {
		m.LastError = err
		return
	}
	m.Profile = profile

	now := time.Now()
	if streak, err := m.svc.OverallStreak(ctx, now); err == nil {
		m.OverallStreak = streak
	}
	if byCategory, err := m.svc.GetCategoryXP(ctx, now); err == nil {
		m.CategoryXP = byCategory
	}
}

func (m Model) visibleHabits() []model.Habit {
	if m.CategoryFilter == "" {
		return m.Habits
	}
	out := make([]model.Habit, 0, len(m.Habits))
	for _, h := range m.Habits {
		if strings.EqualFold(h.Category, m.CategoryFilter) {
			out = append(out, h)
		}
	}
	return out
}

func (m *Model) clampHabitCursor() {
	visible := m.visibleHabits()
	if m.HabitCursor >= len(visible) {
		m.HabitCursor = max(0, len(visible)-1)
	}
}

func (m *Model) syncSelectedHabit() {
	visible := m.visibleHabits()
	if len(visible) == 0 {
		m.SelectedHabitID = ""
		return
	}
	m.SelectedHabitID = visible[m.HabitCursor].ID
}

func (m Model) handleHabitsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	visible := m.visibleHabits()
	switch msg.String() {
	case "j", "down":
		if m.HabitCursor < len(visible)-1 {
			m.HabitCursor++
		}
		m.syncSelectedHabit()
	case "k", "up":
		if m.HabitCursor > 0 {
			m.HabitCursor--
		}
		m.syncSelectedHabit()
	case " ", "space", "enter":
		if m.SelectedHabitID != "" {
			return m.toggleHabit(m.SelectedHabitID)
		}
	case "x":
		m.CategoryFilter = ""
		m.clampHabitCursor()
		m.syncSelectedHabit()
	}
	return m, nil
}

func (m Model) toggleHabit(habitID string) (Model, tea.Cmd) {
	now := time.Now()
	res, err := m.svc.ToggleComplete(context.Background(), habitID, now)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	if res.Done {
		m.Status = StatusBar{Text: fmt.Sprintf("%s done: +%d xp, +%d pts", res.Habit.Title, res.XPDelta, res.PointsDelta)}
		if m.sched != nil {
			m.sched.RecordHabitCompletion(habitID, now)
		}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("%s undone: -%d xp, -%d pts", res.Habit.Title, -res.XPDelta, -res.PointsDelta)}
	}
	if res.LevelUp && m.sched != nil {
		m.sched.NotifyNow(model.NotificationLevelUp,
			"Level up!",
			fmt.Sprintf("You reached level %d. Keep it going!", res.LevelAfter))
	}

	m.refreshAll()
	return m, nil
}

func (m Model) handleShopKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.ShopCursor < len(m.Rewards)-1 {
			m.ShopCursor++
		}
	case "k", "up":
		if m.ShopCursor > 0 {
			m.ShopCursor--
		}
	case "enter", " ", "space":
		if m.ShopCursor < len(m.Rewards) {
			return m.redeemReward(m.Rewards[m.ShopCursor].ID)
		}
	}
	return m, nil
}

func (m Model) redeemReward(rewardID string) (Model, tea.Cmd) {
	item, err := m.svc.RedeemReward(context.Background(), rewardID, time.Now())
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("redeemed %s for %d pts", item.Name, item.Cost)}
	m.refreshAll()
	return m, nil
}

func (m Model) handleStatsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "r" {
		m.refreshAll()
		m.Status = StatusBar{Text: "stats refreshed"}
	}
	return m, nil
}

func levelLine(totalXP int) string {
	level := engine.LevelForTotalXP(totalXP)
	next := engine.XPRequiredForLevel(level + 1)
	return fmt.Sprintf("%d (%d / %d xp to next)", level, totalXP, next)
}

// statsMarkdown summarizes profile, streak, and category progress for the
// glamour-rendered stats pane.
func (m Model) statsMarkdown() string {
	level := levelLine(m.Profile.TotalXP)
	var b strings.Builder
	b.WriteString("# Progress\n\n")
	b.WriteString(fmt.Sprintf("- **Level**: %s\n", level))
	b.WriteString(fmt.Sprintf("- **Total XP**: %d\n", m.Profile.TotalXP))
	b.WriteString(fmt.Sprintf("- **Points**: %d\n", m.Profile.Points))
	b.WriteString(fmt.Sprintf("- **Overall streak**: %d day(s)\n", m.OverallStreak))

	if len(m.CategoryXP) > 0 {
		b.WriteString("\n## Category XP this month\n\n")
		names := make([]string, 0, len(m.CategoryXP))
		for name := range m.CategoryXP {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("- %s: %d xp\n", name, m.CategoryXP[name]))
		}
	}
	return b.String()
}
