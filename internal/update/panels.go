package update

import (
	"time"

	"habitquest/internal/views"
)

func (m Model) renderHabitsView() string {
	now := time.Now()
	items := make([]views.HabitItemData, 0, len(m.visibleHabits()))
	for _, h := range m.visibleHabits() {
		items = append(items, views.HabitItemData{
			ID:        h.ID,
			Title:     h.Title,
			Frequency: string(h.Frequency),
			Category:  h.Category,
			Streak:    h.Streak,
			XP:        h.XPOnComplete,
			Done:      h.DoneFor(now),
		})
	}
	return views.RenderHabitsPanel(views.HabitsPanelData{
		ListView:   m.habitList.View(),
		Items:      items,
		SelectedID: m.SelectedHabitID,
		Category:   m.CategoryFilter,
	})
}

func (m Model) renderShopView() string {
	items := make([]views.ShopItemData, 0, len(m.Rewards))
	selectedID := ""
	for i, r := range m.Rewards {
		items = append(items, views.ShopItemData{ID: r.ID, Name: r.Name, Cost: r.Cost})
		if i == m.ShopCursor {
			selectedID = r.ID
		}
	}
	return views.RenderShopPanel(views.ShopPanelData{
		TableView:  m.shopTable.View(),
		Points:     m.Profile.Points,
		Items:      items,
		SelectedID: selectedID,
	})
}

func (m Model) renderInventoryView() string {
	items := make([]views.InventoryItemData, 0, len(m.Inventory))
	for _, item := range m.Inventory {
		items = append(items, views.InventoryItemData{
			Name:       item.Name,
			RedeemedAt: item.RedeemedAt.Format("2006-01-02"),
		})
	}
	return views.RenderInventoryPanel(items)
}

func (m Model) renderStatsView() string {
	md := views.RenderMarkdown(m.statsMarkdown())
	m.statsViewport.SetContent(md)
	return views.RenderStatsPanel(views.StatsPanelData{MarkdownView: md})
}

func (m Model) renderNotificationLog() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	start := 0
	if len(m.Notifications) > 5 {
		start = len(m.Notifications) - 5
	}
	entries := make([]views.NotificationLogEntry, 0, 5)
	for _, n := range m.Notifications[start:] {
		entries = append(entries, views.NotificationLogEntry{
			Title: n.Title,
			Body:  n.Body,
			At:    n.At.Format("15:04"),
		})
	}
	return views.RenderNotificationLog(entries)
}

func (m Model) renderPermissionIfChecked() string {
	if m.Permission == nil {
		return ""
	}
	return "\n" + views.RenderPermissionPanel(views.PermissionPanelData{
		Granted:          m.Permission.Granted,
		NeedsManualSetup: m.Permission.NeedsManualSetup,
		Platform:         m.Permission.Platform,
		Instructions:     m.Permission.Instructions,
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}
