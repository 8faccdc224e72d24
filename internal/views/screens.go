package views

import (
	"fmt"
	"sort"
	"strings"
)

type HabitItemData struct {
	ID        string
	Title     string
	Frequency string
	Category  string
	Streak    int
	XP        int
	Done      bool
}

type HabitsPanelData struct {
	ListView   string
	Items      []HabitItemData
	SelectedID string
	Category   string
}

type ShopItemData struct {
	ID   string
	Name string
	Cost int
}

type ShopPanelData struct {
	TableView  string
	Points     int
	Items      []ShopItemData
	SelectedID string
}

type InventoryItemData struct {
	Name       string
	RedeemedAt string
}

type StatsPanelData struct {
	MarkdownView string
}

type NotificationLogEntry struct {
	Title string
	Body  string
	At    string
}

type PermissionPanelData struct {
	Granted          bool
	NeedsManualSetup bool
	Platform         string
	Instructions     []string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHabitsPanel(data HabitsPanelData) string {
	var b strings.Builder
	b.WriteString("habits:\n")
	if data.Category != "" {
		b.WriteString(fmt.Sprintf("filter: cat:%s\n", data.Category))
	}
	b.WriteString("actions: [j/k]move [space]toggle [1]habits [2]shop [3]stats\n")
	b.WriteString(data.ListView + "\n")

	grouped := make(map[string][]HabitItemData)
	categories := make([]string, 0)
	for _, item := range data.Items {
		cat := item.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		if _, ok := grouped[cat]; !ok {
			categories = append(categories, cat)
		}
		grouped[cat] = append(grouped[cat], item)
	}
	sort.Strings(categories)

	if len(categories) == 0 {
		b.WriteString("(no habits yet, /add one)")
		return strings.TrimSpace(b.String())
	}
	for _, cat := range categories {
		b.WriteString(fmt.Sprintf("\n%s:\n", cat))
		for _, item := range grouped[cat] {
			cursor := " "
			if data.SelectedID == item.ID {
				cursor = ">"
			}
			check := "[ ]"
			if item.Done {
				check = "[x]"
			}
			b.WriteString(fmt.Sprintf("%s %s %s (%s, +%dxp)", cursor, check, item.Title, item.Frequency, item.XP))
			if item.Streak > 0 {
				b.WriteString(fmt.Sprintf(" streak:%d", item.Streak))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderShopPanel(data ShopPanelData) string {
	var b strings.Builder
	b.WriteString("shop:\n")
	b.WriteString(fmt.Sprintf("points: %d\n", data.Points))
	b.WriteString("actions: [j/k]move [enter]redeem\n")
	b.WriteString(data.TableView + "\n")
	if len(data.Items) == 0 {
		b.WriteString("(shop is empty)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		affordable := ""
		if item.Cost > data.Points {
			affordable = " (not enough points)"
		}
		b.WriteString(fmt.Sprintf("%s %s - %d pts%s\n", cursor, item.Name, item.Cost, affordable))
	}
	return strings.TrimSpace(b.String())
}

func RenderInventoryPanel(items []InventoryItemData) string {
	var b strings.Builder
	b.WriteString("inventory:\n")
	if len(items) == 0 {
		b.WriteString("(nothing redeemed yet)")
		return b.String()
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("- %s (redeemed %s)\n", item.Name, item.RedeemedAt))
	}
	return strings.TrimSpace(b.String())
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString("actions: [r]refresh\n")
	b.WriteString(data.MarkdownView)
	return strings.TrimSpace(b.String())
}

func RenderNotificationLog(entries []NotificationLogEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("notifications:\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("- [%s] %s: %s\n", e.At, e.Title, e.Body))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderPermissionPanel(data PermissionPanelData) string {
	var b strings.Builder
	b.WriteString("notifications-permission:\n")
	if data.Granted {
		b.WriteString(fmt.Sprintf("granted on %s\n", data.Platform))
		return strings.TrimSpace(b.String())
	}
	if data.NeedsManualSetup {
		b.WriteString(fmt.Sprintf("manual setup needed on %s:\n", data.Platform))
		for i, step := range data.Instructions {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
		b.WriteString("press [p] to check again")
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
