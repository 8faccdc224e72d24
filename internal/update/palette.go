package update

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"habitquest/internal/commands"
	"habitquest/internal/engine"
	"habitquest/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	ctx := context.Background()
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			freq := model.Frequency(a.Frequency)
			if a.Frequency == "" {
				freq = model.FrequencyDaily
			}
			habit, err := m.svc.AddHabit(ctx, engine.AddHabitParams{
				Title:       a.Name,
				Frequency:   freq,
				Category:    a.Category,
				IsRecurring: true,
			}, time.Now())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m.CurrentView = ViewHabits
			return commands.Result{Message: fmt.Sprintf("added habit: %s", habit.Title)}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			habit, ok := m.findHabit(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no habit matching %q", a.Target)}
			}
			res, err := m.svc.ToggleComplete(ctx, habit.ID, time.Now())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			if res.Done {
				return commands.Result{Message: fmt.Sprintf("%s done: +%d xp", res.Habit.Title, res.XPDelta)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("%s undone", res.Habit.Title)}, nil
		},
		Redeem: func(a commands.RedeemArgs) (commands.Result, error) {
			reward, ok := m.findReward(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no reward matching %q", a.Target)}
			}
			item, err := m.svc.RedeemReward(ctx, reward.ID, time.Now())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			return commands.Result{Message: fmt.Sprintf("redeemed %s for %d pts", item.Name, item.Cost)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			switch a.Subject {
			case "habits":
				m.CurrentView = ViewHabits
			case "shop", "inventory":
				m.CurrentView = ViewShop
			case "stats":
				m.CurrentView = ViewStats
			default:
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject: %s", a.Subject)}
			}
			m.CategoryFilter = a.Category
			m.clampHabitCursor()
			m.syncSelectedHabit()
			if a.Category != "" {
				return commands.Result{Message: fmt.Sprintf("showing %s (cat:%s)", a.Subject, a.Category)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("showing %s", a.Subject)}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			path := strings.TrimSpace(a.Path)
			if path == "" {
				path = fmt.Sprintf("habitquest-export-%s.json", time.Now().Format("2006-01-02"))
			}
			data, err := m.svc.Export(ctx)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			return commands.Result{Message: fmt.Sprintf("exported to %s", path)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message}
		m.refreshAll()
	}

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	return m
}

func (m Model) findHabit(target string) (model.Habit, bool) {
	for _, h := range m.Habits {
		if h.ID == target || strings.EqualFold(h.Title, target) {
			return h, true
		}
	}
	return model.Habit{}, false
}

func (m Model) findReward(target string) (model.Reward, bool) {
	for _, r := range m.Rewards {
		if r.ID == target || strings.EqualFold(r.Name, target) {
			return r, true
		}
	}
	return model.Reward{}, false
}
