package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"habitquest/internal/notify"
	"habitquest/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.uiNotifier != nil {
		return waitForNotificationCmd(m.uiNotifier.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.syncBubbleData()

	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.sched != nil {
			m.sched.RecordActivity(time.Now())
		}

		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			next := m.handlePaletteKey(typed)
			return next, nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.HabitsKey:
			m.CurrentView = ViewHabits
			return m, nil
		case m.Keys.ShopKey:
			m.CurrentView = ViewShop
			return m, nil
		case m.Keys.StatsKey:
			m.CurrentView = ViewStats
			m.refreshAll()
			return m, nil
		case m.Keys.Permission:
			res := notify.CheckAndRequestPermissions(notify.ExecNotifier{})
			m.Permission = &res
			if res.Granted {
				m.Status = StatusBar{Text: "notifications permitted"}
			} else {
				m.Status = StatusBar{Text: "notifications need manual setup", IsError: true}
			}
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewHabits:
			next, cmd := m.handleHabitsKey(typed)
			return next, cmd
		case ViewShop:
			next, cmd := m.handleShopKey(typed)
			return next, cmd
		case ViewStats:
			next, cmd := m.handleStatsKey(typed)
			return next, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case NotificationMsg:
		m.Notifications = append(m.Notifications, typed.Notification)
		if len(m.Notifications) > 20 {
			m.Notifications = m.Notifications[len(m.Notifications)-20:]
		}
		m.Status = StatusBar{Text: fmt.Sprintf("notification: %s", typed.Notification.Title)}
		if m.uiNotifier != nil {
			return m, waitForNotificationCmd(m.uiNotifier.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	mainPane := ""
	sidePane := ""
	switch m.CurrentView {
	case ViewHabits:
		mainPane = m.renderHabitsView()
		sidePane = m.renderCommandPalette() + m.renderPermissionIfChecked() + m.renderHelpIfVisible()
	case ViewShop:
		mainPane = m.renderShopView()
		sidePane = m.renderInventoryView() + "\n" + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewStats:
		mainPane = m.renderStatsView()
		sidePane = m.renderCommandPalette() + m.renderHelpIfVisible()
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("habitquest | view: %s | level %s | streak: %d", m.CurrentView, levelLine(m.Profile.TotalXP), m.OverallStreak),
		MainPane:     mainPane,
		SidePane:     sidePane,
		StatusLine:   status,
		Notification: m.renderNotificationLog(),
		Footer: fmt.Sprintf("keys: %s habits | %s shop | %s stats | / cmd | %s perms | %s help | %s quit",
			m.Keys.HabitsKey, m.Keys.ShopKey, m.Keys.StatsKey, m.Keys.Permission, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewHabits, ViewShop, ViewStats:
		return true
	default:
		return false
	}
}

func waitForNotificationCmd(ch <-chan Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return NotificationMsg{Notification: n}
	}
}
