package update

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"habitquest/internal/engine"
	"habitquest/internal/model"
	"habitquest/internal/notify"
	"habitquest/internal/scheduler"
	"habitquest/internal/storage"
)

type View string

const (
	ViewHabits View = "Habits"
	ViewShop   View = "Shop"
	ViewStats  View = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	HabitsKey  string
	ShopKey    string
	StatsKey   string
	Permission string
	Help       string
	Quit       string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Model struct {
	CurrentView     View
	SelectedHabitID string
	CategoryFilter  string

	Habits        []model.Habit
	Rewards       []model.Reward
	Inventory     []model.InventoryItem
	Profile       storage.Profile
	OverallStreak int
	CategoryXP    map[string]int

	HabitCursor int
	ShopCursor  int

	Palette       CommandPaletteState
	HelpVisible   bool
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error
	Notifications []Notification
	Permission    *notify.PermissionResult

	svc        *engine.Service
	sched      *scheduler.Service
	uiNotifier *UINotifier

	habitList     list.Model
	shopTable     table.Model
	commandInput  textinput.Model
	helpModel     help.Model
	statsViewport viewport.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

// UINotifier mirrors every delivered notification into the TUI and then
// forwards it to the desktop backend. The channel never blocks delivery;
// when the TUI is not draining it, entries are dropped.
type UINotifier struct {
	desktop notify.Notifier
	events  chan Notification
}

func NewUINotifier(desktop notify.Notifier) *UINotifier {
	if desktop == nil {
		desktop = notify.NoopNotifier{}
	}
	return &UINotifier{
		desktop: desktop,
		events:  make(chan Notification, 32),
	}
}

func (u *UINotifier) Send(title, body string) error {
	select {
	case u.events <- Notification{Title: title, Body: body, Level: "info", At: time.Now()}:
	default:
	}
	return u.desktop.Send(title, body)
}

func (u *UINotifier) C() <-chan Notification { return u.events }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type NotificationMsg struct {
	Notification Notification
}

func NewModel(svc *engine.Service) Model {
	m := Model{
		CurrentView: ViewHabits,
		CategoryXP:  map[string]int{},
		Keys: GlobalKeyMap{
			HabitsKey:  "1",
			ShopKey:    "2",
			StatsKey:   "3",
			Permission: "p",
			Help:       "?",
			Quit:       "q",
		},
		svc: svc,
	}
	m.initBubbleComponents()
	m.refreshAll()
	m.syncBubbleData()
	return m
}

func NewModelWithScheduler(svc *engine.Service, sched *scheduler.Service, ui *UINotifier) Model {
	m := NewModel(svc)
	m.sched = sched
	m.uiNotifier = ui
	return m
}

func (m *Model) initBubbleComponents() {
	m.habitList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.habitList.Title = "Habits (list)"
	m.habitList.SetShowHelp(false)
	m.habitList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Reward", Width: 28},
		{Title: "Cost", Width: 8},
	}
	m.shopTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(10))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.statsViewport = viewport.New(54, 14)
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.visibleHabits()))
	for _, h := range m.visibleHabits() {
		desc := string(h.Frequency)
		if h.Category != "" {
			desc += " | " + h.Category
		}
		items = append(items, listItem{title: h.Title, description: desc})
	}
	m.habitList.SetItems(items)
	if len(items) > 0 && m.HabitCursor < len(items) {
		m.habitList.Select(m.HabitCursor)
	}

	rows := make([]table.Row, 0, len(m.Rewards))
	for _, r := range m.Rewards {
		rows = append(rows, table.Row{r.Name, strconv.Itoa(r.Cost)})
	}
	m.shopTable.SetRows(rows)
	if len(rows) > 0 && m.ShopCursor < len(rows) {
		m.shopTable.SetCursor(m.ShopCursor)
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}
}
