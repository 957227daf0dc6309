package update

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/wird/internal/config"
	"github.com/sandeepkv93/wird/internal/content"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/sandeepkv93/wird/internal/scheduler"
	"github.com/sandeepkv93/wird/internal/tracker"
	"github.com/sandeepkv93/wird/internal/views"
)

type View string

const (
	ViewToday   View = "Today"
	ViewRoutine View = "Routine"
	ViewHistory View = "History"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today   string
	Routine string
	History string
	Help    string
	Quit    string
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

// Deps are the services the TUI drives. Reminders, Engine and SaveConfig
// may be nil.
type Deps struct {
	Tracker    *tracker.Tracker
	Content    content.Source
	Reminders  *reminder.Scheduler
	Engine     *scheduler.Engine
	Notifier   reminder.Notifier
	Config     config.Config
	SaveConfig func(config.Config) error
	Logger     *slog.Logger
}

type Model struct {
	CurrentView   View
	Snapshot      tracker.Snapshot
	Routine       model.RoutineType
	Items         []model.Item
	Progress      tracker.Progress
	Cursor        int
	Installed     []model.Reminder
	Permission    string
	ReminderLog   []scheduler.ReminderEvent
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error
	Busy          bool

	deps   Deps
	styles views.Styles
	logger *slog.Logger

	itemList     list.Model
	weekTable    table.Model
	commandInput textinput.Model
	routineBar   progress.Model
	busySpinner  spinner.Model
	helpModel    help.Model
	textViewport viewport.Model
	renderedKey  string
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = reminder.NoopNotifier{}
	}
	m := Model{
		CurrentView: ViewToday,
		Routine:     model.RoutineMorning,
		Keys: GlobalKeyMap{
			Today:   "1",
			Routine: "2",
			History: "3",
			Help:    "?",
			Quit:    "q",
		},
		deps:   deps,
		styles: views.NewStyles(views.ThemeByName(deps.Config.Profile.Theme)),
		logger: logger.With("component", "tui"),
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.itemList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 14)
	m.itemList.Title = "Items"
	m.itemList.SetShowHelp(false)
	m.itemList.SetFilteringEnabled(false)
	m.itemList.SetShowStatusBar(false)

	cols := []table.Column{
		{Title: "Day", Width: 4},
		{Title: "Date", Width: 11},
		{Title: "Morning", Width: 8},
		{Title: "Evening", Width: 8},
	}
	m.weekTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(8))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 128
	m.commandInput.Width = 40

	m.routineBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	m.busySpinner = spinner.New()
	m.busySpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.textViewport = viewport.New(48, 12)
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.Items))
	for i, item := range m.Items {
		mark := "[ ]"
		if i < len(m.Progress.Marked) && m.Progress.Marked[i] {
			mark = "[x]"
		}
		desc := "once"
		if item.Repeat > 1 {
			desc = pluralTimes(item.Repeat)
		}
		items = append(items, listItem{title: mark + " " + item.Title, description: desc})
	}
	m.itemList.SetItems(items)
	if len(items) > 0 {
		m.itemList.Select(m.Cursor)
	}

	rows := make([]table.Row, 0, len(m.Snapshot.Week))
	for _, cell := range m.Snapshot.Week {
		day := cell.Date.Weekday().String()[:3]
		if cell.Today {
			day = "*" + day
		}
		rows = append(rows, table.Row{day, cell.Date.String(), doneText(cell.MorningDone), doneText(cell.EveningDone)})
	}
	m.weekTable.SetRows(rows)

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}

	item, _ := m.currentItem()
	if key := string(m.Routine) + "\x00" + item.Title; key != m.renderedKey {
		m.renderedKey = key
		m.textViewport.SetContent(views.RenderMarkdown(item.Text, m.styles.Theme, m.textViewport.Width))
		m.textViewport.GotoTop()
	}
}

func (m Model) currentItem() (model.Item, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return model.Item{}, false
	}
	return m.Items[m.Cursor], true
}

func (m Model) today() model.Date {
	if m.deps.Tracker != nil {
		return m.deps.Tracker.Today()
	}
	return m.Snapshot.Today
}
